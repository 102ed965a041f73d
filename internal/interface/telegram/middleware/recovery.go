package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY MIDDLEWARE
// Catches panics in handlers so one bad update cannot take down the
// polling loop. Users get a generic apology, the log gets the trace.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// UserErrorMessage is the message sent to users when a panic occurs.
	UserErrorMessage string

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultRecoveryConfig returns sensible defaults.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		UserErrorMessage: "Что-то пошло не так. Попробуйте ещё раз через несколько минут.",
	}
}

// RecoveryResult describes the outcome of a recovered call.
type RecoveryResult struct {
	// Recovered is true when a panic was caught.
	Recovered bool

	// UserMessage is the text to send to the user when Recovered.
	UserMessage string
}

// RecoveryMiddleware recovers from panics in update handlers.
type RecoveryMiddleware struct {
	config RecoveryConfig
	logger *slog.Logger
}

// NewRecoveryMiddleware creates a new recovery middleware.
func NewRecoveryMiddleware(config RecoveryConfig) *RecoveryMiddleware {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &RecoveryMiddleware{
		config: config,
		logger: config.Logger,
	}
}

// Run executes fn, converting a panic into a RecoveryResult.
func (m *RecoveryMiddleware) Run(ctx context.Context, label string, fn func() error) (result RecoveryResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("panic recovered",
				"label", label,
				"panic", fmt.Sprintf("%v", p),
				"stack", string(debug.Stack()),
			)
			result = RecoveryResult{
				Recovered:   true,
				UserMessage: m.config.UserErrorMessage,
			}
			err = nil
		}
	}()

	return RecoveryResult{}, fn()
}
