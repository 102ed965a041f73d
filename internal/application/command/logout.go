package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGOUT COMMAND
// Drops the stored session for an identity (/stop).
// ══════════════════════════════════════════════════════════════════════════════

// LogoutCommand names the identity to forget.
type LogoutCommand struct {
	// Key is the identity whose session is removed.
	Key session.Key

	// CorrelationID for tracing.
	CorrelationID string
}

// LogoutHandler handles the LogoutCommand.
type LogoutHandler struct {
	store session.Store
}

// NewLogoutHandler creates a new LogoutHandler.
func NewLogoutHandler(store session.Store) *LogoutHandler {
	return &LogoutHandler{store: store}
}

// Handle removes the session. Logging out twice is fine.
func (h *LogoutHandler) Handle(ctx context.Context, cmd LogoutCommand) error {
	if cmd.Key == "" {
		return errors.New("logout: key is required")
	}

	if err := h.store.Delete(ctx, cmd.Key); err != nil {
		return fmt.Errorf("logout: delete session: %w", err)
	}
	return nil
}
