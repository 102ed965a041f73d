package handler

import (
	"context"

	"github.com/schoolsby-hub/daybook-bot/internal/application/command"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// STOP COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// StopHandler handles the /stop command.
type StopHandler struct {
	logout *command.LogoutHandler
}

// NewStopHandler creates a new StopHandler.
func NewStopHandler(logout *command.LogoutHandler) *StopHandler {
	return &StopHandler{logout: logout}
}

// StopRequest represents a /stop command.
type StopRequest struct {
	// UserID is the Telegram user ID of the sender.
	UserID int64
}

// StopResponse is the formatted reply to /stop.
type StopResponse struct {
	// Text to send back.
	Text string
}

// Handle deletes the sender's session. Idempotent, stopping twice is
// not an error.
func (h *StopHandler) Handle(ctx context.Context, req StopRequest) (*StopResponse, error) {
	err := h.logout.Handle(ctx, command.LogoutCommand{Key: session.UserKey(req.UserID)})
	if err != nil {
		return nil, err
	}
	return &StopResponse{Text: "Сессия удалена. Войти снова: /login."}, nil
}
