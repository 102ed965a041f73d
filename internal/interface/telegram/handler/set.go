package handler

import (
	"context"

	"github.com/schoolsby-hub/daybook-bot/internal/application/command"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET COMMAND
// Copies the caller's session under the chat's key so everyone in the
// chat can browse the same diary. In groups only admins may do this.
// ══════════════════════════════════════════════════════════════════════════════

// SetHandler handles the /set command.
type SetHandler struct {
	share *command.ShareSessionHandler
}

// NewSetHandler creates a new SetHandler.
func NewSetHandler(share *command.ShareSessionHandler) *SetHandler {
	return &SetHandler{share: share}
}

// SetRequest represents a /set command.
type SetRequest struct {
	// UserID is the Telegram user ID of the sender.
	UserID int64

	// ChatID is the chat the session is shared into.
	ChatID int64

	// IsPrivate is true for private chats, where no admin check applies.
	IsPrivate bool

	// IsAdmin is true when the sender administers the chat. Filled by
	// the bot layer for group chats only.
	IsAdmin bool
}

// SetResponse is the formatted reply to /set.
type SetResponse struct {
	// Text to send back.
	Text string

	// Silent suppresses the notification, status replies don't ping.
	Silent bool
}

// Handle copies the sender's session to the chat key.
func (h *SetHandler) Handle(ctx context.Context, req SetRequest) (*SetResponse, error) {
	if !req.IsPrivate && !req.IsAdmin {
		return nil, shared.ErrForbidden
	}

	err := h.share.Handle(ctx, command.ShareSessionCommand{
		From: session.UserKey(req.UserID),
		To:   session.ChatKey(req.ChatID),
	})
	if err != nil {
		return nil, err
	}

	return &SetResponse{
		Text:   "Готово. Теперь команды в этом чате используют вашу сессию.",
		Silent: true,
	}, nil
}
