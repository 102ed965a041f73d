package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARE SESSION COMMAND
// Copies a user's session onto a chat key so a whole group can browse
// the daybook through one account (/set).
// ══════════════════════════════════════════════════════════════════════════════

// ShareSessionCommand names the source user and destination chat.
type ShareSessionCommand struct {
	// From is the user identity holding the session.
	From session.Key

	// To is the chat identity receiving the copy.
	To session.Key

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ShareSessionCommand) Validate() error {
	if c.From == "" || c.To == "" {
		return errors.New("share_session: from and to keys are required")
	}
	return nil
}

// ShareSessionHandler handles the ShareSessionCommand.
type ShareSessionHandler struct {
	store session.Store
}

// NewShareSessionHandler creates a new ShareSessionHandler.
func NewShareSessionHandler(store session.Store) *ShareSessionHandler {
	return &ShareSessionHandler{store: store}
}

// Handle copies the session by value. Later /select or /stop on either
// key leaves the other untouched. shared.ErrNotFound passes through when
// the user has no session to share.
func (h *ShareSessionHandler) Handle(ctx context.Context, cmd ShareSessionCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	// In a private chat Telegram reuses the user ID as the chat ID, so
	// both keys name the same record. The copy is a no-op, but the
	// session must still exist.
	if cmd.From == cmd.To {
		if _, err := h.store.Get(ctx, cmd.From); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return err
			}
			return fmt.Errorf("share_session: get: %w", err)
		}
		return nil
	}

	if err := h.store.Copy(ctx, cmd.From, cmd.To); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return fmt.Errorf("share_session: copy: %w", err)
	}
	return nil
}
