package handler

import (
	"context"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/middleware"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// SELECT COMMAND
// Parents pick which of their pupils the diary commands act on. The
// choice itself arrives as an "ID: <n>" callback, see pupil callback.
// ══════════════════════════════════════════════════════════════════════════════

// SelectHandler handles the /select command.
type SelectHandler struct {
	keyboard *presenter.KeyboardBuilder
}

// NewSelectHandler creates a new SelectHandler.
func NewSelectHandler(kb *presenter.KeyboardBuilder) *SelectHandler {
	return &SelectHandler{keyboard: kb}
}

// SelectRequest represents a /select command.
type SelectRequest struct {
	// Identity is the resolved session identity of the sender.
	Identity middleware.Identity
}

// SelectResponse is the pupil-selection keyboard.
type SelectResponse struct {
	// Text to send back.
	Text string

	// Keyboard lists one button per pupil.
	Keyboard *presenter.InlineKeyboard
}

// Handle offers the parent's pupils as inline buttons.
func (h *SelectHandler) Handle(ctx context.Context, req SelectRequest) (*SelectResponse, error) {
	if req.Identity.IsAnonymous() {
		return nil, shared.ErrNoInfo
	}
	record := req.Identity.Record
	if !record.IsParent() {
		return nil, shared.ErrNotAParent
	}
	if len(record.Pupils) == 0 {
		return &SelectResponse{Text: "Список учеников пуст."}, nil
	}

	return &SelectResponse{
		Text:     "Выберите ученика:",
		Keyboard: h.keyboard.PupilSelectKeyboard(record.Pupils),
	}, nil
}
