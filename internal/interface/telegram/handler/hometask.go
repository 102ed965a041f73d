package handler

import (
	"context"
	"time"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/navigation"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/presenter"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HOMETASK COMMAND
// Sends the date picker centered on the current week. Works without a
// session; a missing session only surfaces when a day is tapped.
// ══════════════════════════════════════════════════════════════════════════════

// ChooseDateText captions the date picker.
const ChooseDateText = "Выберите дату:"

// HometaskHandler handles the /hometask command.
type HometaskHandler struct {
	keyboard *presenter.KeyboardBuilder
	now      func() time.Time
}

// NewHometaskHandler creates a new HometaskHandler.
func NewHometaskHandler(kb *presenter.KeyboardBuilder) *HometaskHandler {
	return &HometaskHandler{keyboard: kb, now: timeutil.Now}
}

// HometaskRequest represents a /hometask command.
type HometaskRequest struct {
	// IsPrivate is true for private chats, where the picker gets pinned.
	IsPrivate bool
}

// HometaskResponse carries the date picker.
type HometaskResponse struct {
	// Text to send back.
	Text string

	// Keyboard is the rolling 3-week date picker.
	Keyboard *presenter.InlineKeyboard

	// Pin asks the bot layer to pin the sent message, replacing the
	// previous pin.
	Pin bool
}

// Handle renders the picker for the week containing today.
func (h *HometaskHandler) Handle(ctx context.Context, req HometaskRequest) (*HometaskResponse, error) {
	window := navigation.WindowFor(h.now())
	return &HometaskResponse{
		Text:     ChooseDateText,
		Keyboard: h.keyboard.DatePickerKeyboard(window),
		Pin:      req.IsPrivate,
	}, nil
}
