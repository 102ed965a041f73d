// Package presenter formats data for Telegram display.
// Presenters handle the conversion from domain objects to user-friendly
// Telegram messages and keyboards.
package presenter

import (
	"github.com/schoolsby-hub/daybook-bot/internal/domain/navigation"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// INLINE KEYBOARD TYPES
// These types represent Telegram inline keyboards in a library-agnostic way.
// The transport layer converts them to wire format.
// ══════════════════════════════════════════════════════════════════════════════

// InlineKeyboard represents an inline keyboard.
type InlineKeyboard struct {
	Rows [][]InlineButton
}

// InlineButton represents a single inline button.
type InlineButton struct {
	// Text is the button text.
	Text string

	// CallbackData is the callback data (for callback buttons).
	CallbackData string

	// URL is the URL to open (for URL buttons).
	URL string
}

// NewInlineKeyboard creates a new empty inline keyboard.
func NewInlineKeyboard() *InlineKeyboard {
	return &InlineKeyboard{
		Rows: make([][]InlineButton, 0),
	}
}

// AddRow adds a row of buttons.
func (k *InlineKeyboard) AddRow(buttons ...InlineButton) *InlineKeyboard {
	k.Rows = append(k.Rows, buttons)
	return k
}

// CallbackButton creates a callback button.
func CallbackButton(text, callbackData string) InlineButton {
	return InlineButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYBOARD BUILDER
// ══════════════════════════════════════════════════════════════════════════════

// KeyboardBuilder builds inline keyboards for various handlers.
type KeyboardBuilder struct{}

// NewKeyboardBuilder creates a new KeyboardBuilder.
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{}
}

// DatePickerKeyboard creates the rolling date picker for a window: one
// button per school day plus shift buttons for the adjacent weeks.
// Button payloads are the literal diary dates and ranges the callback
// parser understands.
func (b *KeyboardBuilder) DatePickerKeyboard(w navigation.Window) *InlineKeyboard {
	kb := NewInlineKeyboard()

	prevFrom, prevTo := w.PrevRange()
	prev := navigation.RangePayload(prevFrom, prevTo)
	kb.AddRow(CallbackButton(prev, prev))

	for _, day := range w.SchoolDays() {
		payload := navigation.DayPayload(day)
		kb.AddRow(CallbackButton(payload, payload))
	}

	nextFrom, nextTo := w.NextRange()
	next := navigation.RangePayload(nextFrom, nextTo)
	kb.AddRow(CallbackButton(next, next))

	return kb
}

// PupilSelectKeyboard creates the pupil picker for a parent, one pupil
// per row.
func (b *KeyboardBuilder) PupilSelectKeyboard(pupils []session.Pupil) *InlineKeyboard {
	kb := NewInlineKeyboard()
	for _, pupil := range pupils {
		kb.AddRow(CallbackButton(pupil.FullName(), navigation.PupilPayload(pupil.ID)))
	}
	return kb
}
