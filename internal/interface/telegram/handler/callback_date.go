package handler

import (
	"context"
	"fmt"

	"github.com/schoolsby-hub/daybook-bot/internal/application/query"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/navigation"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/middleware"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/presenter"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DATE PICKER CALLBACKS
// Range taps re-render the keyboard in place one week over; day taps
// fetch the hometask and answer with a new message mentioning who
// asked, so the picker keeps working for everyone in a group.
// ══════════════════════════════════════════════════════════════════════════════

// Callback answer texts.
const (
	WeekChangeText = "Неделя изменена."
	DayAnswerText  = "Задание отправлено в чат."
)

// DateCallbackHandler handles date-picker callback queries.
type DateCallbackHandler struct {
	keyboard  *presenter.KeyboardBuilder
	hometask  *query.GetDayHometaskHandler
	presenter *presenter.HometaskPresenter
}

// NewDateCallbackHandler creates a new DateCallbackHandler.
func NewDateCallbackHandler(
	kb *presenter.KeyboardBuilder,
	hometask *query.GetDayHometaskHandler,
	p *presenter.HometaskPresenter,
) *DateCallbackHandler {
	return &DateCallbackHandler{keyboard: kb, hometask: hometask, presenter: p}
}

// DateCallbackRequest represents one tap on the date picker.
type DateCallbackRequest struct {
	// Identity is the resolved session identity of the presser.
	Identity middleware.Identity

	// Data is the raw callback payload.
	Data string

	// UserID and FirstName identify the presser for the mention.
	UserID    int64
	FirstName string
}

// DateCallbackResponse tells the bot layer how to react to the tap.
type DateCallbackResponse struct {
	// EditKeyboard replaces the picker's keyboard in place when set.
	EditKeyboard *presenter.InlineKeyboard

	// Text is a new message to send, legacy Markdown.
	Text string

	// Silent suppresses the notification for the new message.
	Silent bool

	// Toast is the callback answer; Alert pops it as a dialog.
	Toast string
	Alert bool
}

// Handle dispatches a picker tap.
func (h *DateCallbackHandler) Handle(ctx context.Context, req DateCallbackRequest) (*DateCallbackResponse, error) {
	cb, err := navigation.ParseCallback(req.Data)
	if err != nil {
		return h.mentionError(req, err), nil
	}

	switch cb := cb.(type) {
	case navigation.WindowShift:
		return &DateCallbackResponse{
			EditKeyboard: h.keyboard.DatePickerKeyboard(cb.Window),
			Toast:        WeekChangeText,
		}, nil

	case navigation.DaySelect:
		return h.handleDaySelect(ctx, req, cb)

	default:
		return h.mentionError(req, shared.ErrIncorrectFormat), nil
	}
}

func (h *DateCallbackHandler) handleDaySelect(ctx context.Context, req DateCallbackRequest, cb navigation.DaySelect) (*DateCallbackResponse, error) {
	if req.Identity.IsAnonymous() {
		return h.mentionError(req, shared.ErrNoInfo), nil
	}

	result, err := h.hometask.Handle(ctx, query.GetDayHometaskQuery{
		Key:  req.Identity.Key,
		Date: cb.Date,
	})
	if err != nil {
		if shared.IsUserCorrectable(err) || shared.IsRemote(err) {
			return h.mentionError(req, err), nil
		}
		return nil, err
	}

	header := h.presenter.DayHeader(req.UserID, req.FirstName, timeutil.FormatDiary(cb.Date))
	return &DateCallbackResponse{
		Text:   header + h.presenter.DaySheet(result.Sheet),
		Silent: true,
		Toast:  DayAnswerText,
		Alert:  true,
	}, nil
}

// mentionError addresses the failure to the presser by name, the way
// day sheets are addressed, so group members can tell replies apart.
func (h *DateCallbackHandler) mentionError(req DateCallbackRequest, err error) *DateCallbackResponse {
	return &DateCallbackResponse{
		Text:   fmt.Sprintf("[%s](tg://user?id=%d), %s", req.FirstName, req.UserID, UserText(err)),
		Silent: true,
	}
}
