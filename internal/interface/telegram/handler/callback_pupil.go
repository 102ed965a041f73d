package handler

import (
	"context"

	"github.com/schoolsby-hub/daybook-bot/internal/application/command"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/navigation"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/middleware"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUPIL SELECTION CALLBACKS
// ══════════════════════════════════════════════════════════════════════════════

// PupilCallbackHandler handles "ID: <n>" callback queries from the
// /select keyboard.
type PupilCallbackHandler struct {
	selectPupil *command.SelectPupilHandler
}

// NewPupilCallbackHandler creates a new PupilCallbackHandler.
func NewPupilCallbackHandler(selectPupil *command.SelectPupilHandler) *PupilCallbackHandler {
	return &PupilCallbackHandler{selectPupil: selectPupil}
}

// PupilCallbackRequest represents one tap on the pupil keyboard.
type PupilCallbackRequest struct {
	// Identity is the resolved session identity of the presser.
	Identity middleware.Identity

	// Data is the raw callback payload.
	Data string
}

// PupilCallbackResponse confirms the selection.
type PupilCallbackResponse struct {
	// Text is the confirmation message to send.
	Text string

	// Toast is the callback answer.
	Toast string
}

// Handle persists the pupil choice on the presser's session.
func (h *PupilCallbackHandler) Handle(ctx context.Context, req PupilCallbackRequest) (*PupilCallbackResponse, error) {
	cb, err := navigation.ParseCallback(req.Data)
	if err != nil {
		return nil, err
	}
	choice, ok := cb.(navigation.PupilSelect)
	if !ok {
		return nil, shared.ErrIncorrectFormat
	}

	if req.Identity.IsAnonymous() {
		return nil, shared.ErrNoInfo
	}

	result, err := h.selectPupil.Handle(ctx, command.SelectPupilCommand{
		Key:     req.Identity.Key,
		PupilID: choice.PupilID,
	})
	if err != nil {
		return nil, err
	}

	name := result.Pupil.FullName()
	return &PupilCallbackResponse{
		Text:  "Теперь показываю дневник: " + name,
		Toast: "Выбран ученик: " + name,
	}, nil
}
