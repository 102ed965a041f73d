package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// SELECT PUPIL COMMAND
// Sets the pupil a parent's daybook queries target.
// ══════════════════════════════════════════════════════════════════════════════

// SelectPupilCommand contains the identity and the chosen pupil.
type SelectPupilCommand struct {
	// Key is the identity whose session is updated.
	Key session.Key

	// PupilID is the chosen pupil. Must belong to the parent.
	PupilID int64

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SelectPupilCommand) Validate() error {
	if c.Key == "" {
		return errors.New("select_pupil: key is required")
	}
	if c.PupilID <= 0 {
		return errors.New("select_pupil: pupil_id is required")
	}
	return nil
}

// SelectPupilResult contains the selection outcome.
type SelectPupilResult struct {
	// Pupil is the now-selected pupil.
	Pupil session.Pupil
}

// SelectPupilHandler handles the SelectPupilCommand.
type SelectPupilHandler struct {
	store session.Store
}

// NewSelectPupilHandler creates a new SelectPupilHandler.
func NewSelectPupilHandler(store session.Store) *SelectPupilHandler {
	return &SelectPupilHandler{store: store}
}

// Handle executes the selection. Domain errors (not a parent, foreign
// pupil, no session) pass through for the handler layer to translate.
func (h *SelectPupilHandler) Handle(ctx context.Context, cmd SelectPupilCommand) (*SelectPupilResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	record, err := h.store.Get(ctx, cmd.Key)
	if err != nil {
		return nil, err
	}

	if err := record.SelectPupil(cmd.PupilID); err != nil {
		return nil, err
	}

	if err := h.store.Put(ctx, cmd.Key, record); err != nil {
		return nil, fmt.Errorf("select_pupil: store session: %w", err)
	}

	pupil, _ := record.PupilByID(cmd.PupilID)
	return &SelectPupilResult{Pupil: pupil}, nil
}
