package query

import (
	"context"
	"errors"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET FINAL MARKS QUERY
// Fetches the daybook's last page: quarter and year marks per subject.
// ══════════════════════════════════════════════════════════════════════════════

// GetFinalMarksQuery names the identity.
type GetFinalMarksQuery struct {
	// Key is the resolved identity to act as.
	Key session.Key

	// CorrelationID for tracing.
	CorrelationID string
}

// GetFinalMarksResult contains the summary table.
type GetFinalMarksResult struct {
	// Summary holds one row per subject.
	Summary *daybook.QuarterSummary
}

// GetFinalMarksHandler handles the GetFinalMarksQuery.
type GetFinalMarksHandler struct {
	gateway daybook.Gateway
	store   session.Store
}

// NewGetFinalMarksHandler creates a new GetFinalMarksHandler.
func NewGetFinalMarksHandler(gateway daybook.Gateway, store session.Store) *GetFinalMarksHandler {
	return &GetFinalMarksHandler{
		gateway: gateway,
		store:   store,
	}
}

// Handle fetches the last page for the effective pupil.
func (h *GetFinalMarksHandler) Handle(ctx context.Context, q GetFinalMarksQuery) (*GetFinalMarksResult, error) {
	if q.Key == "" {
		return nil, errors.New("get_final_marks: key is required")
	}

	record, err := h.store.Get(ctx, q.Key)
	if err != nil {
		return nil, err
	}

	pupilID, err := record.EffectivePupilID()
	if err != nil {
		return nil, err
	}

	summary, err := h.gateway.LastPage(ctx, record.Token, pupilID)
	if err != nil {
		return nil, err
	}

	return &GetFinalMarksResult{Summary: summary}, nil
}
