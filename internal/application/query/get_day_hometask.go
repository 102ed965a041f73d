// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"time"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DAY HOMETASK QUERY
// Fetches the daybook sheet for a single selected day.
// ══════════════════════════════════════════════════════════════════════════════

// GetDayHometaskQuery names the identity and the day.
type GetDayHometaskQuery struct {
	// Key is the resolved identity to act as.
	Key session.Key

	// Date is the selected school day.
	Date time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the query.
func (q GetDayHometaskQuery) Validate() error {
	if q.Key == "" {
		return errors.New("get_day_hometask: key is required")
	}
	if q.Date.IsZero() {
		return errors.New("get_day_hometask: date is required")
	}
	return nil
}

// GetDayHometaskResult contains the fetched sheet.
type GetDayHometaskResult struct {
	// Sheet holds the day's lessons, possibly empty.
	Sheet *daybook.DaySheet
}

// GetDayHometaskHandler handles the GetDayHometaskQuery.
type GetDayHometaskHandler struct {
	gateway daybook.Gateway
	store   session.Store
}

// NewGetDayHometaskHandler creates a new GetDayHometaskHandler.
func NewGetDayHometaskHandler(gateway daybook.Gateway, store session.Store) *GetDayHometaskHandler {
	return &GetDayHometaskHandler{
		gateway: gateway,
		store:   store,
	}
}

// Handle fetches the sheet. Session and portal errors (no session,
// pupil not selected, portal down) pass through for translation at the
// handler layer.
func (h *GetDayHometaskHandler) Handle(ctx context.Context, q GetDayHometaskQuery) (*GetDayHometaskResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	record, err := h.store.Get(ctx, q.Key)
	if err != nil {
		return nil, err
	}

	pupilID, err := record.EffectivePupilID()
	if err != nil {
		return nil, err
	}

	sheet, err := h.gateway.DaySheet(ctx, record.Token, pupilID, q.Date)
	if err != nil {
		return nil, err
	}

	return &GetDayHometaskResult{Sheet: sheet}, nil
}
