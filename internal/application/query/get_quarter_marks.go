package query

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET QUARTER MARKS QUERY
// Walks the week endpoint across the current quarter and aggregates
// every countable mark per subject.
// ══════════════════════════════════════════════════════════════════════════════

// maxQuarterWeeks caps both walk directions. The longest Belarusian
// school quarter runs about 11 teaching weeks; anything past this means
// the portal never produced a holidays boundary and the walk must stop.
const maxQuarterWeeks = 16

// GetQuarterMarksQuery names the identity.
type GetQuarterMarksQuery struct {
	// Key is the resolved identity to act as.
	Key session.Key

	// CorrelationID for tracing.
	CorrelationID string
}

// SubjectMarks is the aggregated marks of one subject.
type SubjectMarks struct {
	// Subject is the subject name.
	Subject string

	// Marks are the countable marks in chronological order.
	Marks []string
}

// GetQuarterMarksResult contains the aggregation, sorted by subject.
type GetQuarterMarksResult struct {
	// Subjects lists marks per subject, alphabetically.
	Subjects []SubjectMarks
}

// GetQuarterMarksHandler handles the GetQuarterMarksQuery.
type GetQuarterMarksHandler struct {
	gateway daybook.Gateway
	store   session.Store
	logger  *slog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewGetQuarterMarksHandler creates a new GetQuarterMarksHandler.
func NewGetQuarterMarksHandler(gateway daybook.Gateway, store session.Store) *GetQuarterMarksHandler {
	return &GetQuarterMarksHandler{
		gateway: gateway,
		store:   store,
		logger:  slog.Default(),
		now:     timeutil.Now,
	}
}

// Handle aggregates the current quarter's marks.
//
// The week endpoint does not expose quarter boundaries; the only signal
// is a "holidays" answer meaning "this week is outside the active
// quarter", whichever direction it is approached from. So the walk runs
// twice: backward from the current week until holidays to locate where
// the quarter began, then forward from that boundary plus two weeks,
// accumulating marks until holidays shows up again.
func (h *GetQuarterMarksHandler) Handle(ctx context.Context, q GetQuarterMarksQuery) (*GetQuarterMarksResult, error) {
	if q.Key == "" {
		return nil, errors.New("get_quarter_marks: key is required")
	}

	record, err := h.store.Get(ctx, q.Key)
	if err != nil {
		return nil, err
	}

	pupilID, err := record.EffectivePupilID()
	if err != nil {
		return nil, err
	}

	boundary, err := h.findQuarterStart(ctx, record.Token, pupilID)
	if err != nil {
		return nil, err
	}

	marks, err := h.collectForward(ctx, record.Token, pupilID, boundary.AddDate(0, 0, 14))
	if err != nil {
		return nil, err
	}

	return &GetQuarterMarksResult{Subjects: marks}, nil
}

// findQuarterStart steps backward one week at a time until the portal
// answers holidays. The returned Monday is the last week before the
// quarter, not a week to read marks from.
func (h *GetQuarterMarksHandler) findQuarterStart(ctx context.Context, token string, pupilID int64) (time.Time, error) {
	week := timeutil.StartOfWeek(h.now())

	for i := 0; i < maxQuarterWeeks; i++ {
		sheet, err := h.gateway.WeekSheet(ctx, token, pupilID, week)
		if err != nil {
			return time.Time{}, err
		}
		if sheet.Holidays {
			return week, nil
		}
		week = week.AddDate(0, 0, -7)
	}

	// No boundary within the cap: treat the oldest probed week as the
	// start so the forward walk still produces an answer.
	h.logger.Warn("no holidays boundary found within the week cap, starting from oldest probed week",
		"weeks_probed", maxQuarterWeeks,
		"week", timeutil.FormatPortal(week),
	)
	return week, nil
}

// collectForward accumulates countable marks from the given Monday until
// the portal answers holidays again.
func (h *GetQuarterMarksHandler) collectForward(ctx context.Context, token string, pupilID int64, from time.Time) ([]SubjectMarks, error) {
	accumulated := make(map[string][]string)
	week := timeutil.StartOfWeek(from)

	for i := 0; i < maxQuarterWeeks; i++ {
		sheet, err := h.gateway.WeekSheet(ctx, token, pupilID, week)
		if err != nil {
			return nil, err
		}
		if sheet.Holidays {
			break
		}

		for subject, marks := range sheet.MarksBySubject() {
			accumulated[subject] = append(accumulated[subject], marks...)
		}
		week = week.AddDate(0, 0, 7)
	}

	subjects := make([]SubjectMarks, 0, len(accumulated))
	for subject, marks := range accumulated {
		subjects = append(subjects, SubjectMarks{Subject: subject, Marks: marks})
	}
	sort.Slice(subjects, func(i, j int) bool {
		return subjects[i].Subject < subjects[j].Subject
	})
	return subjects, nil
}
