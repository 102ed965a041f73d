package query

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

// memoryStore is an in-memory session.Store for tests.
type memoryStore struct {
	sessions map[session.Key]*session.Record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[session.Key]*session.Record)}
}

func (s *memoryStore) Get(ctx context.Context, key session.Key) (*session.Record, error) {
	record, ok := s.sessions[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return record.Clone(), nil
}

func (s *memoryStore) Put(ctx context.Context, key session.Key, record *session.Record) error {
	s.sessions[key] = record.Clone()
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key session.Key) error {
	delete(s.sessions, key)
	return nil
}

func (s *memoryStore) Copy(ctx context.Context, from, to session.Key) error {
	record, ok := s.sessions[from]
	if !ok {
		return shared.ErrNotFound
	}
	s.sessions[to] = record.Clone()
	return nil
}

func (s *memoryStore) Keys(ctx context.Context) ([]session.Key, error) {
	return nil, nil
}

// scriptedGateway answers week requests from a fixed schedule keyed by
// the week's Monday. Weeks missing from the schedule answer holidays.
type scriptedGateway struct {
	weeks     map[string]*daybook.WeekSheet
	weekCalls []string

	daySheet *daybook.DaySheet
	lastPage *daybook.QuarterSummary
}

func (g *scriptedGateway) Authenticate(ctx context.Context, username, password string) (string, error) {
	return "T1", nil
}

func (g *scriptedGateway) CurrentUser(ctx context.Context, token string) (session.Profile, error) {
	return session.Profile{}, nil
}

func (g *scriptedGateway) PupilsOf(ctx context.Context, token string, parentID int64) ([]session.Pupil, error) {
	return nil, nil
}

func (g *scriptedGateway) DaySheet(ctx context.Context, token string, pupilID int64, date time.Time) (*daybook.DaySheet, error) {
	return g.daySheet, nil
}

func (g *scriptedGateway) WeekSheet(ctx context.Context, token string, pupilID int64, date time.Time) (*daybook.WeekSheet, error) {
	monday := timeutil.FormatPortal(timeutil.StartOfWeek(date))
	g.weekCalls = append(g.weekCalls, monday)

	if sheet, ok := g.weeks[monday]; ok {
		return sheet, nil
	}
	return &daybook.WeekSheet{Start: timeutil.StartOfWeek(date), Holidays: true}, nil
}

func (g *scriptedGateway) LastPage(ctx context.Context, token string, pupilID int64) (*daybook.QuarterSummary, error) {
	return g.lastPage, nil
}

func teachingWeek(monday time.Time, marksByDay map[int]map[string]string) *daybook.WeekSheet {
	week := &daybook.WeekSheet{Start: monday}
	for offset := 0; offset < 5; offset++ {
		day := daybook.DaySheet{Date: monday.AddDate(0, 0, offset)}
		for subject, mark := range marksByDay[offset] {
			day.Lessons = append(day.Lessons, daybook.Lesson{Subject: subject, Mark: mark})
		}
		week.Days = append(week.Days, day)
	}
	return week
}

func pupilSession(store *memoryStore, key session.Key) {
	store.sessions[key] = &session.Record{
		Token:   "T1",
		Profile: session.Profile{ID: 42, FirstName: "Маша", Role: session.RolePupil},
	}
}

func parentSession(store *memoryStore, key session.Key, selected int64) {
	store.sessions[key] = &session.Record{
		Token:          "T1",
		Profile:        session.Profile{ID: 100, Role: session.RoleParent},
		Pupils:         []session.Pupil{{ID: 1, FirstName: "Маша"}},
		CurrentPupilID: selected,
	}
}

func TestGetQuarterMarksWalk(t *testing.T) {
	// Quarter: teaching weeks from 2024-09-02, holidays before that and
	// again from 2024-10-07. "Now" is Wednesday 2024-10-02.
	gw := &scriptedGateway{weeks: map[string]*daybook.WeekSheet{
		"2024-09-02": teachingWeek(timeutil.Date(2024, 9, 2), map[int]map[string]string{
			0: {"Математика": "6"},
		}),
		"2024-09-09": teachingWeek(timeutil.Date(2024, 9, 9), map[int]map[string]string{
			0: {"Математика": "8"},
			1: {"Физика": "7"},
		}),
		"2024-09-16": teachingWeek(timeutil.Date(2024, 9, 16), map[int]map[string]string{
			2: {"Математика": "10"},
		}),
		"2024-09-23": teachingWeek(timeutil.Date(2024, 9, 23), nil),
		"2024-09-30": teachingWeek(timeutil.Date(2024, 9, 30), map[int]map[string]string{
			4: {"Физика": daybook.MissedMark},
		}),
	}}

	store := newMemoryStore()
	key := session.UserKey(42)
	pupilSession(store, key)

	handler := NewGetQuarterMarksHandler(gw, store)
	handler.now = func() time.Time { return timeutil.Date(2024, 10, 2) }

	result, err := handler.Handle(context.Background(), GetQuarterMarksQuery{Key: key})
	require.NoError(t, err)

	// Forward walk starts at boundary (2024-08-26) + 14 days, so the
	// first teaching week is skipped and absences are not counted.
	require.Len(t, result.Subjects, 2)
	assert.Equal(t, "Математика", result.Subjects[0].Subject)
	assert.Equal(t, []string{"8", "10"}, result.Subjects[0].Marks)
	assert.Equal(t, "Физика", result.Subjects[1].Subject)
	assert.Equal(t, []string{"7"}, result.Subjects[1].Marks)

	// Backward probes run from the current week down to the boundary.
	assert.Equal(t,
		[]string{"2024-09-30", "2024-09-23", "2024-09-16", "2024-09-09", "2024-09-02", "2024-08-26"},
		gw.weekCalls[:6],
	)
}

func TestGetQuarterMarksEntireQuarterOnHolidays(t *testing.T) {
	// Every probe answers holidays: the walk terminates with no marks.
	gw := &scriptedGateway{weeks: map[string]*daybook.WeekSheet{}}

	store := newMemoryStore()
	key := session.UserKey(42)
	pupilSession(store, key)

	handler := NewGetQuarterMarksHandler(gw, store)
	handler.now = func() time.Time { return timeutil.Date(2024, 7, 10) }

	result, err := handler.Handle(context.Background(), GetQuarterMarksQuery{Key: key})
	require.NoError(t, err)
	assert.Empty(t, result.Subjects)
}

// endlessGateway never answers holidays, whatever the week.
type endlessGateway struct {
	scriptedGateway
	calls int
}

func (g *endlessGateway) WeekSheet(ctx context.Context, token string, pupilID int64, date time.Time) (*daybook.WeekSheet, error) {
	g.calls++
	return teachingWeek(timeutil.StartOfWeek(date), map[int]map[string]string{
		0: {"Математика": "7"},
	}), nil
}

func TestGetQuarterMarksCapsWalkWithoutBoundary(t *testing.T) {
	gw := &endlessGateway{}

	store := newMemoryStore()
	key := session.UserKey(42)
	pupilSession(store, key)

	var logs bytes.Buffer
	handler := NewGetQuarterMarksHandler(gw, store)
	handler.logger = slog.New(slog.NewTextHandler(&logs, nil))
	handler.now = func() time.Time { return timeutil.Date(2024, 10, 2) }

	result, err := handler.Handle(context.Background(), GetQuarterMarksQuery{Key: key})
	require.NoError(t, err)

	// Both directions stop at the week cap instead of walking forever,
	// and the fallback leaves a trace in the log.
	assert.Equal(t, 2*maxQuarterWeeks, gw.calls)
	require.Len(t, result.Subjects, 1)
	assert.Len(t, result.Subjects[0].Marks, maxQuarterWeeks)
	assert.Contains(t, logs.String(), "no holidays boundary")
}

func TestGetQuarterMarksParentWithoutSelection(t *testing.T) {
	store := newMemoryStore()
	key := session.UserKey(42)
	parentSession(store, key, 0)

	handler := NewGetQuarterMarksHandler(&scriptedGateway{}, store)

	_, err := handler.Handle(context.Background(), GetQuarterMarksQuery{Key: key})
	assert.ErrorIs(t, err, shared.ErrPupilNotSelected)
}

func TestGetQuarterMarksWithoutSession(t *testing.T) {
	handler := NewGetQuarterMarksHandler(&scriptedGateway{}, newMemoryStore())

	_, err := handler.Handle(context.Background(), GetQuarterMarksQuery{Key: session.UserKey(1)})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetDayHometask(t *testing.T) {
	date := timeutil.Date(2024, 9, 6)
	gw := &scriptedGateway{daySheet: &daybook.DaySheet{
		Date: date,
		Lessons: []daybook.Lesson{
			{Slot: "1", Subject: "Математика", Hometask: &daybook.Hometask{Text: "№12"}},
		},
	}}

	store := newMemoryStore()
	key := session.UserKey(42)
	pupilSession(store, key)

	handler := NewGetDayHometaskHandler(gw, store)
	result, err := handler.Handle(context.Background(), GetDayHometaskQuery{Key: key, Date: date})
	require.NoError(t, err)
	require.Len(t, result.Sheet.Lessons, 1)
	assert.Equal(t, "Математика", result.Sheet.Lessons[0].Subject)
}

func TestGetDayHometaskSelectedParent(t *testing.T) {
	gw := &scriptedGateway{daySheet: &daybook.DaySheet{}}
	store := newMemoryStore()
	key := session.ChatKey(-100500)
	parentSession(store, key, 1)

	handler := NewGetDayHometaskHandler(gw, store)
	_, err := handler.Handle(context.Background(), GetDayHometaskQuery{
		Key:  key,
		Date: timeutil.Date(2024, 9, 6),
	})
	assert.NoError(t, err)
}

func TestGetFinalMarks(t *testing.T) {
	gw := &scriptedGateway{lastPage: &daybook.QuarterSummary{
		Rows: []daybook.SummaryRow{
			{Subject: "Физика", QuarterMarks: []string{"7", "8", "-", "-"}, YearMark: "-"},
		},
	}}

	store := newMemoryStore()
	key := session.UserKey(42)
	pupilSession(store, key)

	handler := NewGetFinalMarksHandler(gw, store)
	result, err := handler.Handle(context.Background(), GetFinalMarksQuery{Key: key})
	require.NoError(t, err)
	require.Len(t, result.Summary.Rows, 1)
	assert.Equal(t, "Физика", result.Summary.Rows[0].Subject)
}
