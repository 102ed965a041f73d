package navigation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

func TestWindowForAnchorsOnMonday(t *testing.T) {
	// 2024-09-04 is a Wednesday.
	w := WindowFor(timeutil.Date(2024, 9, 4))
	assert.Equal(t, timeutil.Date(2024, 9, 2), w.Start)

	days := w.SchoolDays()
	require.Len(t, days, 5)
	for i, d := range days {
		assert.Equal(t, timeutil.Date(2024, 9, 2+i), d, "day %d must be consecutive", i)
	}
}

func TestWindowRanges(t *testing.T) {
	w := WindowFor(timeutil.Date(2024, 9, 2))

	from, to := w.PrevRange()
	assert.Equal(t, "26.08.24 - 01.09.24", RangePayload(from, to))

	from, to = w.NextRange()
	assert.Equal(t, "09.09.24 - 15.09.24", RangePayload(from, to))
}

func TestCheckDate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"friday is fine", "06.09.24", nil},
		{"monday is fine", "02.09.24", nil},
		{"saturday rejected", "07.09.24", shared.ErrNotValid},
		{"sunday rejected", "08.09.24", shared.ErrNotValid},
		{"iso format rejected", "2024-09-06", shared.ErrIncorrectFormat},
		{"garbage rejected", "tomorrow", shared.ErrIncorrectFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckDate(tt.payload)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseCallbackDaySelect(t *testing.T) {
	cb, err := ParseCallback("06.09.24")
	require.NoError(t, err)

	day, ok := cb.(DaySelect)
	require.True(t, ok)
	assert.Equal(t, timeutil.Date(2024, 9, 6), day.Date)
}

func TestParseCallbackWindowShift(t *testing.T) {
	cb, err := ParseCallback("26.08.24 - 01.09.24")
	require.NoError(t, err)

	shift, ok := cb.(WindowShift)
	require.True(t, ok)
	assert.Equal(t, timeutil.Date(2024, 8, 26), shift.Window.Start)
}

func TestParseCallbackReanchorsMidweekRange(t *testing.T) {
	// A range starting mid-week still re-centers on that week's Monday,
	// so the keyboard regenerates identically.
	cb, err := ParseCallback("28.08.24 - 03.09.24")
	require.NoError(t, err)

	shift := cb.(WindowShift)
	assert.Equal(t, timeutil.Date(2024, 8, 26), shift.Window.Start)
}

func TestParseCallbackPupilSelect(t *testing.T) {
	cb, err := ParseCallback("ID: 42")
	require.NoError(t, err)

	sel, ok := cb.(PupilSelect)
	require.True(t, ok)
	assert.Equal(t, int64(42), sel.PupilID)

	_, err = ParseCallback("ID: abc")
	assert.ErrorIs(t, err, shared.ErrIncorrectFormat)
}

func TestParseCallbackWeekendDay(t *testing.T) {
	_, err := ParseCallback("07.09.24")
	assert.ErrorIs(t, err, shared.ErrNotValid)
}

func TestWindowPrevNextAreInverse(t *testing.T) {
	w := WindowFor(timeutil.Date(2024, 9, 2))
	assert.Equal(t, w.Start, w.Prev().Next().Start)
	assert.Equal(t, w.Start.AddDate(0, 0, 7), w.Next().Start)
}

func TestDayPayloadIsLiteralDate(t *testing.T) {
	d := timeutil.Date(2024, 9, 6)
	assert.Equal(t, "06.09.24", DayPayload(d))

	var parsed time.Time
	parsed, err := CheckDate(DayPayload(d))
	require.NoError(t, err)
	assert.True(t, timeutil.IsSameDay(d, parsed))
}
