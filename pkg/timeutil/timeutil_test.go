package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday maps to itself", Date(2024, 9, 2), Date(2024, 9, 2)},
		{"wednesday maps back to monday", Date(2024, 9, 4), Date(2024, 9, 2)},
		{"sunday maps back six days", Date(2024, 9, 8), Date(2024, 9, 2)},
		{"monday noon is truncated", Date(2024, 9, 2).Add(12 * time.Hour), Date(2024, 9, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StartOfWeek(tt.in))
		})
	}
}

func TestDiaryFormatRoundTrip(t *testing.T) {
	d := Date(2024, 9, 6)
	s := FormatDiary(d)
	assert.Equal(t, "06.09.24", s)

	parsed, err := ParseDiary(s)
	require.NoError(t, err)
	assert.True(t, IsSameDay(d, parsed))
}

func TestParseDiaryRejectsGarbage(t *testing.T) {
	_, err := ParseDiary("2024-09-06")
	assert.Error(t, err)

	_, err = ParseDiary("99.99.99")
	assert.Error(t, err)
}

func TestIsSchoolDay(t *testing.T) {
	assert.True(t, IsSchoolDay(Date(2024, 9, 6)))   // Friday
	assert.False(t, IsSchoolDay(Date(2024, 9, 7)))  // Saturday
	assert.False(t, IsSchoolDay(Date(2024, 9, 8)))  // Sunday
	assert.True(t, IsSchoolDay(Date(2024, 9, 9)))   // Monday
}

func TestFormatPortal(t *testing.T) {
	assert.Equal(t, "2024-09-02", FormatPortal(Date(2024, 9, 2)))
}
