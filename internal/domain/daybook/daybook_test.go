package daybook

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

func TestLessonAccessors(t *testing.T) {
	empty := &Lesson{Subject: "Физика"}
	_, ok := empty.HometaskText()
	assert.False(t, ok)
	_, ok = empty.ThemeText()
	assert.False(t, ok)
	_, ok = empty.CountableMark()
	assert.False(t, ok)

	full := &Lesson{
		Subject:  "Математика",
		Hometask: &Hometask{Text: "§12, №34"},
		Theme:    "Квадратные уравнения",
		Mark:     "9",
	}
	text, ok := full.HometaskText()
	assert.True(t, ok)
	assert.Equal(t, "§12, №34", text)

	theme, ok := full.ThemeText()
	assert.True(t, ok)
	assert.Equal(t, "Квадратные уравнения", theme)

	mark, ok := full.CountableMark()
	assert.True(t, ok)
	assert.Equal(t, "9", mark)
}

func TestThemeNotTransferredSuppressesTheme(t *testing.T) {
	l := &Lesson{Theme: "тема", ThemeNotTransferred: true}
	_, ok := l.ThemeText()
	assert.False(t, ok)
}

func TestAbsenceMarkIsNotCountable(t *testing.T) {
	l := &Lesson{Subject: "Химия", Mark: MissedMark}
	_, ok := l.CountableMark()
	assert.False(t, ok)
}

func TestMarksBySubject(t *testing.T) {
	week := &WeekSheet{
		Start: timeutil.Date(2024, 9, 2),
		Days: []DaySheet{
			{
				Date: timeutil.Date(2024, 9, 2),
				Lessons: []Lesson{
					{Subject: "Математика", Mark: "8"},
					{Subject: "Физика", Mark: MissedMark},
					{Subject: "История"},
				},
			},
			{
				Date: timeutil.Date(2024, 9, 3),
				Lessons: []Lesson{
					{Subject: "Математика", Mark: "10"},
					{Subject: "Физика", Mark: "7"},
				},
			},
		},
	}

	marks := week.MarksBySubject()
	assert.Equal(t, []string{"8", "10"}, marks["Математика"])
	assert.Equal(t, []string{"7"}, marks["Физика"])
	assert.NotContains(t, marks, "История")
}

func TestQuarterSummarySortedRows(t *testing.T) {
	q := &QuarterSummary{Rows: []SummaryRow{
		{Subject: "Физика"},
		{Subject: "Английский язык"},
		{Subject: "Математика"},
	}}

	rows := q.SortedRows()
	assert.Equal(t, "Английский язык", rows[0].Subject)
	assert.Equal(t, "Математика", rows[1].Subject)
	assert.Equal(t, "Физика", rows[2].Subject)

	// original order untouched
	assert.Equal(t, "Физика", q.Rows[0].Subject)
}

func TestDaySheetIsEmpty(t *testing.T) {
	var nilSheet *DaySheet
	assert.True(t, nilSheet.IsEmpty())
	assert.True(t, (&DaySheet{}).IsEmpty())
	assert.False(t, (&DaySheet{Lessons: []Lesson{{Subject: "x"}}}).IsEmpty())
}
