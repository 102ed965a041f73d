package presenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsby-hub/daybook-bot/internal/application/query"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/navigation"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

func TestDatePickerKeyboardLayout(t *testing.T) {
	kb := NewKeyboardBuilder().DatePickerKeyboard(navigation.WindowFor(timeutil.Date(2024, 9, 4)))

	// prev range, five days, next range
	require.Len(t, kb.Rows, 7)
	assert.Equal(t, "26.08.24 - 01.09.24", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "02.09.24", kb.Rows[1][0].CallbackData)
	assert.Equal(t, "06.09.24", kb.Rows[5][0].CallbackData)
	assert.Equal(t, "09.09.24 - 15.09.24", kb.Rows[6][0].CallbackData)

	// Button text is the literal payload.
	for _, row := range kb.Rows {
		require.Len(t, row, 1)
		assert.Equal(t, row[0].CallbackData, row[0].Text)
	}
}

func TestPupilSelectKeyboard(t *testing.T) {
	kb := NewKeyboardBuilder().PupilSelectKeyboard([]session.Pupil{
		{ID: 1, FirstName: "Маша", LastName: "Иванова"},
		{ID: 2, FirstName: "Петя", LastName: "Иванов"},
	})

	require.Len(t, kb.Rows, 2)
	assert.Equal(t, "Маша Иванова", kb.Rows[0][0].Text)
	assert.Equal(t, "ID: 1", kb.Rows[0][0].CallbackData)
	assert.Equal(t, "ID: 2", kb.Rows[1][0].CallbackData)
}

func TestHometaskDaySheet(t *testing.T) {
	p := NewHometaskPresenter()
	sheet := &daybook.DaySheet{
		Date: timeutil.Date(2024, 9, 6),
		Lessons: []daybook.Lesson{
			{
				Slot:    "1",
				Subject: "Математика",
				Hometask: &daybook.Hometask{
					Text: "№12, §5",
					Attachments: []daybook.Attachment{
						{Title: "задачи", URL: "https://gymn1.schools.by/media/t.pdf"},
					},
				},
			},
			{Slot: "2", Subject: "Физика", Theme: "Кинематика"},
			{Slot: "3", Subject: "Химия", Theme: "скрыта", ThemeNotTransferred: true},
		},
	}

	text := p.DaySheet(sheet)
	assert.Contains(t, text, "`Математика: №12, §5`")
	assert.Contains(t, text, "[Файлы](https://gymn1.schools.by/media/t.pdf)")
	assert.Contains(t, text, "`Физика: Ничего | Тема: Кинематика`")
	assert.Contains(t, text, "`Химия: Ничего`")
	assert.NotContains(t, text, "скрыта")
}

func TestHometaskEmptyDay(t *testing.T) {
	p := NewHometaskPresenter()
	text := p.DaySheet(&daybook.DaySheet{Date: timeutil.Date(2024, 9, 6)})
	assert.Equal(t, "На 06.09.24 ничего не задано.", text)
}

func TestHometaskDayHeaderMentionsUser(t *testing.T) {
	p := NewHometaskPresenter()
	header := p.DayHeader(123, "Маша", "06.09.24")
	assert.Contains(t, header, "[Маша](tg://user?id=123)")
	assert.Contains(t, header, "06.09.24")
}

func TestQuarterMarks(t *testing.T) {
	p := NewMarksPresenter()
	text := p.QuarterMarks([]query.SubjectMarks{
		{Subject: "Математика", Marks: []string{"8", "10"}},
		{Subject: "Физика", Marks: []string{"7"}},
	})

	assert.Contains(t, text, "`Математика: 8 10`")
	assert.Contains(t, text, "`Физика: 7`")
}

func TestQuarterMarksEmpty(t *testing.T) {
	p := NewMarksPresenter()
	assert.Equal(t, "Оценок за эту четверть пока нет.", p.QuarterMarks(nil))
}

func TestLastPage(t *testing.T) {
	p := NewMarksPresenter()
	text := p.LastPage(&daybook.QuarterSummary{Rows: []daybook.SummaryRow{
		{Subject: "Физика", QuarterMarks: []string{"7", "8", "-", "-"}, YearMark: "-"},
		{Subject: "Математика", QuarterMarks: []string{"9", "9", "-", "-"}, YearMark: "-"},
	}})

	assert.Contains(t, text, "`Математика: 9 9 - - | год: -`")
	// rendered sorted
	assert.Less(t, strings.Index(text, "Математика"), strings.Index(text, "Физика"))
}

func TestProfileSummary(t *testing.T) {
	p := NewMarksPresenter()
	text := p.Profile(&session.Record{
		Profile: session.Profile{FirstName: "Ольга", LastName: "Иванова", Role: session.RoleParent},
		Pupils:  []session.Pupil{{ID: 1, FirstName: "Маша", LastName: "Иванова"}},
	})

	assert.Contains(t, text, "Ольга Иванова")
	assert.Contains(t, text, "/select")
	assert.Contains(t, text, "Маша Иванова")
}
