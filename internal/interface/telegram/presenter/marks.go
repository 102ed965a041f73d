package presenter

import (
	"strings"

	"github.com/schoolsby-hub/daybook-bot/internal/application/query"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARKS PRESENTER
// Renders quarter aggregations and the last-page table as monospace
// blocks, one subject per line.
// ══════════════════════════════════════════════════════════════════════════════

// MarksPresenter renders mark listings.
type MarksPresenter struct{}

// NewMarksPresenter creates a new MarksPresenter.
func NewMarksPresenter() *MarksPresenter {
	return &MarksPresenter{}
}

// QuarterMarks renders the per-subject aggregation of the current
// quarter. Subjects arrive already sorted.
func (p *MarksPresenter) QuarterMarks(subjects []query.SubjectMarks) string {
	if len(subjects) == 0 {
		return "Оценок за эту четверть пока нет."
	}

	var b strings.Builder
	b.WriteString("Оценки за четверть:\n")
	for _, subject := range subjects {
		b.WriteString("`")
		b.WriteString(subject.Subject)
		b.WriteString(": ")
		b.WriteString(strings.Join(subject.Marks, " "))
		b.WriteString("`\n")
	}
	return b.String()
}

// LastPage renders the quarter/year summary table.
func (p *MarksPresenter) LastPage(summary *daybook.QuarterSummary) string {
	rows := summary.SortedRows()
	if len(rows) == 0 {
		return "Итоговых оценок пока нет."
	}

	var b strings.Builder
	b.WriteString("Итоговые оценки:\n")
	for _, row := range rows {
		b.WriteString("`")
		b.WriteString(row.Subject)
		b.WriteString(": ")
		b.WriteString(strings.Join(row.QuarterMarks, " "))
		b.WriteString(" | год: ")
		b.WriteString(row.YearMark)
		b.WriteString("`\n")
	}
	return b.String()
}

// Profile renders a short session summary after login.
func (p *MarksPresenter) Profile(record *session.Record) string {
	var b strings.Builder
	b.WriteString("Вы вошли как ")
	b.WriteString(record.Profile.FullName())

	if record.IsParent() {
		b.WriteString("\nВыберите ученика командой /select:")
		for _, pupil := range record.Pupils {
			b.WriteString("\n• ")
			b.WriteString(pupil.FullName())
		}
	}
	return b.String()
}
