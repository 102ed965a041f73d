// Package daybook models the portal's per-day/per-week assignment and
// grade ledger as tagged structures with explicit optional fields, so
// handlers never poke at raw JSON key presence.
package daybook

import (
	"sort"
	"time"
)

// MissedMark is the portal's token for an absence ("н" = не был). It is
// never counted as a grade.
const MissedMark = "н"

// Attachment is a file attached to a homework entry.
type Attachment struct {
	Title string
	URL   string
}

// Hometask is the homework part of a lesson, present only when the
// teacher filled it in.
type Hometask struct {
	Text        string
	Attachments []Attachment
}

// Lesson is one lesson slot of a day sheet.
type Lesson struct {
	// Slot is the portal's lesson-slot key, used only for ordering.
	Slot string

	// Subject is the subject name as the portal spells it.
	Subject string

	// Hometask is nil when no homework was recorded.
	Hometask *Hometask

	// Theme is the lesson theme; empty when absent. ThemeNotTransferred
	// is the portal's explicit "not transferred to the diary" flag, which
	// suppresses the theme in rendering even if text is present.
	Theme               string
	ThemeNotTransferred bool

	// Mark is the grade token for the lesson; empty when none was given.
	Mark string
}

// HometaskText returns the homework text and whether any homework with
// non-empty text is present.
func (l *Lesson) HometaskText() (string, bool) {
	if l.Hometask == nil || l.Hometask.Text == "" {
		return "", false
	}
	return l.Hometask.Text, true
}

// ThemeText returns the displayable theme, honoring the portal's
// "not transferred" flag.
func (l *Lesson) ThemeText() (string, bool) {
	if l.ThemeNotTransferred || l.Theme == "" {
		return "", false
	}
	return l.Theme, true
}

// CountableMark returns the grade token if it should be counted in
// quarter aggregation (non-empty and not an absence marker).
func (l *Lesson) CountableMark() (string, bool) {
	if l.Mark == "" || l.Mark == MissedMark {
		return "", false
	}
	return l.Mark, true
}

// DaySheet is the assignment record for a single school day.
type DaySheet struct {
	Date time.Time

	// Lessons are ordered by slot key.
	Lessons []Lesson
}

// IsEmpty reports whether the day has no lessons at all (typically a
// non-school day the portal answered with an empty object for).
func (d *DaySheet) IsEmpty() bool {
	return d == nil || len(d.Lessons) == 0
}

// WeekSheet is the daybook response for a whole week.
type WeekSheet struct {
	// Start is the Monday the week was requested for.
	Start time.Time

	// Holidays is the portal's overloaded quarter-boundary signal: it is
	// set whenever the requested week falls outside the active teaching
	// quarter, approached from either direction.
	Holidays bool

	// Days holds the school days of the week, ordered by date.
	Days []DaySheet
}

// MarksBySubject accumulates countable marks of the week per subject, in
// lesson order.
func (w *WeekSheet) MarksBySubject() map[string][]string {
	marks := make(map[string][]string)
	for _, day := range w.Days {
		for i := range day.Lessons {
			l := &day.Lessons[i]
			if mark, ok := l.CountableMark(); ok && l.Subject != "" {
				marks[l.Subject] = append(marks[l.Subject], mark)
			}
		}
	}
	return marks
}

// SummaryRow is one subject's line on the portal's "last page": the marks
// for each quarter plus the year mark.
type SummaryRow struct {
	Subject string

	// QuarterMarks has one entry per quarter; absent marks are already
	// normalized to "-".
	QuarterMarks []string

	// YearMark is the final mark, "-" when not yet assigned.
	YearMark string
}

// QuarterSummary is the parsed "last page" of the diary.
type QuarterSummary struct {
	Rows []SummaryRow
}

// SortedRows returns the rows sorted alphabetically by subject.
func (q *QuarterSummary) SortedRows() []SummaryRow {
	rows := make([]SummaryRow, len(q.Rows))
	copy(rows, q.Rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Subject < rows[j].Subject })
	return rows
}
