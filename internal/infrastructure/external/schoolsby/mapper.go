package schoolsby

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

// Mapper converts portal DTOs to domain types.
type Mapper struct {
	// baseURL is prepended to relative attachment links.
	baseURL string
}

// NewMapper creates a Mapper.
func NewMapper(baseURL string) *Mapper {
	return &Mapper{baseURL: strings.TrimRight(baseURL, "/")}
}

// ToProfile maps the current-user payload.
func (m *Mapper) ToProfile(dto UserDTO) session.Profile {
	return session.Profile{
		ID:        dto.ID,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Subdomain: dto.Subdomain,
		Role:      session.Role(dto.Type),
	}
}

// ToPupils maps a pupil list, keeping portal order.
func (m *Mapper) ToPupils(dtos []PupilDTO) []session.Pupil {
	pupils := make([]session.Pupil, len(dtos))
	for i, dto := range dtos {
		pupils[i] = session.Pupil{
			ID:        dto.ID,
			FirstName: dto.FirstName,
			LastName:  dto.LastName,
		}
	}
	return pupils
}

// ToDaySheet maps a day payload, ordering lessons by slot key.
func (m *Mapper) ToDaySheet(date time.Time, dto DayDTO) *daybook.DaySheet {
	slots := make([]string, 0, len(dto))
	for slot := range dto {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	sheet := &daybook.DaySheet{Date: date, Lessons: make([]daybook.Lesson, 0, len(slots))}
	for _, slot := range slots {
		sheet.Lessons = append(sheet.Lessons, m.toLesson(slot, dto[slot]))
	}
	return sheet
}

// ToWeekSheet maps a week payload, detecting the holidays marker and
// ordering days by date.
func (m *Mapper) ToWeekSheet(start time.Time, dto WeekDTO) (*daybook.WeekSheet, error) {
	week := &daybook.WeekSheet{Start: start}
	if dto.Holidays() {
		week.Holidays = true
		return week, nil
	}

	dates := make([]string, 0, len(dto))
	for key := range dto {
		dates = append(dates, key)
	}
	sort.Strings(dates)

	for _, key := range dates {
		date, err := timeutil.ParsePortal(key)
		if err != nil {
			// Unknown non-date key: the portal occasionally decorates
			// week payloads, skip rather than fail the whole sheet.
			continue
		}
		var day DayDTO
		if err := json.Unmarshal(dto[key], &day); err != nil {
			return nil, fmt.Errorf("week day %s: %w", key, err)
		}
		week.Days = append(week.Days, *m.ToDaySheet(date, day))
	}
	return week, nil
}

// ToQuarterSummary maps the last-page payload, normalizing absent marks
// to "-".
func (m *Mapper) ToQuarterSummary(dto LastPageDTO) *daybook.QuarterSummary {
	summary := &daybook.QuarterSummary{Rows: make([]daybook.SummaryRow, 0, len(dto.Subjects))}
	for _, row := range dto.Subjects {
		marks := make([]string, len(row.QuarterMarks))
		for i, mark := range row.QuarterMarks {
			marks[i] = normalizeMark(mark)
		}
		summary.Rows = append(summary.Rows, daybook.SummaryRow{
			Subject:      row.Name,
			QuarterMarks: marks,
			YearMark:     normalizeMark(row.YearMark),
		})
	}
	return summary
}

func (m *Mapper) toLesson(slot string, dto LessonDTO) daybook.Lesson {
	lesson := daybook.Lesson{
		Slot:                slot,
		Subject:             dto.Subject,
		Theme:               dto.Theme,
		ThemeNotTransferred: dto.ThemeNotTransferred,
		Mark:                dto.Mark,
	}
	if dto.Hometask != nil {
		ht := &daybook.Hometask{Text: dto.Hometask.Text}
		for _, a := range dto.Hometask.Attachments {
			ht.Attachments = append(ht.Attachments, daybook.Attachment{
				Title: a.Title,
				URL:   m.absoluteURL(a.File),
			})
		}
		lesson.Hometask = ht
	}
	return lesson
}

// absoluteURL resolves the portal's relative attachment links.
func (m *Mapper) absoluteURL(link string) string {
	if link == "" || strings.Contains(link, "://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return m.baseURL + link
}

func normalizeMark(mark *string) string {
	if mark == nil || *mark == "" {
		return "-"
	}
	return *mark
}
