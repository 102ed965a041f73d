package schoolsby

import "encoding/json"

// DTOs mirror the portal's JSON payloads verbatim. Mapping to domain
// types happens in mapper.go; nothing outside this package sees these.

// authResponseDTO is the body of POST /api/auth on success.
type authResponseDTO struct {
	Token string `json:"token"`
}

// authErrorDTO is the body of POST /api/auth on a 400.
type authErrorDTO struct {
	Details string `json:"details"`
}

// invalidCredentialsDetail is the exact detail string the portal sends
// for a bad username/password pair. Matched verbatim for wire
// compatibility.
const invalidCredentialsDetail = "Невозможно войти с предоставленными учетными данными."

// UserDTO is the body of GET /subdomain-api/user/current.
type UserDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Subdomain string `json:"subdomain"`
	Type      string `json:"type"`
}

// PupilDTO is one element of GET /subdomain-api/parent/{id}/pupils.
type PupilDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AttachmentDTO is one homework attachment.
type AttachmentDTO struct {
	Title string `json:"title"`
	File  string `json:"file"`
}

// HometaskDTO is the homework part of a lesson slot.
type HometaskDTO struct {
	Text        string          `json:"text"`
	Attachments []AttachmentDTO `json:"attachments"`
}

// LessonDTO is the value of one lesson-slot key in a day payload.
type LessonDTO struct {
	Subject             string       `json:"subject"`
	Hometask            *HometaskDTO `json:"hometask"`
	Theme               string       `json:"lesson_theme"`
	ThemeNotTransferred bool         `json:"theme_not_transferred"`
	Mark                string       `json:"mark"`
}

// DayDTO is the body of GET .../daybook/day/{date}: a mapping from
// lesson-slot key ("1".."8") to lesson. A non-school day comes back as
// an empty object.
type DayDTO map[string]LessonDTO

// WeekDTO is the body of GET .../daybook/week/{date}: a mapping from
// ISO date to DayDTO. Outside the active quarter the portal instead
// answers with a "holidays" key; its value carries nothing useful, only
// the key's presence matters.
type WeekDTO map[string]json.RawMessage

// holidaysKey is the overloaded quarter-boundary marker in week payloads.
const holidaysKey = "holidays"

// Holidays reports whether the week falls outside the active quarter.
func (w WeekDTO) Holidays() bool {
	_, ok := w[holidaysKey]
	return ok
}

// SummaryRowDTO is one subject row of the last-page payload. Quarter and
// year marks are null when not yet assigned.
type SummaryRowDTO struct {
	Name         string    `json:"name"`
	QuarterMarks []*string `json:"quarter_marks"`
	YearMark     *string   `json:"year_mark"`
}

// LastPageDTO is the body of GET .../daybook/last-page.
type LastPageDTO struct {
	Subjects []SummaryRowDTO `json:"subjects"`
}
