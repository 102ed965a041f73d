// Package timeutil provides timezone and school-calendar helpers for the
// schools.by daybook bot. All dates shown to users and sent to the portal
// are interpreted in Minsk time.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// MinskTZ is the Minsk timezone (UTC+3, no DST).
// Belarus abolished DST in 2011, so this is constant year-round.
var MinskTZ = time.FixedZone("Europe/Minsk", 3*60*60)

// Common date formats.
const (
	// FormatDiaryDate is the short date format used in keyboards and
	// callback payloads (dd.mm.yy).
	FormatDiaryDate = "02.01.06"
	// FormatPortalDate is the date format the portal API expects
	// (YYYY-MM-DD).
	FormatPortalDate = "2006-01-02"
)

// Now returns the current time in Minsk timezone.
func Now() time.Time {
	return time.Now().In(MinskTZ)
}

// ToMinsk converts a time to Minsk timezone.
func ToMinsk(t time.Time) time.Time {
	return t.In(MinskTZ)
}

// Date creates a midnight time in Minsk timezone.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, MinskTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Minsk timezone.
func StartOfDay(t time.Time) time.Time {
	m := ToMinsk(t)
	return time.Date(m.Year(), m.Month(), m.Day(), 0, 0, 0, 0, MinskTZ)
}

// StartOfWeek returns Monday 00:00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	m := ToMinsk(t)
	weekday := int(m.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(m.AddDate(0, 0, -(weekday - 1)))
}

// IsSchoolDay reports whether t falls on Monday..Friday.
func IsSchoolDay(t time.Time) bool {
	wd := ToMinsk(t).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// FormatDiary formats a time as dd.mm.yy in Minsk timezone.
func FormatDiary(t time.Time) string {
	return ToMinsk(t).Format(FormatDiaryDate)
}

// FormatPortal formats a time as YYYY-MM-DD in Minsk timezone.
func FormatPortal(t time.Time) string {
	return ToMinsk(t).Format(FormatPortalDate)
}

// ParseDiary parses a dd.mm.yy date string in Minsk timezone.
func ParseDiary(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDiaryDate, value, MinskTZ)
}

// ParsePortal parses a YYYY-MM-DD date string in Minsk timezone.
func ParsePortal(value string) (time.Time, error) {
	return time.ParseInLocation(FormatPortalDate, value, MinskTZ)
}

// IsSameDay checks if two times are on the same calendar day in Minsk time.
func IsSameDay(t1, t2 time.Time) bool {
	m1, m2 := ToMinsk(t1), ToMinsk(t2)
	return m1.Year() == m2.Year() && m1.YearDay() == m2.YearDay()
}
