// Package navigation implements the rolling date-picker logic: the
// 3-week window math behind the inline keyboard and the parsing of its
// callback payloads.
//
// No navigation state is held between renders. The keyboard is a pure
// function of the Monday it is centered on, and every callback payload
// carries everything needed to recompute it: a single dd.mm.yy date, a
// "d1 - d2" range, or an "ID: <n>" pupil token.
package navigation

import (
	"strconv"
	"strings"
	"time"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

// SchoolDaysPerWeek is the number of selectable day buttons per window.
const SchoolDaysPerWeek = 5

// pupilPrefix marks pupil-selection payloads, e.g. "ID: 42".
const pupilPrefix = "ID: "

// Window is one render of the date picker, anchored on a Monday.
type Window struct {
	// Start is the Monday the window is centered on.
	Start time.Time
}

// WindowFor computes the window containing the given day.
func WindowFor(day time.Time) Window {
	return Window{Start: timeutil.StartOfWeek(day)}
}

// SchoolDays returns the five selectable days, Monday through Friday.
func (w Window) SchoolDays() []time.Time {
	days := make([]time.Time, SchoolDaysPerWeek)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// PrevRange returns the 7-day range immediately before the window.
func (w Window) PrevRange() (time.Time, time.Time) {
	return w.Start.AddDate(0, 0, -7), w.Start.AddDate(0, 0, -1)
}

// NextRange returns the 7-day range immediately after the window.
func (w Window) NextRange() (time.Time, time.Time) {
	return w.Start.AddDate(0, 0, 7), w.Start.AddDate(0, 0, 13)
}

// Prev returns the window one week earlier.
func (w Window) Prev() Window {
	return Window{Start: w.Start.AddDate(0, 0, -7)}
}

// Next returns the window one week later.
func (w Window) Next() Window {
	return Window{Start: w.Start.AddDate(0, 0, 7)}
}

// RangePayload encodes a window-shift range as it appears both on the
// button label and in the callback payload: "d1 - d2".
func RangePayload(from, to time.Time) string {
	return timeutil.FormatDiary(from) + " - " + timeutil.FormatDiary(to)
}

// DayPayload encodes a single-day payload; label and payload are the
// same literal string.
func DayPayload(day time.Time) string {
	return timeutil.FormatDiary(day)
}

// PupilPayload encodes a pupil-selection payload.
func PupilPayload(pupilID int64) string {
	return pupilPrefix + strconv.FormatInt(pupilID, 10)
}

// CheckDate validates a day-selection payload: it must parse as dd.mm.yy
// (shared.ErrIncorrectFormat otherwise) and fall on a school day
// (shared.ErrNotValid for Saturday/Sunday).
func CheckDate(payload string) (time.Time, error) {
	date, err := timeutil.ParseDiary(payload)
	if err != nil {
		return time.Time{}, shared.ErrIncorrectFormat
	}
	if !timeutil.IsSchoolDay(date) {
		return time.Time{}, shared.ErrNotValid
	}
	return date, nil
}

// Callback is the tagged union of every inline-keyboard payload the bot
// emits. Parsed exactly once at callback ingress.
type Callback interface {
	isCallback()
}

// WindowShift re-centers the keyboard on a new Monday and re-renders it
// in place.
type WindowShift struct {
	Window Window
}

// DaySelect asks for the hometask of a single validated school day.
type DaySelect struct {
	Date time.Time
}

// PupilSelect sets a parent's current pupil.
type PupilSelect struct {
	PupilID int64
}

func (WindowShift) isCallback() {}
func (DaySelect) isCallback()   {}
func (PupilSelect) isCallback() {}

// ParseCallback classifies a raw callback payload.
//
// The historical wire format is kept: pupil tokens start with "ID: ",
// a payload splitting into exactly 3 space-separated tokens is a range
// ("d1 - d2"), anything else is treated as a single-day selection and
// validated with CheckDate.
func ParseCallback(data string) (Callback, error) {
	if rest, ok := strings.CutPrefix(data, pupilPrefix); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil || id <= 0 {
			return nil, shared.ErrIncorrectFormat
		}
		return PupilSelect{PupilID: id}, nil
	}

	if tokens := strings.Split(data, " "); len(tokens) == 3 {
		start, err := timeutil.ParseDiary(tokens[0])
		if err != nil {
			return nil, shared.ErrIncorrectFormat
		}
		return WindowShift{Window: WindowFor(start)}, nil
	}

	date, err := CheckDate(data)
	if err != nil {
		return nil, err
	}
	return DaySelect{Date: date}, nil
}
