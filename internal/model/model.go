package model

import "fmt"

// Day identifies a teaching weekday by its timetable short code.
// Sunday is the rest day and has no code: nothing is ever scheduled on it.
type Day string

const (
	Monday    Day = "M"
	Tuesday   Day = "T"
	Wednesday Day = "W"
	Thursday  Day = "TH"
	Friday    Day = "F"
	Saturday  Day = "S"
)

// Days lists the six teaching days in grid order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// ParseDay reports whether tok is exactly one of the six day codes.
// Matching is case-sensitive: "th" or "Th" are not days.
func ParseDay(tok string) (Day, bool) {
	switch Day(tok) {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday:
		return Day(tok), true
	}
	return "", false
}

// HourSlot identifies one of the eleven fixed one-hour teaching periods.
// Slot n runs from (n+7):00 to (n+8):00, so slot 1 is 08:00-09:00 and
// slot 11 is 18:00-19:00.
type HourSlot int

const (
	MinHourSlot HourSlot = 1
	MaxHourSlot HourSlot = 11
)

// Valid reports whether h is inside the teaching window.
func (h HourSlot) Valid() bool {
	return h >= MinHourSlot && h <= MaxHourSlot
}

// StartHour returns the wall-clock hour (0-23) at which the slot begins.
func (h HourSlot) StartHour() int {
	return int(h) + 7
}

// Window renders the slot as "08:00-09:00" for UI and logs.
func (h HourSlot) Window() string {
	return fmt.Sprintf("%02d:00-%02d:00", h.StartHour(), h.StartHour()+1)
}

// CourseRow is one decoded timetable row as produced by the extractor CSV.
// Timing is the free-text INSTRUCTOR_TIMING_ROOM field: instructor names,
// day codes, hour codes and a trailing room, with no reliable delimiters.
type CourseRow struct {
	ComCode  string // registration comcode, fallback identity
	CourseNo string // e.g. "BIO F101"
	Title    string
	Timing   string
}

// Code returns the course identity to attach to occupancy records:
// CourseNo when present, otherwise ComCode.
func (r CourseRow) Code() string {
	if r.CourseNo != "" {
		return r.CourseNo
	}
	return r.ComCode
}

// Occupancy is a single (day, hour) fact tied to a course identity.
// Records are immutable once built and belong to exactly one room bucket.
type Occupancy struct {
	Day        Day
	Hour       HourSlot
	Code       string
	Title      string
	Instructor string
}
