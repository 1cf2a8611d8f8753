package schedule

import (
	"time"

	"classfree/internal/model"
)

// DayForWeekday maps a calendar weekday to its timetable day code.
// Sunday is the rest day: it has no teaching slots and maps to nothing,
// whatever the hour.
func DayForWeekday(wd time.Weekday) (model.Day, bool) {
	switch wd {
	case time.Monday:
		return model.Monday, true
	case time.Tuesday:
		return model.Tuesday, true
	case time.Wednesday:
		return model.Wednesday, true
	case time.Thursday:
		return model.Thursday, true
	case time.Friday:
		return model.Friday, true
	case time.Saturday:
		return model.Saturday, true
	}
	return "", false
}

// SlotForHour maps a wall-clock hour (0-23) to the teaching slot covering
// it. Outside the 08:00-19:00 teaching window there is no current slot.
func SlotForHour(hour int) (model.HourSlot, bool) {
	h := model.HourSlot(hour - 7)
	if !h.Valid() {
		return 0, false
	}
	return h, true
}

// Current resolves a wall-clock reading to the current (day, slot) pair.
// ok is false on the rest day and outside teaching hours. Callers poll this
// periodically; each call is an independent pure computation over t.
func Current(t time.Time) (model.Day, model.HourSlot, bool) {
	day, ok := DayForWeekday(t.Weekday())
	if !ok {
		return "", 0, false
	}
	slot, ok := SlotForHour(t.Hour())
	if !ok {
		return "", 0, false
	}
	return day, slot, true
}
