package ical

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"classfree/internal/model"
)

// RoomCalendar renders a room's weekly occupancy as an iCalendar feed.
// Every occupancy record becomes one VEVENT with a weekly recurrence rule,
// anchored to the record's next occurrence on or after now. Subscribing a
// phone calendar to a room's feed is the cheapest possible door display.
func RoomCalendar(roomKey string, records []model.Occupancy, loc *time.Location, now time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//classfree//room occupancy//EN")
	cal.SetXWRCalName("Room " + roomKey)

	for i, rec := range records {
		start, err := nextOccurrence(rec, loc, now)
		if err != nil {
			return "", err
		}

		uid := fmt.Sprintf("%s-%d-%s-%d@classfree", roomKey, i, rec.Day, rec.Hour)
		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(now.In(loc))
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(time.Hour))
		ev.SetSummary(rec.Code)
		ev.SetLocation(roomKey)
		if rec.Title != "" {
			ev.SetDescription(rec.Title)
		}

		rule, err := weeklyRule(rec.Day)
		if err != nil {
			return "", err
		}
		ev.AddRrule(rule)
	}

	return cal.Serialize(), nil
}

// nextOccurrence returns the first wall-clock start of rec on or after the
// date of now, in loc.
func nextOccurrence(rec model.Occupancy, loc *time.Location, now time.Time) (time.Time, error) {
	wd, err := weekdayOf(rec.Day)
	if err != nil {
		return time.Time{}, err
	}

	now = now.In(loc)
	date := time.Date(now.Year(), now.Month(), now.Day(), rec.Hour.StartHour(), 0, 0, 0, loc)
	offset := (int(wd) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset), nil
}

// weeklyRule builds "FREQ=WEEKLY;BYDAY=.." for the record's day.
func weeklyRule(day model.Day) (string, error) {
	by, err := rruleWeekday(day)
	if err != nil {
		return "", err
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{by},
	})
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

func weekdayOf(day model.Day) (time.Weekday, error) {
	switch day {
	case model.Monday:
		return time.Monday, nil
	case model.Tuesday:
		return time.Tuesday, nil
	case model.Wednesday:
		return time.Wednesday, nil
	case model.Thursday:
		return time.Thursday, nil
	case model.Friday:
		return time.Friday, nil
	case model.Saturday:
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("ical: unknown day code %q", day)
}

func rruleWeekday(day model.Day) (rrule.Weekday, error) {
	switch day {
	case model.Monday:
		return rrule.MO, nil
	case model.Tuesday:
		return rrule.TU, nil
	case model.Wednesday:
		return rrule.WE, nil
	case model.Thursday:
		return rrule.TH, nil
	case model.Friday:
		return rrule.FR, nil
	case model.Saturday:
		return rrule.SA, nil
	}
	return rrule.Weekday{}, fmt.Errorf("ical: unknown day code %q", day)
}
