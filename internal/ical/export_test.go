package ical

import (
	"strings"
	"testing"
	"time"

	"classfree/internal/model"
)

func TestRoomCalendar(t *testing.T) {
	records := []model.Occupancy{
		{Day: model.Monday, Hour: 2, Code: "BIO F101", Title: "General Biology"},
		{Day: model.Friday, Hour: 10, Code: "CHEM F110"},
	}
	// A Wednesday, so the Monday event anchors to the following week.
	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

	out, err := RoomCalendar("LT4", records, time.UTC, now)
	if err != nil {
		t.Fatalf("RoomCalendar() error = %v", err)
	}

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("VEVENT count = %d, want 2", got)
	}
	for _, want := range []string{
		"FREQ=WEEKLY;BYDAY=MO",
		"FREQ=WEEKLY;BYDAY=FR",
		"SUMMARY:BIO F101",
		"LOCATION:LT4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("calendar output missing %q", want)
		}
	}
}

func TestNextOccurrence(t *testing.T) {
	rec := model.Occupancy{Day: model.Monday, Hour: 2} // 09:00-10:00
	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC) // Wednesday

	start, err := nextOccurrence(rec, time.UTC, now)
	if err != nil {
		t.Fatalf("nextOccurrence() error = %v", err)
	}
	want := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("nextOccurrence() = %v, want %v", start, want)
	}
	if start.Weekday() != time.Monday {
		t.Errorf("weekday = %v, want Monday", start.Weekday())
	}
}

func TestNextOccurrence_SameDayKeepsToday(t *testing.T) {
	rec := model.Occupancy{Day: model.Wednesday, Hour: 1}
	now := time.Date(2026, time.March, 4, 23, 0, 0, 0, time.UTC) // Wednesday

	start, err := nextOccurrence(rec, time.UTC, now)
	if err != nil {
		t.Fatalf("nextOccurrence() error = %v", err)
	}
	if start.Day() != 4 || start.Hour() != 8 {
		t.Errorf("nextOccurrence() = %v, want Mar 4 08:00", start)
	}
}
