package index

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	appLog "classfree/internal/log"
	"classfree/internal/model"
	"classfree/internal/schedule"
)

var (
	// ErrNoQuery is returned when the room input normalizes to nothing;
	// distinct from an unknown room so the UI can stay quiet instead of
	// reporting a miss.
	ErrNoQuery = errors.New("index: empty room query")
	// ErrNotFound is returned for a room key with no bucket.
	ErrNotFound = errors.New("index: room not found")
)

// Index maps normalized room keys to their ordered occupancy records.
// An Index is built once per data load and is immutable afterwards;
// reloads build a fresh Index and swap it in whole.
type Index struct {
	// SnapshotID identifies this build in logs and the status API.
	SnapshotID uuid.UUID
	BuiltAt    time.Time

	// Rows is the number of source rows with a timing field; Skipped
	// counts those that yielded no usable schedule (TBA, malformed, or
	// missing room) and were dropped.
	Rows    int
	Skipped int

	rooms map[string][]model.Occupancy
}

// NormalizeRoom uppercases s and strips all whitespace. Room keys and room
// queries both pass through here, so spellings differing only by case or
// spacing land on the same bucket. Idempotent.
func NormalizeRoom(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Build parses every row's timing field and files the resulting occupancy
// records under the row's room key, in row order. Rows that fail to parse
// are skipped silently; malformed legacy data must never abort the rest of
// the load. Records are not deduplicated, even when two rows claim the same
// (day, hour) in the same room.
func Build(rows []model.CourseRow) *Index {
	idx := &Index{
		SnapshotID: uuid.New(),
		BuiltAt:    time.Now(),
		rooms:      make(map[string][]model.Occupancy),
	}

	for _, row := range rows {
		if strings.TrimSpace(row.Timing) == "" {
			continue
		}
		idx.Rows++

		parsed, ok := schedule.Parse(row.Timing)
		if !ok {
			idx.Skipped++
			appLog.Debug("row yielded no schedule, skipped", "code", row.Code(), "timing", row.Timing)
			continue
		}

		key := NormalizeRoom(parsed.Room)
		for _, s := range parsed.Slots {
			idx.rooms[key] = append(idx.rooms[key], model.Occupancy{
				Day:        s.Day,
				Hour:       s.Hour,
				Code:       row.Code(),
				Title:      row.Title,
				Instructor: parsed.Instructor,
			})
		}
	}

	appLog.Info("room index built",
		"snapshot", idx.SnapshotID,
		"rows", idx.Rows,
		"skipped", idx.Skipped,
		"rooms", len(idx.rooms),
	)
	return idx
}

// RoomCount returns the number of distinct room buckets.
func (idx *Index) RoomCount() int {
	return len(idx.rooms)
}

// Lookup returns the full weekly occupancy for a room, in source-row order.
// The input is normalized like a room key; matching is exact only, so "LT"
// never returns records indexed under "LT4".
func (idx *Index) Lookup(roomInput string) ([]model.Occupancy, error) {
	key := NormalizeRoom(roomInput)
	if key == "" {
		return nil, ErrNoQuery
	}
	records, ok := idx.rooms[key]
	if !ok {
		return nil, ErrNotFound
	}
	return records, nil
}

// OccupiedAt reports whether the room is occupied at the given day and
// slot, returning the first matching record in bucket order. Out-of-range
// slots (e.g. derived from a wall clock outside teaching hours) resolve to
// "free", never to an error.
func (idx *Index) OccupiedAt(roomInput string, day model.Day, hour model.HourSlot) (model.Occupancy, bool, error) {
	records, err := idx.Lookup(roomInput)
	if err != nil {
		return model.Occupancy{}, false, err
	}
	if !hour.Valid() {
		return model.Occupancy{}, false, nil
	}
	for _, rec := range records {
		if rec.Day == day && rec.Hour == hour {
			return rec, true, nil
		}
	}
	return model.Occupancy{}, false, nil
}
