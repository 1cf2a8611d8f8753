package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	appLog "classfree/internal/log"
	"classfree/internal/model"
)

// Column names as written by the timetable extractor.
const (
	colComCode = "COMCODE"
	colCourse  = "COURSE_NO"
	colTitle   = "TITLE"
	colTiming  = "INSTRUCTOR_TIMING_ROOM"
)

// Decode turns a timetable CSV body into course rows. The first record is
// the header; columns are resolved by name so extra columns (L/P/U, exam
// details) are ignored. Individual bad records are skipped, not fatal.
func Decode(body []byte) ([]model.CourseRow, error) {
	if len(body) == 0 {
		return nil, errors.New("empty CSV body")
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1 // ragged rows are expected in legacy exports

	header, err := r.Read()
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols[colTiming]; !ok {
		return nil, errors.New("not a timetable CSV: missing " + colTiming + " column")
	}

	var rows []model.CourseRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed record (stray quote etc). Skip it and go on.
			appLog.Warn("roster decode: bad CSV record skipped", "err", err)
			continue
		}

		row := model.CourseRow{
			ComCode:  field(rec, cols, colComCode),
			CourseNo: field(rec, cols, colCourse),
			Title:    field(rec, cols, colTitle),
			Timing:   field(rec, cols, colTiming),
		}
		if row.ComCode == "" && row.CourseNo == "" && row.Timing == "" {
			continue
		}
		rows = append(rows, row)
	}

	appLog.Info("roster decode completed", "rows", len(rows))
	return rows, nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
