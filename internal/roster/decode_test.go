package roster

import "testing"

const sampleCSV = `COMCODE,COURSE_NO,TITLE,L,P,U,STAT,SEC,INSTRUCTOR_TIMING_ROOM,EXAM_DETAILS
022863,BIO F101,GENERAL BIOLOGY,3,0,3,L,1,Indrani Talukdar M W 2 LT4,01/03/26
022901,,INTRO CHEMISTRY,3,0,3,L,1,T TH 2 F 10 C302,
022915,PHY F111,MECHANICS,,,,,,"Someone, Else TBA",
`

func TestDecode_HeaderKeyedColumns(t *testing.T) {
	rows, err := Decode([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Decode() returned %d rows, want 3", len(rows))
	}

	if rows[0].CourseNo != "BIO F101" {
		t.Errorf("rows[0].CourseNo = %q", rows[0].CourseNo)
	}
	if rows[0].Timing != "Indrani Talukdar M W 2 LT4" {
		t.Errorf("rows[0].Timing = %q", rows[0].Timing)
	}

	// Code() falls back to the comcode when COURSE_NO is blank.
	if got := rows[1].Code(); got != "022901" {
		t.Errorf("rows[1].Code() = %q, want %q", got, "022901")
	}

	// Quoted fields with embedded commas survive.
	if rows[2].Timing != "Someone, Else TBA" {
		t.Errorf("rows[2].Timing = %q", rows[2].Timing)
	}
}

func TestDecode_MissingTimingColumn(t *testing.T) {
	_, err := Decode([]byte("A,B,C\n1,2,3\n"))
	if err == nil {
		t.Error("Decode() expected error for CSV without timing column")
	}
}

func TestDecode_EmptyBody(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Error("Decode() expected error for empty body")
	}
}

func TestDecode_RaggedRowsTolerated(t *testing.T) {
	csv := "COMCODE,COURSE_NO,TITLE,INSTRUCTOR_TIMING_ROOM\n" +
		"1,X F101,SHORT\n" + // row shorter than header
		"2,Y F102,FULL,M 2 LT4\n"

	rows, err := Decode([]byte(csv))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Decode() returned %d rows, want 2", len(rows))
	}
	if rows[0].Timing != "" {
		t.Errorf("short row Timing = %q, want empty", rows[0].Timing)
	}
}
