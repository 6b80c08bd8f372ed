package repository

import (
	"testing"
	"time"
)

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	start, end, err := DayRange("2025-03-01", loc)
	if err != nil {
		t.Fatalf("DayRange error: %v", err)
	}
	if end-start != 24*3600*1000-1 {
		t.Fatalf("range=%d ms, want one day", end-start)
	}
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, loc).UnixMilli()
	if start != want {
		t.Fatalf("start=%d, want %d", start, want)
	}
	if _, _, err := DayRange("2025/03/01", loc); err == nil {
		t.Fatalf("bad date should fail")
	}
}

func TestCalendarDaysBetween(t *testing.T) {
	cases := []struct {
		from, to string
		want     int
	}{
		{"2025-03-01", "2025-03-02", 1},
		{"2025-03-01", "2025-03-01", 0},
		{"2025-02-28", "2025-03-01", 1},
		{"2024-12-31", "2025-01-02", 2},
		{"2025-03-10", "2025-03-09", -1},
	}
	for _, c := range cases {
		got, err := CalendarDaysBetween(c.from, c.to)
		if err != nil {
			t.Fatalf("%s->%s error: %v", c.from, c.to, err)
		}
		if got != c.want {
			t.Errorf("%s->%s = %d, want %d", c.from, c.to, got, c.want)
		}
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("2025-03-01") || ValidDate("2025-3-1") || ValidDate("") {
		t.Fatalf("ValidDate mismatch")
	}
}
