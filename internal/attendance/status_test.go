package attendance

import (
	"testing"
	"time"
)

func clock(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", s, err)
	}
	return v
}

func TestClassifyBoundaries(t *testing.T) {
	start := "08:00"
	cases := []struct {
		name      string
		login     string
		threshold int
		want      Status
	}{
		{"before start", "07:50", 30, StatusPresent},
		{"exactly at start", "08:00", 30, StatusPresent},
		{"within threshold", "08:20", 30, StatusLate},
		{"exactly at deadline", "08:30", 30, StatusLate},
		{"one minute past deadline", "08:31", 30, StatusAbsent},
		{"one second past deadline", "08:30:01", 30, StatusAbsent},
		{"well past deadline", "11:45", 30, StatusAbsent},
		{"zero threshold at start", "08:00", 0, StatusPresent},
		{"zero threshold one second late", "08:00:01", 0, StatusAbsent},
		{"midnight login", "00:00", 30, StatusPresent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(clock(t, tc.login), clock(t, start), tc.threshold)
			if got != tc.want {
				t.Fatalf("Classify(%s, %s, %d) = %s, want %s", tc.login, start, tc.threshold, got, tc.want)
			}
		})
	}
}

func TestClassifyIgnoresDate(t *testing.T) {
	login := time.Date(2026, 3, 9, 8, 15, 0, 0, time.UTC)
	start := time.Date(1999, 1, 1, 8, 0, 0, 0, time.UTC)
	if got := Classify(login, start, 30); got != StatusLate {
		t.Fatalf("got %s, want %s", got, StatusLate)
	}
}

func TestParseClock(t *testing.T) {
	if _, err := ParseClock("8 o'clock"); err == nil {
		t.Fatal("expected error for malformed time")
	}
	if _, err := ParseClock(""); err == nil {
		t.Fatal("expected error for empty time")
	}
	long := clock(t, "08:05:09")
	if long.Hour() != 8 || long.Minute() != 5 || long.Second() != 9 {
		t.Fatalf("unexpected parse result: %v", long)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPresent, StatusLate, StatusAbsent} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if Status("excused").Valid() {
		t.Fatal("unknown status should be invalid")
	}
}
