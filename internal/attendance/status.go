package attendance

import (
	"fmt"
	"time"
)

// Status is the derived attendance status for a daily sign-in.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	}
	return false
}

// Classify maps a login time to a status given the class start time and the
// late threshold in minutes. Only the time-of-day of both arguments is
// considered. Boundaries are inclusive toward the stricter classification:
// a login exactly at class start is present, a login exactly at
// start+threshold is late. With a zero threshold any login after start is
// immediately absent.
func Classify(login, classStart time.Time, lateThresholdMinutes int) Status {
	l := secondOfDay(login)
	start := secondOfDay(classStart)
	if l <= start {
		return StatusPresent
	}
	deadline := start + lateThresholdMinutes*60
	if l <= deadline {
		return StatusLate
	}
	return StatusAbsent
}

func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// ParseClock parses a time-of-day in HH:MM or HH:MM:SS form.
func ParseClock(s string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time of day %q", s)
}
