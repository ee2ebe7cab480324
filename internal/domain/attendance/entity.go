package attendance

import (
	"strings"
	"time"
)

// Status is the raw status string written by the time-tracking sync.
// The vocabulary is open; these are the values the reconciliation knows about.
type Status string

const (
	StatusPresent Status = "Present"
	StatusHalfDay Status = "Half-day"
	StatusAbsent  Status = "Absent"
)

// Attendance is one employee-day row. At most one row exists per employee per date.
type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     string
	ClockIn    *time.Time
	ClockOut   *time.Time
}

// NormalizedStatus returns the trimmed status.
func (a Attendance) NormalizedStatus() string {
	return strings.TrimSpace(a.Status)
}

// IsHalfDay matches "Half-day" case-insensitively, also accepting "Half day" and "HalfDay".
func IsHalfDay(status string) bool {
	return normalizeStatus(status) == "halfday"
}

// IsPresence reports whether the status is a known presence status.
func IsPresence(status string) bool {
	switch normalizeStatus(status) {
	case "present", "halfday", "late", "ontime", "workfromhome", "wfh":
		return true
	}
	return false
}

func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
	return s
}
