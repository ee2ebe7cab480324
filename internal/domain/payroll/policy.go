package payroll

import "fmt"

// LeaveOverlapPolicy decides which approved leave wins when two rows cover the same day.
type LeaveOverlapPolicy string

const (
	// LeaveOverlapFirst keeps the first row found (ordered by start date, then id).
	LeaveOverlapFirst LeaveOverlapPolicy = "first"
	// LeaveOverlapFavourable keeps the classification most favourable to the employee:
	// paid full day, then paid half day, then unpaid.
	LeaveOverlapFavourable LeaveOverlapPolicy = "favourable"
)

// AttendanceStatusPolicy decides how explicit attendance statuses other than
// "Present" and "Half-day" are treated.
type AttendanceStatusPolicy string

const (
	// AttendanceStatusAny treats any non-blank status as presence.
	AttendanceStatusAny AttendanceStatusPolicy = "any"
	// AttendanceStatusStrict only counts known presence statuses; "Absent" and
	// unrecognised statuses behave as if no row had been recorded.
	AttendanceStatusStrict AttendanceStatusPolicy = "strict"
)

// Policy bundles the reconciliation rules that are configurable per deployment.
type Policy struct {
	LeaveOverlap     LeaveOverlapPolicy
	AttendanceStatus AttendanceStatusPolicy
}

func DefaultPolicy() Policy {
	return Policy{
		LeaveOverlap:     LeaveOverlapFirst,
		AttendanceStatus: AttendanceStatusAny,
	}
}

func (p Policy) Validate() error {
	switch p.LeaveOverlap {
	case LeaveOverlapFirst, LeaveOverlapFavourable:
	default:
		return fmt.Errorf("%w: leave overlap %q", ErrInvalidPolicy, p.LeaveOverlap)
	}
	switch p.AttendanceStatus {
	case AttendanceStatusAny, AttendanceStatusStrict:
	default:
		return fmt.Errorf("%w: attendance status %q", ErrInvalidPolicy, p.AttendanceStatus)
	}
	return nil
}
