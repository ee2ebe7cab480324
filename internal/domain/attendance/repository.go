package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the read side of the time-tracking sync.
type AttendanceRepository interface {
	// ListByPeriod returns every row dated in [from, to), ordered by employee_id then date.
	ListByPeriod(ctx context.Context, from, to time.Time) ([]Attendance, error)

	// CountEmployeesByPeriod returns the number of distinct employees with rows in [from, to).
	CountEmployeesByPeriod(ctx context.Context, from, to time.Time) (int, error)
}
