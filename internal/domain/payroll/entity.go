package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period identifies one payroll month.
type Period struct {
	Year  int
	Month time.Month
}

// Start returns the first day of the period at UTC midnight.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first day of the following month (exclusive bound).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

func (p Period) String() string {
	return p.Start().Format("2006-01")
}

// FreezeState enum
type FreezeState string

const (
	FreezeStateOpen   FreezeState = "open"
	FreezeStateFrozen FreezeState = "frozen"
)

// AttendanceFreeze - per-period freeze marker, at most one row per (year, month)
type AttendanceFreeze struct {
	Year       int
	Month      int
	IsFrozen   bool
	FrozenAt   *time.Time
	FrozenBy   *string
	UnfrozenAt *time.Time
	UnfrozenBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (f AttendanceFreeze) State() FreezeState {
	if f.IsFrozen {
		return FreezeStateFrozen
	}
	return FreezeStateOpen
}

// AttendanceSnapshot - frozen per-employee monthly day accounting consumed by payroll
type AttendanceSnapshot struct {
	ID               string
	EmployeeID       string
	Year             int
	Month            int
	PresentDays      decimal.Decimal
	AbsentDays       decimal.Decimal
	LeaveDays        decimal.Decimal
	LOPDays          decimal.Decimal
	TotalWorkingDays decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
