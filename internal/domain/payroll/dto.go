package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	MinPeriodYear = 2000
	MaxPeriodYear = 2100
)

// ValidatePeriod checks a year/month pair and returns validator.ValidationErrors on failure.
func ValidatePeriod(year, month int) error {
	var errs validator.ValidationErrors
	errs.CheckRange("year", year, MinPeriodYear, MaxPeriodYear)
	errs.CheckRange("month", month, 1, 12)
	return errs.Err()
}

// ========== FREEZE DTOs ==========

type FinalizeRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (r *FinalizeRequest) Validate() error {
	return ValidatePeriod(r.Year, r.Month)
}

func (r *FinalizeRequest) Period() Period {
	return Period{Year: r.Year, Month: time.Month(r.Month)}
}

type FinalizeResponse struct {
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	EmployeeCount int    `json:"employee_count"`
	SnapshotCount int    `json:"snapshot_count"`
	FrozenAt      string `json:"frozen_at"`
}

type UnfreezeRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (r *UnfreezeRequest) Validate() error {
	return ValidatePeriod(r.Year, r.Month)
}

type FreezeStatusResponse struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	IsFrozen      bool    `json:"is_frozen"`
	FrozenAt      *string `json:"frozen_at,omitempty"`
	FrozenBy      *string `json:"frozen_by,omitempty"`
	UnfrozenAt    *string `json:"unfrozen_at,omitempty"`
	EmployeeCount int     `json:"employee_count"`
	SnapshotCount int     `json:"snapshot_count"`
}

// ========== SNAPSHOT DTOs ==========

type SnapshotResponse struct {
	EmployeeID       string          `json:"employee_id"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	PresentDays      decimal.Decimal `json:"present_days"`
	AbsentDays       decimal.Decimal `json:"absent_days"`
	LeaveDays        decimal.Decimal `json:"leave_days"`
	LOPDays          decimal.Decimal `json:"lop_days"`
	TotalWorkingDays decimal.Decimal `json:"total_working_days"`
	UpdatedAt        *string         `json:"updated_at,omitempty"`
}

type SnapshotFilter struct {
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *SnapshotFilter) Validate() error {
	if err := ValidatePeriod(f.Year, f.Month); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	if f.Limit > 100 {
		errs.Add("limit", "must not exceed 100")
	}
	if f.EmployeeID != nil && validator.IsEmpty(*f.EmployeeID) {
		errs.Add("employee_id", "must not be blank")
	}
	return errs.Err()
}

// Normalize applies default pagination values.
func (f *SnapshotFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
}

func (f SnapshotFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ListSnapshotResponse struct {
	Data       []SnapshotResponse `json:"data"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}

type PreviewResponse struct {
	Year             int                `json:"year"`
	Month            int                `json:"month"`
	IsFrozen         bool               `json:"is_frozen"`
	TotalDays        int                `json:"total_days"`
	TotalWorkingDays decimal.Decimal    `json:"total_working_days"`
	HolidayDays      int                `json:"holiday_days"`
	WeekendDays      int                `json:"weekend_days"`
	Snapshots        []SnapshotResponse `json:"snapshots"`
}

// RegisterResponse is the full set of frozen snapshots for one period.
type RegisterResponse struct {
	Year      int                `json:"year"`
	Month     int                `json:"month"`
	FrozenAt  *string            `json:"frozen_at,omitempty"`
	FrozenBy  *string            `json:"frozen_by,omitempty"`
	Snapshots []SnapshotResponse `json:"snapshots"`
}
