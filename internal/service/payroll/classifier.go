package payroll

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	halfDay = decimal.New(5, -1)
	fullDay = decimal.NewFromInt(1)
)

// Bucket is where one day lands.
type Bucket int

const (
	BucketAbsent Bucket = iota
	BucketPresent
	BucketLeave
	BucketLOP
)

// dayFacts is everything the rules look at for one employee-day.
type dayFacts struct {
	status    string
	hasRecord bool
	holiday   bool
	weekend   bool
	leaveKind leave.DayKind
}

// classificationRule contributes amount to bucket when match holds.
type classificationRule struct {
	name   string
	match  func(f dayFacts) bool
	bucket Bucket
	amount func(f dayFacts) decimal.Decimal
}

func constant(d decimal.Decimal) func(dayFacts) decimal.Decimal {
	return func(dayFacts) decimal.Decimal { return d }
}

// classificationRules is evaluated top-down; the first match wins.
var classificationRules = []classificationRule{
	{
		name:   "half_day_attendance",
		match:  func(f dayFacts) bool { return f.hasRecord && attendance.IsHalfDay(f.status) && !f.holiday },
		bucket: BucketPresent,
		amount: constant(halfDay),
	},
	{
		name:   "recorded_attendance",
		match:  func(f dayFacts) bool { return f.hasRecord && !f.holiday },
		bucket: BucketPresent,
		amount: constant(fullDay),
	},
	{
		name:   "holiday",
		match:  func(f dayFacts) bool { return f.holiday },
		bucket: BucketPresent,
		amount: constant(fullDay),
	},
	{
		name:   "weekly_off",
		match:  func(f dayFacts) bool { return !f.hasRecord && f.weekend },
		bucket: BucketPresent,
		amount: constant(fullDay),
	},
	{
		name:   "paid_leave",
		match:  func(f dayFacts) bool { return !f.hasRecord && f.leaveKind.IsPaid() },
		bucket: BucketLeave,
		amount: func(f dayFacts) decimal.Decimal {
			if f.leaveKind == leave.DayKindPaidHalf {
				return halfDay
			}
			return fullDay
		},
	},
	{
		name:   "unpaid_leave",
		match:  func(f dayFacts) bool { return !f.hasRecord && f.leaveKind == leave.DayKindUnpaid },
		bucket: BucketLOP,
		amount: constant(fullDay),
	},
}

// EmployeeDays is the classified month of one employee.
type EmployeeDays struct {
	EmployeeID string
	Present    decimal.Decimal
	Leave      decimal.Decimal
	LOP        decimal.Decimal
	Absent     decimal.Decimal

	// PresentOnWorkingDays excludes weekend and holiday presence.
	PresentOnWorkingDays decimal.Decimal
	TotalWorkingDays     decimal.Decimal
}

// hasRecord applies the attendance status policy to one raw status.
func hasRecord(status string, recorded bool, policy payroll.AttendanceStatusPolicy) bool {
	if !recorded || status == "" {
		return false
	}
	if policy == payroll.AttendanceStatusStrict {
		return attendance.IsPresence(status)
	}
	return true
}

// ClassifyEmployee runs every day of the calendar through classificationRules.
// Absent days are derived: working days not covered by presence, leave or LOP.
func ClassifyEmployee(employeeID string, cal Calendar, statuses DailyStatuses, leaves map[string]leave.DayKind, policy payroll.Policy) EmployeeDays {
	result := EmployeeDays{
		EmployeeID:           employeeID,
		Present:              decimal.Zero,
		Leave:                decimal.Zero,
		LOP:                  decimal.Zero,
		Absent:               decimal.Zero,
		PresentOnWorkingDays: decimal.Zero,
		TotalWorkingDays:     decimal.NewFromInt(int64(cal.WorkingDays())),
	}

	for _, d := range cal.Days {
		key := dateKey(d)
		status, recorded := statuses[key]
		facts := dayFacts{
			status:    status,
			hasRecord: hasRecord(status, recorded, policy.AttendanceStatus),
			holiday:   cal.IsHoliday(d),
			weekend:   cal.IsWeekend(d),
			leaveKind: leaves[key],
		}

		for _, rule := range classificationRules {
			if !rule.match(facts) {
				continue
			}
			amount := rule.amount(facts)
			switch rule.bucket {
			case BucketPresent:
				result.Present = result.Present.Add(amount)
				if cal.IsWorkingDay(d) {
					result.PresentOnWorkingDays = result.PresentOnWorkingDays.Add(amount)
				}
			case BucketLeave:
				result.Leave = result.Leave.Add(amount)
			case BucketLOP:
				result.LOP = result.LOP.Add(amount)
			}
			break
		}
	}

	covered := result.PresentOnWorkingDays.Add(result.Leave).Add(result.LOP)
	if absent := result.TotalWorkingDays.Sub(covered); absent.IsPositive() {
		result.Absent = absent
	}

	return result
}

// ClassifyAll classifies every employee of the aggregation. Employees are independent,
// so up to workers of them are classified concurrently; results keep the ascending
// employee id order.
func ClassifyAll(ctx context.Context, cal Calendar, byEmployee AttendanceByEmployee, leaves LeaveDays, policy payroll.Policy, workers int) ([]EmployeeDays, error) {
	ids := byEmployee.EmployeeIDs()
	results := make([]EmployeeDays, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ClassifyEmployee(id, cal, byEmployee[id], leaves[id], policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
