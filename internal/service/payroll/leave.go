package payroll

import (
	"sort"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
)

// LeaveDays maps employee id to ISO date to the leave classification of that day.
type LeaveDays map[string]map[string]leave.DayKind

// Kind returns the classification of one employee-day, DayKindNone when uncovered.
func (l LeaveDays) Kind(employeeID, date string) leave.DayKind {
	return l[employeeID][date]
}

type SkipReason string

const (
	SkipNotApproved  SkipReason = "not_approved"
	SkipUnknownType  SkipReason = "unknown_leave_type"
	SkipOutOfPeriod  SkipReason = "out_of_period"
	SkipInvalidRange SkipReason = "invalid_range"
)

// SkippedLeave records a ledger row left out of the run. Err is set only when the
// row itself is malformed.
type SkippedLeave struct {
	LeaveID    string
	EmployeeID string
	LeaveType  string
	Reason     SkipReason
	Err        error
}

type LeaveReconciliation struct {
	Days    LeaveDays
	Skipped []SkippedLeave
}

// ReconcileLeaves expands every dual-approved leave into working-week days inside
// [periodStart, periodEnd). Saturdays and Sundays are never leave days. When two
// leaves cover the same day the overlap policy decides which one counts.
func ReconcileLeaves(requests []leave.LeaveRequest, cal Calendar, policy payroll.LeaveOverlapPolicy) LeaveReconciliation {
	ordered := make([]leave.LeaveRequest, len(requests))
	copy(ordered, requests)
	sort.SliceStable(ordered, func(i, j int) bool {
		si, sj := truncateDate(ordered[i].StartDate), truncateDate(ordered[j].StartDate)
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return ordered[i].ID < ordered[j].ID
	})

	result := LeaveReconciliation{Days: make(LeaveDays)}
	periodStart, periodEnd := cal.Start(), cal.End()

	for _, req := range ordered {
		if !req.IsApproved() {
			result.Skipped = append(result.Skipped, skipped(req, SkipNotApproved))
			continue
		}
		kind, ok := leave.ClassifyType(req.LeaveType)
		if !ok {
			sk := skipped(req, SkipUnknownType)
			sk.Err = leave.ErrUnknownLeaveType
			result.Skipped = append(result.Skipped, sk)
			continue
		}
		if truncateDate(req.EndDate).Before(truncateDate(req.StartDate)) {
			sk := skipped(req, SkipInvalidRange)
			sk.Err = leave.ErrInvalidLeaveRange
			result.Skipped = append(result.Skipped, sk)
			continue
		}

		first := truncateDate(req.StartDate)
		last := truncateDate(req.EndDate)
		if first.Before(periodStart) {
			first = periodStart
		}
		if !last.Before(periodEnd) {
			last = periodEnd.AddDate(0, 0, -1)
		}
		if last.Before(first) {
			result.Skipped = append(result.Skipped, skipped(req, SkipOutOfPeriod))
			continue
		}

		days, exists := result.Days[req.EmployeeID]
		if !exists {
			days = make(map[string]leave.DayKind)
			result.Days[req.EmployeeID] = days
		}
		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			if isWeekend(d) {
				continue
			}
			key := dateKey(d)
			current, covered := days[key]
			if !covered || keepIncoming(policy, current, kind) {
				days[key] = kind
			}
		}
		if len(days) == 0 {
			delete(result.Days, req.EmployeeID)
		}
	}

	return result
}

func keepIncoming(policy payroll.LeaveOverlapPolicy, current, incoming leave.DayKind) bool {
	if policy == payroll.LeaveOverlapFavourable {
		return incoming > current
	}
	return false
}

func skipped(req leave.LeaveRequest, reason SkipReason) SkippedLeave {
	return SkippedLeave{
		LeaveID:    req.ID,
		EmployeeID: req.EmployeeID,
		LeaveType:  req.LeaveType,
		Reason:     reason,
	}
}
