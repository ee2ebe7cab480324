package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedLeave(id, employeeID, leaveType string, start, end time.Time) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:              id,
		EmployeeID:      employeeID,
		LeaveType:       leaveType,
		StartDate:       start,
		EndDate:         end,
		HRApproval:      leave.ApprovalApproved,
		ManagerApproval: leave.ApprovalApproved,
	}
}

func juneCalendar(t *testing.T) Calendar {
	t.Helper()
	cal, err := ResolveCalendar(2025, 6, nil)
	require.NoError(t, err)
	return cal
}

func TestReconcileLeaves_SkipsWeekends(t *testing.T) {
	cal := juneCalendar(t)
	// Friday 6 June to Monday 9 June
	requests := []leave.LeaveRequest{
		approvedLeave("l1", "emp-1", leave.TypePaidLeave, date(2025, 6, 6), date(2025, 6, 9)),
	}

	result := ReconcileLeaves(requests, cal, payroll.LeaveOverlapFirst)

	assert.Empty(t, result.Skipped)
	assert.Equal(t, map[string]leave.DayKind{
		"2025-06-06": leave.DayKindPaidFull,
		"2025-06-09": leave.DayKindPaidFull,
	}, result.Days["emp-1"])
}

func TestReconcileLeaves_RequiresDualApproval(t *testing.T) {
	cal := juneCalendar(t)
	pending := approvedLeave("l1", "emp-1", leave.TypePaidLeave, date(2025, 6, 2), date(2025, 6, 2))
	pending.ManagerApproval = leave.ApprovalPending
	rejected := approvedLeave("l2", "emp-1", leave.TypePaidLeave, date(2025, 6, 3), date(2025, 6, 3))
	rejected.HRApproval = leave.ApprovalRejected
	lowercase := approvedLeave("l3", "emp-1", leave.TypePaidLeave, date(2025, 6, 4), date(2025, 6, 4))
	lowercase.HRApproval = "approved"

	result := ReconcileLeaves([]leave.LeaveRequest{pending, rejected, lowercase}, cal, payroll.LeaveOverlapFirst)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, SkipNotApproved, result.Skipped[0].Reason)
	assert.Equal(t, SkipNotApproved, result.Skipped[1].Reason)
	assert.Equal(t, leave.DayKindNone, result.Days.Kind("emp-1", "2025-06-02"))
	assert.Equal(t, leave.DayKindPaidFull, result.Days.Kind("emp-1", "2025-06-04"))
}

func TestReconcileLeaves_UnknownTypeSkipped(t *testing.T) {
	cal := juneCalendar(t)
	requests := []leave.LeaveRequest{
		approvedLeave("l1", "emp-1", "Sabbatical", date(2025, 6, 2), date(2025, 6, 6)),
	}

	result := ReconcileLeaves(requests, cal, payroll.LeaveOverlapFirst)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipUnknownType, result.Skipped[0].Reason)
	assert.Equal(t, "Sabbatical", result.Skipped[0].LeaveType)
	assert.ErrorIs(t, result.Skipped[0].Err, leave.ErrUnknownLeaveType)
	assert.Empty(t, result.Days)
}

func TestReconcileLeaves_InvertedRangeSkipped(t *testing.T) {
	cal := juneCalendar(t)
	requests := []leave.LeaveRequest{
		approvedLeave("l1", "emp-1", leave.TypePaidLeave, date(2025, 6, 10), date(2025, 6, 4)),
		approvedLeave("l2", "emp-1", leave.TypePaidLeave, date(2025, 7, 1), date(2025, 7, 2)),
	}

	result := ReconcileLeaves(requests, cal, payroll.LeaveOverlapFirst)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, SkipInvalidRange, result.Skipped[0].Reason)
	assert.ErrorIs(t, result.Skipped[0].Err, leave.ErrInvalidLeaveRange)
	assert.Equal(t, SkipOutOfPeriod, result.Skipped[1].Reason)
	assert.NoError(t, result.Skipped[1].Err)
	assert.Empty(t, result.Days)
}

func TestReconcileLeaves_ClipsToPeriod(t *testing.T) {
	cal := juneCalendar(t)
	requests := []leave.LeaveRequest{
		approvedLeave("l1", "emp-1", leave.TypeAbsentUnpaid, date(2025, 5, 28), date(2025, 6, 3)),
		approvedLeave("l2", "emp-1", leave.TypeSickHalfDay, date(2025, 6, 30), date(2025, 7, 4)),
		approvedLeave("l3", "emp-1", leave.TypePaidLeave, date(2025, 7, 1), date(2025, 7, 4)),
	}

	result := ReconcileLeaves(requests, cal, payroll.LeaveOverlapFirst)

	assert.Equal(t, map[string]leave.DayKind{
		"2025-06-02": leave.DayKindUnpaid,
		"2025-06-03": leave.DayKindUnpaid,
		"2025-06-30": leave.DayKindPaidHalf,
	}, result.Days["emp-1"])
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipOutOfPeriod, result.Skipped[0].Reason)
}

func TestReconcileLeaves_TypeSpellingVariants(t *testing.T) {
	cal := juneCalendar(t)
	requests := []leave.LeaveRequest{
		approvedLeave("l1", "emp-1", "Absent (Unpaid)", date(2025, 6, 2), date(2025, 6, 2)),
		approvedLeave("l2", "emp-1", "sick leave (halfday)", date(2025, 6, 3), date(2025, 6, 3)),
		approvedLeave("l3", "emp-1", " work from home ", date(2025, 6, 4), date(2025, 6, 4)),
	}

	result := ReconcileLeaves(requests, cal, payroll.LeaveOverlapFirst)

	assert.Empty(t, result.Skipped)
	assert.Equal(t, leave.DayKindUnpaid, result.Days.Kind("emp-1", "2025-06-02"))
	assert.Equal(t, leave.DayKindPaidHalf, result.Days.Kind("emp-1", "2025-06-03"))
	assert.Equal(t, leave.DayKindPaidFull, result.Days.Kind("emp-1", "2025-06-04"))
}

func TestReconcileLeaves_OverlapPolicy(t *testing.T) {
	cal := juneCalendar(t)
	// Supplied out of order: the reconciler orders by start date then id.
	requests := []leave.LeaveRequest{
		approvedLeave("l-b", "emp-1", leave.TypePaidLeave, date(2025, 6, 10), date(2025, 6, 10)),
		approvedLeave("l-c", "emp-1", leave.TypeSickHalfDay, date(2025, 6, 10), date(2025, 6, 11)),
		approvedLeave("l-a", "emp-1", leave.TypeUnpaidLeave, date(2025, 6, 9), date(2025, 6, 10)),
	}

	tests := []struct {
		name     string
		policy   payroll.LeaveOverlapPolicy
		expected map[string]leave.DayKind
	}{
		{
			name:   "first row wins",
			policy: payroll.LeaveOverlapFirst,
			expected: map[string]leave.DayKind{
				"2025-06-09": leave.DayKindUnpaid,
				"2025-06-10": leave.DayKindUnpaid,
				"2025-06-11": leave.DayKindPaidHalf,
			},
		},
		{
			name:   "most favourable wins",
			policy: payroll.LeaveOverlapFavourable,
			expected: map[string]leave.DayKind{
				"2025-06-09": leave.DayKindUnpaid,
				"2025-06-10": leave.DayKindPaidFull,
				"2025-06-11": leave.DayKindPaidHalf,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ReconcileLeaves(requests, cal, tt.policy)
			assert.Equal(t, tt.expected, result.Days["emp-1"])
		})
	}
}

func TestReconcileLeaves_WeekendOnlyLeaveLeavesNoDays(t *testing.T) {
	cal := juneCalendar(t)
	requests := []leave.LeaveRequest{
		approvedLeave("l1", "emp-1", leave.TypePaidLeave, date(2025, 6, 7), date(2025, 6, 8)),
	}

	result := ReconcileLeaves(requests, cal, payroll.LeaveOverlapFirst)

	assert.Empty(t, result.Days)
	assert.Empty(t, result.Skipped)
}
