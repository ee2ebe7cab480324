package leave

import (
	"strings"
	"time"
)

// Approval values stored in hr_approval / manager_approval.
const (
	ApprovalApproved = "Approved"
	ApprovalPending  = "Pending"
	ApprovalRejected = "Rejected"
)

// Leave types of the fixed vocabulary.
const (
	TypePaidLeave    = "Paid Leave"
	TypeWorkFromHome = "Work From Home"
	TypeSickFullDay  = "Sick Leave(FullDay)"
	TypeSickHalfDay  = "Sick Leave(HalfDay)"
	TypeAbsentUnpaid = "Absent(Unpaid)"
	TypeUnpaidLeave  = "Unpaid Leave"
	TypeCasualLeave  = "Casual Leave"
	TypeEarnedLeave  = "Earned Leave"
	TypeCompensatory = "Compensatory Off"
	TypeMaternity    = "Maternity Leave"
	TypeBereavement  = "Bereavement Leave"
)

// DayKind is how one covered leave day counts toward the snapshot.
type DayKind int

const (
	DayKindNone DayKind = iota
	DayKindUnpaid
	DayKindPaidHalf
	DayKindPaidFull
)

func (k DayKind) String() string {
	switch k {
	case DayKindUnpaid:
		return "unpaid"
	case DayKindPaidHalf:
		return "paid_half"
	case DayKindPaidFull:
		return "paid_full"
	}
	return "none"
}

// IsPaid reports whether the day counts toward leave_days rather than lop_days.
func (k DayKind) IsPaid() bool {
	return k == DayKindPaidFull || k == DayKindPaidHalf
}

var typeKinds = map[string]DayKind{
	normalizeType(TypePaidLeave):    DayKindPaidFull,
	normalizeType(TypeWorkFromHome): DayKindPaidFull,
	normalizeType(TypeSickFullDay):  DayKindPaidFull,
	normalizeType("Sick Leave"):     DayKindPaidFull,
	normalizeType(TypeCasualLeave):  DayKindPaidFull,
	normalizeType(TypeEarnedLeave):  DayKindPaidFull,
	normalizeType(TypeCompensatory): DayKindPaidFull,
	normalizeType(TypeMaternity):    DayKindPaidFull,
	normalizeType(TypeBereavement):  DayKindPaidFull,
	normalizeType(TypeSickHalfDay):  DayKindPaidHalf,
	normalizeType(TypeAbsentUnpaid): DayKindUnpaid,
	normalizeType(TypeUnpaidLeave):  DayKindUnpaid,
	normalizeType("LOP"):            DayKindUnpaid,
}

// ClassifyType maps a leave type to its DayKind. Spacing and case are ignored,
// so "Absent (Unpaid)" and "Absent(Unpaid)" are the same type.
func ClassifyType(leaveType string) (DayKind, bool) {
	kind, ok := typeKinds[normalizeType(leaveType)]
	return kind, ok
}

func normalizeType(t string) string {
	return strings.ToLower(strings.Join(strings.Fields(t), ""))
}

// LeaveRequest entity
type LeaveRequest struct {
	ID              string
	EmployeeID      string
	LeaveType       string
	StartDate       time.Time
	EndDate         time.Time
	HRApproval      string
	ManagerApproval string
}

// IsApproved reports dual approval: both HR and the manager signed off.
func (r LeaveRequest) IsApproved() bool {
	return strings.EqualFold(strings.TrimSpace(r.HRApproval), ApprovalApproved) &&
		strings.EqualFold(strings.TrimSpace(r.ManagerApproval), ApprovalApproved)
}
