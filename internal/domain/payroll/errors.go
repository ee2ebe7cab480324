package payroll

import "errors"

var (
	ErrAlreadyFrozen    = errors.New("attendance period is already frozen")
	ErrNotFrozen        = errors.New("attendance period is not frozen")
	ErrNoAttendanceData = errors.New("no attendance records found for period")
	ErrFreezeNotFound   = errors.New("attendance freeze not found")
	ErrPersistence      = errors.New("failed to persist attendance snapshots")
	ErrInvalidPolicy    = errors.New("invalid reconciliation policy")
)
