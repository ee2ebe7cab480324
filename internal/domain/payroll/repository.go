package payroll

import (
	"context"
	"time"
)

// Transactor runs a unit of work inside one database transaction.
// Repositories called with the ctx handed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// FreezeRepository persists the per-period freeze marker.
type FreezeRepository interface {
	// GetByPeriod returns ErrFreezeNotFound when the period was never finalized.
	GetByPeriod(ctx context.Context, year, month int) (AttendanceFreeze, error)

	// LockByPeriod creates the freeze row if missing and locks it until the
	// surrounding transaction ends. Concurrent callers for the same period serialize here.
	LockByPeriod(ctx context.Context, year, month int) (AttendanceFreeze, error)

	MarkFrozen(ctx context.Context, year, month int, frozenAt time.Time, frozenBy *string) error
	MarkUnfrozen(ctx context.Context, year, month int, unfrozenAt time.Time, unfrozenBy *string) error
}

// SnapshotRepository persists per-employee monthly snapshots.
type SnapshotRepository interface {
	// UpsertBatch writes all snapshots keyed by (employee_id, year, month) as one batch.
	UpsertBatch(ctx context.Context, snapshots []AttendanceSnapshot) (int, error)

	// DeleteStale removes snapshots of the period whose employee is not in keepEmployeeIDs.
	DeleteStale(ctx context.Context, year, month int, keepEmployeeIDs []string) (int64, error)

	CountByPeriod(ctx context.Context, year, month int) (int, error)
	ListByPeriod(ctx context.Context, filter SnapshotFilter) ([]AttendanceSnapshot, int64, error)
}
