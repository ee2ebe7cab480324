package payroll

import "context"

// FreezeService reconciles attendance into payroll snapshots and guards the period freeze.
type FreezeService interface {
	// Finalize reconciles the period and freezes it in one transaction.
	Finalize(ctx context.Context, req FinalizeRequest) (FinalizeResponse, error)

	// Unfreeze reopens a frozen period so it can be finalized again.
	Unfreeze(ctx context.Context, req UnfreezeRequest) error

	// Status is a read-only projection of the freeze marker and snapshot counts.
	Status(ctx context.Context, year, month int) (FreezeStatusResponse, error)

	// Preview runs the reconciliation without persisting anything.
	Preview(ctx context.Context, year, month int) (PreviewResponse, error)

	ListSnapshots(ctx context.Context, filter SnapshotFilter) (ListSnapshotResponse, error)

	// Register returns every snapshot of a frozen period. Open periods yield ErrNotFrozen.
	Register(ctx context.Context, year, month int) (RegisterResponse, error)
}
