package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository is the read side of the approved-leave ledger.
type LeaveRequestRepository interface {
	// ListApprovedOverlapping returns dual-approved requests overlapping [from, to),
	// ordered by start_date then id.
	ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]LeaveRequest, error)
}
