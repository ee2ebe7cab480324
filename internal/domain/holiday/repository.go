package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// ListOverlapping returns holidays with at least one day in [from, to), ordered by event_date.
	ListOverlapping(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
