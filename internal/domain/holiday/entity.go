package holiday

import "time"

// Holiday is an organization-wide non-working day or range of days.
type Holiday struct {
	ID        string
	Name      string
	EventDate time.Time
	EventEnd  *time.Time
}

// LastDay returns the inclusive end of the holiday. A missing end, or an end
// before the start, means a single-day holiday.
func (h Holiday) LastDay() time.Time {
	if h.EventEnd == nil || h.EventEnd.Before(h.EventDate) {
		return h.EventDate
	}
	return *h.EventEnd
}
