package payroll

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
)

const dateLayout = "2006-01-02"

func dateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// truncateDate drops the clock part and pins the date to UTC.
func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Calendar is the resolved month: every date in order plus the holiday set.
type Calendar struct {
	Period   payroll.Period
	Days     []time.Time
	holidays map[string]struct{}
}

// ResolveCalendar lists the dates of the month and expands each holiday to every
// day it spans, clipped to the month.
func ResolveCalendar(year, month int, holidays []holiday.Holiday) (Calendar, error) {
	if err := payroll.ValidatePeriod(year, month); err != nil {
		return Calendar{}, err
	}

	period := payroll.Period{Year: year, Month: time.Month(month)}
	start, end := period.Start(), period.End()

	cal := Calendar{
		Period:   period,
		Days:     make([]time.Time, 0, 31),
		holidays: make(map[string]struct{}),
	}
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		cal.Days = append(cal.Days, d)
	}

	for _, h := range holidays {
		first := truncateDate(h.EventDate)
		last := truncateDate(h.LastDay())
		if first.Before(start) {
			first = start
		}
		for d := first; !d.After(last) && d.Before(end); d = d.AddDate(0, 0, 1) {
			cal.holidays[dateKey(d)] = struct{}{}
		}
	}

	return cal, nil
}

func (c Calendar) TotalDays() int {
	return len(c.Days)
}

func (c Calendar) Start() time.Time {
	return c.Period.Start()
}

func (c Calendar) End() time.Time {
	return c.Period.End()
}

// Contains reports whether d falls inside the month.
func (c Calendar) Contains(d time.Time) bool {
	d = truncateDate(d)
	return !d.Before(c.Start()) && d.Before(c.End())
}

func (c Calendar) IsHoliday(d time.Time) bool {
	_, ok := c.holidays[dateKey(truncateDate(d))]
	return ok
}

func (c Calendar) IsWeekend(d time.Time) bool {
	return isWeekend(d)
}

// IsWorkingDay reports a day that is neither a weekend nor a holiday.
func (c Calendar) IsWorkingDay(d time.Time) bool {
	return !c.IsWeekend(d) && !c.IsHoliday(d)
}

func (c Calendar) WorkingDays() int {
	n := 0
	for _, d := range c.Days {
		if c.IsWorkingDay(d) {
			n++
		}
	}
	return n
}

func (c Calendar) WeekendDays() int {
	n := 0
	for _, d := range c.Days {
		if c.IsWeekend(d) {
			n++
		}
	}
	return n
}

// HolidayDays counts holiday dates in the month, including those on weekends.
func (c Calendar) HolidayDays() int {
	return len(c.holidays)
}

// HolidayDates returns the holiday set as sorted ISO dates.
func (c Calendar) HolidayDates() []string {
	dates := make([]string, 0, len(c.holidays))
	for d := range c.holidays {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
