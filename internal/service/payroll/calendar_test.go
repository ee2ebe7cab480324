package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func TestResolveCalendar_NoHolidays(t *testing.T) {
	cal, err := ResolveCalendar(2025, 6, nil)
	require.NoError(t, err)

	assert.Equal(t, 30, cal.TotalDays())
	assert.Equal(t, 9, cal.WeekendDays())
	assert.Equal(t, 21, cal.WorkingDays())
	assert.Equal(t, 0, cal.HolidayDays())
	assert.Equal(t, date(2025, 6, 1), cal.Days[0])
	assert.Equal(t, date(2025, 6, 30), cal.Days[len(cal.Days)-1])
}

func TestResolveCalendar_LeapFebruary(t *testing.T) {
	cal, err := ResolveCalendar(2024, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, 29, cal.TotalDays())
	assert.Equal(t, 21, cal.WorkingDays())
}

func TestResolveCalendar_HolidayOnWeekendNotSubtractedTwice(t *testing.T) {
	// Arrange: Saturday 7 June and Monday 2 June
	holidays := []holiday.Holiday{
		{ID: "h1", Name: "Weekend Holiday", EventDate: date(2025, 6, 7)},
		{ID: "h2", Name: "Weekday Holiday", EventDate: date(2025, 6, 2)},
	}

	// Act
	cal, err := ResolveCalendar(2025, 6, holidays)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, cal.HolidayDays())
	assert.Equal(t, 20, cal.WorkingDays())
	assert.True(t, cal.IsHoliday(date(2025, 6, 7)))
	assert.True(t, cal.IsWeekend(date(2025, 6, 7)))
	assert.False(t, cal.IsWorkingDay(date(2025, 6, 2)))
}

func TestResolveCalendar_MultiDayHolidayClippedToMonth(t *testing.T) {
	holidays := []holiday.Holiday{
		{ID: "h1", Name: "Long Break", EventDate: date(2025, 5, 30), EventEnd: datePtr(2025, 6, 3)},
		{ID: "h2", Name: "Year End", EventDate: date(2025, 6, 30), EventEnd: datePtr(2025, 7, 2)},
	}

	cal, err := ResolveCalendar(2025, 6, holidays)
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-30"}, cal.HolidayDates())
	// 21 working days minus 2, 3 and 30 June; 1 June is a Sunday.
	assert.Equal(t, 18, cal.WorkingDays())
}

func TestResolveCalendar_EndBeforeStartIsSingleDay(t *testing.T) {
	holidays := []holiday.Holiday{
		{ID: "h1", Name: "Typo", EventDate: date(2025, 6, 10), EventEnd: datePtr(2025, 6, 5)},
	}

	cal, err := ResolveCalendar(2025, 6, holidays)
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-06-10"}, cal.HolidayDates())
}

func TestResolveCalendar_HolidayWithClockPart(t *testing.T) {
	holidays := []holiday.Holiday{
		{ID: "h1", Name: "Afternoon", EventDate: time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)},
	}

	cal, err := ResolveCalendar(2025, 6, holidays)
	require.NoError(t, err)

	assert.True(t, cal.IsHoliday(date(2025, 6, 10)))
}

func TestResolveCalendar_InvalidMonth(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		_, err := ResolveCalendar(2025, month, nil)
		require.Error(t, err)

		var validationErrs validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Equal(t, "month", validationErrs[0].Field)
	}
}

func TestCalendar_Contains(t *testing.T) {
	cal, err := ResolveCalendar(2025, 6, nil)
	require.NoError(t, err)

	assert.True(t, cal.Contains(date(2025, 6, 1)))
	assert.True(t, cal.Contains(time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, cal.Contains(date(2025, 7, 1)))
	assert.False(t, cal.Contains(date(2025, 5, 31)))
}
