package payroll

import (
	"sort"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/attendance"
)

// DailyStatuses maps an ISO date to the raw status recorded that day.
type DailyStatuses map[string]string

// AttendanceByEmployee groups a period's attendance rows by employee.
// Employees without a single row in the period are not present.
type AttendanceByEmployee map[string]DailyStatuses

// AggregateAttendance groups rows by employee, dropping rows outside the calendar month.
// When a day has more than one row the first non-blank status wins.
func AggregateAttendance(records []attendance.Attendance, cal Calendar) AttendanceByEmployee {
	result := make(AttendanceByEmployee)
	for _, rec := range records {
		if rec.EmployeeID == "" || !cal.Contains(rec.Date) {
			continue
		}

		days, ok := result[rec.EmployeeID]
		if !ok {
			days = make(DailyStatuses)
			result[rec.EmployeeID] = days
		}

		key := dateKey(truncateDate(rec.Date))
		if existing, seen := days[key]; seen && existing != "" {
			continue
		}
		days[key] = rec.NormalizedStatus()
	}
	return result
}

// EmployeeIDs returns the grouped employee ids in ascending order.
func (a AttendanceByEmployee) EmployeeIDs() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dates returns the recorded dates of one employee in ascending order.
func (d DailyStatuses) Dates() []string {
	dates := make([]string, 0, len(d))
	for k := range d {
		dates = append(dates, k)
	}
	sort.Strings(dates)
	return dates
}
