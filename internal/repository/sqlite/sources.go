package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/leave"
	"github.com/google/uuid"
)

// ========== ATTENDANCE ==========

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ListByPeriod(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	if !from.Before(to) {
		return nil, attendance.ErrInvalidDateRange
	}

	rows, err := getQuerier(ctx, r.db).QueryContext(ctx, `
		SELECT id, employee_id, date, COALESCE(status, ''), clock_in, clock_out
		FROM attendances
		WHERE date >= ? AND date < ?
		ORDER BY employee_id, date, id
	`, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var (
			att               attendance.Attendance
			date              string
			clockIn, clockOut sql.NullInt64
		)
		if err := rows.Scan(&att.ID, &att.EmployeeID, &date, &att.Status, &clockIn, &clockOut); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		if att.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("invalid attendance date %q: %w", date, err)
		}
		att.ClockIn = fromNullMillis(clockIn)
		att.ClockOut = fromNullMillis(clockOut)
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}

	return records, nil
}

func (r *attendanceRepository) CountEmployeesByPeriod(ctx context.Context, from, to time.Time) (int, error) {
	if !from.Before(to) {
		return 0, attendance.ErrInvalidDateRange
	}

	var count int
	err := getQuerier(ctx, r.db).QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT employee_id)
		FROM attendances
		WHERE date >= ? AND date < ?
	`, formatDate(from), formatDate(to)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}

	return count, nil
}

// ========== LEAVE REQUESTS ==========

type leaveRequestRepository struct {
	db *DB
}

func NewLeaveRequestRepository(db *DB) leave.LeaveRequestRepository {
	return &leaveRequestRepository{db: db}
}

func (r *leaveRequestRepository) ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]leave.LeaveRequest, error) {
	rows, err := getQuerier(ctx, r.db).QueryContext(ctx, `
		SELECT id, employee_id, leave_type, start_date, end_date, hr_approval, manager_approval
		FROM leave_requests
		WHERE start_date < ?
		  AND end_date >= ?
		  AND LOWER(TRIM(hr_approval)) = 'approved'
		  AND LOWER(TRIM(manager_approval)) = 'approved'
		ORDER BY start_date, id
	`, formatDate(to), formatDate(from))
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var (
			req        leave.LeaveRequest
			start, end string
		)
		err := rows.Scan(&req.ID, &req.EmployeeID, &req.LeaveType, &start, &end, &req.HRApproval, &req.ManagerApproval)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		if req.StartDate, err = parseDate(start); err != nil {
			return nil, fmt.Errorf("invalid leave start date %q: %w", start, err)
		}
		if req.EndDate, err = parseDate(end); err != nil {
			return nil, fmt.Errorf("invalid leave end date %q: %w", end, err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, nil
}

// ========== HOLIDAYS ==========

type holidayRepository struct {
	db *DB
}

func NewHolidayRepository(db *DB) holiday.HolidayRepository {
	return &holidayRepository{db: db}
}

func (r *holidayRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	rows, err := getQuerier(ctx, r.db).QueryContext(ctx, `
		SELECT id, name, event_date, event_end
		FROM holidays
		WHERE event_date < ?
		  AND MAX(event_date, COALESCE(event_end, event_date)) >= ?
		ORDER BY event_date, id
	`, formatDate(to), formatDate(from))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var (
			h        holiday.Holiday
			start    string
			eventEnd sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.Name, &start, &eventEnd); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		if h.EventDate, err = parseDate(start); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", start, err)
		}
		if eventEnd.Valid && eventEnd.String != "" {
			end, err := parseDate(eventEnd.String)
			if err != nil {
				return nil, fmt.Errorf("invalid holiday end %q: %w", eventEnd.String, err)
			}
			h.EventEnd = &end
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holidays: %w", err)
	}

	return holidays, nil
}

// ========== SOURCE WRITES ==========

// Sources seeds the inputs the reconciliation only reads. It is a helper for
// local development and tests; production rows come from the time-tracking
// sync and the leave workflow.
type Sources struct {
	db *DB
}

func NewSources(db *DB) *Sources {
	return &Sources{db: db}
}

func newID(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.Must(uuid.NewV7()).String()
}

// UpsertAttendance seeds one employee-day, replacing any previous row for that day.
// Dev and test seeding only.
func (s *Sources) UpsertAttendance(ctx context.Context, att attendance.Attendance) error {
	_, err := getQuerier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO attendances (id, employee_id, date, status, clock_in, clock_out)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status    = excluded.status,
			clock_in  = excluded.clock_in,
			clock_out = excluded.clock_out
	`, newID(att.ID), att.EmployeeID, formatDate(att.Date), att.Status, nullMillis(att.ClockIn), nullMillis(att.ClockOut))
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

// CreateLeaveRequest seeds one leave ledger row. Dev and test seeding only.
func (s *Sources) CreateLeaveRequest(ctx context.Context, req leave.LeaveRequest) error {
	_, err := getQuerier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, hr_approval, manager_approval)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, newID(req.ID), req.EmployeeID, req.LeaveType, formatDate(req.StartDate), formatDate(req.EndDate), req.HRApproval, req.ManagerApproval)
	if err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	return nil
}

// CreateHoliday seeds one holiday. Dev and test seeding only.
func (s *Sources) CreateHoliday(ctx context.Context, h holiday.Holiday) error {
	var eventEnd sql.NullString
	if h.EventEnd != nil {
		eventEnd = sql.NullString{String: formatDate(*h.EventEnd), Valid: true}
	}
	_, err := getQuerier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO holidays (id, name, event_date, event_end)
		VALUES (?, ?, ?, ?)
	`, newID(h.ID), h.Name, formatDate(h.EventDate), eventEnd)
	if err != nil {
		return fmt.Errorf("failed to create holiday: %w", err)
	}
	return nil
}

// DeleteAttendance removes every row of one employee in [from, to). Dev and test seeding only.
func (s *Sources) DeleteAttendance(ctx context.Context, employeeID string, from, to time.Time) error {
	_, err := getQuerier(ctx, s.db).ExecContext(ctx, `
		DELETE FROM attendances WHERE employee_id = ? AND date >= ? AND date < ?
	`, employeeID, formatDate(from), formatDate(to))
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return nil
}
