package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// ListByPeriod implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByPeriod(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	if !from.Before(to) {
		return nil, attendance.ErrInvalidDateRange
	}
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, date, COALESCE(status, ''), clock_in, clock_out
		FROM attendances
		WHERE date >= $1 AND date < $2
		ORDER BY employee_id, date, id
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		if err := rows.Scan(&att.ID, &att.EmployeeID, &att.Date, &att.Status, &att.ClockIn, &att.ClockOut); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}

	return records, nil
}

// CountEmployeesByPeriod implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountEmployeesByPeriod(ctx context.Context, from, to time.Time) (int, error) {
	if !from.Before(to) {
		return 0, attendance.ErrInvalidDateRange
	}
	q := GetQuerier(ctx, a.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(DISTINCT employee_id)
		FROM attendances
		WHERE date >= $1 AND date < $2
	`, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}

	return count, nil
}
