package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type freezeRepository struct {
	db *database.DB
}

func NewFreezeRepository(db *database.DB) payroll.FreezeRepository {
	return &freezeRepository{db: db}
}

const freezeColumns = `year, month, is_frozen, frozen_at, frozen_by, unfrozen_at, unfrozen_by, created_at, updated_at`

func scanFreeze(row pgx.Row) (payroll.AttendanceFreeze, error) {
	var f payroll.AttendanceFreeze
	err := row.Scan(
		&f.Year, &f.Month, &f.IsFrozen,
		&f.FrozenAt, &f.FrozenBy,
		&f.UnfrozenAt, &f.UnfrozenBy,
		&f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

// ========== FREEZE ==========

func (r *freezeRepository) GetByPeriod(ctx context.Context, year, month int) (payroll.AttendanceFreeze, error) {
	q := GetQuerier(ctx, r.db)

	f, err := scanFreeze(q.QueryRow(ctx, `
		SELECT `+freezeColumns+`
		FROM payroll_attendance_freezes
		WHERE year = $1 AND month = $2
	`, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.AttendanceFreeze{}, payroll.ErrFreezeNotFound
		}
		return payroll.AttendanceFreeze{}, fmt.Errorf("failed to get attendance freeze: %w", err)
	}

	return f, nil
}

// LockByPeriod must run inside a transaction; outside one the lock is released immediately.
func (r *freezeRepository) LockByPeriod(ctx context.Context, year, month int) (payroll.AttendanceFreeze, error) {
	q := GetQuerier(ctx, r.db)

	// A concurrent inserter blocks on the primary key until the first transaction ends.
	_, err := q.Exec(ctx, `
		INSERT INTO payroll_attendance_freezes (year, month)
		VALUES ($1, $2)
		ON CONFLICT (year, month) DO NOTHING
	`, year, month)
	if err != nil {
		return payroll.AttendanceFreeze{}, fmt.Errorf("failed to ensure attendance freeze: %w", err)
	}

	f, err := scanFreeze(q.QueryRow(ctx, `
		SELECT `+freezeColumns+`
		FROM payroll_attendance_freezes
		WHERE year = $1 AND month = $2
		FOR UPDATE
	`, year, month))
	if err != nil {
		return payroll.AttendanceFreeze{}, fmt.Errorf("failed to lock attendance freeze: %w", err)
	}

	return f, nil
}

func (r *freezeRepository) MarkFrozen(ctx context.Context, year, month int, frozenAt time.Time, frozenBy *string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_attendance_freezes
		SET is_frozen = TRUE, frozen_at = $3, frozen_by = $4, updated_at = $3
		WHERE year = $1 AND month = $2
	`, year, month, frozenAt, frozenBy)
	if err != nil {
		return fmt.Errorf("failed to mark period frozen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrFreezeNotFound
	}

	return nil
}

func (r *freezeRepository) MarkUnfrozen(ctx context.Context, year, month int, unfrozenAt time.Time, unfrozenBy *string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_attendance_freezes
		SET is_frozen = FALSE, unfrozen_at = $3, unfrozen_by = $4, updated_at = $3
		WHERE year = $1 AND month = $2
	`, year, month, unfrozenAt, unfrozenBy)
	if err != nil {
		return fmt.Errorf("failed to mark period unfrozen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrFreezeNotFound
	}

	return nil
}

// ========== SNAPSHOTS ==========

type snapshotRepository struct {
	db *database.DB
}

func NewSnapshotRepository(db *database.DB) payroll.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) UpsertBatch(ctx context.Context, snapshots []payroll.AttendanceSnapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_attendance_snapshots (
			id, employee_id, year, month,
			present_days, absent_days, leave_days, lop_days, total_working_days,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (employee_id, year, month) DO UPDATE SET
			present_days       = EXCLUDED.present_days,
			absent_days        = EXCLUDED.absent_days,
			leave_days         = EXCLUDED.leave_days,
			lop_days           = EXCLUDED.lop_days,
			total_working_days = EXCLUDED.total_working_days,
			updated_at         = EXCLUDED.updated_at
	`

	batch := &pgx.Batch{}
	for _, s := range snapshots {
		batch.Queue(query,
			s.ID, s.EmployeeID, s.Year, s.Month,
			s.PresentDays, s.AbsentDays, s.LeaveDays, s.LOPDays, s.TotalWorkingDays,
			s.CreatedAt, s.UpdatedAt,
		)
	}

	br := q.SendBatch(ctx, batch)
	written := 0
	for _, s := range snapshots {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return written, fmt.Errorf("failed to upsert snapshot for employee %s: %w", s.EmployeeID, err)
		}
		written += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return written, fmt.Errorf("failed to close snapshot batch: %w", err)
	}

	return written, nil
}

func (r *snapshotRepository) DeleteStale(ctx context.Context, year, month int, keepEmployeeIDs []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	if keepEmployeeIDs == nil {
		keepEmployeeIDs = []string{}
	}
	tag, err := q.Exec(ctx, `
		DELETE FROM payroll_attendance_snapshots
		WHERE year = $1 AND month = $2
		  AND NOT (employee_id = ANY($3))
	`, year, month, keepEmployeeIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale snapshots: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *snapshotRepository) CountByPeriod(ctx context.Context, year, month int) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM payroll_attendance_snapshots
		WHERE year = $1 AND month = $2
	`, year, month).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	return count, nil
}

func (r *snapshotRepository) ListByPeriod(ctx context.Context, filter payroll.SnapshotFilter) ([]payroll.AttendanceSnapshot, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	whereClause := "WHERE year = $1 AND month = $2"
	args := []interface{}{filter.Year, filter.Month}
	argIndex := 3

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}

	var total int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_attendance_snapshots `+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, employee_id, year, month,
			   present_days, absent_days, leave_days, lop_days, total_working_days,
			   created_at, updated_at
		FROM payroll_attendance_snapshots
		%s
		ORDER BY employee_id
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []payroll.AttendanceSnapshot
	for rows.Next() {
		var s payroll.AttendanceSnapshot
		err := rows.Scan(
			&s.ID, &s.EmployeeID, &s.Year, &s.Month,
			&s.PresentDays, &s.AbsentDays, &s.LeaveDays, &s.LOPDays, &s.TotalWorkingDays,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, total, nil
}
