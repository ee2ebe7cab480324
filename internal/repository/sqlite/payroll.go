package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
)

// ========== FREEZE ==========

type freezeRepository struct {
	db  *DB
	now func() time.Time
}

func NewFreezeRepository(db *DB) payroll.FreezeRepository {
	return &freezeRepository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFreeze(row rowScanner) (payroll.AttendanceFreeze, error) {
	var (
		f                    payroll.AttendanceFreeze
		frozenAt, unfrozenAt sql.NullInt64
		frozenBy, unfrozenBy sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&f.Year, &f.Month, &f.IsFrozen, &frozenAt, &frozenBy, &unfrozenAt, &unfrozenBy, &createdAt, &updatedAt)
	if err != nil {
		return payroll.AttendanceFreeze{}, err
	}
	f.FrozenAt = fromNullMillis(frozenAt)
	f.UnfrozenAt = fromNullMillis(unfrozenAt)
	if frozenBy.Valid {
		f.FrozenBy = &frozenBy.String
	}
	if unfrozenBy.Valid {
		f.UnfrozenBy = &unfrozenBy.String
	}
	f.CreatedAt = fromMillis(createdAt)
	f.UpdatedAt = fromMillis(updatedAt)
	return f, nil
}

const selectFreeze = `
	SELECT year, month, is_frozen, frozen_at, frozen_by, unfrozen_at, unfrozen_by, created_at, updated_at
	FROM payroll_attendance_freezes
	WHERE year = ? AND month = ?
`

func (r *freezeRepository) GetByPeriod(ctx context.Context, year, month int) (payroll.AttendanceFreeze, error) {
	f, err := scanFreeze(getQuerier(ctx, r.db).QueryRowContext(ctx, selectFreeze, year, month))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payroll.AttendanceFreeze{}, payroll.ErrFreezeNotFound
		}
		return payroll.AttendanceFreeze{}, fmt.Errorf("failed to get attendance freeze: %w", err)
	}
	return f, nil
}

// LockByPeriod relies on the BEGIN IMMEDIATE transaction opened by the transactor:
// the database write lock is already held, so inserting and reading the row is atomic.
func (r *freezeRepository) LockByPeriod(ctx context.Context, year, month int) (payroll.AttendanceFreeze, error) {
	q := getQuerier(ctx, r.db)
	now := toMillis(r.now())

	_, err := q.ExecContext(ctx, `
		INSERT INTO payroll_attendance_freezes (year, month, is_frozen, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT (year, month) DO NOTHING
	`, year, month, now, now)
	if err != nil {
		return payroll.AttendanceFreeze{}, fmt.Errorf("failed to ensure attendance freeze: %w", err)
	}

	f, err := scanFreeze(q.QueryRowContext(ctx, selectFreeze, year, month))
	if err != nil {
		return payroll.AttendanceFreeze{}, fmt.Errorf("failed to lock attendance freeze: %w", err)
	}
	return f, nil
}

func (r *freezeRepository) MarkFrozen(ctx context.Context, year, month int, frozenAt time.Time, frozenBy *string) error {
	res, err := getQuerier(ctx, r.db).ExecContext(ctx, `
		UPDATE payroll_attendance_freezes
		SET is_frozen = 1, frozen_at = ?, frozen_by = ?, updated_at = ?
		WHERE year = ? AND month = ?
	`, toMillis(frozenAt), nullString(frozenBy), toMillis(frozenAt), year, month)
	if err != nil {
		return fmt.Errorf("failed to mark period frozen: %w", err)
	}
	return requireAffected(res)
}

func (r *freezeRepository) MarkUnfrozen(ctx context.Context, year, month int, unfrozenAt time.Time, unfrozenBy *string) error {
	res, err := getQuerier(ctx, r.db).ExecContext(ctx, `
		UPDATE payroll_attendance_freezes
		SET is_frozen = 0, unfrozen_at = ?, unfrozen_by = ?, updated_at = ?
		WHERE year = ? AND month = ?
	`, toMillis(unfrozenAt), nullString(unfrozenBy), toMillis(unfrozenAt), year, month)
	if err != nil {
		return fmt.Errorf("failed to mark period unfrozen: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return payroll.ErrFreezeNotFound
	}
	return nil
}

// ========== SNAPSHOTS ==========

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) payroll.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// UpsertBatch prepares the upsert once and runs it per snapshot. Called outside
// a transaction it opens one so the batch stays all-or-nothing.
func (r *snapshotRepository) UpsertBatch(ctx context.Context, snapshots []payroll.AttendanceSnapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}

	written := 0
	err := NewTransactor(r.db).WithinTransaction(ctx, func(txCtx context.Context) error {
		tx := txCtx.Value(txKey{}).(*sql.Tx)
		stmt, err := tx.PrepareContext(txCtx, `
			INSERT INTO payroll_attendance_snapshots (
				id, employee_id, year, month,
				present_days, absent_days, leave_days, lop_days, total_working_days,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (employee_id, year, month) DO UPDATE SET
				present_days       = excluded.present_days,
				absent_days        = excluded.absent_days,
				leave_days         = excluded.leave_days,
				lop_days           = excluded.lop_days,
				total_working_days = excluded.total_working_days,
				updated_at         = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare snapshot upsert: %w", err)
		}
		defer stmt.Close()

		for _, s := range snapshots {
			if err := txCtx.Err(); err != nil {
				return err
			}
			_, err := stmt.ExecContext(txCtx,
				s.ID, s.EmployeeID, s.Year, s.Month,
				s.PresentDays.String(), s.AbsentDays.String(), s.LeaveDays.String(), s.LOPDays.String(), s.TotalWorkingDays.String(),
				toMillis(s.CreatedAt), toMillis(s.UpdatedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert snapshot for employee %s: %w", s.EmployeeID, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (r *snapshotRepository) DeleteStale(ctx context.Context, year, month int, keepEmployeeIDs []string) (int64, error) {
	query := `DELETE FROM payroll_attendance_snapshots WHERE year = ? AND month = ?`
	args := []any{year, month}
	if len(keepEmployeeIDs) > 0 {
		query += ` AND employee_id NOT IN (?` + strings.Repeat(", ?", len(keepEmployeeIDs)-1) + `)`
		for _, id := range keepEmployeeIDs {
			args = append(args, id)
		}
	}

	res, err := getQuerier(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func (r *snapshotRepository) CountByPeriod(ctx context.Context, year, month int) (int, error) {
	var count int
	err := getQuerier(ctx, r.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payroll_attendance_snapshots WHERE year = ? AND month = ?
	`, year, month).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

func (r *snapshotRepository) ListByPeriod(ctx context.Context, filter payroll.SnapshotFilter) ([]payroll.AttendanceSnapshot, int64, error) {
	q := getQuerier(ctx, r.db)

	whereClause := "WHERE year = ? AND month = ?"
	args := []any{filter.Year, filter.Month}
	if filter.EmployeeID != nil {
		whereClause += " AND employee_id = ?"
		args = append(args, *filter.EmployeeID)
	}

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM payroll_attendance_snapshots `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, employee_id, year, month,
			   present_days, absent_days, leave_days, lop_days, total_working_days,
			   created_at, updated_at
		FROM payroll_attendance_snapshots
		`+whereClause+`
		ORDER BY employee_id
		LIMIT ? OFFSET ?
	`, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []payroll.AttendanceSnapshot
	for rows.Next() {
		var (
			s                    payroll.AttendanceSnapshot
			createdAt, updatedAt int64
		)
		err := rows.Scan(
			&s.ID, &s.EmployeeID, &s.Year, &s.Month,
			&s.PresentDays, &s.AbsentDays, &s.LeaveDays, &s.LOPDays, &s.TotalWorkingDays,
			&createdAt, &updatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.CreatedAt = fromMillis(createdAt)
		s.UpdatedAt = fromMillis(updatedAt)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, total, nil
}
