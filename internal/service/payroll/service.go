package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cmlabs-hris/hris-attendance-freeze/internal/service/payroll"

// SystemActor is recorded as frozen_by / unfrozen_by for scheduled runs.
const SystemActor = "system"

type actorKey struct{}

// WithActor marks ctx with the actor recorded on freeze transitions when no JWT is present.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// actorFromContext prefers the JWT user_id claim and falls back to WithActor.
func actorFromContext(ctx context.Context) *string {
	if _, claims, err := jwtauth.FromContext(ctx); err == nil {
		if userID, ok := claims["user_id"].(string); ok && userID != "" {
			return &userID
		}
	}
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return &actor
	}
	return nil
}

type Options struct {
	Policy  payroll.Policy
	Workers int
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Now     func() time.Time
}

type FreezeServiceImpl struct {
	db             payroll.Transactor
	freezeRepo     payroll.FreezeRepository
	snapshotRepo   payroll.SnapshotRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	holidayRepo    holiday.HolidayRepository
	policy         payroll.Policy
	workers        int
	logger         *slog.Logger
	tracer         trace.Tracer
	now            func() time.Time
}

func NewFreezeService(
	db payroll.Transactor,
	freezeRepo payroll.FreezeRepository,
	snapshotRepo payroll.SnapshotRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	holidayRepo holiday.HolidayRepository,
	opts Options,
) payroll.FreezeService {
	if opts.Policy == (payroll.Policy{}) {
		opts.Policy = payroll.DefaultPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &FreezeServiceImpl{
		db:             db,
		freezeRepo:     freezeRepo,
		snapshotRepo:   snapshotRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		holidayRepo:    holidayRepo,
		policy:         opts.Policy,
		workers:        opts.Workers,
		logger:         opts.Logger,
		tracer:         opts.Tracer,
		now:            opts.Now,
	}
}

// reconciliation is the in-memory result of one run, before anything is written.
type reconciliation struct {
	calendar  Calendar
	employees []EmployeeDays
	skipped   []SkippedLeave
}

// reconcile loads the three sources for the period and classifies every employee
// with at least one attendance row. ctx may carry a transaction.
func (s *FreezeServiceImpl) reconcile(ctx context.Context, period payroll.Period) (_ reconciliation, err error) {
	ctx, span := s.tracer.Start(ctx, "payroll.reconcile", trace.WithAttributes(periodAttributes(period)...))
	defer func() { endSpan(span, err) }()

	from, to := period.Start(), period.End()

	records, err := s.attendanceRepo.ListByPeriod(ctx, from, to)
	if err != nil {
		return reconciliation{}, fmt.Errorf("failed to load attendance: %w", err)
	}
	if len(records) == 0 {
		return reconciliation{}, payroll.ErrNoAttendanceData
	}

	holidays, err := s.holidayRepo.ListOverlapping(ctx, from, to)
	if err != nil {
		return reconciliation{}, fmt.Errorf("failed to load holidays: %w", err)
	}

	cal, err := ResolveCalendar(period.Year, int(period.Month), holidays)
	if err != nil {
		return reconciliation{}, err
	}

	byEmployee := AggregateAttendance(records, cal)
	if len(byEmployee) == 0 {
		return reconciliation{}, payroll.ErrNoAttendanceData
	}

	leaves, err := s.leaveRepo.ListApprovedOverlapping(ctx, from, to)
	if err != nil {
		return reconciliation{}, fmt.Errorf("failed to load leave requests: %w", err)
	}
	reconciled := ReconcileLeaves(leaves, cal, s.policy.LeaveOverlap)

	employees, err := ClassifyAll(ctx, cal, byEmployee, reconciled.Days, s.policy, s.workers)
	if err != nil {
		return reconciliation{}, fmt.Errorf("failed to classify attendance: %w", err)
	}
	span.SetAttributes(
		attribute.Int("attendance.records", len(records)),
		attribute.Int("employees", len(employees)),
		attribute.Int("leaves.skipped", len(reconciled.Skipped)),
	)

	return reconciliation{
		calendar:  cal,
		employees: employees,
		skipped:   reconciled.Skipped,
	}, nil
}

func (r reconciliation) snapshots(period payroll.Period, at time.Time) []payroll.AttendanceSnapshot {
	out := make([]payroll.AttendanceSnapshot, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, payroll.AttendanceSnapshot{
			ID:               uuid.Must(uuid.NewV7()).String(),
			EmployeeID:       e.EmployeeID,
			Year:             period.Year,
			Month:            int(period.Month),
			PresentDays:      e.Present,
			AbsentDays:       e.Absent,
			LeaveDays:        e.Leave,
			LOPDays:          e.LOP,
			TotalWorkingDays: e.TotalWorkingDays,
			CreatedAt:        at,
			UpdatedAt:        at,
		})
	}
	return out
}

func (r reconciliation) employeeIDs() []string {
	ids := make([]string, 0, len(r.employees))
	for _, e := range r.employees {
		ids = append(ids, e.EmployeeID)
	}
	return ids
}

func (s *FreezeServiceImpl) logSkipped(logger *slog.Logger, skipped []SkippedLeave) {
	for _, sk := range skipped {
		if sk.Reason == SkipOutOfPeriod {
			continue
		}
		attrs := []any{
			"leave_id", sk.LeaveID,
			"employee_id", sk.EmployeeID,
			"leave_type", sk.LeaveType,
			"reason", string(sk.Reason),
		}
		if sk.Err != nil {
			attrs = append(attrs, "error", sk.Err)
		}
		logger.Warn("Leave request skipped", attrs...)
	}
}

func periodAttributes(period payroll.Period) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("period.year", period.Year),
		attribute.Int("period.month", int(period.Month)),
	}
}

// endSpan records err on the span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// isDomainError reports errors that already carry their own class and must not
// be rewrapped as persistence failures.
func isDomainError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs) ||
		errors.Is(err, payroll.ErrAlreadyFrozen) ||
		errors.Is(err, payroll.ErrNotFrozen) ||
		errors.Is(err, payroll.ErrNoAttendanceData) ||
		errors.Is(err, payroll.ErrPersistence) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ========== FREEZE ==========

func (s *FreezeServiceImpl) Finalize(ctx context.Context, req payroll.FinalizeRequest) (_ payroll.FinalizeResponse, err error) {
	if err := req.Validate(); err != nil {
		return payroll.FinalizeResponse{}, err
	}

	period := req.Period()
	runID := uuid.Must(uuid.NewV7()).String()

	ctx, span := s.tracer.Start(ctx, "payroll.Finalize", trace.WithAttributes(
		append(periodAttributes(period), attribute.String("run_id", runID))...,
	))
	defer func() { endSpan(span, err) }()

	logger := s.logger.With("run_id", runID, "period", period.String())
	actor := actorFromContext(ctx)
	started := s.now()

	logger.Info("Attendance freeze started")

	var result payroll.FinalizeResponse
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Freeze guard: the row lock serializes concurrent finalizers of the period.
		freeze, err := s.freezeRepo.LockByPeriod(txCtx, period.Year, int(period.Month))
		if err != nil {
			return fmt.Errorf("%w: lock freeze: %w", payroll.ErrPersistence, err)
		}
		if freeze.IsFrozen {
			return payroll.ErrAlreadyFrozen
		}

		run, err := s.reconcile(txCtx, period)
		if err != nil {
			return err
		}
		s.logSkipped(logger, run.skipped)

		frozenAt := s.now().UTC()
		written, err := s.snapshotRepo.UpsertBatch(txCtx, run.snapshots(period, frozenAt))
		if err != nil {
			return fmt.Errorf("%w: upsert snapshots: %w", payroll.ErrPersistence, err)
		}

		pruned, err := s.snapshotRepo.DeleteStale(txCtx, period.Year, int(period.Month), run.employeeIDs())
		if err != nil {
			return fmt.Errorf("%w: prune snapshots: %w", payroll.ErrPersistence, err)
		}
		if pruned > 0 {
			logger.Info("Stale attendance snapshots pruned", "count", pruned)
		}

		if err := s.freezeRepo.MarkFrozen(txCtx, period.Year, int(period.Month), frozenAt, actor); err != nil {
			return fmt.Errorf("%w: mark frozen: %w", payroll.ErrPersistence, err)
		}

		result = payroll.FinalizeResponse{
			Year:          period.Year,
			Month:         int(period.Month),
			EmployeeCount: len(run.employees),
			SnapshotCount: written,
			FrozenAt:      frozenAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			err = fmt.Errorf("%w: %w", payroll.ErrPersistence, err)
		}
		logger.Warn("Attendance freeze failed", "error", err, "duration", s.now().Sub(started))
		return payroll.FinalizeResponse{}, err
	}

	logger.Info("Attendance freeze completed",
		"employee_count", result.EmployeeCount,
		"snapshot_count", result.SnapshotCount,
		"duration", s.now().Sub(started),
	)
	return result, nil
}

func (s *FreezeServiceImpl) Unfreeze(ctx context.Context, req payroll.UnfreezeRequest) (err error) {
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "payroll.Unfreeze", trace.WithAttributes(
		periodAttributes(payroll.Period{Year: req.Year, Month: time.Month(req.Month)})...,
	))
	defer func() { endSpan(span, err) }()

	actor := actorFromContext(ctx)
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		freeze, err := s.freezeRepo.LockByPeriod(txCtx, req.Year, req.Month)
		if err != nil {
			return fmt.Errorf("%w: lock freeze: %w", payroll.ErrPersistence, err)
		}
		if !freeze.IsFrozen {
			return payroll.ErrNotFrozen
		}
		if err := s.freezeRepo.MarkUnfrozen(txCtx, req.Year, req.Month, s.now().UTC(), actor); err != nil {
			return fmt.Errorf("%w: mark unfrozen: %w", payroll.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			err = fmt.Errorf("%w: %w", payroll.ErrPersistence, err)
		}
		return err
	}

	s.logger.Info("Attendance period unfrozen", "year", req.Year, "month", req.Month)
	return nil
}

func (s *FreezeServiceImpl) Status(ctx context.Context, year, month int) (payroll.FreezeStatusResponse, error) {
	if err := payroll.ValidatePeriod(year, month); err != nil {
		return payroll.FreezeStatusResponse{}, err
	}

	resp := payroll.FreezeStatusResponse{Year: year, Month: month}

	freeze, err := s.freezeRepo.GetByPeriod(ctx, year, month)
	switch {
	case err == nil:
		resp.IsFrozen = freeze.IsFrozen
		resp.FrozenAt = formatTime(freeze.FrozenAt)
		resp.FrozenBy = freeze.FrozenBy
		resp.UnfrozenAt = formatTime(freeze.UnfrozenAt)
	case errors.Is(err, payroll.ErrFreezeNotFound):
	default:
		return payroll.FreezeStatusResponse{}, err
	}

	period := payroll.Period{Year: year, Month: time.Month(month)}
	resp.EmployeeCount, err = s.attendanceRepo.CountEmployeesByPeriod(ctx, period.Start(), period.End())
	if err != nil {
		return payroll.FreezeStatusResponse{}, fmt.Errorf("failed to count employees: %w", err)
	}
	resp.SnapshotCount, err = s.snapshotRepo.CountByPeriod(ctx, year, month)
	if err != nil {
		return payroll.FreezeStatusResponse{}, fmt.Errorf("failed to count snapshots: %w", err)
	}

	return resp, nil
}

func (s *FreezeServiceImpl) Preview(ctx context.Context, year, month int) (payroll.PreviewResponse, error) {
	if err := payroll.ValidatePeriod(year, month); err != nil {
		return payroll.PreviewResponse{}, err
	}

	period := payroll.Period{Year: year, Month: time.Month(month)}
	run, err := s.reconcile(ctx, period)
	if err != nil {
		return payroll.PreviewResponse{}, err
	}

	isFrozen := false
	freeze, err := s.freezeRepo.GetByPeriod(ctx, year, month)
	if err == nil {
		isFrozen = freeze.IsFrozen
	} else if !errors.Is(err, payroll.ErrFreezeNotFound) {
		return payroll.PreviewResponse{}, err
	}

	snapshots := run.snapshots(period, s.now().UTC())
	resp := payroll.PreviewResponse{
		Year:             year,
		Month:            month,
		IsFrozen:         isFrozen,
		TotalDays:        run.calendar.TotalDays(),
		TotalWorkingDays: decimal.NewFromInt(int64(run.calendar.WorkingDays())),
		HolidayDays:      run.calendar.HolidayDays(),
		WeekendDays:      run.calendar.WeekendDays(),
		Snapshots:        make([]payroll.SnapshotResponse, 0, len(snapshots)),
	}
	for _, snap := range snapshots {
		r := mapToSnapshotResponse(snap)
		r.UpdatedAt = nil
		resp.Snapshots = append(resp.Snapshots, r)
	}
	return resp, nil
}

// ========== SNAPSHOTS ==========

func (s *FreezeServiceImpl) ListSnapshots(ctx context.Context, filter payroll.SnapshotFilter) (payroll.ListSnapshotResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListSnapshotResponse{}, err
	}
	filter.Normalize()

	snapshots, total, err := s.snapshotRepo.ListByPeriod(ctx, filter)
	if err != nil {
		return payroll.ListSnapshotResponse{}, err
	}

	data := make([]payroll.SnapshotResponse, 0, len(snapshots))
	for _, snap := range snapshots {
		data = append(data, mapToSnapshotResponse(snap))
	}

	return payroll.ListSnapshotResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *FreezeServiceImpl) Register(ctx context.Context, year, month int) (payroll.RegisterResponse, error) {
	if err := payroll.ValidatePeriod(year, month); err != nil {
		return payroll.RegisterResponse{}, err
	}

	freeze, err := s.freezeRepo.GetByPeriod(ctx, year, month)
	if errors.Is(err, payroll.ErrFreezeNotFound) {
		return payroll.RegisterResponse{}, payroll.ErrNotFrozen
	}
	if err != nil {
		return payroll.RegisterResponse{}, err
	}
	if !freeze.IsFrozen {
		return payroll.RegisterResponse{}, payroll.ErrNotFrozen
	}

	count, err := s.snapshotRepo.CountByPeriod(ctx, year, month)
	if err != nil {
		return payroll.RegisterResponse{}, fmt.Errorf("failed to count snapshots: %w", err)
	}

	resp := payroll.RegisterResponse{
		Year:      year,
		Month:     month,
		FrozenAt:  formatTime(freeze.FrozenAt),
		FrozenBy:  freeze.FrozenBy,
		Snapshots: make([]payroll.SnapshotResponse, 0, count),
	}
	if count == 0 {
		return resp, nil
	}

	snapshots, _, err := s.snapshotRepo.ListByPeriod(ctx, payroll.SnapshotFilter{Year: year, Month: month, Page: 1, Limit: count})
	if err != nil {
		return payroll.RegisterResponse{}, err
	}
	for _, snap := range snapshots {
		resp.Snapshots = append(resp.Snapshots, mapToSnapshotResponse(snap))
	}
	return resp, nil
}

// ========== HELPERS ==========

func mapToSnapshotResponse(s payroll.AttendanceSnapshot) payroll.SnapshotResponse {
	return payroll.SnapshotResponse{
		EmployeeID:       s.EmployeeID,
		Year:             s.Year,
		Month:            s.Month,
		PresentDays:      s.PresentDays,
		AbsentDays:       s.AbsentDays,
		LeaveDays:        s.LeaveDays,
		LOPDays:          s.LOPDays,
		TotalWorkingDays: s.TotalWorkingDays,
		UpdatedAt:        formatTime(&s.UpdatedAt),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	str := t.UTC().Format(time.RFC3339)
	return &str
}
