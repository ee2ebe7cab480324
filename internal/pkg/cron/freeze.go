package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	payrollService "github.com/cmlabs-hris/hris-attendance-freeze/internal/service/payroll"
)

const FreezeJobName = "auto_freeze_previous_month"

type FreezeJobs struct {
	freezeService payroll.FreezeService
	autoDay       int
	logger        *slog.Logger
	now           func() time.Time
}

// NewFreezeJobs builds the auto-freeze job. autoDay is the first day of a month
// on which the previous month is finalized.
func NewFreezeJobs(freezeService payroll.FreezeService, autoDay int, logger *slog.Logger) *FreezeJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &FreezeJobs{
		freezeService: freezeService,
		autoDay:       autoDay,
		logger:        logger,
		now:           time.Now,
	}
}

func (j *FreezeJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(FreezeJobName, interval, j.FreezePreviousMonth)
}

// previousPeriod returns the month before t.
func previousPeriod(t time.Time) (year, month int) {
	prev := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return prev.Year(), int(prev.Month())
}

// FreezePreviousMonth finalizes last month once the configured day is reached.
// Periods that are already frozen or have no attendance are not errors.
func (j *FreezeJobs) FreezePreviousMonth(ctx context.Context) error {
	now := j.now().UTC()
	if now.Day() < j.autoDay {
		return nil
	}

	year, month := previousPeriod(now)
	ctx = payrollService.WithActor(ctx, payrollService.SystemActor)

	result, err := j.freezeService.Finalize(ctx, payroll.FinalizeRequest{Year: year, Month: month})
	switch {
	case errors.Is(err, payroll.ErrAlreadyFrozen):
		j.logger.Debug("Cron: period already frozen", "year", year, "month", month)
		return nil
	case errors.Is(err, payroll.ErrNoAttendanceData):
		j.logger.Info("Cron: no attendance to freeze", "year", year, "month", month)
		return nil
	case err != nil:
		return fmt.Errorf("auto-freeze %04d-%02d: %w", year, month, err)
	}

	j.logger.Info("Cron: period frozen",
		"year", result.Year,
		"month", result.Month,
		"employee_count", result.EmployeeCount,
		"snapshot_count", result.SnapshotCount,
	)
	return nil
}
