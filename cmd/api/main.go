package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/config"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/hris-attendance-freeze/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/tracing"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/repository/postgresql"
	pgMigrations "github.com/cmlabs-hris/hris-attendance-freeze/internal/repository/postgresql/migrations"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/repository/sqlite"
	payrollService "github.com/cmlabs-hris/hris-attendance-freeze/internal/service/payroll"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// store groups the repositories the freeze service reads and writes.
type store struct {
	transactor payroll.Transactor
	freezes    payroll.FreezeRepository
	snapshots  payroll.SnapshotRepository
	attendance attendance.AttendanceRepository
	leaves     leave.LeaveRequestRepository
	holidays   holiday.HolidayRepository
	close      func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.SlogLevel(), cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Failed to flush traces", "error", err)
		}
	}()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	freezeService := payrollService.NewFreezeService(
		st.transactor,
		st.freezes,
		st.snapshots,
		st.attendance,
		st.leaves,
		st.holidays,
		payrollService.Options{
			Policy:  cfg.Freeze.Policy(),
			Workers: cfg.Freeze.ClassifyWorkers,
			Logger:  logger,
		},
	)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	router := appHTTP.NewRouter(jwtService, appHTTP.NewFreezeHandler(freezeService), appHTTP.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
		LogLevel:       cfg.SlogLevel(),
	})

	scheduler := cron.NewScheduler(logger)
	if cfg.Freeze.AutoEnabled {
		cron.NewFreezeJobs(freezeService, cfg.Freeze.AutoDay, logger).RegisterJobs(scheduler, cfg.Freeze.AutoInterval)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server running", "addr", server.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("Connected to SQLite", "path", cfg.Database.SQLitePath)

		return &store{
			transactor: sqlite.NewTransactor(db),
			freezes:    sqlite.NewFreezeRepository(db),
			snapshots:  sqlite.NewSnapshotRepository(db),
			attendance: sqlite.NewAttendanceRepository(db),
			leaves:     sqlite.NewLeaveRequestRepository(db),
			holidays:   sqlite.NewHolidayRepository(db),
			close:      func() { _ = db.Close() },
		}, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host, "database", cfg.Database.Name)

		if cfg.Database.MigrateOnStart {
			if err := db.Migrate(ctx, pgMigrations.FS); err != nil {
				db.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}

		return &store{
			transactor: postgresql.NewTransactor(db),
			freezes:    postgresql.NewFreezeRepository(db),
			snapshots:  postgresql.NewSnapshotRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			leaves:     postgresql.NewLeaveRequestRepository(db),
			holidays:   postgresql.NewHolidayRepository(db),
			close:      db.Close,
		}, nil
	}
}
