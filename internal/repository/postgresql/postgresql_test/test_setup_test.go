package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/repository/postgresql/migrations"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *database.DB
	testDBOnce sync.Once
	testDBErr  error
)

// openTestDB connects to TEST_DATABASE_URL once and migrates it. Tests skip when it is unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		ctx := context.Background()
		testDB, testDBErr = database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 10})
		if testDBErr != nil {
			return
		}
		testDBErr = testDB.Migrate(ctx, migrations.FS)
	})
	require.NoError(t, testDBErr, "failed to prepare test database")

	return testDB
}

// truncateTables empties every table the freeze engine reads or writes.
func truncateTables(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	tables := []string{
		"payroll_attendance_snapshots",
		"payroll_attendance_freezes",
		"attendances",
		"leave_requests",
		"holidays",
	}
	for _, table := range tables {
		_, err := tx.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err)
	}

	require.NoError(t, tx.Commit(ctx))
}
