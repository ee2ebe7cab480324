package report

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFilename(t *testing.T) {
	assert.Equal(t, "attendance-register-2025-06.pdf", RegisterFilename(2025, 6))
}

func TestWriteRegister(t *testing.T) {
	frozenAt := "2025-07-01T08:00:00Z"
	frozenBy := "hr-admin"
	reg := payroll.RegisterResponse{
		Year:     2025,
		Month:    6,
		FrozenAt: &frozenAt,
		FrozenBy: &frozenBy,
	}
	// Enough rows to spill onto a second page.
	for i := 0; i < 60; i++ {
		reg.Snapshots = append(reg.Snapshots, payroll.SnapshotResponse{
			EmployeeID:       fmt.Sprintf("emp-%02d", i),
			Year:             2025,
			Month:            6,
			PresentDays:      decimal.RequireFromString("28.5"),
			AbsentDays:       decimal.RequireFromString("0.5"),
			LeaveDays:        decimal.RequireFromString("1"),
			LOPDays:          decimal.Zero,
			TotalWorkingDays: decimal.NewFromInt(21),
		})
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRegister(&buf, reg))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestWriteRegister_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRegister(&buf, payroll.RegisterResponse{Year: 2025, Month: 2}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
