package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/repository/sqlite"
	payrollService "github.com/cmlabs-hris/hris-attendance-freeze/internal/service/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type handlerFixture struct {
	router http.Handler
	jwt    jwt.Service
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sources := sqlite.NewSources(db)
	for _, d := range []int{2, 3, 4, 5, 6} {
		require.NoError(t, sources.UpsertAttendance(ctx, attendance.Attendance{
			EmployeeID: "emp-1",
			Date:       time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC),
			Status:     "Present",
		}))
	}
	require.NoError(t, sources.UpsertAttendance(ctx, attendance.Attendance{
		EmployeeID: "emp-2",
		Date:       time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Status:     "Present",
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := payrollService.NewFreezeService(
		sqlite.NewTransactor(db),
		sqlite.NewFreezeRepository(db),
		sqlite.NewSnapshotRepository(db),
		sqlite.NewAttendanceRepository(db),
		sqlite.NewLeaveRequestRepository(db),
		sqlite.NewHolidayRepository(db),
		payrollService.Options{Workers: 2, Logger: logger},
	)

	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	router := NewRouter(jwtService, NewFreezeHandler(svc), RouterOptions{
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         logger,
		LogLevel:       slog.LevelInfo,
	})

	return &handlerFixture{router: router, jwt: jwtService}
}

func (f *handlerFixture) do(t *testing.T, method, path string, role user.Role) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		token, _, err := f.jwt.GenerateAccessToken("user-"+string(role), role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body response.Response
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func decodeData(t *testing.T, body response.Response, target interface{}) {
	t.Helper()
	raw, err := json.Marshal(body.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, target))
}

const junePath = "/api/v1/payroll/attendance-freezes/2025/6"

func TestFreezeRoutes_RequireToken(t *testing.T) {
	f := newHandlerFixture(t)

	rec, body := f.do(t, http.MethodGet, junePath, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, body.Success)
}

func TestFreezeRoutes_RejectsForeignToken(t *testing.T) {
	f := newHandlerFixture(t)
	other := jwt.NewJWTService("another-secret", time.Hour)
	token, _, err := other.GenerateAccessToken("user-1", user.RoleOwner)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, junePath, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFreezeRoutes_Permissions(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		role       user.Role
		wantStatus int
	}{
		{"employee cannot view status", http.MethodGet, junePath, user.RoleEmployee, http.StatusForbidden},
		{"employee cannot finalize", http.MethodPost, junePath + "/finalize", user.RoleEmployee, http.StatusForbidden},
		{"manager cannot unfreeze", http.MethodPost, junePath + "/unfreeze", user.RoleManager, http.StatusForbidden},
		{"pending cannot list snapshots", http.MethodGet, junePath + "/snapshots", user.RolePending, http.StatusForbidden},
		{"manager views status", http.MethodGet, junePath, user.RoleManager, http.StatusOK},
		{"owner previews", http.MethodGet, junePath + "/preview", user.RoleOwner, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			rec, _ := f.do(t, tt.method, tt.path, tt.role)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestFreezeRoutes_FinalizeLifecycle(t *testing.T) {
	f := newHandlerFixture(t)

	rec, body := f.do(t, http.MethodPost, junePath+"/finalize", user.RoleManager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)

	var finalized payroll.FinalizeResponse
	decodeData(t, body, &finalized)
	assert.Equal(t, 2025, finalized.Year)
	assert.Equal(t, 6, finalized.Month)
	assert.Equal(t, 2, finalized.EmployeeCount)
	assert.Equal(t, 2, finalized.SnapshotCount)
	assert.NotEmpty(t, finalized.FrozenAt)

	rec, body = f.do(t, http.MethodPost, junePath+"/finalize", user.RoleOwner)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "CONFLICT", body.Error.Code)

	rec, body = f.do(t, http.MethodGet, junePath, user.RoleManager)
	require.Equal(t, http.StatusOK, rec.Code)
	var status payroll.FreezeStatusResponse
	decodeData(t, body, &status)
	assert.True(t, status.IsFrozen)
	require.NotNil(t, status.FrozenBy)
	assert.Equal(t, "user-manager", *status.FrozenBy)

	rec, _ = f.do(t, http.MethodPost, junePath+"/unfreeze", user.RoleOwner)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodPost, junePath+"/unfreeze", user.RoleOwner)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do(t, http.MethodPost, junePath+"/finalize", user.RoleOwner)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFreezeRoutes_InvalidPeriod(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"month out of range", "/api/v1/payroll/attendance-freezes/2025/13/finalize"},
		{"year out of range", "/api/v1/payroll/attendance-freezes/1999/6/finalize"},
		{"non numeric month", "/api/v1/payroll/attendance-freezes/2025/june/finalize"},
		{"negative month", "/api/v1/payroll/attendance-freezes/2025/-1/finalize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			rec, body := f.do(t, http.MethodPost, tt.path, user.RoleOwner)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			require.NotNil(t, body.Error)
			assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		})
	}
}

func TestFreezeRoutes_FinalizeWithoutData(t *testing.T) {
	f := newHandlerFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/v1/payroll/attendance-freezes/2025/8/finalize", user.RoleManager)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)

	rec, body = f.do(t, http.MethodGet, "/api/v1/payroll/attendance-freezes/2025/8", user.RoleManager)
	require.Equal(t, http.StatusOK, rec.Code)
	var status payroll.FreezeStatusResponse
	decodeData(t, body, &status)
	assert.False(t, status.IsFrozen)
}

func TestFreezeRoutes_ListSnapshots(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.do(t, http.MethodPost, junePath+"/finalize", user.RoleManager)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := f.do(t, http.MethodGet, junePath+"/snapshots?page=1&limit=1", user.RoleManager)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 1, body.Meta.Limit)
	assert.Equal(t, int64(2), body.Meta.TotalItems)
	assert.Equal(t, 2, body.Meta.TotalPages)

	var snapshots []payroll.SnapshotResponse
	decodeData(t, body, &snapshots)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "emp-1", snapshots[0].EmployeeID)

	rec, body = f.do(t, http.MethodGet, junePath+"/snapshots?employee_id=emp-2", user.RoleManager)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, body, &snapshots)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "emp-2", snapshots[0].EmployeeID)
	assert.Equal(t, "21", snapshots[0].TotalWorkingDays.String())

	rec, _ = f.do(t, http.MethodGet, junePath+"/snapshots?page=abc", user.RoleManager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, junePath+"/snapshots?limit=500", user.RoleManager)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFreezeRoutes_Register(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.do(t, http.MethodGet, junePath+"/register", user.RoleManager)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do(t, http.MethodGet, junePath+"/register.pdf", user.RoleManager)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do(t, http.MethodPost, junePath+"/finalize", user.RoleOwner)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := f.do(t, http.MethodGet, junePath+"/register", user.RoleManager)
	require.Equal(t, http.StatusOK, rec.Code)
	var register payroll.RegisterResponse
	decodeData(t, body, &register)
	assert.Len(t, register.Snapshots, 2)
	require.NotNil(t, register.FrozenBy)
	assert.Equal(t, "user-owner", *register.FrozenBy)

	rec, _ = f.do(t, http.MethodGet, junePath+"/register.pdf", user.RoleManager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance-register-2025-06.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestRouter_Heartbeat(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}
