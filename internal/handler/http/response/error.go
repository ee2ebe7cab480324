package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid token")

	// Freeze lifecycle
	case errors.Is(err, payroll.ErrAlreadyFrozen):
		Conflict(w, "Attendance period is already frozen")
	case errors.Is(err, payroll.ErrNotFrozen):
		Conflict(w, "Attendance period is not frozen")
	case errors.Is(err, payroll.ErrNoAttendanceData):
		NotFound(w, "No attendance records found for period")
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, "Invalid date range", nil)

	// Persistence failures are not detailed to the client
	case errors.Is(err, payroll.ErrPersistence):
		InternalServerError(w, "Failed to persist attendance snapshots")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
