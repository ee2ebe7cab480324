package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/report"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type FreezeHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)
	Unfreeze(w http.ResponseWriter, r *http.Request)
	Preview(w http.ResponseWriter, r *http.Request)
	ListSnapshots(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	ExportRegister(w http.ResponseWriter, r *http.Request)
}

type freezeHandlerImpl struct {
	freezeService payroll.FreezeService
}

func NewFreezeHandler(freezeService payroll.FreezeService) FreezeHandler {
	return &freezeHandlerImpl{freezeService: freezeService}
}

// periodParams reads {year}/{month} from the route. Range checks are left to the service.
func periodParams(r *http.Request) (year, month int, err error) {
	var errs validator.ValidationErrors

	year, ok := validator.ParseNumeric(chi.URLParam(r, "year"))
	if !ok {
		errs.Add("year", "must be a number")
	}
	month, ok = validator.ParseNumeric(chi.URLParam(r, "month"))
	if !ok {
		errs.Add("month", "must be a number")
	}

	if err = errs.Err(); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func (h *freezeHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.freezeService.Status(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *freezeHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.freezeService.Finalize(r.Context(), payroll.FinalizeRequest{Year: year, Month: month})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance period finalized", result)
}

func (h *freezeHandlerImpl) Unfreeze(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.freezeService.Unfreeze(r.Context(), payroll.UnfreezeRequest{Year: year, Month: month}); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance period unfrozen", nil)
}

func (h *freezeHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.freezeService.Preview(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *freezeHandlerImpl) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := payroll.SnapshotFilter{Year: year, Month: month}
	query := r.URL.Query()

	if pageStr := query.Get("page"); pageStr != "" {
		page, ok := validator.ParseNumeric(pageStr)
		if !ok {
			response.BadRequest(w, "Invalid page parameter", nil)
			return
		}
		filter.Page = page
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, ok := validator.ParseNumeric(limitStr)
		if !ok {
			response.BadRequest(w, "Invalid limit parameter", nil)
			return
		}
		filter.Limit = limit
	}
	if query.Has("employee_id") {
		employeeID := query.Get("employee_id")
		filter.EmployeeID = &employeeID
	}

	result, err := h.freezeService.ListSnapshots(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, response.NewPageMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *freezeHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.freezeService.Register(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *freezeHandlerImpl) ExportRegister(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.freezeService.Register(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteRegister(&buf, result); err != nil {
		response.InternalServerError(w, "Failed to render attendance register")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.RegisterFilename(year, month)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
