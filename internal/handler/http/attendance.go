package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/middleware"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"
	attendanceService "github.com/sitepulse/attendance-backend-go/internal/service/attendance"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	MyHistory(w http.ResponseWriter, r *http.Request)
	ListByDate(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendanceService.AttendanceService
}

func NewAttendanceHandler(service attendanceService.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: service,
	}
}

func decodeCheckRequest(r *http.Request) (attendance.CheckRequest, error) {
	var req attendance.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return attendance.CheckRequest{}, err
	}
	userID, _, _, _ := middleware.Claims(r)
	req.UserID = userID
	return req, nil
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCheckRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checked in", resp)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCheckRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	userID, _, _, _ := middleware.Claims(r)

	resp, err := h.attendanceService.Today(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// MyHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) MyHistory(w http.ResponseWriter, r *http.Request) {
	userID, _, _, _ := middleware.Claims(r)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	resp, err := h.attendanceService.MyHistory(r.Context(), userID, limit, offset)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, resp.Records, &response.Meta{
		Limit:      limit,
		Offset:     offset,
		TotalItems: resp.TotalCount,
	})
}

// ListByDate implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	date := time.Now().UTC()
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			response.BadRequest(w, "Invalid date, expected YYYY-MM-DD", nil)
			return
		}
		date = parsed
	}

	resp, err := h.attendanceService.ListByDate(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
