package http

import (
	"encoding/json"
	"net/http"

	"github.com/sitepulse/attendance-backend-go/internal/domain/leave"
	"github.com/sitepulse/attendance-backend-go/internal/domain/user"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/middleware"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"
	leaveService "github.com/sitepulse/attendance-backend-go/internal/service/leave"

	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	MyRequests(w http.ResponseWriter, r *http.Request)
	DepartmentRequests(w http.ResponseWriter, r *http.Request)
	PendingAdmin(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leaveService.LeaveService
}

func NewLeaveHandler(service leaveService.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService: service,
	}
}

// Create implements LeaveHandler.
func (h *leaveHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	userID, _, _, department := middleware.Claims(r)
	req.UserID = userID
	req.Department = department

	resp, err := h.leaveService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request filed", resp)
}

// MyRequests implements LeaveHandler.
func (h *leaveHandlerImpl) MyRequests(w http.ResponseWriter, r *http.Request) {
	userID, _, _, _ := middleware.Claims(r)

	resp, err := h.leaveService.MyRequests(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// DepartmentRequests implements LeaveHandler.
func (h *leaveHandlerImpl) DepartmentRequests(w http.ResponseWriter, r *http.Request) {
	_, _, _, department := middleware.Claims(r)

	resp, err := h.leaveService.DepartmentRequests(r.Context(), department)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// PendingAdmin implements LeaveHandler.
func (h *leaveHandlerImpl) PendingAdmin(w http.ResponseWriter, r *http.Request) {
	resp, err := h.leaveService.PendingAdmin(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func actorFromClaims(r *http.Request) user.User {
	userID, username, role, department := middleware.Claims(r)
	return user.User{
		ID:         userID,
		Username:   username,
		Role:       user.Role(role),
		Department: department,
	}
}

// Approve implements LeaveHandler.
func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resp, err := h.leaveService.Approve(r.Context(), id, actorFromClaims(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved", resp)
}

// Reject implements LeaveHandler.
func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resp, err := h.leaveService.Reject(r.Context(), id, actorFromClaims(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", resp)
}
