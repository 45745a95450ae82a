package http

import (
	"encoding/json"
	"net/http"

	"github.com/sitepulse/attendance-backend-go/internal/domain/department"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"
	departmentService "github.com/sitepulse/attendance-backend-go/internal/service/department"

	"github.com/go-chi/chi/v5"
)

type DepartmentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type departmentHandlerImpl struct {
	departmentService departmentService.DepartmentService
}

func NewDepartmentHandler(service departmentService.DepartmentService) DepartmentHandler {
	return &departmentHandlerImpl{
		departmentService: service,
	}
}

type departmentRequest struct {
	Name      string  `json:"name"`
	ManagerID *string `json:"manager_id"`
}

// Create implements DepartmentHandler.
func (h *departmentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.Name == "" {
		response.BadRequest(w, "Department name is required", nil)
		return
	}

	resp, err := h.departmentService.Create(r.Context(), req.Name, req.ManagerID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Department created", resp)
}

// Get implements DepartmentHandler.
func (h *departmentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.departmentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// List implements DepartmentHandler.
func (h *departmentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.departmentService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Update implements DepartmentHandler.
func (h *departmentHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.departmentService.Update(r.Context(), department.Department{
		ID:        chi.URLParam(r, "id"),
		Name:      req.Name,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Delete implements DepartmentHandler.
func (h *departmentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.departmentService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department deleted", nil)
}
