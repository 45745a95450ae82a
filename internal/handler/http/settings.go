package http

import (
	"encoding/json"
	"net/http"

	"github.com/sitepulse/attendance-backend-go/internal/domain/settings"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"
	settingsService "github.com/sitepulse/attendance-backend-go/internal/service/settings"
)

type SettingsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	settingsService settingsService.SettingsService
}

func NewSettingsHandler(service settingsService.SettingsService) SettingsHandler {
	return &settingsHandlerImpl{
		settingsService: service,
	}
}

// Get implements SettingsHandler.
func (h *settingsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.settingsService.Get(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Update implements SettingsHandler.
func (h *settingsHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.settingsService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settings updated", resp)
}
