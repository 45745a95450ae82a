package settings

import (
	"context"

	"github.com/sitepulse/attendance-backend-go/internal/domain/settings"
)

type SettingsService interface {
	Get(ctx context.Context) (settings.Response, error)
	Update(ctx context.Context, req settings.UpdateRequest) (settings.Response, error)
}

type settingsServiceImpl struct {
	settingsRepo settings.SettingsRepository
}

func NewSettingsService(settingsRepo settings.SettingsRepository) SettingsService {
	return &settingsServiceImpl{settingsRepo: settingsRepo}
}

func (s *settingsServiceImpl) Get(ctx context.Context) (settings.Response, error) {
	current, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return settings.Response{}, err
	}
	return settings.ToResponse(current), nil
}

func (s *settingsServiceImpl) Update(ctx context.Context, req settings.UpdateRequest) (settings.Response, error) {
	if err := req.Validate(); err != nil {
		return settings.Response{}, err
	}

	next := settings.Settings{
		RadiusMeters:              req.RadiusMeters,
		WorkingHoursStart:         req.WorkingHoursStart,
		WorkingHoursEnd:           req.WorkingHoursEnd,
		AllowEmployeeLocationView: req.AllowEmployeeLocationView,
	}

	if err := s.settingsRepo.Update(ctx, next); err != nil {
		return settings.Response{}, err
	}

	return settings.ToResponse(next), nil
}
