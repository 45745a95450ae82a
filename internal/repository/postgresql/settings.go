package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitepulse/attendance-backend-go/internal/domain/settings"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/database"

	"github.com/jackc/pgx/v5"
)

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.SettingsRepository {
	return &settingsRepository{db: db}
}

// The settings table holds a single row pinned to id 1.

// Get implements settings.SettingsRepository.
func (r *settingsRepository) Get(ctx context.Context) (settings.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT radius_meters, working_hours_start, working_hours_end,
		       allow_employee_location_view, updated_at
		FROM settings
		WHERE id = 1
	`

	var s settings.Settings
	err := q.QueryRow(ctx, query).Scan(
		&s.RadiusMeters, &s.WorkingHoursStart, &s.WorkingHoursEnd,
		&s.AllowEmployeeLocationView, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Defaults(), nil
		}
		return settings.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	return s, nil
}

// Update implements settings.SettingsRepository.
func (r *settingsRepository) Update(ctx context.Context, s settings.Settings) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO settings (
			id, radius_meters, working_hours_start, working_hours_end,
			allow_employee_location_view, updated_at
		) VALUES (
			1, $1, $2, $3, $4, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			radius_meters = EXCLUDED.radius_meters,
			working_hours_start = EXCLUDED.working_hours_start,
			working_hours_end = EXCLUDED.working_hours_end,
			allow_employee_location_view = EXCLUDED.allow_employee_location_view,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query,
		s.RadiusMeters, s.WorkingHoursStart, s.WorkingHoursEnd,
		s.AllowEmployeeLocationView,
	); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	return nil
}
