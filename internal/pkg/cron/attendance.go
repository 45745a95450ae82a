package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/domain/settings"
)

const staleGracePeriod = 2 * time.Hour

// AttendanceJobs holds the repositories the scheduled attendance jobs need.
type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	settingsRepo   settings.SettingsRepository
	now            func() time.Time
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	settingsRepo settings.SettingsRepository,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		settingsRepo:   settingsRepo,
		now:            time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_attendances", 1*time.Hour, j.AutoCloseStaleAttendances)
}

// AutoCloseStaleAttendances stamps a check-out on records still open past
// the configured working-hours end plus a grace period. The check-out time
// written is the working-hours end of the record's day, not the moment the
// job ran.
func (j *AttendanceJobs) AutoCloseStaleAttendances(ctx context.Context) error {
	cfg, err := j.settingsRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	endOfDay, err := time.Parse("15:04", cfg.WorkingHoursEnd)
	if err != nil {
		return fmt.Errorf("invalid working hours end %q: %w", cfg.WorkingHoursEnd, err)
	}

	now := j.now().UTC()

	stale, err := j.attendanceRepo.ListOpenBefore(ctx, now.Add(-staleGracePeriod))
	if err != nil {
		return fmt.Errorf("failed to list open attendances: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	closedCount := 0
	for _, rec := range stale {
		closeAt := time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(),
			endOfDay.Hour(), endOfDay.Minute(), 0, 0, time.UTC)
		if now.Before(closeAt.Add(staleGracePeriod)) {
			// The record's working day (plus grace) is still running.
			continue
		}
		if rec.CheckInTime != nil && closeAt.Before(*rec.CheckInTime) {
			// Check-in after the nominal end of day; close at the
			// check-in time to keep check-out >= check-in.
			closeAt = *rec.CheckInTime
		}

		rec.CheckOutTime = &closeAt
		if err := j.attendanceRepo.Update(ctx, rec); err != nil {
			slog.Error("Cron: Failed to auto-close attendance",
				"record_id", rec.ID,
				"user_id", rec.UserID,
				"error", err)
			continue
		}
		closedCount++
	}

	slog.Info("Cron: Auto-closed stale attendances", "count", closedCount)
	return nil
}
