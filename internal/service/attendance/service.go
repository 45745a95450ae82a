package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/config"
	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/domain/settings"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/geo"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/sse"
	"github.com/sitepulse/attendance-backend-go/internal/service/file"
)

type AttendanceService interface {
	// CheckIn records a new attendance for the user's current day. Fails
	// when a record for the day already exists or the reported location
	// falls outside the site geofence.
	CheckIn(ctx context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error)

	// CheckOut completes today's open record. Fails when the user has not
	// checked in or has already checked out.
	CheckOut(ctx context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error)

	// Today returns the user's derived day status with today's record if
	// one exists.
	Today(ctx context.Context, userID string) (attendance.TodayResponse, error)

	MyHistory(ctx context.Context, userID string, limit, offset int) (attendance.ListResponse, error)
	ListByDate(ctx context.Context, date time.Time) ([]attendance.RecordResponse, error)
}

// TxRunner executes fn atomically. Repository calls made with the
// context fn receives share one database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type attendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	settingsRepo   settings.SettingsRepository
	fileService    file.FileService
	hub            *sse.Hub
	site           config.SiteConfig
	runTx          TxRunner
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	settingsRepo settings.SettingsRepository,
	fileService file.FileService,
	hub *sse.Hub,
	site config.SiteConfig,
	runTx TxRunner,
) AttendanceService {
	return &attendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		settingsRepo:   settingsRepo,
		fileService:    fileService,
		hub:            hub,
		site:           site,
		runTx:          runTx,
		now:            time.Now,
	}
}

func (s *attendanceServiceImpl) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.runTx == nil {
		return fn(ctx)
	}
	return s.runTx(ctx, fn)
}

// fenceRadius resolves the effective geofence radius: the admin-managed
// settings value when present, the configured site radius otherwise.
func (s *attendanceServiceImpl) fenceRadius(ctx context.Context) float64 {
	cfg, err := s.settingsRepo.Get(ctx)
	if err != nil || cfg.RadiusMeters <= 0 {
		return s.site.RadiusMeters
	}
	return cfg.RadiusMeters
}

func (s *attendanceServiceImpl) checkFence(ctx context.Context, lat, lng float64) error {
	site := geo.Coordinate{Latitude: s.site.Latitude, Longitude: s.site.Longitude}
	device := geo.Coordinate{Latitude: lat, Longitude: lng}

	distance := geo.Distance(site, device)
	if !geo.WithinFence(distance, s.fenceRadius(ctx)) {
		return attendance.ErrOutsideAllowedRadius
	}
	return nil
}

func (s *attendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	at := req.EffectiveTime(s.now())
	day := attendance.DayOf(at)

	var created attendance.Record
	err := s.inTx(ctx, func(ctx context.Context) error {
		existing, err := s.attendanceRepo.GetByUserAndDate(ctx, req.UserID, day)
		if err != nil {
			return err
		}
		if existing != nil {
			return attendance.ErrAlreadyCheckedIn
		}

		if err := s.checkFence(ctx, req.Latitude, req.Longitude); err != nil {
			return err
		}

		selfieURL, err := s.fileService.UploadSelfie(ctx, req.UserID, day, req.Selfie, string(attendance.ActionCheckIn))
		if err != nil {
			return fmt.Errorf("failed to store check-in selfie: %w", err)
		}

		rec := attendance.Record{
			UserID:      req.UserID,
			Date:        day,
			CheckInTime: &at,
			CheckInLocation: &attendance.Location{
				Latitude:       req.Latitude,
				Longitude:      req.Longitude,
				AccuracyMeters: req.AccuracyMeters,
			},
			CheckInSelfie: &selfieURL,
		}

		created, err = s.attendanceRepo.Create(ctx, rec)
		return err
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	s.publish("attendance.checked_in", created)

	return attendance.ToResponse(created), nil
}

func (s *attendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	at := req.EffectiveTime(s.now())
	day := attendance.DayOf(at)

	var out attendance.Record
	err := s.inTx(ctx, func(ctx context.Context) error {
		rec, err := s.attendanceRepo.GetByUserAndDate(ctx, req.UserID, day)
		if err != nil {
			return err
		}
		if rec == nil || rec.CheckInTime == nil {
			return attendance.ErrNotCheckedIn
		}
		if rec.CheckOutTime != nil {
			return attendance.ErrAlreadyCheckedOut
		}

		if err := s.checkFence(ctx, req.Latitude, req.Longitude); err != nil {
			return err
		}

		// Replayed offline check-outs can carry a timestamp older than the
		// recorded check-in; clamp so the record stays ordered.
		if at.Before(*rec.CheckInTime) {
			at = *rec.CheckInTime
		}

		selfieURL, err := s.fileService.UploadSelfie(ctx, req.UserID, day, req.Selfie, string(attendance.ActionCheckOut))
		if err != nil {
			return fmt.Errorf("failed to store check-out selfie: %w", err)
		}

		rec.CheckOutTime = &at
		rec.CheckOutLocation = &attendance.Location{
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			AccuracyMeters: req.AccuracyMeters,
		}
		rec.CheckOutSelfie = &selfieURL

		if err := s.attendanceRepo.Update(ctx, *rec); err != nil {
			return err
		}
		out = *rec
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	s.publish("attendance.checked_out", out)

	return attendance.ToResponse(out), nil
}

func (s *attendanceServiceImpl) Today(ctx context.Context, userID string) (attendance.TodayResponse, error) {
	day := attendance.DayOf(s.now().UTC())

	rec, err := s.attendanceRepo.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	resp := attendance.TodayResponse{Status: attendance.DeriveDayStatus(rec)}
	if rec != nil {
		r := attendance.ToResponse(*rec)
		resp.Record = &r
	}

	return resp, nil
}

func (s *attendanceServiceImpl) MyHistory(ctx context.Context, userID string, limit, offset int) (attendance.ListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.attendanceRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return attendance.ListResponse{}, err
	}

	resp := attendance.ListResponse{
		TotalCount: total,
		Records:    make([]attendance.RecordResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, attendance.ToResponse(rec))
	}

	return resp, nil
}

func (s *attendanceServiceImpl) ListByDate(ctx context.Context, date time.Time) ([]attendance.RecordResponse, error) {
	records, err := s.attendanceRepo.ListByDate(ctx, attendance.DayOf(date))
	if err != nil {
		return nil, err
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToResponse(rec))
	}

	return responses, nil
}

func (s *attendanceServiceImpl) publish(event string, rec attendance.Record) {
	if s.hub == nil {
		return
	}

	s.hub.Publish(sse.Event{
		Topic: "all",
		Event: event,
		Data:  attendance.ToResponse(rec),
	})

	slog.Debug("published attendance event", "event", event, "user_id", rec.UserID)
}
