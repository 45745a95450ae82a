package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/agent/camera"
	"github.com/sitepulse/attendance-backend-go/internal/agent/location"
	"github.com/sitepulse/attendance-backend-go/internal/agent/offline"
	"github.com/sitepulse/attendance-backend-go/internal/agent/store"
	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/geo"
)

// State is the attendance attempt lifecycle.
type State string

const (
	StateIdle                      State = "idle"
	StateAwaitingLocationAndCamera State = "awaiting-location-and-camera"
	StateReady                     State = "ready"
	StateCaptured                  State = "captured"
	StateConfirming                State = "confirming"
)

var (
	ErrAttemptInProgress = errors.New("an attendance attempt is already in progress")
	ErrWrongDayStatus    = errors.New("action does not match the current day status")
	ErrNothingCaptured   = errors.New("no captured selfie to confirm")
	ErrNoLocationFix     = errors.New("no location fix, cannot confirm")
	ErrOutsideFence      = errors.New("outside the allowed site radius")
)

// SyncError wraps a partial offline drain.
type SyncError struct {
	Remaining int
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("offline sync incomplete, %d entries pending: %v", e.Remaining, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Config holds the fixed per-user attempt parameters.
type Config struct {
	UserID          string
	Site            geo.Coordinate
	RadiusMeters    float64
	LocationTimeout time.Duration
}

// Session orchestrates one employee's attendance attempts: it pairs the
// camera capture flow with a concurrent one-shot location fix, gates
// confirmation on the geofence, and routes the confirmed payload to the
// record store or, without connectivity, to the offline queue.
type Session struct {
	mu sync.Mutex

	cfg       Config
	locations *location.Service
	device    camera.Device
	records   store.RecordStore
	queue     *offline.Queue
	online    func() bool
	now       func() time.Time

	state     State
	action    attendance.Action
	capture   *camera.Session
	dayStatus attendance.DayStatus

	// per-attempt location outcome
	sample         *location.Sample
	locationErr    error
	distanceMeters float64
	withinFence    bool

	cancelLocation context.CancelFunc

	// attempt increments on every Begin and Close; a location fix landing
	// with a stale attempt number writes nothing.
	attempt int
}

func New(cfg Config, locations *location.Service, device camera.Device, records store.RecordStore, queue *offline.Queue, online func() bool) *Session {
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = location.DefaultTimeout
	}
	if online == nil {
		online = func() bool { return true }
	}
	return &Session{
		cfg:       cfg,
		locations: locations,
		device:    device,
		records:   records,
		queue:     queue,
		online:    online,
		now:       time.Now,
		state:     StateIdle,
		dayStatus: attendance.StatusNotCheckedIn,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DayStatus is the session's view of today's attendance.
func (s *Session) DayStatus() attendance.DayStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dayStatus
}

// RefreshDayStatus reloads today's record from the store and re-derives
// the day status.
func (s *Session) RefreshDayStatus(ctx context.Context) error {
	rec, err := s.records.FindTodaysRecord(ctx, s.cfg.UserID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case rec == nil || rec.CheckInTime == nil:
		s.dayStatus = attendance.StatusNotCheckedIn
	case rec.CheckOutTime == nil:
		s.dayStatus = attendance.StatusCheckedIn
	default:
		s.dayStatus = attendance.StatusCheckedOut
	}
	return nil
}

// LocationOutcome is the attempt's location result: the fix (nil until
// resolved or on failure), the distance to the site, and the fence
// verdict.
type LocationOutcome struct {
	Sample         *location.Sample
	Err            error
	DistanceMeters float64
	WithinFence    bool
}

func (s *Session) Location() LocationOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LocationOutcome{
		Sample:         s.sample,
		Err:            s.locationErr,
		DistanceMeters: s.distanceMeters,
		WithinFence:    s.withinFence,
	}
}

// Begin starts an attendance attempt: guards the action against the
// derived day status, opens the front camera, and requests a one-shot
// location fix concurrently.
func (s *Session) Begin(ctx context.Context, action attendance.Action) error {
	s.mu.Lock()

	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAttemptInProgress
	}
	if !action.Valid() {
		s.mu.Unlock()
		return fmt.Errorf("unknown action %q", action)
	}

	switch action {
	case attendance.ActionCheckIn:
		if s.dayStatus != attendance.StatusNotCheckedIn {
			s.mu.Unlock()
			return ErrWrongDayStatus
		}
	case attendance.ActionCheckOut:
		if s.dayStatus != attendance.StatusCheckedIn {
			s.mu.Unlock()
			return ErrWrongDayStatus
		}
	}

	capture := camera.NewSession(s.device)
	s.mu.Unlock()

	// Camera opens outside the lock; acquisition may block on hardware.
	if err := capture.Open(camera.FacingFront); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		capture.Close()
		return ErrAttemptInProgress
	}

	s.action = action
	s.capture = capture
	s.sample = nil
	s.locationErr = nil
	s.distanceMeters = 0
	s.withinFence = false
	s.state = StateAwaitingLocationAndCamera
	s.attempt++

	locCtx, cancel := context.WithCancel(ctx)
	s.cancelLocation = cancel
	go s.resolveLocation(locCtx, s.attempt)

	return nil
}

// resolveLocation runs the one-shot fix off the calling goroutine and
// folds the outcome back into the attempt, unless the attempt has ended.
func (s *Session) resolveLocation(ctx context.Context, attempt int) {
	sample, err := s.locations.GetCurrentPosition(ctx, s.cfg.LocationTimeout, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempt != attempt {
		return
	}

	if err != nil {
		s.locationErr = err
		s.sample = nil
		s.withinFence = false
	} else {
		s.sample = &sample
		s.locationErr = nil
		s.distanceMeters = geo.Distance(s.cfg.Site, sample.Coordinate)
		s.withinFence = geo.WithinFence(s.distanceMeters, s.cfg.RadiusMeters)
	}

	if s.state == StateAwaitingLocationAndCamera {
		s.state = StateReady
	}
}

// Capture freezes a selfie frame. Allowed as soon as the camera is live,
// even while the location fix is still pending.
func (s *Session) Capture() (string, error) {
	s.mu.Lock()
	if s.state != StateAwaitingLocationAndCamera && s.state != StateReady {
		s.mu.Unlock()
		return "", fmt.Errorf("capture in state %s", s.state)
	}
	capture := s.capture
	s.mu.Unlock()

	frame, err := capture.CaptureFrame()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == capture {
		s.state = StateCaptured
	}
	return frame, nil
}

// Retake discards the captured frame and goes back to the live preview.
func (s *Session) Retake() error {
	s.mu.Lock()
	if s.state != StateCaptured {
		s.mu.Unlock()
		return fmt.Errorf("retake in state %s", s.state)
	}
	capture := s.capture
	s.mu.Unlock()

	if err := capture.Retake(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == capture {
		if s.sample != nil || s.locationErr != nil {
			s.state = StateReady
		} else {
			s.state = StateAwaitingLocationAndCamera
		}
	}
	return nil
}

// SwitchFacing flips between front and back camera during the preview.
func (s *Session) SwitchFacing(facing camera.Facing) error {
	s.mu.Lock()
	capture := s.capture
	s.mu.Unlock()

	if capture == nil {
		return fmt.Errorf("no active capture session")
	}
	return capture.SwitchFacing(facing)
}

// Confirm submits the attempt. It requires a captured frame, a resolved
// location fix, and a position inside the fence. Online the payload goes
// straight to the record store; offline it is queued for later sync. The
// day status flips optimistically either way.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()

	if s.state != StateCaptured {
		s.mu.Unlock()
		return ErrNothingCaptured
	}
	frame := s.capture.Frame()
	if frame == nil {
		s.mu.Unlock()
		return ErrNothingCaptured
	}
	if s.sample == nil {
		err := s.locationErr
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoLocationFix, err)
		}
		return ErrNoLocationFix
	}
	if !s.withinFence {
		s.mu.Unlock()
		return ErrOutsideFence
	}

	s.state = StateConfirming
	action := s.action
	sample := *s.sample
	attempt := s.attempt
	timestamp := s.now().UTC().Format(time.RFC3339)
	s.mu.Unlock()

	req := attendance.CheckRequest{
		UserID:         s.cfg.UserID,
		Latitude:       sample.Coordinate.Latitude,
		Longitude:      sample.Coordinate.Longitude,
		AccuracyMeters: sample.AccuracyMeters,
		Selfie:         *frame,
		Timestamp:      &timestamp,
	}

	var submitErr error
	if s.online() {
		submitErr = s.submit(ctx, action, req)
		if errors.Is(submitErr, store.ErrStoreUnreachable) {
			submitErr = s.enqueue(action, req)
		}
	} else {
		submitErr = s.enqueue(action, req)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if submitErr != nil {
		// The attempt survives a failed submit; the user may retry.
		if s.attempt == attempt {
			s.state = StateCaptured
		}
		return submitErr
	}

	switch action {
	case attendance.ActionCheckIn:
		s.dayStatus = attendance.StatusCheckedIn
	case attendance.ActionCheckOut:
		s.dayStatus = attendance.StatusCheckedOut
	}

	// Close may have raced the submit; the attempt is already reset then.
	if s.attempt == attempt {
		s.resetLocked()
	}
	return nil
}

func (s *Session) submit(ctx context.Context, action attendance.Action, req attendance.CheckRequest) error {
	var err error
	if action == attendance.ActionCheckIn {
		_, err = s.records.CreateRecord(ctx, req)
	} else {
		_, err = s.records.AppendCheckout(ctx, req)
	}
	return err
}

func (s *Session) enqueue(action attendance.Action, req attendance.CheckRequest) error {
	if s.queue == nil {
		return store.ErrStoreUnreachable
	}
	return s.queue.Append(offline.Entry{
		UserID:    req.UserID,
		Action:    string(action),
		Timestamp: *req.Timestamp,
		Location: &location.Sample{
			Coordinate:     geo.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
			AccuracyMeters: req.AccuracyMeters,
		},
		Image: &req.Selfie,
	})
}

// Close aborts the current attempt: the in-flight location request is
// cancelled, the camera released synchronously, and per-attempt state
// cleared. Safe to call at any time, from any state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// resetLocked clears per-attempt state. Callers hold the mutex.
func (s *Session) resetLocked() {
	s.attempt++

	if s.cancelLocation != nil {
		s.cancelLocation()
		s.cancelLocation = nil
	}
	if s.capture != nil {
		s.capture.Close()
		s.capture = nil
	}

	s.sample = nil
	s.locationErr = nil
	s.distanceMeters = 0
	s.withinFence = false
	s.action = ""
	s.state = StateIdle
}

// SyncOffline drains the offline queue into the record store, oldest
// first. An entry the store already has counts as applied. A partial
// drain keeps the remainder queued and reports a SyncError.
func (s *Session) SyncOffline(ctx context.Context) error {
	if s.queue == nil {
		return nil
	}

	err := s.queue.Drain(ctx, func(entry offline.Entry) error {
		req := attendance.CheckRequest{
			UserID:    entry.UserID,
			Selfie:    "",
			Timestamp: &entry.Timestamp,
		}
		if entry.Location != nil {
			req.Latitude = entry.Location.Coordinate.Latitude
			req.Longitude = entry.Location.Coordinate.Longitude
			req.AccuracyMeters = entry.Location.AccuracyMeters
		}
		if entry.Image != nil {
			req.Selfie = *entry.Image
		}

		applyErr := s.submit(ctx, attendance.Action(entry.Action), req)
		if errors.Is(applyErr, store.ErrRecordExists) {
			return nil
		}
		return applyErr
	})
	if err != nil {
		var drainErr *offline.DrainError
		if errors.As(err, &drainErr) {
			return &SyncError{Remaining: drainErr.Remaining, Err: drainErr.Err}
		}
		return err
	}
	return nil
}
