package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/pkg/geo"
)

// Reason classifies why a position could not be produced.
type Reason string

const (
	ReasonPermissionDenied    Reason = "permission-denied"
	ReasonTimeout             Reason = "timeout"
	ReasonPositionUnavailable Reason = "position-unavailable"
)

// Error is a positioning failure with a stable reason code.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// ReasonOf extracts the failure reason, defaulting to
// position-unavailable for errors from outside this package.
func ReasonOf(err error) Reason {
	var locErr *Error
	if errors.As(err, &locErr) {
		return locErr.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonPositionUnavailable
}

// Sample is one positioning fix.
type Sample struct {
	Coordinate     geo.Coordinate `json:"coordinate"`
	AccuracyMeters float64        `json:"accuracy_meters"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Provider abstracts the device positioning source. Current blocks until
// a fix or ctx cancellation. Watch streams fixes until the returned stop
// function runs.
type Provider interface {
	Current(ctx context.Context) (Sample, error)
	Watch(ctx context.Context, onSample func(Sample), onError func(error)) (stop func(), err error)
}

const DefaultTimeout = 10 * time.Second

// Service issues one-shot and continuous position requests against a
// Provider with the acquisition policy the check-in flow needs: highest
// accuracy, bounded wait, no cached fixes.
type Service struct {
	provider Provider
	now      func() time.Time
}

func NewService(provider Provider) *Service {
	return &Service{provider: provider, now: time.Now}
}

// GetCurrentPosition requests a single fresh fix. A non-positive timeout
// falls back to DefaultTimeout. maxAge bounds how stale a returned fix may
// be; zero forbids cached samples entirely.
func (s *Service) GetCurrentPosition(ctx context.Context, timeout, maxAge time.Duration) (Sample, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// A fix older than this is a cached sample: maxAge zero accepts only
	// fixes acquired during this request.
	cutoff := s.now().Add(-maxAge)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sample, err := s.provider.Current(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return Sample{}, &Error{Reason: ReasonTimeout, Message: "no position fix within " + timeout.String()}
		}
		var locErr *Error
		if errors.As(err, &locErr) {
			return Sample{}, locErr
		}
		return Sample{}, &Error{Reason: ReasonPositionUnavailable, Message: err.Error()}
	}

	if sample.Timestamp.Before(cutoff) {
		return Sample{}, &Error{
			Reason:  ReasonPositionUnavailable,
			Message: fmt.Sprintf("cached fix from %s, maximum age %s", sample.Timestamp.Format(time.RFC3339), maxAge),
		}
	}

	return sample, nil
}

// CancelFunc stops a position watch. Safe to call more than once.
type CancelFunc func()

// WatchPosition subscribes to continuous fixes. Samples and errors are
// delivered through the callbacks until the returned cancel runs; cancel
// stops the underlying provider watch exactly once.
func (s *Service) WatchPosition(ctx context.Context, onSample func(Sample), onError func(error)) (CancelFunc, error) {
	stop, err := s.provider.Watch(ctx, onSample, onError)
	if err != nil {
		var locErr *Error
		if errors.As(err, &locErr) {
			return nil, locErr
		}
		return nil, &Error{Reason: ReasonPositionUnavailable, Message: err.Error()}
	}

	var once sync.Once
	return func() {
		once.Do(stop)
	}, nil
}
