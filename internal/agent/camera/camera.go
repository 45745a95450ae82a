package camera

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"github.com/disintegration/imaging"
)

// Facing selects which device camera a session uses.
type Facing string

const (
	FacingFront Facing = "front"
	FacingBack  Facing = "back"
)

// State is the capture session lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateAcquiring State = "acquiring"
	StateLive      State = "live"
	StateCaptured  State = "captured"
	StateConfirmed State = "confirmed"
	StateClosed    State = "closed"
)

// Reason classifies camera acquisition failures.
type Reason string

const (
	ReasonPermissionDenied  Reason = "permission-denied"
	ReasonDeviceUnavailable Reason = "device-unavailable"
)

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

// Stream is a live camera feed.
type Stream interface {
	Frame() (image.Image, error)
	Stop()
}

// Device abstracts the camera hardware.
type Device interface {
	Open(facing Facing) (Stream, error)
}

var errBadState = fmt.Errorf("operation not allowed in current state")

// Session drives one selfie capture: open a stream, freeze a frame,
// optionally retake or switch cameras, confirm or close. At most one
// stream is live at any point.
type Session struct {
	mu sync.Mutex

	device Device
	state  State
	facing Facing
	stream Stream
	frame  *string

	jpegQuality int
}

func NewSession(device Device) *Session {
	return &Session{
		device:      device,
		state:       StateIdle,
		jpegQuality: 90,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Facing() Facing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

// Frame returns the captured JPEG data URI, nil before capture.
func (s *Session) Frame() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Open acquires a stream at the requested facing. Valid from idle only.
func (s *Session) Open(facing Facing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("open from %s: %w", s.state, errBadState)
	}

	return s.acquireLocked(facing)
}

// acquireLocked opens a stream and moves the session to live. Callers
// hold the mutex and have no active stream.
func (s *Session) acquireLocked(facing Facing) error {
	s.state = StateAcquiring

	stream, err := s.device.Open(facing)
	if err != nil {
		s.state = StateIdle
		var camErr *Error
		if errors.As(err, &camErr) {
			return camErr
		}
		return &Error{Reason: ReasonDeviceUnavailable, Message: err.Error()}
	}

	s.stream = stream
	s.facing = facing
	s.state = StateLive
	return nil
}

// SwitchFacing reacquires the stream at the other camera. The old stream
// is stopped fully before the new one opens so two streams never coexist.
func (s *Session) SwitchFacing(facing Facing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLive {
		return fmt.Errorf("switch facing from %s: %w", s.state, errBadState)
	}
	if facing == s.facing {
		return nil
	}

	s.stream.Stop()
	s.stream = nil

	return s.acquireLocked(facing)
}

// CaptureFrame freezes the current frame as a JPEG data URI. A front
// facing frame is mirrored horizontally so the stored image matches the
// mirrored preview the user composed against.
func (s *Session) CaptureFrame() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLive {
		return "", fmt.Errorf("capture from %s: %w", s.state, errBadState)
	}

	frame, err := s.stream.Frame()
	if err != nil {
		return "", fmt.Errorf("failed to read camera frame: %w", err)
	}

	if s.facing == FacingFront {
		frame = imaging.FlipH(frame)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: s.jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}

	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	s.stream.Stop()
	s.stream = nil
	s.frame = &dataURI
	s.state = StateCaptured

	return dataURI, nil
}

// Retake discards the captured frame and reopens the stream at the
// facing selected before capture.
func (s *Session) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCaptured {
		return fmt.Errorf("retake from %s: %w", s.state, errBadState)
	}

	s.frame = nil

	return s.acquireLocked(s.facing)
}

// Confirm accepts the captured frame and ends the session.
func (s *Session) Confirm() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCaptured || s.frame == nil {
		return "", fmt.Errorf("confirm from %s: %w", s.state, errBadState)
	}

	s.state = StateConfirmed
	return *s.frame, nil
}

// Close releases the stream and frame. Idempotent; safe on every exit
// path.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}

	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
	}
	s.frame = nil
	s.state = StateClosed
}
