package session

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/agent/camera"
	"github.com/sitepulse/attendance-backend-go/internal/agent/location"
	"github.com/sitepulse/attendance-backend-go/internal/agent/offline"
	"github.com/sitepulse/attendance-backend-go/internal/agent/store"
	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var site = geo.Coordinate{Latitude: 26.6814, Longitude: 68.0169}

// fixProvider serves a configurable fix; with hold set it blocks until
// release (or ctx cancellation).
type fixProvider struct {
	sample  location.Sample
	err     error
	hold    bool
	release chan struct{}
}

func (p *fixProvider) Current(ctx context.Context) (location.Sample, error) {
	if p.hold {
		select {
		case <-p.release:
		case <-ctx.Done():
			return location.Sample{}, ctx.Err()
		}
	}
	if p.err != nil {
		return location.Sample{}, p.err
	}
	p.sample.Timestamp = time.Now()
	return p.sample, nil
}

func (p *fixProvider) Watch(context.Context, func(location.Sample), func(error)) (func(), error) {
	return func() {}, nil
}

type fakeStream struct{}

func (fakeStream) Frame() (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	return img, nil
}
func (fakeStream) Stop() {}

type fakeDevice struct{ opens int }

func (d *fakeDevice) Open(camera.Facing) (camera.Stream, error) {
	d.opens++
	return fakeStream{}, nil
}

func onSiteFix() location.Sample {
	return location.Sample{Coordinate: site, AccuracyMeters: 10}
}

func offSiteFix() location.Sample {
	return location.Sample{
		Coordinate:     geo.Coordinate{Latitude: site.Latitude + 0.01, Longitude: site.Longitude},
		AccuracyMeters: 10,
	}
}

type testHarness struct {
	session *Session
	records *store.Memory
	queue   *offline.Queue
	online  bool
}

func newHarness(t *testing.T, provider location.Provider) *testHarness {
	t.Helper()

	h := &testHarness{
		records: store.NewMemory(),
		queue:   offline.NewQueue(filepath.Join(t.TempDir(), offline.DefaultFilename)),
		online:  true,
	}
	h.session = New(
		Config{UserID: "user001", Site: site, RadiusMeters: 200, LocationTimeout: time.Second},
		location.NewService(provider),
		&fakeDevice{},
		h.records,
		h.queue,
		func() bool { return h.online },
	)
	return h
}

func waitReady(t *testing.T, s *Session) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.State() == StateReady
	}, time.Second, 5*time.Millisecond)
}

func TestFullCheckInFlow(t *testing.T) {
	h := newHarness(t, &fixProvider{sample: onSiteFix()})
	ctx := context.Background()

	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	waitReady(t, h.session)

	outcome := h.session.Location()
	require.NoError(t, outcome.Err)
	assert.True(t, outcome.WithinFence)
	assert.Less(t, outcome.DistanceMeters, 1.0)

	frame, err := h.session.Capture()
	require.NoError(t, err)
	assert.Contains(t, frame, "data:image/jpeg;base64,")

	require.NoError(t, h.session.Confirm(ctx))
	assert.Equal(t, StateIdle, h.session.State())
	assert.Equal(t, attendance.StatusCheckedIn, h.session.DayStatus())

	rec, err := h.records.FindTodaysRecord(ctx, "user001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotNil(t, rec.CheckInTime)
}

func TestBeginGuardsDayStatus(t *testing.T) {
	h := newHarness(t, &fixProvider{sample: onSiteFix()})
	ctx := context.Background()

	// Check-out before any check-in is rejected.
	assert.ErrorIs(t, h.session.Begin(ctx, attendance.ActionCheckOut), ErrWrongDayStatus)

	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	waitReady(t, h.session)
	_, err := h.session.Capture()
	require.NoError(t, err)
	require.NoError(t, h.session.Confirm(ctx))

	// Second check-in the same day is rejected.
	assert.ErrorIs(t, h.session.Begin(ctx, attendance.ActionCheckIn), ErrWrongDayStatus)

	// Check-out is now the valid action.
	assert.NoError(t, h.session.Begin(ctx, attendance.ActionCheckOut))
}

func TestConfirmBlockedOutsideFence(t *testing.T) {
	h := newHarness(t, &fixProvider{sample: offSiteFix()})
	ctx := context.Background()

	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	waitReady(t, h.session)

	outcome := h.session.Location()
	assert.False(t, outcome.WithinFence)
	assert.Greater(t, outcome.DistanceMeters, 200.0)

	_, err := h.session.Capture()
	require.NoError(t, err)

	assert.ErrorIs(t, h.session.Confirm(ctx), ErrOutsideFence)
	assert.Equal(t, StateCaptured, h.session.State(), "attempt stays open after a blocked confirm")
}

func TestConfirmBlockedWithoutLocationFix(t *testing.T) {
	h := newHarness(t, &fixProvider{err: &location.Error{Reason: location.ReasonPermissionDenied}})
	ctx := context.Background()

	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	waitReady(t, h.session)

	outcome := h.session.Location()
	require.Error(t, outcome.Err)
	assert.Equal(t, location.ReasonPermissionDenied, location.ReasonOf(outcome.Err))

	_, err := h.session.Capture()
	require.NoError(t, err)

	assert.ErrorIs(t, h.session.Confirm(ctx), ErrNoLocationFix)
	assert.Equal(t, StateCaptured, h.session.State())
}

func TestConfirmRequiresCapturedFrame(t *testing.T) {
	h := newHarness(t, &fixProvider{sample: onSiteFix()})
	ctx := context.Background()

	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	waitReady(t, h.session)

	assert.ErrorIs(t, h.session.Confirm(ctx), ErrNothingCaptured)
}

func TestCaptureAllowedWhileLocationPending(t *testing.T) {
	provider := &fixProvider{sample: onSiteFix(), hold: true, release: make(chan struct{})}
	h := newHarness(t, provider)
	ctx := context.Background()

	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	assert.Equal(t, StateAwaitingLocationAndCamera, h.session.State())

	_, err := h.session.Capture()
	require.NoError(t, err)
	assert.Equal(t, StateCaptured, h.session.State())

	// Fix lands after capture; confirm then passes.
	close(provider.release)
	require.Eventually(t, func() bool {
		return h.session.Location().Sample != nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, h.session.Confirm(ctx))
}

func TestOfflineConfirmQueuesAndSyncDrains(t *testing.T) {
	h := newHarness(t, &fixProvider{sample: onSiteFix()})
	h.online = false
	ctx := context.Background()

	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	waitReady(t, h.session)
	_, err := h.session.Capture()
	require.NoError(t, err)

	require.NoError(t, h.session.Confirm(ctx))
	assert.Equal(t, attendance.StatusCheckedIn, h.session.DayStatus(), "status flips optimistically offline")

	n, err := h.queue.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := h.records.FindTodaysRecord(ctx, "user001")
	require.NoError(t, err)
	assert.Nil(t, rec, "nothing reaches the store while offline")

	// Connectivity returns; the queued entry drains into the store.
	h.online = true
	require.NoError(t, h.session.SyncOffline(ctx))

	n, err = h.queue.Len()
	require.NoError(t, err)
	assert.Zero(t, n)

	rec, err = h.records.FindTodaysRecord(ctx, "user001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.CheckInTime)
}

func TestQueuedCheckoutKeepsCaptureOrder(t *testing.T) {
	h := newHarness(t, &fixProvider{sample: onSiteFix()})
	ctx := context.Background()

	checkAction := func(action attendance.Action) {
		require.NoError(t, h.session.Begin(ctx, action))
		waitReady(t, h.session)
		_, err := h.session.Capture()
		require.NoError(t, err)
		require.NoError(t, h.session.Confirm(ctx))
	}

	h.online = false
	checkAction(attendance.ActionCheckIn)
	checkAction(attendance.ActionCheckOut)

	entries, err := h.queue.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "check-in", entries[0].Action)
	assert.Equal(t, "check-out", entries[1].Action)

	h.online = true
	require.NoError(t, h.session.SyncOffline(ctx))

	rec, err := h.records.FindTodaysRecord(ctx, "user001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotNil(t, rec.CheckInTime)
	assert.NotNil(t, rec.CheckOutTime)
}

func TestSyncOfflineReportsPartialDrain(t *testing.T) {
	h := newHarness(t, &fixProvider{sample: onSiteFix()})
	ctx := context.Background()

	h.online = false
	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	waitReady(t, h.session)
	_, err := h.session.Capture()
	require.NoError(t, err)
	require.NoError(t, h.session.Confirm(ctx))

	// The store stays unreachable during the sync attempt.
	h.online = true
	h.records.SetOffline(true)

	err = h.session.SyncOffline(ctx)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, 1, syncErr.Remaining)

	// The entry survives for the next attempt.
	h.records.SetOffline(false)
	require.NoError(t, h.session.SyncOffline(ctx))
	n, err := h.queue.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCloseCancelsInFlightLocation(t *testing.T) {
	provider := &fixProvider{sample: onSiteFix(), hold: true, release: make(chan struct{})}
	h := newHarness(t, provider)
	ctx := context.Background()

	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	h.session.Close()
	assert.Equal(t, StateIdle, h.session.State())

	// The late fix must not resurrect the attempt.
	close(provider.release)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateIdle, h.session.State())
	assert.Nil(t, h.session.Location().Sample)
}

func TestBeginRejectedWhileAttemptInProgress(t *testing.T) {
	h := newHarness(t, &fixProvider{sample: onSiteFix()})
	ctx := context.Background()

	require.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
	assert.ErrorIs(t, h.session.Begin(ctx, attendance.ActionCheckIn), ErrAttemptInProgress)

	h.session.Close()
	assert.NoError(t, h.session.Begin(ctx, attendance.ActionCheckIn))
}

func TestRefreshDayStatusProjectsStoreRecord(t *testing.T) {
	h := newHarness(t, &fixProvider{sample: onSiteFix()})
	ctx := context.Background()

	require.NoError(t, h.session.RefreshDayStatus(ctx))
	assert.Equal(t, attendance.StatusNotCheckedIn, h.session.DayStatus())

	selfie := "data:image/jpeg;base64,aGVsbG8="
	_, err := h.records.CreateRecord(ctx, attendance.CheckRequest{
		UserID: "user001", Latitude: site.Latitude, Longitude: site.Longitude, Selfie: selfie,
	})
	require.NoError(t, err)

	require.NoError(t, h.session.RefreshDayStatus(ctx))
	assert.Equal(t, attendance.StatusCheckedIn, h.session.DayStatus())

	_, err = h.records.AppendCheckout(ctx, attendance.CheckRequest{
		UserID: "user001", Latitude: site.Latitude, Longitude: site.Longitude, Selfie: selfie,
	})
	require.NoError(t, err)

	require.NoError(t, h.session.RefreshDayStatus(ctx))
	assert.Equal(t, attendance.StatusCheckedOut, h.session.DayStatus())
}
