package location

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	sample    Sample
	err       error
	delay     time.Duration
	watchStop atomic.Int32
}

func (p *stubProvider) Current(ctx context.Context) (Sample, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return Sample{}, ctx.Err()
		}
	}
	if p.err != nil {
		return Sample{}, p.err
	}
	return p.sample, nil
}

func (p *stubProvider) Watch(_ context.Context, onSample func(Sample), _ func(error)) (func(), error) {
	if p.err != nil {
		return nil, p.err
	}
	onSample(p.sample)
	return func() { p.watchStop.Add(1) }, nil
}

func freshSample(now time.Time) Sample {
	return Sample{
		Coordinate:     geo.Coordinate{Latitude: 26.6814, Longitude: 68.0169},
		AccuracyMeters: 8,
		Timestamp:      now,
	}
}

func TestGetCurrentPositionReturnsFreshFix(t *testing.T) {
	now := time.Now()
	svc := NewService(&stubProvider{sample: freshSample(now)})
	svc.now = func() time.Time { return now }

	sample, err := svc.GetCurrentPosition(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 26.6814, sample.Coordinate.Latitude, 1e-9)
}

func TestGetCurrentPositionRejectsCachedFix(t *testing.T) {
	now := time.Now()
	svc := NewService(&stubProvider{sample: freshSample(now.Add(-time.Minute))})
	svc.now = func() time.Time { return now }

	_, err := svc.GetCurrentPosition(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Equal(t, ReasonPositionUnavailable, ReasonOf(err))
}

func TestGetCurrentPositionTimesOut(t *testing.T) {
	svc := NewService(&stubProvider{delay: time.Second})

	start := time.Now()
	_, err := svc.GetCurrentPosition(context.Background(), 20*time.Millisecond, 0)
	require.Error(t, err)
	assert.Equal(t, ReasonTimeout, ReasonOf(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestGetCurrentPositionKeepsProviderReason(t *testing.T) {
	svc := NewService(&stubProvider{err: &Error{Reason: ReasonPermissionDenied}})

	_, err := svc.GetCurrentPosition(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Equal(t, ReasonPermissionDenied, ReasonOf(err))
}

func TestWatchPositionDeliversSamples(t *testing.T) {
	provider := &stubProvider{sample: freshSample(time.Now())}
	svc := NewService(provider)

	var got []Sample
	cancel, err := svc.WatchPosition(context.Background(), func(s Sample) {
		got = append(got, s)
	}, func(error) {})
	require.NoError(t, err)
	require.Len(t, got, 1)

	cancel()
	assert.Equal(t, int32(1), provider.watchStop.Load())
}

func TestWatchPositionCancelIsIdempotent(t *testing.T) {
	provider := &stubProvider{sample: freshSample(time.Now())}
	svc := NewService(provider)

	cancel, err := svc.WatchPosition(context.Background(), func(Sample) {}, func(error) {})
	require.NoError(t, err)

	cancel()
	cancel()
	cancel()
	assert.Equal(t, int32(1), provider.watchStop.Load(), "underlying stop must run exactly once")
}
