package camera

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// asymmetricFrame is white with a black left edge so mirroring is
// observable after the JPEG round trip.
func asymmetricFrame() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if x < 2 {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

type fakeStream struct {
	frame   image.Image
	stopped bool
}

func (s *fakeStream) Frame() (image.Image, error) { return s.frame, nil }
func (s *fakeStream) Stop()                       { s.stopped = true }

type fakeDevice struct {
	streams []*fakeStream
	openErr error
	opens   []Facing
}

func (d *fakeDevice) Open(facing Facing) (Stream, error) {
	d.opens = append(d.opens, facing)
	if d.openErr != nil {
		return nil, d.openErr
	}
	stream := &fakeStream{frame: asymmetricFrame()}
	d.streams = append(d.streams, stream)
	return stream, nil
}

func decodeDataURI(t *testing.T, dataURI string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(dataURI, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func luminance(c color.Color) uint32 {
	r, g, b, _ := c.RGBA()
	return (r + g + b) / 3
}

func TestOpenMovesSessionLive(t *testing.T) {
	s := NewSession(&fakeDevice{})

	require.NoError(t, s.Open(FacingFront))
	assert.Equal(t, StateLive, s.State())
	assert.Equal(t, FacingFront, s.Facing())
}

func TestOpenSurfacesPermissionDenied(t *testing.T) {
	s := NewSession(&fakeDevice{openErr: &Error{Reason: ReasonPermissionDenied}})

	err := s.Open(FacingFront)
	require.Error(t, err)
	var camErr *Error
	require.ErrorAs(t, err, &camErr)
	assert.Equal(t, ReasonPermissionDenied, camErr.Reason)
	assert.Equal(t, StateIdle, s.State())
}

func TestFrontCaptureIsMirrored(t *testing.T) {
	s := NewSession(&fakeDevice{})
	require.NoError(t, s.Open(FacingFront))

	dataURI, err := s.CaptureFrame()
	require.NoError(t, err)

	img := decodeDataURI(t, dataURI)
	bounds := img.Bounds()
	// Source has a dark left edge; the mirrored capture is dark on the right.
	assert.Greater(t, luminance(img.At(bounds.Min.X, bounds.Min.Y)), uint32(0x8000), "left must be light")
	assert.Less(t, luminance(img.At(bounds.Max.X-1, bounds.Min.Y)), uint32(0x8000), "right must be dark")
}

func TestBackCaptureIsNotMirrored(t *testing.T) {
	s := NewSession(&fakeDevice{})
	require.NoError(t, s.Open(FacingBack))

	dataURI, err := s.CaptureFrame()
	require.NoError(t, err)

	img := decodeDataURI(t, dataURI)
	bounds := img.Bounds()
	assert.Less(t, luminance(img.At(bounds.Min.X, bounds.Min.Y)), uint32(0x8000), "left must stay dark")
}

func TestSwitchFacingStopsOldStreamFirst(t *testing.T) {
	device := &fakeDevice{}
	s := NewSession(device)
	require.NoError(t, s.Open(FacingFront))

	require.NoError(t, s.SwitchFacing(FacingBack))

	require.Len(t, device.streams, 2)
	assert.True(t, device.streams[0].stopped, "first stream must stop before the second opens")
	assert.False(t, device.streams[1].stopped)
	assert.Equal(t, FacingBack, s.Facing())
}

func TestSwitchFacingToSameFacingIsNoop(t *testing.T) {
	device := &fakeDevice{}
	s := NewSession(device)
	require.NoError(t, s.Open(FacingFront))

	require.NoError(t, s.SwitchFacing(FacingFront))
	assert.Len(t, device.streams, 1)
}

func TestRetakeReopensAtSelectedFacing(t *testing.T) {
	device := &fakeDevice{}
	s := NewSession(device)
	require.NoError(t, s.Open(FacingFront))
	require.NoError(t, s.SwitchFacing(FacingBack))

	_, err := s.CaptureFrame()
	require.NoError(t, err)
	assert.Equal(t, StateCaptured, s.State())

	require.NoError(t, s.Retake())
	assert.Equal(t, StateLive, s.State())
	assert.Nil(t, s.Frame())
	assert.Equal(t, FacingBack, device.opens[len(device.opens)-1], "retake keeps the chosen facing")
}

func TestConfirmRequiresCapturedFrame(t *testing.T) {
	s := NewSession(&fakeDevice{})
	require.NoError(t, s.Open(FacingFront))

	_, err := s.Confirm()
	assert.Error(t, err)

	_, err = s.CaptureFrame()
	require.NoError(t, err)

	frame, err := s.Confirm()
	require.NoError(t, err)
	assert.NotEmpty(t, frame)
	assert.Equal(t, StateConfirmed, s.State())
}

func TestCloseIsIdempotentAndStopsStream(t *testing.T) {
	device := &fakeDevice{}
	s := NewSession(device)
	require.NoError(t, s.Open(FacingFront))

	s.Close()
	s.Close()

	assert.Equal(t, StateClosed, s.State())
	require.Len(t, device.streams, 1)
	assert.True(t, device.streams[0].stopped)
	assert.Error(t, s.Open(FacingFront), "closed session cannot reopen")
}
