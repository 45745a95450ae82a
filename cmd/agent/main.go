package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/sitepulse/attendance-backend-go/internal/agent/camera"
	"github.com/sitepulse/attendance-backend-go/internal/agent/location"
	"github.com/sitepulse/attendance-backend-go/internal/agent/offline"
	"github.com/sitepulse/attendance-backend-go/internal/agent/session"
	"github.com/sitepulse/attendance-backend-go/internal/agent/store"
	"github.com/sitepulse/attendance-backend-go/internal/config"
	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/geo"
)

// staticProvider reports the coordinate given on the command line, the
// way a desktop kiosk without a GPS module is provisioned.
type staticProvider struct {
	sample location.Sample
}

func (p *staticProvider) Current(ctx context.Context) (location.Sample, error) {
	s := p.sample
	s.Timestamp = time.Now()
	return s, nil
}

func (p *staticProvider) Watch(_ context.Context, onSample func(location.Sample), _ func(error)) (func(), error) {
	s := p.sample
	s.Timestamp = time.Now()
	onSample(s)
	return func() {}, nil
}

// fileStream serves a still image as the camera feed.
type fileStream struct {
	img image.Image
}

func (s *fileStream) Frame() (image.Image, error) { return s.img, nil }
func (s *fileStream) Stop()                       {}

type fileDevice struct {
	path string
}

func (d *fileDevice) Open(camera.Facing) (camera.Stream, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, &camera.Error{Reason: camera.ReasonDeviceUnavailable, Message: err.Error()}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &camera.Error{Reason: camera.ReasonDeviceUnavailable, Message: err.Error()}
	}
	return &fileStream{img: img}, nil
}

func main() {
	var (
		action   = flag.String("action", "check-in", "check-in or check-out")
		lat      = flag.Float64("lat", 26.6814, "device latitude")
		lng      = flag.Float64("lng", 68.0169, "device longitude")
		accuracy = flag.Float64("accuracy", 10, "position accuracy in meters")
		selfie   = flag.String("selfie", "selfie.jpg", "path to the camera still")
		syncOnly = flag.Bool("sync", false, "only drain the offline queue")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token := os.Getenv("AGENT_ACCESS_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "AGENT_ACCESS_TOKEN is required")
		os.Exit(1)
	}

	records := store.NewClient(cfg.Agent.APIBaseURL, token)
	queue := offline.NewQueue(cfg.Agent.QueuePath)

	online := func() bool {
		req, err := http.NewRequest(http.MethodGet, cfg.Agent.APIBaseURL+"/", nil)
		if err != nil {
			return false
		}
		resp, err := (&http.Client{Timeout: 3 * time.Second}).Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}

	sess := session.New(
		session.Config{
			UserID:          os.Getenv("AGENT_USER_ID"),
			Site:            geo.Coordinate{Latitude: cfg.Site.Latitude, Longitude: cfg.Site.Longitude},
			RadiusMeters:    cfg.Site.RadiusMeters,
			LocationTimeout: cfg.Agent.LocationTimeout,
		},
		location.NewService(&staticProvider{sample: location.Sample{
			Coordinate:     geo.Coordinate{Latitude: *lat, Longitude: *lng},
			AccuracyMeters: *accuracy,
		}}),
		&fileDevice{path: *selfie},
		records,
		queue,
		online,
	)
	defer sess.Close()

	ctx := context.Background()

	if n, err := queue.Len(); err == nil && n > 0 {
		fmt.Printf("Syncing %d queued entries...\n", n)
		if err := sess.SyncOffline(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "Sync:", err)
		}
	}
	if *syncOnly {
		return
	}

	if err := sess.RefreshDayStatus(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: could not load today's status:", err)
	}
	fmt.Println("Day status:", sess.DayStatus())

	if err := sess.Begin(ctx, attendance.Action(*action)); err != nil {
		fmt.Fprintln(os.Stderr, "Begin:", err)
		os.Exit(1)
	}

	// Wait for the one-shot fix before confirming.
	deadline := time.Now().Add(cfg.Agent.LocationTimeout + time.Second)
	for sess.State() == session.StateAwaitingLocationAndCamera && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	outcome := sess.Location()
	if outcome.Err != nil {
		fmt.Fprintln(os.Stderr, "Location:", outcome.Err)
		os.Exit(1)
	}
	fmt.Printf("Distance to site: %.1f m (within fence: %v)\n", outcome.DistanceMeters, outcome.WithinFence)

	if _, err := sess.Capture(); err != nil {
		fmt.Fprintln(os.Stderr, "Capture:", err)
		os.Exit(1)
	}

	if err := sess.Confirm(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Confirm:", err)
		os.Exit(1)
	}

	fmt.Printf("%s recorded, day status now %s\n", *action, sess.DayStatus())
}
