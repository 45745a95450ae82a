package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Scheduler runs registered jobs on fixed intervals. Each job gets its
// own goroutine and runs once immediately on Start.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []job
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// AddJob registers a job. Must be called before Start.
func (s *Scheduler) AddJob(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		slog.Warn("job registered after scheduler start, ignored", "job", name)
		return
	}

	s.jobs = append(s.jobs, job{name: name, interval: interval, run: run})
	slog.Info("job registered", "job", name, "interval", interval)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	for _, j := range s.jobs {
		s.done.Add(1)
		go func(j job) {
			defer s.done.Done()
			s.loop(j)
		}(j)
	}

	slog.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.done.Wait()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) loop(j job) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	s.fire(j)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.fire(j)
		}
	}
}

func (s *Scheduler) fire(j job) {
	start := time.Now()
	if err := j.run(s.ctx); err != nil {
		slog.Error("job failed", "job", j.name, "error", err, "took", time.Since(start))
		return
	}
	slog.Debug("job finished", "job", j.name, "took", time.Since(start))
}
