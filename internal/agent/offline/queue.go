package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/agent/location"

	"github.com/google/uuid"
)

// DefaultFilename is the well-known queue file name.
const DefaultFilename = "attendance-offline-queue.json"

const maxAttemptsPerEntry = 3

// Entry is one deferred check-in or check-out captured while offline.
type Entry struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Action    string           `json:"action"`
	Timestamp string           `json:"timestamp"`
	Location  *location.Sample `json:"location,omitempty"`
	Image     *string          `json:"image,omitempty"`
}

// Queue is a durable FIFO of deferred attendance actions backed by a
// single JSON file. Every mutation rewrites the whole file; the queue is
// the file's single writer.
type Queue struct {
	mu   sync.Mutex
	path string
}

func NewQueue(path string) *Queue {
	if path == "" {
		path = DefaultFilename
	}
	return &Queue{path: path}
}

// Append adds an entry at the tail and persists immediately. A missing ID
// or timestamp is filled in.
func (q *Queue) Append(entry Entry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	entries, err := q.load()
	if err != nil {
		return err
	}

	return q.save(append(entries, entry))
}

// Entries returns a snapshot of the pending entries in FIFO order.
func (q *Queue) Entries() ([]Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// Len reports how many entries are pending.
func (q *Queue) Len() (int, error) {
	entries, err := q.Entries()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// DrainError reports a partial drain: the applied prefix was removed and
// the remainder, starting with the failing entry, stays queued.
type DrainError struct {
	Applied   int
	Remaining int
	Entry     Entry
	Err       error
}

func (e *DrainError) Error() string {
	return fmt.Sprintf("drain stopped after %d applied, %d remaining: %v", e.Applied, e.Remaining, e.Err)
}

func (e *DrainError) Unwrap() error { return e.Err }

// Drain replays pending entries through apply in FIFO order. Each entry
// gets up to three attempts; when one keeps failing the applied prefix is
// committed and the rest is kept as the resume point, so no entry is ever
// replayed twice. The queue file is removed once everything applied.
func (q *Queue) Drain(ctx context.Context, apply func(Entry) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			if saveErr := q.save(entries[i:]); saveErr != nil {
				return saveErr
			}
			return err
		}

		var lastErr error
		for attempt := 0; attempt < maxAttemptsPerEntry; attempt++ {
			if lastErr = apply(entry); lastErr == nil {
				break
			}
		}

		if lastErr != nil {
			remaining := entries[i:]
			if saveErr := q.save(remaining); saveErr != nil {
				return errors.Join(lastErr, saveErr)
			}
			return &DrainError{
				Applied:   i,
				Remaining: len(remaining),
				Entry:     entry,
				Err:       lastErr,
			}
		}
	}

	return q.save(nil)
}

func (q *Queue) load() ([]Entry, error) {
	raw, err := os.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read offline queue: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode offline queue: %w", err)
	}
	return entries, nil
}

// save rewrites the queue file, via a temp file so a crash mid-write
// never corrupts the queue. An empty queue removes the file.
func (q *Queue) save(entries []Entry) error {
	if len(entries) == 0 {
		if err := os.Remove(q.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove offline queue: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode offline queue: %w", err)
	}

	tmp := q.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return fmt.Errorf("failed to create queue directory: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write offline queue: %w", err)
	}
	if err := os.Rename(tmp, q.path); err != nil {
		return fmt.Errorf("failed to commit offline queue: %w", err)
	}
	return nil
}
