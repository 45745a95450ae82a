package offline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	return NewQueue(filepath.Join(t.TempDir(), DefaultFilename))
}

func entry(id, action string) Entry {
	return Entry{ID: id, UserID: "user001", Action: action, Timestamp: "2026-03-09T08:00:00Z"}
}

func TestAppendPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)

	q := NewQueue(path)
	require.NoError(t, q.Append(entry("a", "check-in")))
	require.NoError(t, q.Append(entry("b", "check-out")))

	// A fresh queue over the same file sees the same entries.
	reopened := NewQueue(path)
	entries, err := reopened.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}

func TestAppendFillsIDAndTimestamp(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.Append(Entry{UserID: "user001", Action: "check-in"}))

	entries, err := q.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEmpty(t, entries[0].Timestamp)
}

func TestDrainAppliesFIFOAndRemovesFile(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.Append(entry("a", "check-in")))
	require.NoError(t, q.Append(entry("b", "check-out")))
	require.NoError(t, q.Append(entry("c", "check-in")))

	var applied []string
	err := q.Drain(context.Background(), func(e Entry) error {
		applied = append(applied, e.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, applied)

	_, statErr := os.Stat(q.path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "empty queue removes its file")
}

func TestDrainRetriesEachEntryUpToThreeTimes(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.Append(entry("a", "check-in")))

	attempts := 0
	err := q.Drain(context.Background(), func(Entry) error {
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	n, err := q.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDrainKeepsResumePointWithoutDuplicates(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.Append(entry("a", "check-in")))
	require.NoError(t, q.Append(entry("b", "check-out")))
	require.NoError(t, q.Append(entry("c", "check-in")))

	boom := errors.New("server down")
	var applied []string
	err := q.Drain(context.Background(), func(e Entry) error {
		if e.ID == "b" {
			return boom
		}
		applied = append(applied, e.ID)
		return nil
	})

	var drainErr *DrainError
	require.ErrorAs(t, err, &drainErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, drainErr.Applied)
	assert.Equal(t, 2, drainErr.Remaining)
	assert.Equal(t, "b", drainErr.Entry.ID)
	assert.Equal(t, []string{"a"}, applied)

	// The applied prefix is gone; the failing entry leads the remainder.
	entries, err := q.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "c", entries[1].ID)

	// A second drain resumes at b and never replays a.
	applied = nil
	err = q.Drain(context.Background(), func(e Entry) error {
		applied = append(applied, e.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, applied)
}

func TestDrainEmptyQueueIsNoop(t *testing.T) {
	q := newTestQueue(t)
	err := q.Drain(context.Background(), func(Entry) error {
		t.Fatal("apply must not run")
		return nil
	})
	assert.NoError(t, err)
}

func TestDrainHonorsContextCancellation(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.Append(entry("a", "check-in")))
	require.NoError(t, q.Append(entry("b", "check-out")))

	ctx, cancel := context.WithCancel(context.Background())
	var applied []string
	err := q.Drain(ctx, func(e Entry) error {
		applied = append(applied, e.ID)
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, applied)

	entries, err := q.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].ID)
}
