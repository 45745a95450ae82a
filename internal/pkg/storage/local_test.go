package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	base := filepath.Join(t.TempDir(), "data")
	s, err := NewLocalStorage(base, "http://localhost:8080/uploads")
	require.NoError(t, err)
	return s, base
}

func TestLocalStorageUploadAndURL(t *testing.T) {
	s, base := newTestStorage(t)

	key, err := s.Upload(context.Background(), strings.NewReader("selfie-bytes"), "selfies/user001/2026-03-09-check-in.jpg", "image/jpeg")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(base, key))
	require.NoError(t, err)
	assert.Equal(t, "selfie-bytes", string(raw))

	url, err := s.GetURL(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/selfies/user001/2026-03-09-check-in.jpg", url)
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	s, base := newTestStorage(t)

	// A sibling directory sharing the base as a string prefix must not
	// pass the containment check.
	sibling := filepath.Join(base+"base", "x.jpg")
	rel, err := filepath.Rel(base, sibling)
	require.NoError(t, err)

	for _, path := range []string{
		"../../etc/passwd",
		"..",
		rel,
	} {
		_, err := s.Upload(context.Background(), strings.NewReader("x"), path, "image/jpeg")
		assert.Error(t, err, "path %q must be rejected", path)
	}

	_, err = os.Stat(base + "base")
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageDeleteMissingIsNoError(t *testing.T) {
	s, _ := newTestStorage(t)
	assert.NoError(t, s.Delete(context.Background(), "selfies/missing.jpg"))
}
