package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "receipts/ab/one.png", strings.NewReader("first")))
	require.NoError(t, s.Save(ctx, "receipts/ab/one.png", strings.NewReader("second")))

	rc, err := s.Get(ctx, "receipts/ab/one.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(s.basePath, "receipts", "ab"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")

	require.NoError(t, s.Delete(ctx, "receipts/ab/one.png"))
	require.NoError(t, s.Delete(ctx, "receipts/ab/one.png"), "deleting twice is fine")

	_, err = s.Get(ctx, "receipts/ab/one.png")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"", "../outside.txt", "a/../../outside.txt", "/etc/passwd"} {
		t.Run(p, func(t *testing.T) {
			assert.Error(t, s.Save(ctx, p, strings.NewReader("x")))
			_, err := s.Get(ctx, p)
			assert.Error(t, err)
			assert.Error(t, s.Delete(ctx, p))
		})
	}
}

func TestLocalStorageSaveHonoursContext(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, "a.txt", strings.NewReader("x")), context.Canceled)
}
