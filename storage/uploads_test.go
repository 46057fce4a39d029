package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	u, err := NewUploadDir(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	f, err := u.Save(strings.NewReader("hello"), "Report.DOCX")
	require.NoError(t, err)
	assert.Equal(t, "Report.DOCX", f.OriginalName)
	assert.EqualValues(t, 5, f.SizeBytes)
	assert.Equal(t, ".docx", filepath.Ext(f.Path))
	assert.Equal(t, u.Dir(), filepath.Dir(f.Path))

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, u.Remove(f.Path))
	assert.NoFileExists(t, f.Path)

	// Removing twice is fine.
	assert.NoError(t, u.Remove(f.Path))
}

func TestSaveUsesUniqueNames(t *testing.T) {
	u, err := NewUploadDir(t.TempDir())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		f, err := u.Save(strings.NewReader("x"), "same.pdf")
		require.NoError(t, err)
		assert.False(t, seen[f.Path], "path reused: %s", f.Path)
		seen[f.Path] = true
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestSaveCleansUpOnError(t *testing.T) {
	dir := t.TempDir()
	u, err := NewUploadDir(dir)
	require.NoError(t, err)

	_, err = u.Save(failingReader{}, "a.pdf")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	u, err := NewUploadDir(dir)
	require.NoError(t, err)

	old, err := u.Save(strings.NewReader("old"), "old.pdf")
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old.Path, past, past))

	fresh, err := u.Save(strings.NewReader("new"), "new.pdf")
	require.NoError(t, err)

	n, err := u.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, old.Path)
	assert.FileExists(t, fresh.Path)
}
