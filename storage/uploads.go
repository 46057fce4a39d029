// Package storage owns the upload directory. Every upload gets its own
// uuid-named file, so concurrent requests never share a path.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/friendsonlinesolution/file-converter-backend1/models"
)

type UploadDir struct {
	dir string
}

func NewUploadDir(dir string) (*UploadDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %s: %w", dir, err)
	}
	return &UploadDir{dir: dir}, nil
}

func (u *UploadDir) Dir() string { return u.dir }

// Save copies r into a fresh file and returns its handle. On failure no file
// is left behind.
func (u *UploadDir) Save(r io.Reader, originalName string) (models.UploadedFile, error) {
	ext := safeExt(originalName)
	path := filepath.Join(u.dir, uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("creating temp file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return models.UploadedFile{}, fmt.Errorf("writing temp file: %w", err)
	}

	return models.UploadedFile{
		Path:         path,
		OriginalName: originalName,
		SizeBytes:    n,
	}, nil
}

// Remove deletes an upload. A file that is already gone is not an error.
func (u *UploadDir) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Sweep deletes regular files older than age, returning how many were removed.
func (u *UploadDir) Sweep(age time.Duration) (int, error) {
	entries, err := os.ReadDir(u.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	var errs []error
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := u.Remove(filepath.Join(u.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, r := range ext[min(1, len(ext)):] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
