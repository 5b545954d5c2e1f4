package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ImageStore defines the filesystem boundary for photo files. Sessions refer
// to images by URI but never own them; the museum copies an image into its
// own directory when a discovery is saved so the copy outlives the session's
// capture file.
type ImageStore interface {
	Copy(src, dst string) error
	Delete(path string) error
	Exists(path string) (bool, error)
	Info(path string) (ImageInfo, error)
}

// ImageInfo holds file metadata for a stored image
type ImageInfo struct {
	Size    int64
	ModTime time.Time
}

// LocalImageStore implements ImageStore on the local filesystem
type LocalImageStore struct{}

// NewLocalImageStore creates a filesystem-backed image store
func NewLocalImageStore() *LocalImageStore {
	return &LocalImageStore{}
}

// Copy copies src to dst, creating dst's directory if needed
func (s *LocalImageStore) Copy(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source image: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination image: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy image: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize image copy: %w", err)
	}
	return nil
}

// Delete removes the image file. Deleting an absent file is a no-op.
func (s *LocalImageStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// Exists reports whether the image file is present
func (s *LocalImageStore) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat image: %w", err)
}

// Info returns file metadata for the image
func (s *LocalImageStore) Info(path string) (ImageInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to stat image: %w", err)
	}
	return ImageInfo{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}
