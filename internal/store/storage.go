// Package store persists statement bundles and scored reports as JSON
// blobs on the local filesystem, S3 or GCS.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/finscope/finscope/pkg/config"
)

var (
	// ErrNotFound is returned when a blob does not exist in any backend.
	ErrNotFound = eris.New("store: not found")
	// ErrInvalidKey is returned for keys that would resolve outside the
	// storage root.
	ErrInvalidKey = eris.New("store: invalid key")
)

// StorageClient abstracts blob storage for reports and the bundles they
// were scored from.
type StorageClient interface {
	PutReport(ctx context.Context, reportID string, data []byte) error
	GetReport(ctx context.Context, reportID string) ([]byte, error)
	PutBundle(ctx context.Context, ticker, bundleID string, data []byte) error
	GetBundle(ctx context.Context, ticker, bundleID string) ([]byte, error)
}

// Open returns the backend selected by cfg. localDir is used by the local
// backend.
func Open(ctx context.Context, cfg config.StorageConfig, localDir string) (StorageClient, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(localDir), nil
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Bucket:   cfg.Bucket,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
	case "gcs":
		return NewGCSStorage(ctx, cfg.Bucket)
	default:
		return nil, eris.Errorf("store: unknown backend %q", cfg.Backend)
	}
}

func reportKey(reportID string) string {
	return "reports/" + reportID + ".json"
}

func bundleKey(ticker, bundleID string) string {
	return "bundles/" + ticker + "/" + bundleID + ".json"
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

// path maps a key below BaseDir. Keys that are absolute or climb out of
// BaseDir once cleaned are rejected.
func (s *LocalStorage) path(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", eris.Wrapf(ErrInvalidKey, "local %q", key)
	}
	return filepath.Join(s.BaseDir, rel), nil
}

func (s *LocalStorage) put(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "create directory")
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *LocalStorage) get(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrapf(ErrNotFound, "local %s", key)
	}
	return data, err
}

// PutReport stores a report blob.
func (s *LocalStorage) PutReport(_ context.Context, reportID string, data []byte) error {
	return s.put(reportKey(reportID), data)
}

// GetReport retrieves a report blob.
func (s *LocalStorage) GetReport(_ context.Context, reportID string) ([]byte, error) {
	return s.get(reportKey(reportID))
}

// PutBundle stores a statement bundle blob.
func (s *LocalStorage) PutBundle(_ context.Context, ticker, bundleID string, data []byte) error {
	return s.put(bundleKey(ticker, bundleID), data)
}

// GetBundle retrieves a statement bundle blob.
func (s *LocalStorage) GetBundle(_ context.Context, ticker, bundleID string) ([]byte, error) {
	return s.get(bundleKey(ticker, bundleID))
}
