package store

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/rotisserie/eris"
)

// GCSStorage implements StorageClient using Google Cloud Storage.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCSStorage creates a GCS-backed StorageClient.
// It uses Application Default Credentials (works with Workload Identity, SA keys, gcloud auth).
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "create gcs client")
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) put(ctx context.Context, key string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return eris.Wrapf(err, "gcs write %s", key)
	}
	if err := w.Close(); err != nil {
		return eris.Wrapf(err, "gcs close %s", key)
	}
	return nil
}

func (s *GCSStorage) get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "gcs %s", key)
		}
		return nil, eris.Wrapf(err, "gcs read %s", key)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStorage) PutReport(ctx context.Context, reportID string, data []byte) error {
	return s.put(ctx, reportKey(reportID), data)
}

func (s *GCSStorage) GetReport(ctx context.Context, reportID string) ([]byte, error) {
	return s.get(ctx, reportKey(reportID))
}

func (s *GCSStorage) PutBundle(ctx context.Context, ticker, bundleID string, data []byte) error {
	return s.put(ctx, bundleKey(ticker, bundleID), data)
}

func (s *GCSStorage) GetBundle(ctx context.Context, ticker, bundleID string) ([]byte, error) {
	return s.get(ctx, bundleKey(ticker, bundleID))
}
