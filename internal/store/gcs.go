package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSBlobStore keeps each blob as one object in a bucket. The object
// generation is used as the revision, so conditional writes map onto GCS
// generation preconditions.
type GCSBlobStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSBlobStore returns a store writing objects under prefix in bucket.
// The client is owned by the caller.
func NewGCSBlobStore(client *storage.Client, bucket, prefix string) *GCSBlobStore {
	return &GCSBlobStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *GCSBlobStore) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(path.Join(s.prefix, key+".json"))
}

func (s *GCSBlobStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	r, err := s.object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("GCSBlobStore.Get: open reader for %q: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("GCSBlobStore.Get: read %q: %w", key, err)
	}
	return data, r.Attrs.Generation, nil
}

func (s *GCSBlobStore) Put(ctx context.Context, key string, data []byte, expected int64) (int64, error) {
	obj := s.object(key)
	switch {
	case expected == NoRevision:
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	case expected > 0:
		obj = obj.If(storage.Conditions{GenerationMatch: expected})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("GCSBlobStore.Put: write %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("GCSBlobStore.Put: finalize %q: %w", key, err)
	}
	return w.Attrs().Generation, nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
