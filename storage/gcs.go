package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"
)

// GCSStore keeps objects in a Google Cloud Storage bucket.
type GCSStore struct {
	srv    *storagev1.Service
	bucket string
}

func NewGCSStore(ctx context.Context, serviceAccountJSONPath, bucket string) (*GCSStore, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := storagev1.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(storagev1.DevstorageReadWriteScope),
	)
	if err != nil {
		return nil, err
	}
	return &GCSStore{srv: srv, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	obj := &storagev1.Object{Name: key, ContentType: contentType}
	_, err = s.srv.Objects.Insert(s.bucket, obj).
		IfGenerationMatch(0).
		Media(r, googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if isStatus(err, http.StatusPreconditionFailed) {
		return ErrExists
	}
	return err
}

func (s *GCSStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.srv.Objects.Get(s.bucket, key).Context(ctx).Download()
	if isStatus(err, http.StatusNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (s *GCSStore) Delete(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		err := s.srv.Objects.Delete(s.bucket, key).Context(ctx).Do()
		if err != nil && !isStatus(err, http.StatusNotFound) {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *GCSStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	err := s.srv.Objects.List(s.bucket).Prefix(prefix).Pages(ctx, func(page *storagev1.Objects) error {
		for _, item := range page.Items {
			info, err := objectInfo(item)
			if err != nil {
				log.Printf("⚠️  Skipping %s: %v", item.Name, err)
				continue
			}
			out = append(out, info)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return out, nil
}

// objectInfo fails when the creation time is unreadable so that callers
// comparing ages never see a zero time.
func objectInfo(item *storagev1.Object) (ObjectInfo, error) {
	created, err := time.Parse(time.RFC3339, item.TimeCreated)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("creation time %q: %w", item.TimeCreated, err)
	}
	return ObjectInfo{Key: item.Name, Size: int64(item.Size), CreatedAt: created}, nil
}

func isStatus(err error, code int) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
