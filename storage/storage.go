// Package storage keeps uploaded files (college IDs) in a bucket on local disk or
// Google Cloud Storage and hands out short-lived signed URLs to read them back.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("storage: object not found")
	ErrExists      = errors.New("storage: object already exists")
	ErrInvalidKey  = errors.New("storage: invalid object key")
	ErrInvalidLink = errors.New("storage: invalid or expired signed url")
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key       string
	Size      int64
	CreatedAt time.Time
}

// Store is a flat bucket of objects addressed by slash-separated keys.
type Store interface {
	// Put writes a new object. It fails with ErrExists rather than overwrite.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// CollegeIDPrefix is where registration uploads live
const CollegeIDPrefix = "college-ids/"

// NewObjectKey returns a random key under prefix keeping the extension of filename.
func NewObjectKey(prefix, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	key := prefix + uuid.NewString()
	if ext != "" {
		key += "." + ext
	}
	return key
}

// CleanKey rejects keys that could escape the bucket.
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
