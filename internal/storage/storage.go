// Package storage keeps an optional S3-compatible mirror of encrypted document
// blobs. Objects are streamed; nothing touches local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when the mirror has no copy of a blob.
var ErrObjectNotFound = errors.New("object not found in mirror")

// ObjectInfo contains basic information about a mirrored blob.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Mirror stores ciphertext copies keyed by Walrus blob id.
type Mirror interface {
	// Put uploads ciphertext for blobID. size may be -1 when unknown.
	Put(ctx context.Context, blobID string, r io.Reader, size int64, meta map[string]string) (ObjectInfo, error)
	// Get streams the ciphertext for blobID.
	Get(ctx context.Context, blobID string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, blobID string) error
	// PresignGet returns a time-limited download URL for the ciphertext.
	PresignGet(ctx context.Context, blobID string, expiry time.Duration) (string, error)
}

// Key is the object key of a blob inside the bucket.
func Key(blobID string) string {
	return "blobs/" + blobID
}
