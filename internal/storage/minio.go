package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"suidoc/internal/config"
)

const ciphertextContentType = "application/octet-stream"

// minioMirror implements Mirror on MinIO or any S3-compatible backend.
// It is safe for concurrent use.
type minioMirror struct {
	client *minio.Client
	bucket string
}

// NewMinIO connects to the mirror bucket, creating it when missing.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (Mirror, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &minioMirror{client: cli, bucket: cfg.Bucket}, nil
}

func (m *minioMirror) Put(ctx context.Context, blobID string, r io.Reader, size int64, meta map[string]string) (ObjectInfo, error) {
	key := Key(blobID)
	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  ciphertextContentType,
		UserMetadata: meta,
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  ciphertextContentType,
		LastModified: time.Now(), // PutObject does not report it
		Metadata:     meta,
	}, nil
}

func (m *minioMirror) Get(ctx context.Context, blobID string) (io.ReadCloser, ObjectInfo, error) {
	key := Key(blobID)
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapError(err)
	}
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, mapError(err)
	}
	return obj, ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}, nil
}

func (m *minioMirror) Delete(ctx context.Context, blobID string) error {
	return m.client.RemoveObject(ctx, m.bucket, Key(blobID), minio.RemoveObjectOptions{})
}

func (m *minioMirror) PresignGet(ctx context.Context, blobID string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-type", ciphertextContentType)
	u, err := m.client.PresignedGetObject(ctx, m.bucket, Key(blobID), expiry, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func mapError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrObjectNotFound
	}
	return err
}
