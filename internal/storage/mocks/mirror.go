package mocks

import (
	"context"
	"io"
	"time"

	"suidoc/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) Put(ctx context.Context, blobID string, r io.Reader, size int64, meta map[string]string) (storage.ObjectInfo, error) {
	args := m.Called(ctx, blobID, r, size, meta)
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockMirror) Get(ctx context.Context, blobID string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, blobID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockMirror) Delete(ctx context.Context, blobID string) error {
	args := m.Called(ctx, blobID)
	return args.Error(0)
}

func (m *MockMirror) PresignGet(ctx context.Context, blobID string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, blobID, expiry)
	return args.String(0), args.Error(1)
}
