package mocks

import (
	"context"
	"encoding/json"

	"suidoc/internal/config"
	"suidoc/internal/walrus"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Store(ctx context.Context, serviceID string, data []byte) (*walrus.StoreResult, error) {
	args := m.Called(ctx, serviceID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*walrus.StoreResult), args.Error(1)
}

func (m *MockBlobStore) Read(ctx context.Context, serviceID, blobID string) ([]byte, error) {
	args := m.Called(ctx, serviceID, blobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) Metadata(ctx context.Context, blobID string) (json.RawMessage, error) {
	args := m.Called(ctx, blobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockBlobStore) Services() []config.WalrusService {
	args := m.Called()
	return args.Get(0).([]config.WalrusService)
}

func (m *MockBlobStore) Service(id string) (config.WalrusService, error) {
	args := m.Called(id)
	return args.Get(0).(config.WalrusService), args.Error(1)
}
