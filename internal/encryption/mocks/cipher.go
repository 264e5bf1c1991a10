package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockCipher struct {
	mock.Mock
}

func (m *MockCipher) Encrypt(ctx context.Context, packageID, id string, data []byte) ([]byte, error) {
	args := m.Called(ctx, packageID, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCipher) Decrypt(ctx context.Context, requester string, object []byte) ([]byte, error) {
	args := m.Called(ctx, requester, object)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
