package mocks

import (
	"context"

	"suidoc/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockSignatureRecordRepository struct {
	mock.Mock
}

func (m *MockSignatureRecordRepository) Upsert(ctx context.Context, rec *model.SignatureRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockSignatureRecordRepository) ListByDocument(ctx context.Context, documentID string) ([]model.SignatureRecord, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SignatureRecord), args.Error(1)
}

func (m *MockSignatureRecordRepository) FindByHashAndSigner(ctx context.Context, contentHash, signer string) (*model.SignatureRecord, error) {
	args := m.Called(ctx, contentHash, signer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SignatureRecord), args.Error(1)
}

type MockCursorRepository struct {
	mock.Mock
}

func (m *MockCursorRepository) LoadCursor(ctx context.Context, name string) (*model.EventCursor, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventCursor), args.Error(1)
}

func (m *MockCursorRepository) SaveCursor(ctx context.Context, name string, cur model.EventCursor) error {
	args := m.Called(ctx, name, cur)
	return args.Error(0)
}
