package mocks

import (
	"context"
	"time"

	"suidoc/internal/model"
	"suidoc/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if fn, ok := args.Get(0).(func(context.Context, *model.Document) *model.Document); ok {
		return fn(ctx, doc), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(string) *model.Document); ok {
		return fn(id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, f repository.DocumentFilter) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) CountByStatus(ctx context.Context, viewer string) (map[model.DocumentStatus]int, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.DocumentStatus]int), args.Error(1)
}

func (m *MockDocumentRepository) AddSignatureField(ctx context.Context, field *model.SignatureField) (model.DocumentStatus, error) {
	args := m.Called(ctx, field)
	return args.Get(0).(model.DocumentStatus), args.Error(1)
}

// SignField returns either a fixed status or the result of a
// func(fieldID string) model.DocumentStatus given to Return.
func (m *MockDocumentRepository) SignField(ctx context.Context, documentID, fieldID, signer, txDigest string, at time.Time) (model.DocumentStatus, error) {
	args := m.Called(ctx, documentID, fieldID, signer, txDigest, at)
	if fn, ok := args.Get(0).(func(string) model.DocumentStatus); ok {
		return fn(fieldID), args.Error(1)
	}
	return args.Get(0).(model.DocumentStatus), args.Error(1)
}

func (m *MockDocumentRepository) AddShares(ctx context.Context, id string, addresses []string) error {
	args := m.Called(ctx, id, addresses)
	return args.Error(0)
}
