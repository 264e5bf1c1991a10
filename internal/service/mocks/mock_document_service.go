package mocks

import (
	"context"

	"suidoc/internal/model"
	"suidoc/internal/service"
	"suidoc/internal/sui"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, viewer string, q service.ListQuery) (*service.DocumentListResult, error) {
	args := m.Called(ctx, viewer, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, viewer, id string) (*model.Document, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Stats(ctx context.Context, viewer string) (*service.DocumentStats, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentStats), args.Error(1)
}

func (m *MockDocumentService) AddSignatureField(ctx context.Context, viewer, id string, in service.SignatureFieldInput) (*model.SignatureField, error) {
	args := m.Called(ctx, viewer, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SignatureField), args.Error(1)
}

func (m *MockDocumentService) Sign(ctx context.Context, viewer, id, fieldID, signature string) (*model.Document, error) {
	args := m.Called(ctx, viewer, id, fieldID, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Share(ctx context.Context, viewer, id string, addresses []string) (*model.Document, error) {
	args := m.Called(ctx, viewer, id, addresses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, viewer, id string) (*service.DownloadResult, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

func (m *MockDocumentService) BlobLink(ctx context.Context, viewer, id string) (*service.BlobLink, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BlobLink), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, viewer, id string) error {
	args := m.Called(ctx, viewer, id)
	return args.Error(0)
}

func (m *MockDocumentService) Signatures(ctx context.Context, viewer, id string) ([]model.SignatureRecord, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SignatureRecord), args.Error(1)
}

func (m *MockDocumentService) OnChain(ctx context.Context, owner string) ([]sui.ObjectData, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sui.ObjectData), args.Error(1)
}
