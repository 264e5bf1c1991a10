package mocks

import (
	"context"

	"suidoc/internal/chain"
	"suidoc/internal/model"
	"suidoc/internal/sui"

	"github.com/stretchr/testify/mock"
)

type MockChain struct {
	mock.Mock
}

func (m *MockChain) CreateAllowlist(ctx context.Context, name string) (*model.Allowlist, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Allowlist), args.Error(1)
}

func (m *MockChain) AddToAllowlist(ctx context.Context, allowlistID, capID, address string) (string, error) {
	args := m.Called(ctx, allowlistID, capID, address)
	return args.String(0), args.Error(1)
}

func (m *MockChain) PublishBlob(ctx context.Context, allowlistID, capID, blobID string) (string, error) {
	args := m.Called(ctx, allowlistID, capID, blobID)
	return args.String(0), args.Error(1)
}

func (m *MockChain) RecordSignature(ctx context.Context, sub chain.SignatureSubmission) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func (m *MockChain) AllowlistMembers(ctx context.Context, allowlistID string) ([]string, error) {
	args := m.Called(ctx, allowlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockChain) IsAllowed(ctx context.Context, policyID, address string) (bool, error) {
	args := m.Called(ctx, policyID, address)
	return args.Bool(0), args.Error(1)
}

func (m *MockChain) OwnedDocuments(ctx context.Context, owner string) ([]sui.ObjectData, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sui.ObjectData), args.Error(1)
}

func (m *MockChain) SignatureEvents(ctx context.Context, cursor *sui.EventID, limit int) (*chain.EventBatch, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chain.EventBatch), args.Error(1)
}
