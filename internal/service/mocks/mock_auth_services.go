package mocks

import (
	"context"

	"suidoc/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Verify(ctx context.Context, in service.VerifyInput) (*service.VerifyResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VerifyResult), args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Challenge(ctx context.Context, address string) (*service.Challenge, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Challenge), args.Error(1)
}

func (m *MockSessionService) Login(ctx context.Context, address, signature string) (*service.Session, error) {
	args := m.Called(ctx, address, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}
