// Package mocks holds testify mocks of the service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stressbox/internal/domain"
)

// MockVisitorService mocks service.VisitorService
type MockVisitorService struct {
	mock.Mock
}

func (m *MockVisitorService) RecordVisit(ctx context.Context, ip, fingerprint, userAgent, location string) error {
	args := m.Called(ctx, ip, fingerprint, userAgent, location)
	return args.Error(0)
}

func (m *MockVisitorService) GetStats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}
