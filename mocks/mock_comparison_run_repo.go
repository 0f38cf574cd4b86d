package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"doccompare/internal/domain"
)

// MockComparisonRunRepo is a mock implementation of port.ComparisonRunRepository.
type MockComparisonRunRepo struct {
	mock.Mock
}

func (m *MockComparisonRunRepo) Create(ctx context.Context, run *domain.ComparisonRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockComparisonRunRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (*domain.ComparisonRun, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComparisonRun), args.Error(1)
}

func (m *MockComparisonRunRepo) ListByOwner(ctx context.Context, owner string, offset, limit int) ([]domain.ComparisonRun, int, error) {
	args := m.Called(ctx, owner, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ComparisonRun), args.Int(1), args.Error(2)
}

func (m *MockComparisonRunRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}
