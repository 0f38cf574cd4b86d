package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"doccompare/internal/domain"
	"doccompare/internal/service"
)

// MockComparisonService is a mock implementation of service.ComparisonService.
type MockComparisonService struct {
	mock.Mock
}

func (m *MockComparisonService) DefaultOptions() domain.CompareOptions {
	args := m.Called()
	return args.Get(0).(domain.CompareOptions)
}

func (m *MockComparisonService) CompareDocuments(ctx context.Context, input service.DocumentCompareInput) (*service.DocumentCompareResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentCompareResult), args.Error(1)
}

func (m *MockComparisonService) CompareSpreadsheets(ctx context.Context, input service.TableCompareInput) (*service.TableCompareResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TableCompareResult), args.Error(1)
}

func (m *MockComparisonService) CommonColumns(ctx context.Context, left, right service.FileInput, sheet string) ([]string, error) {
	args := m.Called(ctx, left, right, sheet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockComparisonService) ListRuns(ctx context.Context, owner string, offset, limit int) ([]domain.ComparisonRun, int, error) {
	args := m.Called(ctx, owner, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ComparisonRun), args.Int(1), args.Error(2)
}

func (m *MockComparisonService) GetRun(ctx context.Context, owner string, id uuid.UUID) (*domain.ComparisonRun, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComparisonRun), args.Error(1)
}

func (m *MockComparisonService) GetReportURL(ctx context.Context, owner string, id uuid.UUID) (string, error) {
	args := m.Called(ctx, owner, id)
	return args.String(0), args.Error(1)
}

func (m *MockComparisonService) DownloadReport(ctx context.Context, owner string, id uuid.UUID) (*service.ReportFile, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportFile), args.Error(1)
}

func (m *MockComparisonService) DeleteRun(ctx context.Context, owner string, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}
