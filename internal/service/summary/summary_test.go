package summary

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"jobwork-backend/internal/storage"
)

type MockSummaryStorage struct {
	mock.Mock
}

func (m *MockSummaryStorage) GetWorker(ctx context.Context, companyID, id int64) (*storage.Worker, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	worker, ok := args.Get(0).(*storage.Worker)
	if !ok {
		return nil, fmt.Errorf("expected *storage.Worker, got %T", args.Get(0))
	}
	return worker, args.Error(1)
}

func (m *MockSummaryStorage) GetAssignmentsByWorker(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]*storage.Assignment, error) {
	args := m.Called(ctx, companyID, workerID, dateFrom, dateTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	assignments, ok := args.Get(0).([]*storage.Assignment)
	if !ok {
		return nil, fmt.Errorf("expected []*storage.Assignment, got %T", args.Get(0))
	}
	return assignments, args.Error(1)
}

func fl(v float64) *float64 {
	return &v
}

func TestBuildSummary(t *testing.T) {
	assignments := []*storage.Assignment{
		{
			Status:        storage.AssignmentCompleted,
			TotalAmount:   fl(10000),
			AdvancePaid:   4000,
			BalanceAmount: 6000,
			Materials: []storage.MaterialEntry{
				{QuantityGiven: 100, QuantityUsed: 40, QuantityReturned: 20, QuantityWasted: 5, QuantityRemaining: 35, TotalValue: fl(1000)},
			},
		},
		{
			Status:      storage.AssignmentInProgress,
			AdvancePaid: 0,
			Materials: []storage.MaterialEntry{
				{QuantityGiven: 50, QuantityRemaining: 50},
			},
		},
		{Status: storage.AssignmentInProgress},
	}

	sum := BuildSummary(assignments)

	assert.Equal(t, 3, sum.TotalAssignments)
	assert.Equal(t, 1, sum.AssignmentsByState[storage.AssignmentCompleted])
	assert.Equal(t, 2, sum.AssignmentsByState[storage.AssignmentInProgress])
	assert.Equal(t, 10000.0, sum.TotalEarned)
	assert.Equal(t, 4000.0, sum.TotalAdvance)
	assert.Equal(t, 6000.0, sum.TotalPending)
	assert.Equal(t, 150.0, sum.QuantityGiven)
	assert.Equal(t, 85.0, sum.QuantityRemaining)
	assert.Equal(t, 1000.0, sum.MaterialValue)
}

func TestWorkerWithSummary_Success(t *testing.T) {
	mockStorage := new(MockSummaryStorage)

	worker := &storage.Worker{ID: 42, CompanyID: 1, Name: "Рамеш", WorkerCode: "WRK0042"}
	assignments := []*storage.Assignment{
		{Status: storage.AssignmentAssigned, AdvancePaid: 500, BalanceAmount: 1500, TotalAmount: fl(2000)},
	}

	mockStorage.On("GetWorker", mock.Anything, int64(1), int64(42)).Return(worker, nil)
	mockStorage.On("GetAssignmentsByWorker", mock.Anything, int64(1), int64(42), (*time.Time)(nil), (*time.Time)(nil)).
		Return(assignments, nil)

	svc := NewService(mockStorage)

	got, err := svc.WorkerWithSummary(context.Background(), 1, 42)

	assert.NoError(t, err)
	assert.Equal(t, worker, got.Worker)
	assert.Equal(t, 1, got.Summary.TotalAssignments)
	assert.Equal(t, 1, got.Summary.AssignmentsByState[storage.AssignmentAssigned])
	assert.Equal(t, 1500.0, got.Summary.TotalPending)

	mockStorage.AssertExpectations(t)
}

func TestWorkerWithSummary_WorkerError(t *testing.T) {
	mockStorage := new(MockSummaryStorage)

	mockStorage.On("GetWorker", mock.Anything, int64(1), int64(99)).
		Return(nil, errors.New("connection timeout"))
	mockStorage.On("GetAssignmentsByWorker", mock.Anything, int64(1), int64(99), (*time.Time)(nil), (*time.Time)(nil)).
		Return([]*storage.Assignment{}, nil).Maybe()

	svc := NewService(mockStorage)

	got, err := svc.WorkerWithSummary(context.Background(), 1, 99)

	assert.Error(t, err)
	assert.Nil(t, got)
}
