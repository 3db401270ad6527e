package report

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

type MockAssignmentSource struct {
	mock.Mock
}

func (m *MockAssignmentSource) GetAssignmentsByWorker(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]*storage.Assignment, error) {
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

func entry(itemID int64, name string, given, used, returned, wasted, remaining float64, value *float64) storage.MaterialEntry {
	return storage.MaterialEntry{
		ItemID:            itemID,
		ItemName:          name,
		Unit:              "kg",
		QuantityGiven:     given,
		QuantityUsed:      used,
		QuantityReturned:  returned,
		QuantityWasted:    wasted,
		QuantityRemaining: remaining,
		TotalValue:        value,
	}
}

func TestFold_GroupsByItem(t *testing.T) {
	assignments := []*storage.Assignment{
		{Materials: []storage.MaterialEntry{
			entry(1, "Сталь", 100, 40, 20, 5, 35, fl(1000)),
			entry(2, "Краска", 10, 2, 0, 0, 8, nil),
		}},
		{Materials: []storage.MaterialEntry{
			entry(1, "Сталь", 50, 10, 0, 0, 40, fl(500)),
		}},
	}

	rows := Fold(assignments)

	// порядок строк не специфицирован — сверяем как множество
	byItem := make(map[int64]Row, len(rows))
	for _, r := range rows {
		byItem[r.ItemID] = r
	}
	assert.Len(t, byItem, 2)

	steel := byItem[1]
	assert.Equal(t, "Сталь", steel.ItemName)
	assert.Equal(t, 150.0, steel.QuantityGiven)
	assert.Equal(t, 50.0, steel.QuantityUsed)
	assert.Equal(t, 20.0, steel.QuantityReturned)
	assert.Equal(t, 5.0, steel.QuantityWasted)
	assert.Equal(t, 75.0, steel.QuantityRemaining)
	assert.Equal(t, 1500.0, steel.TotalValue)

	paint := byItem[2]
	assert.Equal(t, 10.0, paint.QuantityGiven)
	assert.Equal(t, 0.0, paint.TotalValue)
}

// Прямое перевыведение: суммы свёртки обязаны совпадать с суммами по сырым
// строкам, сгруппированным вручную.
func TestFold_MatchesRawDerivation(t *testing.T) {
	assignments := []*storage.Assignment{
		{Materials: []storage.MaterialEntry{
			entry(7, "Профиль", 12, 3, 1, 0, 8, fl(120)),
			entry(9, "Фурнитура", 40, 40, 0, 0, 0, nil),
			entry(7, "Профиль", 6, 0, 0, 2, 4, fl(60)),
		}},
		{Materials: []storage.MaterialEntry{
			entry(9, "Фурнитура", 15, 5, 5, 0, 5, fl(75)),
		}},
		{Materials: nil},
	}

	var wantGiven, wantRemaining map[int64]float64
	wantGiven = map[int64]float64{}
	wantRemaining = map[int64]float64{}
	for _, a := range assignments {
		for _, m := range a.Materials {
			wantGiven[m.ItemID] += m.QuantityGiven
			wantRemaining[m.ItemID] += m.QuantityRemaining
		}
	}

	rows := Fold(assignments)

	assert.Len(t, rows, len(wantGiven))
	for _, r := range rows {
		assert.Equal(t, wantGiven[r.ItemID], r.QuantityGiven, "itemId=%d", r.ItemID)
		assert.Equal(t, wantRemaining[r.ItemID], r.QuantityRemaining, "itemId=%d", r.ItemID)
	}
}

func TestFold_Empty(t *testing.T) {
	assert.Empty(t, Fold(nil))
	assert.Empty(t, Fold([]*storage.Assignment{{Materials: nil}}))
}

func TestMaterialTrackingReport_Success(t *testing.T) {
	mockStorage := new(MockAssignmentSource)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assignments := []*storage.Assignment{
		{Materials: []storage.MaterialEntry{entry(3, "Стекло", 20, 5, 0, 1, 14, fl(400))}},
	}

	mockStorage.On("GetAssignmentsByWorker", mock.Anything, int64(1), int64(42), &from, (*time.Time)(nil)).
		Return(assignments, nil)

	svc := NewService(mockStorage)

	rows, err := svc.MaterialTrackingReport(context.Background(), 1, 42, &from, nil)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].ItemID)
	assert.Equal(t, 14.0, rows[0].QuantityRemaining)

	mockStorage.AssertExpectations(t)
}

func TestMaterialTrackingReport_StorageError(t *testing.T) {
	mockStorage := new(MockAssignmentSource)

	mockStorage.On("GetAssignmentsByWorker", mock.Anything, int64(1), int64(42), (*time.Time)(nil), (*time.Time)(nil)).
		Return(nil, errors.New("connection timeout"))

	svc := NewService(mockStorage)

	rows, err := svc.MaterialTrackingReport(context.Background(), 1, 42, nil, nil)

	assert.Error(t, err)
	assert.Nil(t, rows)
	mockStorage.AssertExpectations(t)
}
