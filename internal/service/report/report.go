package report

import (
	"context"
	"fmt"
	"time"

	"jobwork-backend/internal/storage"
)

// Row — итог по одной позиции материала через все наряды работника.
type Row struct {
	ItemID            int64   `json:"itemId"`
	ItemName          string  `json:"itemName"`
	Unit              string  `json:"unit"`
	QuantityGiven     float64 `json:"quantityGiven"`
	QuantityUsed      float64 `json:"quantityUsed"`
	QuantityReturned  float64 `json:"quantityReturned"`
	QuantityWasted    float64 `json:"quantityWasted"`
	QuantityRemaining float64 `json:"quantityRemaining"`
	TotalValue        float64 `json:"totalValue"`
}

type AssignmentSource interface {
	GetAssignmentsByWorker(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]*storage.Assignment, error)
}

type Service struct {
	storage AssignmentSource
}

func NewService(storage AssignmentSource) *Service {
	return &Service{storage: storage}
}

// MaterialTrackingReport отвечает на вопрос "сколько сырья сейчас у этого
// работника по всем нарядам": плющит materials всех подходящих нарядов и
// группирует по itemId. Порядок строк не гарантируется.
func (s *Service) MaterialTrackingReport(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]Row, error) {
	const op = "service.report.MaterialTrackingReport"

	assignments, err := s.storage.GetAssignmentsByWorker(ctx, companyID, workerID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("%s: worker_id=%d: %w", op, workerID, err)
	}

	return Fold(assignments), nil
}

// Fold — чистая свёртка строк материалов по itemId.
func Fold(assignments []*storage.Assignment) []Row {
	byItem := make(map[int64]*Row)

	for _, a := range assignments {
		for _, m := range a.Materials {
			row, ok := byItem[m.ItemID]
			if !ok {
				row = &Row{ItemID: m.ItemID, ItemName: m.ItemName, Unit: m.Unit}
				byItem[m.ItemID] = row
			}

			row.QuantityGiven += m.QuantityGiven
			row.QuantityUsed += m.QuantityUsed
			row.QuantityReturned += m.QuantityReturned
			row.QuantityWasted += m.QuantityWasted
			row.QuantityRemaining += m.QuantityRemaining
			if m.TotalValue != nil {
				row.TotalValue += *m.TotalValue
			}
		}
	}

	rows := make([]Row, 0, len(byItem))
	for _, row := range byItem {
		rows = append(rows, *row)
	}

	return rows
}
