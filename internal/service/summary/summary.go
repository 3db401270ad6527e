package summary

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"jobwork-backend/internal/storage"
)

type SummaryStorage interface {
	GetWorker(ctx context.Context, companyID, id int64) (*storage.Worker, error)
	GetAssignmentsByWorker(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]*storage.Assignment, error)
}

type Service struct {
	storage SummaryStorage
}

func NewService(storage SummaryStorage) *Service {
	return &Service{storage: storage}
}

// WorkerWithSummary собирает карточку работника: профиль + агрегаты по всем
// его нарядам. Работник и наряды тянутся параллельно.
func (s *Service) WorkerWithSummary(ctx context.Context, companyID, id int64) (*storage.WorkerWithSummary, error) {
	const op = "service.summary.WorkerWithSummary"

	var (
		worker      *storage.Worker
		assignments []*storage.Assignment
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		worker, err = s.storage.GetWorker(gCtx, companyID, id)
		if err != nil {
			return fmt.Errorf("worker: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assignments, err = s.storage.GetAssignmentsByWorker(gCtx, companyID, id, nil, nil)
		if err != nil {
			return fmt.Errorf("assignments: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: worker_id=%d: %w", op, id, err)
	}

	return &storage.WorkerWithSummary{
		Worker:  worker,
		Summary: BuildSummary(assignments),
	}, nil
}

// BuildSummary — чистая свёртка нарядов в агрегаты.
func BuildSummary(assignments []*storage.Assignment) *storage.WorkerSummary {
	sum := &storage.WorkerSummary{
		AssignmentsByState: map[string]int{},
	}

	for _, a := range assignments {
		sum.TotalAssignments++
		sum.AssignmentsByState[a.Status]++

		if a.TotalAmount != nil {
			sum.TotalEarned += *a.TotalAmount
		}
		sum.TotalAdvance += a.AdvancePaid
		sum.TotalPending += a.BalanceAmount

		for _, m := range a.Materials {
			sum.QuantityGiven += m.QuantityGiven
			sum.QuantityUsed += m.QuantityUsed
			sum.QuantityReturned += m.QuantityReturned
			sum.QuantityWasted += m.QuantityWasted
			sum.QuantityRemaining += m.QuantityRemaining
			if m.TotalValue != nil {
				sum.MaterialValue += *m.TotalValue
			}
		}
	}

	return sum
}
