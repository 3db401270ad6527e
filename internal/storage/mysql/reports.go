package mysql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobwork-backend/internal/storage"
)

// GetAssignmentsByWorker — выборка нарядов работника для отчётов и сводки.
// Диапазон дат открыт с любой стороны.
func (s *Storage) GetAssignmentsByWorker(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]*storage.Assignment, error) {
	const op = "storage.mysql.GetAssignmentsByWorker"

	where := []string{"company_id = ?", "worker_id = ?"}
	args := []interface{}{companyID, workerID}

	if dateFrom != nil {
		where = append(where, "assigned_date >= ?")
		args = append(args, *dateFrom)
	}
	if dateTo != nil {
		where = append(where, "assigned_date <= ?")
		args = append(args, *dateTo)
	}

	query := `SELECT ` + assignmentColumns + ` FROM jw_assignments WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY assigned_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: worker_id=%d: %w", op, workerID, err)
	}
	defer rows.Close()

	items := make([]*storage.Assignment, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	materials, err := s.loadMaterials(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, a := range items {
		a.Materials = materials[a.ID]
	}

	return items, nil
}
