package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/service/tracking"
	"jobwork-backend/internal/storage"
)

const materialColumns = `assignment_id, position, item_id, item_name, unit,
	qty_given, qty_used, qty_returned, qty_wasted, qty_remaining, rate, total_value`

func (s *Storage) insertMaterialsTx(ctx context.Context, tx *sql.Tx, assignmentID int64, entries []storage.MaterialEntry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO jw_assignment_materials
		(assignment_id, position, item_id, item_name, unit,
		 qty_given, qty_used, qty_returned, qty_wasted, qty_remaining, rate, total_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare materials insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		_, err := stmt.ExecContext(ctx,
			assignmentID, i, e.ItemID, e.ItemName, e.Unit,
			e.QuantityGiven, e.QuantityUsed, e.QuantityReturned, e.QuantityWasted,
			e.QuantityRemaining, e.Rate, e.TotalValue,
		)
		if err != nil {
			return fmt.Errorf("insert material assignment_id=%d position=%d: %w", assignmentID, i, err)
		}
	}

	return nil
}

func scanMaterial(rows *sql.Rows) (int64, storage.MaterialEntry, error) {
	var assignmentID int64
	var position int
	var e storage.MaterialEntry
	var rate sql.NullFloat64
	var totalValue sql.NullFloat64

	err := rows.Scan(&assignmentID, &position, &e.ItemID, &e.ItemName, &e.Unit,
		&e.QuantityGiven, &e.QuantityUsed, &e.QuantityReturned, &e.QuantityWasted,
		&e.QuantityRemaining, &rate, &totalValue)
	if err != nil {
		return 0, e, err
	}

	e.Rate = nullFloat(rate)
	e.TotalValue = nullFloat(totalValue)

	return assignmentID, e, nil
}

func (s *Storage) loadMaterials(ctx context.Context, assignmentIDs []int64) (map[int64][]storage.MaterialEntry, error) {
	result := make(map[int64][]storage.MaterialEntry, len(assignmentIDs))
	if len(assignmentIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + materialColumns + ` FROM jw_assignment_materials
		WHERE assignment_id IN (` + placeholders(len(assignmentIDs)) + `) ORDER BY assignment_id, position`

	args := make([]interface{}, len(assignmentIDs))
	for i, id := range assignmentIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		assignmentID, e, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("load materials: scan: %w", err)
		}
		result[assignmentID] = append(result[assignmentID], e)
	}

	return result, rows.Err()
}

func (s *Storage) loadMaterialsTx(ctx context.Context, tx *sql.Tx, assignmentID int64) ([]storage.MaterialEntry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+materialColumns+` FROM jw_assignment_materials WHERE assignment_id = ? ORDER BY position`,
		assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load materials id=%d: %w", assignmentID, err)
	}
	defer rows.Close()

	entries := make([]storage.MaterialEntry, 0)
	for rows.Next() {
		_, e, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("load materials id=%d: scan: %w", assignmentID, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// AddMaterial — атомарное добавление строки материала в хвост наряда.
// Позиция вычисляется под блокировкой строки наряда, так что два
// конкурирующих добавления не затирают друг друга.
func (s *Storage) AddMaterial(ctx context.Context, companyID, actorID, id int64, req storage.CreateMaterialEntry) (*storage.Assignment, error) {
	const op = "storage.mysql.AddMaterial"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	a, err := s.getAssignmentForUpdate(ctx, tx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var position int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jw_assignment_materials WHERE assignment_id = ?`, id).Scan(&position)
	if err != nil {
		return nil, fmt.Errorf("%s: next position id=%d: %w", op, id, err)
	}

	e := tracking.Recompute(req.Entry())

	_, err = tx.ExecContext(ctx, `
		INSERT INTO jw_assignment_materials
		(assignment_id, position, item_id, item_name, unit,
		 qty_given, qty_used, qty_returned, qty_wasted, qty_remaining, rate, total_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, position, e.ItemID, e.ItemName, e.Unit,
		e.QuantityGiven, e.QuantityUsed, e.QuantityReturned, e.QuantityWasted,
		e.QuantityRemaining, e.Rate, e.TotalValue,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: insert id=%d position=%d: %w", op, id, position, err)
	}

	a.UpdatedAt = time.Now().UTC()
	a.Version++
	_, err = tx.ExecContext(ctx,
		`UPDATE jw_assignments SET version = ?, updated_at = ? WHERE id = ?`,
		a.Version, a.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("%s: bump version id=%d: %w", op, id, err)
	}

	materials, err := s.loadMaterialsTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.Materials = materials

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return a, nil
}

// UpdateMaterial накладывает патч на строку материала по индексу и
// пересчитывает производные поля.
func (s *Storage) UpdateMaterial(ctx context.Context, companyID, actorID, id int64, index int, patch storage.MaterialPatch) (*storage.Assignment, error) {
	const op = "storage.mysql.UpdateMaterial"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	a, err := s.getAssignmentForUpdate(ctx, tx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	row := tx.QueryRowContext(ctx,
		`SELECT item_id, item_name, unit, qty_given, qty_used, qty_returned, qty_wasted, rate
		 FROM jw_assignment_materials WHERE assignment_id = ? AND position = ?`, id, index)

	var e storage.MaterialEntry
	var rate sql.NullFloat64
	err = row.Scan(&e.ItemID, &e.ItemName, &e.Unit,
		&e.QuantityGiven, &e.QuantityUsed, &e.QuantityReturned, &e.QuantityWasted, &rate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.Validation, "material index %d out of range for assignment %d", index, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: load material id=%d position=%d: %w", op, id, index, err)
	}
	e.Rate = nullFloat(rate)

	if patch.ItemName != nil {
		e.ItemName = *patch.ItemName
	}
	if patch.Unit != nil {
		e.Unit = *patch.Unit
	}
	if patch.QuantityGiven != nil {
		e.QuantityGiven = *patch.QuantityGiven
	}
	if patch.QuantityUsed != nil {
		e.QuantityUsed = *patch.QuantityUsed
	}
	if patch.QuantityReturned != nil {
		e.QuantityReturned = *patch.QuantityReturned
	}
	if patch.QuantityWasted != nil {
		e.QuantityWasted = *patch.QuantityWasted
	}
	if patch.Rate != nil {
		e.Rate = patch.Rate
	}

	e = tracking.Recompute(e)

	_, err = tx.ExecContext(ctx, `
		UPDATE jw_assignment_materials SET
			item_name = ?, unit = ?, qty_given = ?, qty_used = ?, qty_returned = ?,
			qty_wasted = ?, qty_remaining = ?, rate = ?, total_value = ?
		WHERE assignment_id = ? AND position = ?`,
		e.ItemName, e.Unit, e.QuantityGiven, e.QuantityUsed, e.QuantityReturned,
		e.QuantityWasted, e.QuantityRemaining, e.Rate, e.TotalValue,
		id, index,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: update id=%d position=%d: %w", op, id, index, err)
	}

	a.UpdatedAt = time.Now().UTC()
	a.Version++
	_, err = tx.ExecContext(ctx,
		`UPDATE jw_assignments SET version = ?, updated_at = ? WHERE id = ?`,
		a.Version, a.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("%s: bump version id=%d: %w", op, id, err)
	}

	materials, err := s.loadMaterialsTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.Materials = materials

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return a, nil
}
