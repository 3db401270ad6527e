package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/storage"
)

const workerColumns = `id, company_id, worker_code, name, phone_number, specialization, skill_level,
	per_day_rate, per_piece_rate, status, is_active, address, notes, created_by, created_at, updated_at`

func scanWorker(row interface{ Scan(...interface{}) error }) (*storage.Worker, error) {
	var (
		w        storage.Worker
		spec     sql.NullString
		skill    sql.NullString
		perDay   sql.NullFloat64
		perPiece sql.NullFloat64
		address  sql.NullString
		notes    sql.NullString
	)

	err := row.Scan(&w.ID, &w.CompanyID, &w.WorkerCode, &w.Name, &w.PhoneNumber, &spec, &skill,
		&perDay, &perPiece, &w.Status, &w.IsActive, &address, &notes, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if spec.Valid && spec.String != "" {
		if err := json.Unmarshal([]byte(spec.String), &w.Specialization); err != nil {
			return nil, fmt.Errorf("specialization unmarshal: %w", err)
		}
	}
	w.SkillLevel = skill.String
	w.PerDayRate = nullFloat(perDay)
	w.PerPieceRate = nullFloat(perPiece)
	w.Address = address.String
	w.Notes = notes.String

	return &w, nil
}

// CreateWorker регистрирует работника. Телефон уникален в пределах компании,
// код генерируется, если не прислан.
func (s *Storage) CreateWorker(ctx context.Context, companyID, actorID int64, req storage.CreateWorker) (*storage.Worker, error) {
	const op = "storage.mysql.CreateWorker"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM jw_workers WHERE company_id = ? AND phone_number = ?`,
		companyID, req.PhoneNumber).Scan(&existingID)
	if err == nil {
		return nil, apperror.Newf(apperror.Conflict, "worker with phone number %s already exists", req.PhoneNumber)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: phone uniqueness check: %w", op, err)
	}

	code := req.WorkerCode
	generated := code == ""
	if generated {
		code = s.nextWorkerCode(ctx, tx, companyID)
	}

	specJSON, err := json.Marshal(req.Specialization)
	if err != nil {
		return nil, fmt.Errorf("%s: specialization marshal: %w", op, err)
	}

	now := time.Now().UTC()
	insert := func(code string) (sql.Result, error) {
		return tx.ExecContext(ctx, `
			INSERT INTO jw_workers
			(company_id, worker_code, name, phone_number, specialization, skill_level,
			 per_day_rate, per_piece_rate, status, is_active, address, notes, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			companyID, code, req.Name, req.PhoneNumber, string(specJSON), req.SkillLevel,
			req.PerDayRate, req.PerPieceRate, storage.WorkerStatusActive, true,
			req.Address, req.Notes, actorID, now, now,
		)
	}

	res, err := insert(code)
	if err != nil && isDuplicate(err) && generated && !strings.Contains(duplicateKey(err), "phone") {
		// конкурентная вставка заняла сгенерированный код — повторяем с фоллбеком
		code = fallbackWorkerCode(time.Now())
		res, err = insert(code)
	}
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(duplicateKey(err), "phone") {
				return nil, apperror.Newf(apperror.Conflict, "worker with phone number %s already exists", req.PhoneNumber)
			}
			return nil, apperror.Newf(apperror.Conflict, "worker code %s already exists", code)
		}
		return nil, fmt.Errorf("%s: insert worker code=%s: %w", op, code, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return &storage.Worker{
		ID:             id,
		CompanyID:      companyID,
		WorkerCode:     code,
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		Specialization: req.Specialization,
		SkillLevel:     req.SkillLevel,
		PerDayRate:     req.PerDayRate,
		PerPieceRate:   req.PerPieceRate,
		Status:         storage.WorkerStatusActive,
		IsActive:       true,
		Address:        req.Address,
		Notes:          req.Notes,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// nextWorkerCode: WRK + порядковый номер в компании. Если выборка упала —
// код от метки времени, поле не должно остаться пустым.
func (s *Storage) nextWorkerCode(ctx context.Context, tx *sql.Tx, companyID int64) string {
	var count int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jw_workers WHERE company_id = ?`, companyID).Scan(&count)
	if err != nil {
		return fallbackWorkerCode(time.Now())
	}
	return sequenceWorkerCode(count + 1)
}

func sequenceWorkerCode(seq int64) string {
	return fmt.Sprintf("WRK%04d", seq)
}

func fallbackWorkerCode(now time.Time) string {
	return fmt.Sprintf("WRK%d", now.UnixNano())
}

func (s *Storage) GetWorker(ctx context.Context, companyID, id int64) (*storage.Worker, error) {
	const op = "storage.mysql.GetWorker"

	row := s.db.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM jw_workers WHERE id = ?`, id)

	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "worker %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: id=%d: %w", op, id, err)
	}

	if w.CompanyID != companyID {
		return nil, apperror.Newf(apperror.Unauthorized, "worker %d belongs to another company", id)
	}

	return w, nil
}

var workerSortColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"workerCode":  "worker_code",
	"phoneNumber": "phone_number",
	"skillLevel":  "skill_level",
	"status":      "status",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

func (s *Storage) ListWorkers(ctx context.Context, f storage.WorkerFilter) (*storage.WorkerList, error) {
	const op = "storage.mysql.ListWorkers"

	where := []string{"company_id = ?"}
	args := []interface{}{f.CompanyID}

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *f.IsActive)
	}
	if f.Specialization != "" {
		// specialization хранится JSON-массивом строк
		where = append(where, `specialization LIKE ?`)
		args = append(args, `%"`+f.Specialization+`"%`)
	}
	if f.Search != "" {
		where = append(where, `(name LIKE ? OR worker_code LIKE ? OR phone_number LIKE ?)`)
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	whereSQL := strings.Join(where, " AND ")

	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jw_workers WHERE `+whereSQL, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	page, limit := normalizePaging(f.Page, f.Limit)

	orderBy, ok := workerSortColumns[f.SortBy]
	if !ok {
		orderBy = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = "ASC"
	}

	query := `SELECT ` + workerColumns + ` FROM jw_workers WHERE ` + whereSQL +
		` ORDER BY ` + orderBy + ` ` + direction + ` LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]*storage.Worker, 0)
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return &storage.WorkerList{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *Storage) UpdateWorker(ctx context.Context, companyID, actorID, id int64, req storage.UpdateWorker) (*storage.Worker, error) {
	const op = "storage.mysql.UpdateWorker"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM jw_workers WHERE id = ? FOR UPDATE`, id)
	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "worker %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: id=%d: %w", op, id, err)
	}
	if w.CompanyID != companyID {
		return nil, apperror.Newf(apperror.Unauthorized, "worker %d belongs to another company", id)
	}

	if req.PhoneNumber != nil && *req.PhoneNumber != w.PhoneNumber {
		var existingID int64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM jw_workers WHERE company_id = ? AND phone_number = ? AND id <> ?`,
			companyID, *req.PhoneNumber, id).Scan(&existingID)
		if err == nil {
			return nil, apperror.Newf(apperror.Conflict, "worker with phone number %s already exists", *req.PhoneNumber)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: phone uniqueness check: %w", op, err)
		}
		w.PhoneNumber = *req.PhoneNumber
	}

	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Specialization != nil {
		w.Specialization = *req.Specialization
	}
	if req.SkillLevel != nil {
		w.SkillLevel = *req.SkillLevel
	}
	if req.PerDayRate != nil {
		w.PerDayRate = req.PerDayRate
	}
	if req.PerPieceRate != nil {
		w.PerPieceRate = req.PerPieceRate
	}
	if req.Status != nil {
		w.Status = *req.Status
		// is_active дублирует статус — держим согласованными
		switch *req.Status {
		case storage.WorkerStatusActive:
			w.IsActive = true
		case storage.WorkerStatusInactive:
			w.IsActive = false
		}
	}
	if req.Address != nil {
		w.Address = *req.Address
	}
	if req.Notes != nil {
		w.Notes = *req.Notes
	}

	specJSON, err := json.Marshal(w.Specialization)
	if err != nil {
		return nil, fmt.Errorf("%s: specialization marshal: %w", op, err)
	}

	w.UpdatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE jw_workers SET
			name = ?, phone_number = ?, specialization = ?, skill_level = ?,
			per_day_rate = ?, per_piece_rate = ?, status = ?, is_active = ?,
			address = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		w.Name, w.PhoneNumber, string(specJSON), w.SkillLevel,
		w.PerDayRate, w.PerPieceRate, w.Status, w.IsActive,
		w.Address, w.Notes, w.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: update id=%d: %w", op, id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return w, nil
}

// SoftDeleteWorker переводит работника в inactive. Удаление блокируется,
// пока на нём висят незакрытые наряды.
func (s *Storage) SoftDeleteWorker(ctx context.Context, companyID, actorID, id int64) error {
	const op = "storage.mysql.SoftDeleteWorker"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var ownerCompany int64
	err = tx.QueryRowContext(ctx,
		`SELECT company_id FROM jw_workers WHERE id = ? FOR UPDATE`, id).Scan(&ownerCompany)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.Newf(apperror.NotFound, "worker %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("%s: id=%d: %w", op, id, err)
	}
	if ownerCompany != companyID {
		return apperror.Newf(apperror.Unauthorized, "worker %d belongs to another company", id)
	}

	var active int64
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM jw_assignments
		WHERE worker_id = ? AND status IN (?, ?)`,
		id, storage.AssignmentAssigned, storage.AssignmentInProgress).Scan(&active)
	if err != nil {
		return fmt.Errorf("%s: active assignments count id=%d: %w", op, id, err)
	}
	if active > 0 {
		return apperror.Newf(apperror.BusinessRule,
			"cannot delete worker: %d active assignment(s) must be completed or cancelled first", active)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jw_workers SET is_active = FALSE, status = ?, updated_at = ? WHERE id = ?`,
		storage.WorkerStatusInactive, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%s: soft delete id=%d: %w", op, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}
