package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/service/lifecycle"
	"jobwork-backend/internal/service/tracking"
	"jobwork-backend/internal/storage"
)

const assignmentColumns = `id, company_id, worker_id, worker_name, worker_code, assignment_number,
	job_type, job_description, status, assigned_date, start_date, expected_completion_date,
	actual_completion_date, job_rate, total_amount, advance_paid, balance_amount, payment_status,
	quality_rating, remarks, created_by, version, created_at, updated_at`

func scanAssignment(row interface{ Scan(...interface{}) error }) (*storage.Assignment, error) {
	var a storage.Assignment
	var jobDescription sql.NullString
	var startDate sql.NullTime
	var expectedDate sql.NullTime
	var actualDate sql.NullTime
	var jobRate sql.NullFloat64
	var totalAmount sql.NullFloat64
	var qualityRating sql.NullFloat64
	var remarks sql.NullString

	err := row.Scan(&a.ID, &a.CompanyID, &a.WorkerID, &a.WorkerName, &a.WorkerCode, &a.AssignmentNumber,
		&a.JobType, &jobDescription, &a.Status, &a.AssignedDate, &startDate, &expectedDate,
		&actualDate, &jobRate, &totalAmount, &a.AdvancePaid, &a.BalanceAmount, &a.PaymentStatus,
		&qualityRating, &remarks, &a.CreatedBy, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.JobDescription = jobDescription.String
	a.StartDate = nullTime(startDate)
	a.ExpectedCompletionDate = nullTime(expectedDate)
	a.ActualCompletionDate = nullTime(actualDate)
	a.JobRate = nullFloat(jobRate)
	a.TotalAmount = nullFloat(totalAmount)
	a.QualityRating = nullFloat(qualityRating)
	a.Remarks = remarks.String

	return &a, nil
}

// CreateAssignment выдаёт наряд работнику. Имя и код работника копируются
// в наряд намеренно: история не должна меняться при переименовании работника.
func (s *Storage) CreateAssignment(ctx context.Context, companyID, actorID int64, req storage.CreateAssignment) (*storage.Assignment, error) {
	const op = "storage.mysql.CreateAssignment"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var workerCompany int64
	var workerName, workerCode string
	err = tx.QueryRowContext(ctx,
		`SELECT company_id, name, worker_code FROM jw_workers WHERE id = ?`,
		req.WorkerID).Scan(&workerCompany, &workerName, &workerCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "worker %d not found", req.WorkerID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: load worker id=%d: %w", op, req.WorkerID, err)
	}
	if workerCompany != companyID {
		return nil, apperror.Newf(apperror.Unauthorized, "worker %d belongs to another company", req.WorkerID)
	}

	number := req.AssignmentNumber
	generated := number == ""
	if generated {
		number = s.nextAssignmentNumber(ctx, tx, companyID)
	}

	assignedDate := time.Now().UTC()
	if req.AssignedDate != nil {
		assignedDate = *req.AssignedDate
	}

	materials := make([]storage.MaterialEntry, 0, len(req.Materials))
	for _, m := range req.Materials {
		materials = append(materials, tracking.Recompute(m.Entry()))
	}

	now := time.Now().UTC()
	a := &storage.Assignment{
		CompanyID:              companyID,
		WorkerID:               req.WorkerID,
		WorkerName:             workerName,
		WorkerCode:             workerCode,
		AssignmentNumber:       number,
		JobType:                req.JobType,
		JobDescription:         req.JobDescription,
		Status:                 storage.AssignmentAssigned,
		AssignedDate:           assignedDate,
		ExpectedCompletionDate: req.ExpectedCompletionDate,
		Materials:              materials,
		JobRate:                req.JobRate,
		TotalAmount:            req.TotalAmount,
		AdvancePaid:            req.AdvancePaid,
		Remarks:                req.Remarks,
		CreatedBy:              actorID,
		Version:                1,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	tracking.RecomputeFinance(a)

	insert := func() (sql.Result, error) {
		return tx.ExecContext(ctx, `
			INSERT INTO jw_assignments
			(company_id, worker_id, worker_name, worker_code, assignment_number, job_type, job_description,
			 status, assigned_date, expected_completion_date, job_rate, total_amount, advance_paid,
			 balance_amount, payment_status, remarks, created_by, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.CompanyID, a.WorkerID, a.WorkerName, a.WorkerCode, a.AssignmentNumber, a.JobType, a.JobDescription,
			a.Status, a.AssignedDate, a.ExpectedCompletionDate, a.JobRate, a.TotalAmount, a.AdvancePaid,
			a.BalanceAmount, a.PaymentStatus, a.Remarks, a.CreatedBy, a.Version, a.CreatedAt, a.UpdatedAt,
		)
	}

	res, err := insert()
	if err != nil && isDuplicate(err) && generated {
		// конкурентная вставка заняла сгенерированный номер — повторяем с фоллбеком
		number = fallbackAssignmentNumber(time.Now())
		a.AssignmentNumber = number
		res, err = insert()
	}
	if err != nil {
		if isDuplicate(err) {
			return nil, apperror.Newf(apperror.Conflict, "assignment number %s already exists", number)
		}
		return nil, fmt.Errorf("%s: insert number=%s: %w", op, number, err)
	}

	a.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	if err := s.insertMaterialsTx(ctx, tx, a.ID, a.Materials); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return a, nil
}

// nextAssignmentNumber: JOB + порядковый номер в компании, уникальность
// держит ключ (company_id, assignment_number).
func (s *Storage) nextAssignmentNumber(ctx context.Context, tx *sql.Tx, companyID int64) string {
	var count int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jw_assignments WHERE company_id = ?`, companyID).Scan(&count)
	if err != nil {
		return fallbackAssignmentNumber(time.Now())
	}
	return sequenceAssignmentNumber(count + 1)
}

func sequenceAssignmentNumber(seq int64) string {
	return fmt.Sprintf("JOB%05d", seq)
}

func fallbackAssignmentNumber(now time.Time) string {
	return fmt.Sprintf("JOB%d", now.UnixNano())
}

func (s *Storage) GetAssignment(ctx context.Context, companyID, id int64) (*storage.Assignment, error) {
	const op = "storage.mysql.GetAssignment"

	row := s.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM jw_assignments WHERE id = ?`, id)

	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "assignment %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: id=%d: %w", op, id, err)
	}
	if a.CompanyID != companyID {
		return nil, apperror.Newf(apperror.Unauthorized, "assignment %d belongs to another company", id)
	}

	materials, err := s.loadMaterials(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("%s: id=%d: %w", op, id, err)
	}
	a.Materials = materials[id]

	return a, nil
}

func (s *Storage) ListAssignments(ctx context.Context, f storage.AssignmentFilter) (*storage.AssignmentList, error) {
	const op = "storage.mysql.ListAssignments"

	where := []string{"company_id = ?"}
	args := []interface{}{f.CompanyID}

	if f.WorkerID != 0 {
		where = append(where, "worker_id = ?")
		args = append(args, f.WorkerID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.JobType != "" {
		where = append(where, "job_type = ?")
		args = append(args, f.JobType)
	}
	if f.DateFrom != nil {
		where = append(where, "assigned_date >= ?")
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		where = append(where, "assigned_date <= ?")
		args = append(args, *f.DateTo)
	}
	if f.Search != "" {
		where = append(where, `(assignment_number LIKE ? OR worker_name LIKE ? OR worker_code LIKE ? OR job_description LIKE ?)`)
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	query := `SELECT ` + assignmentColumns + ` FROM jw_assignments WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY assigned_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
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

	return &storage.AssignmentList{Items: items, Total: int64(len(items))}, nil
}

// getAssignmentForUpdate блокирует строку наряда на время транзакции —
// конкурентные мутации одного наряда выполняются по очереди.
func (s *Storage) getAssignmentForUpdate(ctx context.Context, tx *sql.Tx, companyID, id int64) (*storage.Assignment, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM jw_assignments WHERE id = ? FOR UPDATE`, id)

	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.NotFound, "assignment %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load for update id=%d: %w", id, err)
	}
	if a.CompanyID != companyID {
		return nil, apperror.Newf(apperror.Unauthorized, "assignment %d belongs to another company", id)
	}

	return a, nil
}

func (s *Storage) UpdateAssignment(ctx context.Context, companyID, actorID, id int64, req storage.UpdateAssignment) (*storage.Assignment, error) {
	const op = "storage.mysql.UpdateAssignment"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	a, err := s.getAssignmentForUpdate(ctx, tx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.Version != nil && *req.Version != a.Version {
		return nil, apperror.Newf(apperror.Conflict,
			"assignment %d was modified concurrently (version %d, expected %d)", id, a.Version, *req.Version)
	}

	if req.JobType != nil {
		a.JobType = *req.JobType
	}
	if req.JobDescription != nil {
		a.JobDescription = *req.JobDescription
	}
	if req.ExpectedCompletionDate != nil {
		a.ExpectedCompletionDate = req.ExpectedCompletionDate
	}
	if req.JobRate != nil {
		a.JobRate = req.JobRate
	}
	if req.TotalAmount != nil {
		a.TotalAmount = req.TotalAmount
	}
	if req.AdvancePaid != nil {
		a.AdvancePaid = *req.AdvancePaid
	}
	if req.QualityRating != nil {
		a.QualityRating = req.QualityRating
	}
	if req.Remarks != nil {
		a.Remarks = *req.Remarks
	}

	// присланным производным полям не верим — materials целиком через калькулятор
	if req.Materials != nil {
		materials := make([]storage.MaterialEntry, 0, len(*req.Materials))
		for _, m := range *req.Materials {
			materials = append(materials, tracking.Recompute(m.Entry()))
		}
		a.Materials = materials

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM jw_assignment_materials WHERE assignment_id = ?`, id); err != nil {
			return nil, fmt.Errorf("%s: clear materials id=%d: %w", op, id, err)
		}
		if err := s.insertMaterialsTx(ctx, tx, id, a.Materials); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		materials, err := s.loadMaterialsTx(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Materials = materials
	}

	tracking.RecomputeFinance(a)

	a.UpdatedAt = time.Now().UTC()
	a.Version++
	_, err = tx.ExecContext(ctx, `
		UPDATE jw_assignments SET
			job_type = ?, job_description = ?, expected_completion_date = ?,
			job_rate = ?, total_amount = ?, advance_paid = ?, balance_amount = ?, payment_status = ?,
			quality_rating = ?, remarks = ?, version = ?, updated_at = ?
		WHERE id = ?`,
		a.JobType, a.JobDescription, a.ExpectedCompletionDate,
		a.JobRate, a.TotalAmount, a.AdvancePaid, a.BalanceAmount, a.PaymentStatus,
		a.QualityRating, a.Remarks, a.Version, a.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: update id=%d: %w", op, id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return a, nil
}

func (s *Storage) UpdateAssignmentStatus(ctx context.Context, companyID, actorID, id int64, status string) (*storage.Assignment, error) {
	const op = "storage.mysql.UpdateAssignmentStatus"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	a, err := s.getAssignmentForUpdate(ctx, tx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := lifecycle.Apply(a, status, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.UpdatedAt = time.Now().UTC()
	a.Version++
	_, err = tx.ExecContext(ctx, `
		UPDATE jw_assignments SET
			status = ?, start_date = ?, actual_completion_date = ?, version = ?, updated_at = ?
		WHERE id = ?`,
		a.Status, a.StartDate, a.ActualCompletionDate, a.Version, a.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: update status id=%d status=%s: %w", op, id, status, err)
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
