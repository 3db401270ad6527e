package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"jobwork-backend/internal/api"
	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/middleware/actorauth"
	"jobwork-backend/internal/storage"
)

var validate = validator.New()

type AssignmentUpdater interface {
	UpdateAssignment(ctx context.Context, companyID, actorID, id int64, req storage.UpdateAssignment) (*storage.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, companyID, actorID, id int64, status string) (*storage.Assignment, error)
}

func UpdateAssignment(log *slog.Logger, assignments AssignmentUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.assignments.update.UpdateAssignment"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid assignment id"))
			return
		}

		var req storage.UpdateAssignment
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "invalid JSON body", err))
			return
		}

		if err := validate.Struct(req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "invalid assignment fields", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		a, err := assignments.UpdateAssignment(ctx, actorauth.CompanyID(ctx), actorauth.ActorID(ctx), id, req)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("assignment_id", id))
			return
		}

		log.Info("assignment updated", slog.String("op", op), slog.Int64("assignment_id", id))

		api.OK(w, r, "Assignment updated successfully", a)
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func UpdateAssignmentStatus(log *slog.Logger, assignments AssignmentUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.assignments.update.UpdateAssignmentStatus"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid assignment id"))
			return
		}

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "invalid JSON body", err))
			return
		}
		if req.Status == "" {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "status is required"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		a, err := assignments.UpdateAssignmentStatus(ctx, actorauth.CompanyID(ctx), actorauth.ActorID(ctx), id, req.Status)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("assignment_id", id), slog.String("status", req.Status))
			return
		}

		log.Info("assignment status updated",
			slog.String("op", op),
			slog.Int64("assignment_id", id),
			slog.String("status", a.Status),
		)

		api.OK(w, r, "Assignment status updated successfully", a)
	}
}
