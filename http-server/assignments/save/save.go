package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"jobwork-backend/internal/api"
	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/middleware/actorauth"
	"jobwork-backend/internal/storage"
)

var validate = validator.New()

type AssignmentCreator interface {
	CreateAssignment(ctx context.Context, companyID, actorID int64, req storage.CreateAssignment) (*storage.Assignment, error)
}

func SaveAssignment(log *slog.Logger, assignments AssignmentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.assignments.save.SaveAssignment"

		var req storage.CreateAssignment
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "invalid JSON body", err))
			return
		}

		if err := validate.Struct(req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "workerId and jobType are required", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		a, err := assignments.CreateAssignment(ctx, actorauth.CompanyID(ctx), actorauth.ActorID(ctx), req)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("worker_id", req.WorkerID))
			return
		}

		log.Info("assignment created",
			slog.String("op", op),
			slog.Int64("assignment_id", a.ID),
			slog.String("assignment_number", a.AssignmentNumber),
			slog.Int64("worker_id", a.WorkerID),
		)

		api.Created(w, r, "Assignment created successfully", a)
	}
}
