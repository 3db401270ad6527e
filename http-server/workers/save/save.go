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

type WorkerCreator interface {
	CreateWorker(ctx context.Context, companyID, actorID int64, req storage.CreateWorker) (*storage.Worker, error)
}

func SaveWorker(log *slog.Logger, workers WorkerCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.save.SaveWorker"

		var req storage.CreateWorker
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "invalid JSON body", err))
			return
		}

		if err := validate.Struct(req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "name and phoneNumber are required", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		worker, err := workers.CreateWorker(ctx, actorauth.CompanyID(ctx), actorauth.ActorID(ctx), req)
		if err != nil {
			api.Err(log, w, r, op, err, slog.String("phone", req.PhoneNumber))
			return
		}

		log.Info("worker created",
			slog.String("op", op),
			slog.Int64("worker_id", worker.ID),
			slog.String("worker_code", worker.WorkerCode),
		)

		api.Created(w, r, "Worker created successfully", worker)
	}
}
