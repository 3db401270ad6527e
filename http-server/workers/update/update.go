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

type WorkerUpdater interface {
	UpdateWorker(ctx context.Context, companyID, actorID, id int64, req storage.UpdateWorker) (*storage.Worker, error)
}

func UpdateWorker(log *slog.Logger, workers WorkerUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.update.UpdateWorker"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid worker id"))
			return
		}

		var req storage.UpdateWorker
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "invalid JSON body", err))
			return
		}

		if err := validate.Struct(req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "invalid worker fields", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		worker, err := workers.UpdateWorker(ctx, actorauth.CompanyID(ctx), actorauth.ActorID(ctx), id, req)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("worker_id", id))
			return
		}

		log.Info("worker updated", slog.String("op", op), slog.Int64("worker_id", id))

		api.OK(w, r, "Worker updated successfully", worker)
	}
}
