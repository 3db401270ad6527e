package delete

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"jobwork-backend/internal/api"
	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/middleware/actorauth"
)

type WorkerDeleter interface {
	SoftDeleteWorker(ctx context.Context, companyID, actorID, id int64) error
}

// DeleteWorker — мягкое удаление: is_active=false, status=inactive.
// С незакрытыми нарядами удалить нельзя.
func DeleteWorker(log *slog.Logger, workers WorkerDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.delete.DeleteWorker"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid worker id"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := workers.SoftDeleteWorker(ctx, actorauth.CompanyID(ctx), actorauth.ActorID(ctx), id); err != nil {
			api.Err(log, w, r, op, err, slog.Int64("worker_id", id))
			return
		}

		log.Info("worker deactivated", slog.String("op", op), slog.Int64("worker_id", id))

		api.OK(w, r, "Worker deleted successfully", nil)
	}
}
