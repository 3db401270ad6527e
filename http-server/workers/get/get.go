package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"jobwork-backend/internal/api"
	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/middleware/actorauth"
	"jobwork-backend/internal/storage"
)

type WorkerProvider interface {
	GetWorker(ctx context.Context, companyID, id int64) (*storage.Worker, error)
	ListWorkers(ctx context.Context, f storage.WorkerFilter) (*storage.WorkerList, error)
}

type SummaryProvider interface {
	WorkerWithSummary(ctx context.Context, companyID, id int64) (*storage.WorkerWithSummary, error)
}

func ListWorkers(log *slog.Logger, workers WorkerProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.get.ListWorkers"

		q := r.URL.Query()
		filter := storage.WorkerFilter{
			CompanyID:      actorauth.CompanyID(r.Context()),
			Status:         q.Get("status"),
			Specialization: q.Get("specialization"),
			Search:         q.Get("search"),
			SortBy:         q.Get("sortBy"),
			SortOrder:      q.Get("sortOrder"),
		}

		if v := q.Get("isActive"); v != "" {
			active, err := strconv.ParseBool(v)
			if err != nil {
				api.Err(log, w, r, op, apperror.Newf(apperror.Validation, "invalid isActive %q", v))
				return
			}
			filter.IsActive = &active
		}
		if v := q.Get("page"); v != "" {
			page, err := strconv.Atoi(v)
			if err != nil || page < 1 {
				api.Err(log, w, r, op, apperror.Newf(apperror.Validation, "invalid page %q", v))
				return
			}
			filter.Page = page
		}
		if v := q.Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 1 {
				api.Err(log, w, r, op, apperror.Newf(apperror.Validation, "invalid limit %q", v))
				return
			}
			filter.Limit = limit
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := workers.ListWorkers(ctx, filter)
		if err != nil {
			api.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, api.ListResponse{
			Success:    true,
			Data:       list.Items,
			Total:      list.Total,
			Page:       &list.Page,
			Limit:      &list.Limit,
			TotalPages: &list.TotalPages,
		})
	}
}

func GetWorker(log *slog.Logger, workers WorkerProvider, summaries SummaryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.get.GetWorker"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid worker id"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		companyID := actorauth.CompanyID(ctx)

		if include, _ := strconv.ParseBool(r.URL.Query().Get("includeSummary")); include {
			result, err := summaries.WorkerWithSummary(ctx, companyID, id)
			if err != nil {
				api.Err(log, w, r, op, err, slog.Int64("worker_id", id))
				return
			}
			api.OK(w, r, "Worker fetched successfully", result)
			return
		}

		worker, err := workers.GetWorker(ctx, companyID, id)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("worker_id", id))
			return
		}

		api.OK(w, r, "Worker fetched successfully", worker)
	}
}
