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

const dateLayout = "2006-01-02"

type AssignmentProvider interface {
	GetAssignment(ctx context.Context, companyID, id int64) (*storage.Assignment, error)
	ListAssignments(ctx context.Context, f storage.AssignmentFilter) (*storage.AssignmentList, error)
}

// ParseDateRange разбирает dateFrom/dateTo; обе границы опциональны.
func ParseDateRange(q map[string][]string) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if v := first(q, "dateFrom"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, apperror.Newf(apperror.Validation, "invalid dateFrom %q, expected YYYY-MM-DD", v)
		}
		from = &t
	}
	if v := first(q, "dateTo"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, apperror.Newf(apperror.Validation, "invalid dateTo %q, expected YYYY-MM-DD", v)
		}
		// включаем весь день
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	return from, to, nil
}

func first(q map[string][]string, key string) string {
	if vs := q[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func ListAssignments(log *slog.Logger, assignments AssignmentProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.assignments.get.ListAssignments"

		q := r.URL.Query()
		filter := storage.AssignmentFilter{
			CompanyID: actorauth.CompanyID(r.Context()),
			Status:    q.Get("status"),
			JobType:   q.Get("jobType"),
			Search:    q.Get("search"),
		}

		if v := q.Get("workerId"); v != "" {
			workerID, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				api.Err(log, w, r, op, apperror.Newf(apperror.Validation, "invalid workerId %q", v))
				return
			}
			filter.WorkerID = workerID
		}

		from, to, err := ParseDateRange(q)
		if err != nil {
			api.Err(log, w, r, op, err)
			return
		}
		filter.DateFrom = from
		filter.DateTo = to

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := assignments.ListAssignments(ctx, filter)
		if err != nil {
			api.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, api.ListResponse{
			Success: true,
			Data:    list.Items,
			Total:   list.Total,
		})
	}
}

func GetAssignment(log *slog.Logger, assignments AssignmentProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.assignments.get.GetAssignment"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid assignment id"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		a, err := assignments.GetAssignment(ctx, actorauth.CompanyID(ctx), id)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("assignment_id", id))
			return
		}

		api.OK(w, r, "Assignment fetched successfully", a)
	}
}
