package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	assignmentsget "jobwork-backend/http-server/assignments/get"
	"jobwork-backend/internal/api"
	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/middleware/actorauth"
	"jobwork-backend/internal/service/report"
)

type ReportProvider interface {
	MaterialTrackingReport(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]report.Row, error)
}

type ExcelProvider interface {
	MaterialReportExcel(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]byte, error)
}

// MaterialReport — сводка "сколько сырья сейчас у работника" по позициям.
func MaterialReport(log *slog.Logger, reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.get.MaterialReport"

		workerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid worker id"))
			return
		}

		from, to, err := assignmentsget.ParseDateRange(r.URL.Query())
		if err != nil {
			api.Err(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		rows, err := reports.MaterialTrackingReport(ctx, actorauth.CompanyID(ctx), workerID, from, to)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("worker_id", workerID))
			return
		}

		render.JSON(w, r, api.ListResponse{
			Success: true,
			Data:    rows,
			Total:   int64(len(rows)),
		})
	}
}

func MaterialReportExcel(log *slog.Logger, excel ExcelProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.get.MaterialReportExcel"

		workerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid worker id"))
			return
		}

		from, to, err := assignmentsget.ParseDateRange(r.URL.Query())
		if err != nil {
			api.Err(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		data, err := excel.MaterialReportExcel(ctx, actorauth.CompanyID(ctx), workerID, from, to)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("worker_id", workerID))
			return
		}

		filename := fmt.Sprintf("material-report-worker-%d.xlsx", workerID)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.Write(data)
	}
}
