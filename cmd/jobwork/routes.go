package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	assignmentsget "jobwork-backend/http-server/assignments/get"
	assignmentsmaterials "jobwork-backend/http-server/assignments/materials"
	assignmentssave "jobwork-backend/http-server/assignments/save"
	assignmentsupdate "jobwork-backend/http-server/assignments/update"
	reportsget "jobwork-backend/http-server/reports/get"
	workersdelete "jobwork-backend/http-server/workers/delete"
	workersget "jobwork-backend/http-server/workers/get"
	workerssave "jobwork-backend/http-server/workers/save"
	workersupdate "jobwork-backend/http-server/workers/update"
	"jobwork-backend/internal/config"
	"jobwork-backend/internal/middleware/actorauth"
	"jobwork-backend/internal/service/export"
	"jobwork-backend/internal/service/report"
	"jobwork-backend/internal/service/summary"
	"jobwork-backend/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage,
	reports *report.Service, summaries *summary.Service, excel *export.ExcelService) *chi.Mux {

	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-ID", "X-Company-ID"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Use(actorauth.Middleware)

		r.Route("/workers", func(r chi.Router) {
			r.Post("/", workerssave.SaveWorker(log, storage))
			r.Get("/", workersget.ListWorkers(log, storage))
			r.Get("/{id}", workersget.GetWorker(log, storage, summaries))
			r.Put("/{id}", workersupdate.UpdateWorker(log, storage))
			r.Delete("/{id}", workersdelete.DeleteWorker(log, storage))

			// материальная сверка по работнику
			r.Get("/{id}/material-report", reportsget.MaterialReport(log, reports))
			r.Get("/{id}/material-report/excel", reportsget.MaterialReportExcel(log, excel))
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", assignmentssave.SaveAssignment(log, storage))
			r.Get("/", assignmentsget.ListAssignments(log, storage))
			r.Get("/{id}", assignmentsget.GetAssignment(log, storage))
			r.Put("/{id}", assignmentsupdate.UpdateAssignment(log, storage))
			r.Patch("/{id}/status", assignmentsupdate.UpdateAssignmentStatus(log, storage))

			r.Post("/{id}/materials", assignmentsmaterials.AddMaterial(log, storage))
			r.Patch("/{id}/materials/{index}", assignmentsmaterials.UpdateMaterial(log, storage))
		})
	})

	return router
}
