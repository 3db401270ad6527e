package materials

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

type MaterialTracker interface {
	AddMaterial(ctx context.Context, companyID, actorID, id int64, req storage.CreateMaterialEntry) (*storage.Assignment, error)
	UpdateMaterial(ctx context.Context, companyID, actorID, id int64, index int, patch storage.MaterialPatch) (*storage.Assignment, error)
}

func AddMaterial(log *slog.Logger, tracker MaterialTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.assignments.materials.AddMaterial"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid assignment id"))
			return
		}

		var req storage.CreateMaterialEntry
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "invalid JSON body", err))
			return
		}

		if err := validate.Struct(req); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "itemId, itemName and unit are required; quantities must be non-negative", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		a, err := tracker.AddMaterial(ctx, actorauth.CompanyID(ctx), actorauth.ActorID(ctx), id, req)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("assignment_id", id), slog.Int64("item_id", req.ItemID))
			return
		}

		log.Info("material added",
			slog.String("op", op),
			slog.Int64("assignment_id", id),
			slog.Int64("item_id", req.ItemID),
			slog.Int("materials_total", len(a.Materials)),
		)

		api.OK(w, r, "Material added successfully", a)
	}
}

func UpdateMaterial(log *slog.Logger, tracker MaterialTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.assignments.materials.UpdateMaterial"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid assignment id"))
			return
		}

		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil || index < 0 {
			api.Err(log, w, r, op, apperror.New(apperror.Validation, "invalid material index"))
			return
		}

		var patch storage.MaterialPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "invalid JSON body", err))
			return
		}

		if err := validate.Struct(patch); err != nil {
			api.Err(log, w, r, op, apperror.Wrap(apperror.Validation, "quantities must be non-negative", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		a, err := tracker.UpdateMaterial(ctx, actorauth.CompanyID(ctx), actorauth.ActorID(ctx), id, index, patch)
		if err != nil {
			api.Err(log, w, r, op, err, slog.Int64("assignment_id", id), slog.Int("index", index))
			return
		}

		log.Info("material updated",
			slog.String("op", op),
			slog.Int64("assignment_id", id),
			slog.Int("index", index),
		)

		api.OK(w, r, "Material tracking updated successfully", a)
	}
}
