package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"jobwork-backend/internal/apperror"
)

type ListResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       *int        `json:"page,omitempty"`
	Limit      *int        `json:"limit,omitempty"`
	TotalPages *int        `json:"totalPages,omitempty"`
}

type MutationResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OK(w http.ResponseWriter, r *http.Request, message string, data interface{}) {
	render.JSON(w, r, MutationResponse{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, r *http.Request, message string, data interface{}) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, MutationResponse{Success: true, Message: message, Data: data})
}

// Err логирует причину с идентификаторами запроса и отдаёт стандартный
// конверт ошибки. Сырые ошибки стораджа наружу не уходят.
func Err(log *slog.Logger, w http.ResponseWriter, r *http.Request, op string, err error, ids ...slog.Attr) {
	attrs := []any{
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	}
	for _, id := range ids {
		attrs = append(attrs, id)
	}

	if apperror.KindOf(err) == apperror.Internal {
		log.Error("request failed", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	render.Status(r, apperror.HTTPStatus(err))
	render.JSON(w, r, ErrorResponse{Success: false, Message: apperror.Message(err)})
}
