package actorauth

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"jobwork-backend/internal/api"
	"jobwork-backend/internal/apperror"
)

type ctxKey int

const (
	actorKey ctxKey = iota
	companyKey
)

// Middleware вытаскивает личность вызывающего из заголовков, проставленных
// внешним auth-сервисом. Без актора — 401, сюда такие запросы долетать
// не должны.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, err := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
		if err != nil || actorID == 0 {
			unauthenticated(w, r, "actor identity missing")
			return
		}

		companyID, err := strconv.ParseInt(r.Header.Get("X-Company-ID"), 10, 64)
		if err != nil || companyID == 0 {
			unauthenticated(w, r, "company identity missing")
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actorID)
		ctx = context.WithValue(ctx, companyKey, companyID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ActorID(ctx context.Context) int64 {
	id, _ := ctx.Value(actorKey).(int64)
	return id
}

func CompanyID(ctx context.Context) int64 {
	id, _ := ctx.Value(companyKey).(int64)
	return id
}

func unauthenticated(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, apperror.HTTPStatus(apperror.New(apperror.Unauthenticated, msg)))
	render.JSON(w, r, api.ErrorResponse{Success: false, Message: msg})
}
