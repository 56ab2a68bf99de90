package active

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"lso-service/api"
	"lso-service/internal/http-server/handlers/params"
	"lso-service/pkg/response"
	"lso-service/pkg/sl"
)

type ActiveSetter interface {
	SetMinistrantActive(ctx context.Context, id int64, active bool) (*api.Ministrant, error)
}

type Request struct {
	api.MinistrantActiveRequest
}

type Response struct {
	response.Response
	Ministrant api.Ministrant `json:"ministrant"`
}

func New(log *slog.Logger, setter ActiveSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ministrants.active.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := params.ID(r, "id")
		if err != nil {
			log.Error("Invalid id", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		var req Request
		if err := params.DecodeJSON(r, &req); err != nil {
			log.Error("Invalid request", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		ministrant, err := setter.SetMinistrantActive(r.Context(), id, *req.IsActive)
		if err != nil {
			log.Error("Failed to update ministrant", sl.Err(err))
			response.RenderError(w, r, err, "failed to update ministrant")
			return
		}

		log.Info("Ministrant updated", slog.Int64("id", id), slog.Bool("is_active", ministrant.IsActive))

		render.JSON(w, r, Response{Ministrant: *ministrant})
	}
}
