package get

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

type MinistrantGetter interface {
	GetMinistrant(ctx context.Context, id int64) (*api.Ministrant, error)
}

type Response struct {
	response.Response
	Ministrant api.Ministrant `json:"ministrant"`
}

func New(log *slog.Logger, getter MinistrantGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ministrants.get.New"

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

		ministrant, err := getter.GetMinistrant(r.Context(), id)
		if err != nil {
			log.Error("Failed to get ministrant", sl.Err(err))
			response.RenderError(w, r, err, "failed to get ministrant")
			return
		}

		render.JSON(w, r, Response{Ministrant: *ministrant})
	}
}
