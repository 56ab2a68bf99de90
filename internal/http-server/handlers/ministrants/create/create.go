package create

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

type MinistrantCreator interface {
	CreateMinistrant(ctx context.Context, req *api.MinistrantCreateRequest) (*api.Ministrant, error)
}

type Request struct {
	api.MinistrantCreateRequest
}

type Response struct {
	response.Response
	Ministrant api.Ministrant `json:"ministrant"`
}

func New(log *slog.Logger, creator MinistrantCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ministrants.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := params.DecodeJSON(r, &req); err != nil {
			log.Error("Invalid request", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		ministrant, err := creator.CreateMinistrant(r.Context(), &req.MinistrantCreateRequest)
		if err != nil {
			log.Error("Failed to create ministrant", sl.Err(err))
			response.RenderError(w, r, err, "failed to create ministrant")
			return
		}

		log.Info("Ministrant created", slog.Int64("id", ministrant.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Ministrant: *ministrant})
	}
}
