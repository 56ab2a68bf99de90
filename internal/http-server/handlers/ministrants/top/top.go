package top

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

type RankingGetter interface {
	TopMinistrants(ctx context.Context, limit int) ([]api.RankedMinistrant, error)
}

type Response struct {
	response.Response
	Ranking []api.RankedMinistrant `json:"ranking"`
}

func New(log *slog.Logger, getter RankingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ministrants.top.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		limit, err := params.Int(r, "limit", 0)
		if err != nil {
			log.Error("Invalid limit", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		ranking, err := getter.TopMinistrants(r.Context(), limit)
		if err != nil {
			log.Error("Failed to get ranking", sl.Err(err))
			response.RenderError(w, r, err, "failed to get ranking")
			return
		}

		render.JSON(w, r, Response{Ranking: ranking})
	}
}
