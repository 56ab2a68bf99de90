package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"lso-service/api"
	"lso-service/internal/calendar"
	"lso-service/internal/http-server/handlers/params"
	"lso-service/pkg/response"
	"lso-service/pkg/sl"
)

type StatsGetter interface {
	Stats(ctx context.Context, m calendar.Month) (*api.Stats, error)
}

type Response struct {
	response.Response
	Stats api.Stats `json:"stats"`
}

func New(log *slog.Logger, getter StatsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.stats.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		month, err := params.Month(r)
		if err != nil {
			log.Error("Invalid month", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		stats, err := getter.Stats(r.Context(), month)
		if err != nil {
			log.Error("Failed to compute stats", sl.Err(err))
			response.RenderError(w, r, err, "failed to compute stats")
			return
		}

		render.JSON(w, r, Response{Stats: *stats})
	}
}
