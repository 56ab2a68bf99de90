package recalculate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"lso-service/pkg/response"
	"lso-service/pkg/sl"
)

type PointsRecalculator interface {
	RecalculatePoints(ctx context.Context) (int, error)
}

type Response struct {
	response.Response
	Updated int `json:"updated"`
}

func New(log *slog.Logger, recalculator PointsRecalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ministrants.recalculate.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		updated, err := recalculator.RecalculatePoints(r.Context())
		if err != nil {
			log.Error("Failed to recalculate points", sl.Err(err))
			response.RenderError(w, r, err, "failed to recalculate points")
			return
		}

		log.Info("Points recalculated", slog.Int("updated", updated))

		render.JSON(w, r, Response{Updated: updated})
	}
}
