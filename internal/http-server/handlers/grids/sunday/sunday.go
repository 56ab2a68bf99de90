package sunday

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"lso-service/internal/calendar"
	"lso-service/internal/grid"
	"lso-service/internal/http-server/handlers/params"
	"lso-service/pkg/response"
	"lso-service/pkg/sl"
)

type GridBuilder interface {
	SundayGrid(ctx context.Context, m calendar.Month) (*grid.SundayGrid, error)
}

type Response struct {
	response.Response
	Grid grid.SundayGrid `json:"grid"`
}

func New(log *slog.Logger, builder GridBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.grids.sunday.New"

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

		g, err := builder.SundayGrid(r.Context(), month)
		if err != nil {
			log.Error("Failed to build sunday grid", sl.Err(err))
			response.RenderError(w, r, err, "failed to build sunday grid")
			return
		}

		render.JSON(w, r, Response{Grid: *g})
	}
}
