package weekday

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
	WeekdayGrid(ctx context.Context, m calendar.Month) (*grid.WeekdayGrid, error)
}

type Response struct {
	response.Response
	Grid grid.WeekdayGrid `json:"grid"`
}

func New(log *slog.Logger, builder GridBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.grids.weekday.New"

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

		g, err := builder.WeekdayGrid(r.Context(), month)
		if err != nil {
			log.Error("Failed to build weekday grid", sl.Err(err))
			response.RenderError(w, r, err, "failed to build weekday grid")
			return
		}

		render.JSON(w, r, Response{Grid: *g})
	}
}
