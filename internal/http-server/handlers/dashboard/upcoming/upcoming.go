package upcoming

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

type UpcomingGetter interface {
	UpcomingServices(ctx context.Context, from calendar.Date, days int) ([]api.UpcomingService, error)
}

type Response struct {
	response.Response
	Services []api.UpcomingService `json:"services"`
}

// New lists the Masses of the next ?days= days starting at ?from= (today by
// default).
func New(log *slog.Logger, getter UpcomingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.upcoming.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		from, err := params.Date(r, "from")
		if err != nil {
			log.Error("Invalid from", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		days, err := params.Int(r, "days", 0)
		if err != nil {
			log.Error("Invalid days", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		services, err := getter.UpcomingServices(r.Context(), from, days)
		if err != nil {
			log.Error("Failed to list upcoming services", sl.Err(err))
			response.RenderError(w, r, err, "failed to list upcoming services")
			return
		}

		render.JSON(w, r, Response{Services: services})
	}
}
