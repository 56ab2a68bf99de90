package available

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"lso-service/api"
	"lso-service/internal/calendar"
	"lso-service/internal/http-server/handlers/params"
	"lso-service/internal/roster"
	"lso-service/pkg/response"
	"lso-service/pkg/sl"
)

type AvailabilityGetter interface {
	AvailableMinistrants(ctx context.Context, wd calendar.Weekday, slot roster.Slot, m calendar.Month) ([]api.Ministrant, error)
}

type Response struct {
	response.Response
	Ministrants []api.Ministrant `json:"ministrants"`
}

// New lists active ministrants not yet assigned to ?weekday= and ?slot= in
// ?month=.
func New(log *slog.Logger, getter AvailabilityGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.grids.available.New"

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

		wd, err := params.Weekday(r)
		if err != nil {
			log.Error("Invalid weekday", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		slot, err := params.Slot(r)
		if err != nil {
			log.Error("Invalid slot", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		ministrants, err := getter.AvailableMinistrants(r.Context(), wd, slot, month)
		if err != nil {
			log.Error("Failed to list available ministrants", sl.Err(err))
			response.RenderError(w, r, err, "failed to list available ministrants")
			return
		}

		render.JSON(w, r, Response{Ministrants: ministrants})
	}
}
