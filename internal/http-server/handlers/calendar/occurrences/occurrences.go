package occurrences

import (
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

type OccurrenceLister interface {
	Occurrences(m calendar.Month, wd calendar.Weekday) (*api.Occurrences, error)
}

type Response struct {
	response.Response
	api.Occurrences
}

// New lists the dates of ?month= falling on ?weekday= (1 = Monday, 7 = Sunday).
func New(log *slog.Logger, lister OccurrenceLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.calendar.occurrences.New"

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

		occ, err := lister.Occurrences(month, wd)
		if err != nil {
			log.Error("Failed to enumerate dates", sl.Err(err))
			response.RenderError(w, r, err, "failed to enumerate dates")
			return
		}

		render.JSON(w, r, Response{Occurrences: *occ})
	}
}
