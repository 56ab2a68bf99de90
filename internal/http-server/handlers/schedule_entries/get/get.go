package get

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

type EntryLister interface {
	ListScheduleEntries(ctx context.Context, r calendar.Range) ([]api.ScheduleEntry, error)
}

type Response struct {
	response.Response
	Entries []api.ScheduleEntry `json:"schedule_entries"`
}

func New(log *slog.Logger, lister EntryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule_entries.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		rng, err := params.Range(r)
		if err != nil {
			log.Error("Invalid range", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		entries, err := lister.ListScheduleEntries(r.Context(), rng)
		if err != nil {
			log.Error("Failed to list schedule entries", sl.Err(err))
			response.RenderError(w, r, err, "failed to list schedule entries")
			return
		}

		render.JSON(w, r, Response{Entries: entries})
	}
}
