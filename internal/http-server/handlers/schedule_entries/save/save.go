package save

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

type EntrySaver interface {
	SaveScheduleEntry(ctx context.Context, req *api.ScheduleEntryRequest) (*api.ScheduleEntry, error)
}

type Request struct {
	api.ScheduleEntryRequest
}

type Response struct {
	response.Response
	Entry api.ScheduleEntry `json:"schedule_entry"`
}

// New assigns a guild to a Sunday Mass, replacing the previous assignment.
func New(log *slog.Logger, saver EntrySaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule_entries.save.New"

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

		entry, err := saver.SaveScheduleEntry(r.Context(), &req.ScheduleEntryRequest)
		if err != nil {
			log.Error("Failed to save schedule entry", sl.Err(err))
			response.RenderError(w, r, err, "failed to save schedule entry")
			return
		}

		log.Info("Schedule entry saved", slog.Int64("id", entry.ID), slog.String("date", entry.Date.String()))

		render.JSON(w, r, Response{Entry: *entry})
	}
}
