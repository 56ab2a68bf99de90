package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"lso-service/api"
	"lso-service/internal/calendar"
	"lso-service/internal/http-server/handlers/params"
	"lso-service/pkg/response"
	"lso-service/pkg/sl"
)

type LogLister interface {
	ListAttendanceLogs(ctx context.Context, ministrantID *int64, r *calendar.Range) ([]api.AttendanceLog, error)
}

type Response struct {
	response.Response
	Logs []api.AttendanceLog `json:"attendance_logs"`
}

// New lists supplementary services, optionally filtered by ?ministrant_id=
// and ?from=&to=.
func New(log *slog.Logger, lister LogLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance_logs.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var ministrantID *int64
		if raw := r.URL.Query().Get("ministrant_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				log.Error("Invalid ministrant_id", slog.String("ministrant_id", raw))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.INVALID_INPUT), "invalid ministrant_id"))
				return
			}
			ministrantID = &id
		}

		rng, err := params.OptionalRange(r)
		if err != nil {
			log.Error("Invalid range", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		logs, err := lister.ListAttendanceLogs(r.Context(), ministrantID, rng)
		if err != nil {
			log.Error("Failed to list attendance logs", sl.Err(err))
			response.RenderError(w, r, err, "failed to list attendance logs")
			return
		}

		log.Info("Attendance logs listed", slog.Int("count", len(logs)))

		render.JSON(w, r, Response{Logs: logs})
	}
}
