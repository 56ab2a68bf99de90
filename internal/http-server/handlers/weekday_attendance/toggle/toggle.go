package toggle

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

type Toggler interface {
	ToggleWeekdayAttendance(ctx context.Context, req *api.WeekdayToggleRequest) (*api.AttendanceMark, error)
}

type Request struct {
	api.WeekdayToggleRequest
}

type Response struct {
	response.Response
	Attendance api.AttendanceMark `json:"attendance"`
}

// New advances one weekday cell: unmarked, present, absent, unmarked.
func New(log *slog.Logger, toggler Toggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.weekday_attendance.toggle.New"

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

		mark, err := toggler.ToggleWeekdayAttendance(r.Context(), &req.WeekdayToggleRequest)
		if err != nil {
			log.Error("Failed to toggle attendance", sl.Err(err))
			response.RenderError(w, r, err, "failed to toggle attendance")
			return
		}

		log.Info("Attendance toggled",
			slog.Int64("ministrant_id", mark.MinistrantID),
			slog.String("date", mark.Date.String()),
			slog.String("time_slot", mark.Slot),
			slog.String("mark", mark.IsPresent.String()),
		)

		render.JSON(w, r, Response{Attendance: *mark})
	}
}
