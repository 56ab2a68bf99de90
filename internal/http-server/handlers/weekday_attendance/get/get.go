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

type MarkLister interface {
	ListWeekdayAttendance(ctx context.Context, r calendar.Range) ([]api.AttendanceMark, error)
}

type Response struct {
	response.Response
	Attendance []api.AttendanceMark `json:"attendance"`
}

func New(log *slog.Logger, lister MarkLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.weekday_attendance.get.New"

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

		marks, err := lister.ListWeekdayAttendance(r.Context(), rng)
		if err != nil {
			log.Error("Failed to list weekday attendance", sl.Err(err))
			response.RenderError(w, r, err, "failed to list weekday attendance")
			return
		}

		log.Info("Weekday attendance listed", slog.Int("count", len(marks)))

		render.JSON(w, r, Response{Attendance: marks})
	}
}
