package create

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

type LogAdder interface {
	AddAttendanceLog(ctx context.Context, req *api.AttendanceLogRequest) (*api.AttendanceLog, error)
}

type Request struct {
	api.AttendanceLogRequest
}

type Response struct {
	response.Response
	Log api.AttendanceLog `json:"attendance_log"`
}

// New records a supplementary service and credits its score.
func New(log *slog.Logger, adder LogAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance_logs.create.New"

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

		log.Info("Request body decoded", slog.Any("request", req))

		entry, err := adder.AddAttendanceLog(r.Context(), &req.AttendanceLogRequest)
		if err != nil {
			log.Error("Failed to add attendance log", sl.Err(err))
			response.RenderError(w, r, err, "failed to add attendance log")
			return
		}

		log.Info("Attendance log added", slog.Int64("id", entry.ID), slog.Int("score", entry.Score))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Log: *entry})
	}
}
