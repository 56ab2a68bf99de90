package weekday

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"lso-service/internal/calendar"
	"lso-service/internal/http-server/handlers/params"
	"lso-service/pkg/response"
	"lso-service/pkg/sl"
)

type Exporter interface {
	ExportWeekday(ctx context.Context, m calendar.Month) ([]byte, error)
}

// New serves the printable weekday schedule of ?month= as an HTML file.
func New(log *slog.Logger, exporter Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.export.weekday.New"

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

		page, err := exporter.ExportWeekday(r.Context(), month)
		if err != nil {
			log.Error("Failed to export schedule", sl.Err(err))
			response.RenderError(w, r, err, "failed to export schedule")
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="grafik-%s.html"`, month))
		if _, err := w.Write(page); err != nil {
			log.Error("Failed to write response", sl.Err(err))
			return
		}

		log.Info("Schedule exported", slog.String("month", month.String()), slog.Int("bytes", len(page)))
	}
}
