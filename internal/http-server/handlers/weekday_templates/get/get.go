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

type TemplateLister interface {
	ListTemplates(ctx context.Context, m *calendar.Month) ([]api.Template, error)
}

type Response struct {
	response.Response
	Templates []api.Template `json:"templates"`
}

// New lists the templates active in ?month=, or every template when the
// month is omitted.
func New(log *slog.Logger, lister TemplateLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.weekday_templates.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		month, err := params.OptionalMonth(r)
		if err != nil {
			log.Error("Invalid month", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		templates, err := lister.ListTemplates(r.Context(), month)
		if err != nil {
			log.Error("Failed to list templates", sl.Err(err))
			response.RenderError(w, r, err, "failed to list templates")
			return
		}

		log.Info("Templates listed", slog.Int("count", len(templates)))

		render.JSON(w, r, Response{Templates: templates})
	}
}
