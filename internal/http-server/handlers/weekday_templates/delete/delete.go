package delete

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

type TemplateRemover interface {
	RemoveTemplate(ctx context.Context, id int64, m calendar.Month) (*api.TemplateRemoval, error)
}

type Response struct {
	response.Response
	Removal api.TemplateRemoval `json:"removal"`
}

// New removes a template from ?month= onwards. The response tells whether
// the row was deleted or its validity was closed.
func New(log *slog.Logger, remover TemplateRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.weekday_templates.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := params.ID(r, "id")
		if err != nil {
			log.Error("Invalid id", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		month, err := params.Month(r)
		if err != nil {
			log.Error("Invalid month", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		removal, err := remover.RemoveTemplate(r.Context(), id, month)
		if err != nil {
			log.Error("Failed to remove template", sl.Err(err))
			response.RenderError(w, r, err, "failed to remove template")
			return
		}

		log.Info("Template removed", slog.Int64("id", id), slog.String("action", removal.Action))

		render.JSON(w, r, Response{Removal: *removal})
	}
}
