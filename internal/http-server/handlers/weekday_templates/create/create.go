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

type TemplateCreator interface {
	AddTemplate(ctx context.Context, req *api.TemplateCreateRequest) ([]api.Template, error)
}

type Request struct {
	api.TemplateCreateRequest
}

type Response struct {
	response.Response
	Templates []api.Template `json:"templates"`
}

// New assigns the selected ministrants to a weekday slot from the given
// month on. Either all of them are assigned or none.
func New(log *slog.Logger, creator TemplateCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.weekday_templates.create.New"

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

		templates, err := creator.AddTemplate(r.Context(), &req.TemplateCreateRequest)
		if err != nil {
			log.Error("Failed to add templates", sl.Err(err))
			response.RenderError(w, r, err, "failed to add templates")
			return
		}

		log.Info("Templates added", slog.Int("count", len(templates)))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Templates: templates})
	}
}
