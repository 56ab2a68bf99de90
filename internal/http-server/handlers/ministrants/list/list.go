package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"lso-service/api"
	"lso-service/pkg/response"
	"lso-service/pkg/sl"
)

type MinistrantLister interface {
	ListMinistrants(ctx context.Context, activeOnly bool) ([]api.Ministrant, error)
}

type Response struct {
	response.Response
	Ministrants []api.Ministrant `json:"ministrants"`
}

// New lists ministrants ordered by points. ?active=true hides inactive ones.
func New(log *slog.Logger, lister MinistrantLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ministrants.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		activeOnly := r.URL.Query().Get("active") == "true"

		ministrants, err := lister.ListMinistrants(r.Context(), activeOnly)
		if err != nil {
			log.Error("Failed to list ministrants", sl.Err(err))
			response.RenderError(w, r, err, "failed to list ministrants")
			return
		}

		log.Info("Ministrants listed", slog.Int("count", len(ministrants)))

		render.JSON(w, r, Response{Ministrants: ministrants})
	}
}
