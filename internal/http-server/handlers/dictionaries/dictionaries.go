// Package dictionaries serves the lookup tables and adds guilds and Mass times.
package dictionaries

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

type RankLister interface {
	ListRanks(ctx context.Context) ([]api.Rank, error)
}

type GroupLister interface {
	ListGroups(ctx context.Context) ([]api.Group, error)
}

type MassTimeLister interface {
	ListMassTimes(ctx context.Context) ([]api.MassTime, error)
}

type GroupCreator interface {
	CreateGroup(ctx context.Context, req *api.GroupCreateRequest) (*api.Group, error)
}

type MassTimeCreator interface {
	CreateMassTime(ctx context.Context, req *api.MassTimeCreateRequest) (*api.MassTime, error)
}

type RanksResponse struct {
	response.Response
	Ranks []api.Rank `json:"ranks"`
}

type GroupsResponse struct {
	response.Response
	Groups []api.Group `json:"groups"`
}

type MassTimesResponse struct {
	response.Response
	MassTimes []api.MassTime `json:"mass_times"`
}

type GroupResponse struct {
	response.Response
	Group api.Group `json:"group"`
}

type MassTimeResponse struct {
	response.Response
	MassTime api.MassTime `json:"mass_time"`
}

func requestLogger(log *slog.Logger, op string, r *http.Request) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func Ranks(log *slog.Logger, lister RankLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, "handlers.dictionaries.Ranks", r)

		ranks, err := lister.ListRanks(r.Context())
		if err != nil {
			log.Error("Failed to list ranks", sl.Err(err))
			response.RenderError(w, r, err, "failed to list ranks")
			return
		}

		render.JSON(w, r, RanksResponse{Ranks: ranks})
	}
}

func Groups(log *slog.Logger, lister GroupLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, "handlers.dictionaries.Groups", r)

		groups, err := lister.ListGroups(r.Context())
		if err != nil {
			log.Error("Failed to list groups", sl.Err(err))
			response.RenderError(w, r, err, "failed to list groups")
			return
		}

		render.JSON(w, r, GroupsResponse{Groups: groups})
	}
}

func MassTimes(log *slog.Logger, lister MassTimeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, "handlers.dictionaries.MassTimes", r)

		times, err := lister.ListMassTimes(r.Context())
		if err != nil {
			log.Error("Failed to list mass times", sl.Err(err))
			response.RenderError(w, r, err, "failed to list mass times")
			return
		}

		render.JSON(w, r, MassTimesResponse{MassTimes: times})
	}
}

func CreateGroup(log *slog.Logger, creator GroupCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, "handlers.dictionaries.CreateGroup", r)

		var req api.GroupCreateRequest
		if err := params.DecodeJSON(r, &req); err != nil {
			log.Error("Invalid request", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		group, err := creator.CreateGroup(r.Context(), &req)
		if err != nil {
			log.Error("Failed to create group", sl.Err(err))
			response.RenderError(w, r, err, "failed to create group")
			return
		}

		log.Info("Group created", slog.Int64("id", group.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, GroupResponse{Group: *group})
	}
}

func CreateMassTime(log *slog.Logger, creator MassTimeCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, "handlers.dictionaries.CreateMassTime", r)

		var req api.MassTimeCreateRequest
		if err := params.DecodeJSON(r, &req); err != nil {
			log.Error("Invalid request", sl.Err(err))
			params.RenderInvalid(w, r, err)
			return
		}

		mt, err := creator.CreateMassTime(r.Context(), &req)
		if err != nil {
			log.Error("Failed to create mass time", sl.Err(err))
			response.RenderError(w, r, err, "failed to create mass time")
			return
		}

		log.Info("Mass time created", slog.Int64("id", mt.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, MassTimeResponse{MassTime: *mt})
	}
}
