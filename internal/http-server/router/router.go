// Package router mounts every HTTP handler on a chi router.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	logCreate "lso-service/internal/http-server/handlers/attendance_logs/create"
	logGet "lso-service/internal/http-server/handlers/attendance_logs/get"
	"lso-service/internal/http-server/handlers/calendar/occurrences"
	"lso-service/internal/http-server/handlers/dashboard/stats"
	"lso-service/internal/http-server/handlers/dashboard/upcoming"
	"lso-service/internal/http-server/handlers/dictionaries"
	exportWeekday "lso-service/internal/http-server/handlers/export/weekday"
	"lso-service/internal/http-server/handlers/grids/available"
	gridSunday "lso-service/internal/http-server/handlers/grids/sunday"
	gridWeekday "lso-service/internal/http-server/handlers/grids/weekday"
	"lso-service/internal/http-server/handlers/ministrants/active"
	ministrantCreate "lso-service/internal/http-server/handlers/ministrants/create"
	ministrantGet "lso-service/internal/http-server/handlers/ministrants/get"
	ministrantList "lso-service/internal/http-server/handlers/ministrants/list"
	"lso-service/internal/http-server/handlers/ministrants/recalculate"
	"lso-service/internal/http-server/handlers/ministrants/top"
	scheduleGet "lso-service/internal/http-server/handlers/schedule_entries/get"
	scheduleSave "lso-service/internal/http-server/handlers/schedule_entries/save"
	sundayGet "lso-service/internal/http-server/handlers/sunday_attendance/get"
	sundayToggle "lso-service/internal/http-server/handlers/sunday_attendance/toggle"
	weekdayGet "lso-service/internal/http-server/handlers/weekday_attendance/get"
	weekdayToggle "lso-service/internal/http-server/handlers/weekday_attendance/toggle"
	templateCreate "lso-service/internal/http-server/handlers/weekday_templates/create"
	templateDelete "lso-service/internal/http-server/handlers/weekday_templates/delete"
	templateGet "lso-service/internal/http-server/handlers/weekday_templates/get"
	"lso-service/internal/service"
	"lso-service/pkg/middleware/mwLogger"
)

// corsOptions allows the browser front end to call the API. An empty origin
// list allows any origin.
func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}
}

func New(log *slog.Logger, svc *service.Service, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(corsOptions(allowedOrigins)))

	// Ministrants
	router.Get("/ministrants", ministrantList.New(log, svc))
	router.Post("/ministrants", ministrantCreate.New(log, svc))
	router.Get("/ministrants/top", top.New(log, svc))
	router.Post("/ministrants/recalculate", recalculate.New(log, svc))
	router.Get("/ministrants/{id}", ministrantGet.New(log, svc))
	router.Put("/ministrants/{id}/active", active.New(log, svc))

	// Dictionaries
	router.Get("/ranks", dictionaries.Ranks(log, svc))
	router.Get("/groups", dictionaries.Groups(log, svc))
	router.Post("/groups", dictionaries.CreateGroup(log, svc))
	router.Get("/mass_times", dictionaries.MassTimes(log, svc))
	router.Post("/mass_times", dictionaries.CreateMassTime(log, svc))

	// Supplementary services
	router.Get("/attendance_logs", logGet.New(log, svc))
	router.Post("/attendance_logs", logCreate.New(log, svc))

	// Sunday schedule
	router.Get("/schedule_entries", scheduleGet.New(log, svc))
	router.Put("/schedule_entries", scheduleSave.New(log, svc))

	// Weekday templates
	router.Get("/weekday_templates", templateGet.New(log, svc))
	router.Post("/weekday_templates", templateCreate.New(log, svc))
	router.Delete("/weekday_templates/{id}", templateDelete.New(log, svc))

	// Attendance
	router.Get("/weekday_attendance", weekdayGet.New(log, svc))
	router.Post("/weekday_attendance/toggle", weekdayToggle.New(log, svc))
	router.Get("/sunday_attendance", sundayGet.New(log, svc))
	router.Post("/sunday_attendance/toggle", sundayToggle.New(log, svc))

	// Views
	router.Get("/grids/weekday", gridWeekday.New(log, svc))
	router.Get("/grids/weekday/available", available.New(log, svc))
	router.Get("/grids/sunday", gridSunday.New(log, svc))
	router.Get("/calendar/occurrences", occurrences.New(log, svc))
	router.Get("/stats", stats.New(log, svc))
	router.Get("/upcoming", upcoming.New(log, svc))
	router.Get("/export/weekday", exportWeekday.New(log, svc))

	return router
}
