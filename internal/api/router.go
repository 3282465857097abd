package api

import (
	"net/http"
	"tanker-dispatch-service/internal/api/handlers"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/ports"
)

// Deps lists what the HTTP layer needs. Handlers only see these interfaces.
type Deps struct {
	DB                  handlers.Pinger
	Trips               handlers.TripService
	Schedules           handlers.ScheduleService
	Assignments         handlers.AssignmentService
	Dashboard           handlers.DashboardService
	Customers           ports.CustomerRepository
	Tankers             handlers.TankerFinder
	DefaultMinRestHours int
	Logger              *logger.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	health := handlers.NewHealthHandler(deps.DB, deps.Logger)
	tankers := handlers.NewTankerHandler(deps.Customers, deps.Tankers, deps.Logger)
	trips := handlers.NewTripHandler(deps.Trips, deps.Logger)
	schedules := handlers.NewScheduleHandler(deps.Schedules, deps.Logger)
	assignments := handlers.NewAssignmentHandler(deps.Assignments, deps.DefaultMinRestHours, deps.Logger)
	dashboard := handlers.NewDashboardHandler(deps.Dashboard, deps.Logger)

	mux.HandleFunc("GET /health", health.Health)

	mux.HandleFunc("GET /tankers/compatible", tankers.Compatible)

	mux.HandleFunc("POST /trips/validate", trips.Validate)
	mux.HandleFunc("GET /trips/{id}/conflicts", trips.Conflicts)
	mux.HandleFunc("GET /trips/{id}/compatible-tankers", trips.CompatibleTankers)
	mux.HandleFunc("POST /trips/{id}/assign", trips.Assign)
	mux.HandleFunc("PATCH /trips/{id}", trips.Update)
	mux.HandleFunc("DELETE /trips/{id}", trips.Delete)

	mux.HandleFunc("GET /schedules/{date}", schedules.Get)
	mux.HandleFunc("POST /schedules/{date}/generate", schedules.Generate)
	mux.HandleFunc("POST /schedules/{date}/trips", trips.Create)
	mux.HandleFunc("POST /schedules/{date}/lock", schedules.Lock)
	mux.HandleFunc("POST /schedules/{date}/unlock", schedules.Unlock)

	mux.HandleFunc("GET /assignments/week/{date}", assignments.ListWeek)
	mux.HandleFunc("GET /assignments/week/{date}/roster.pdf", assignments.Roster)
	mux.HandleFunc("DELETE /assignments/week/{date}", assignments.ClearWeek)
	mux.HandleFunc("POST /assignments", assignments.Create)
	mux.HandleFunc("POST /assignments/auto-assign", assignments.AutoAssign)
	mux.HandleFunc("PATCH /assignments/{id}", assignments.Update)
	mux.HandleFunc("DELETE /assignments/{id}", assignments.Delete)

	mux.HandleFunc("GET /dashboard/{date}/summary", dashboard.Summary)
	mux.HandleFunc("GET /dashboard/{date}/utilization", dashboard.Utilization)
	mux.HandleFunc("GET /dashboard/{date}/drivers", dashboard.DriverStatus)
	mux.HandleFunc("GET /dashboard/{date}/alerts", dashboard.Alerts)
	mux.HandleFunc("GET /dashboard/{date}/week", dashboard.Week)

	return requestIDMiddleware(loggingMiddleware(mux, deps.Logger))
}
