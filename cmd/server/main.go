package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"tanker-dispatch-service/internal/adapters/cache"
	"tanker-dispatch-service/internal/adapters/documents"
	"tanker-dispatch-service/internal/adapters/events"
	"tanker-dispatch-service/internal/adapters/repositories"
	"tanker-dispatch-service/internal/api"
	"tanker-dispatch-service/internal/config"
	"tanker-dispatch-service/internal/platform/db"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/platform/obs"
	"tanker-dispatch-service/internal/ports"
	"tanker-dispatch-service/internal/services"
	"time"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, RabbitMQ, PDF) behind ports and starts the HTTP server.
func main() {
	if !config.LoadDotEnv() {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg := logger.New(cfg.ServiceName)
	lg.SetDebug(os.Getenv("LOG_DEBUG") == "1")
	obs.SetSink(lg.Timing)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error(ctx, "server_exit", "Server stopped with error", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	database, err := db.Open(ctx, cfg.Database.URL, db.PoolSettings{MaxOpenConns: cfg.Database.MaxOpenConns})
	if err != nil {
		return err
	}
	defer database.Close()

	// Redis and RabbitMQ are optional; without them views are not cached and
	// no events leave the process.
	var viewCache ports.Cache
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		viewCache = cache.NewRedisCache(client, cache.DefaultPrefix)
	}

	var publisher ports.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		pub, err := events.NewRabbitPublisher(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, lg)
		if err != nil {
			return err
		}
		defer pub.Close()
		publisher = pub
	}

	uow := repositories.NewUnitOfWork(database)
	tankers := repositories.NewPostgresTankerRepository(database)
	customers := repositories.NewPostgresCustomerRepository(database)
	drivers := repositories.NewPostgresDriverRepository(database)
	trips := repositories.NewPostgresTripRepository(database)
	groups := repositories.NewPostgresTripGroupRepository(database)
	schedules := repositories.NewPostgresScheduleRepository(database)
	assignments := repositories.NewPostgresAssignmentRepository(database)

	validator := services.NewCompatibilityValidator(tankers, customers)
	conflicts := services.NewConflictDetector(trips)

	seed := uint64(time.Now().UnixNano())
	autoAssigner := services.NewWeeklyAutoAssigner(
		uow, groups, drivers, assignments,
		services.NewLockedRand(rand.NewPCG(seed, seed>>1|1)),
		lg,
	)

	tripSvc := services.NewTripService(services.TripServiceDeps{
		UnitOfWork: uow,
		Trips:      trips,
		Schedules:  schedules,
		Tankers:    tankers,
		Customers:  customers,
		Validator:  validator,
		Conflicts:  conflicts,
		Cache:      viewCache,
		Publisher:  publisher,
		Logger:     lg,
	})
	scheduleSvc := services.NewScheduleService(services.ScheduleServiceDeps{
		UnitOfWork: uow,
		Schedules:  schedules,
		Trips:      trips,
		Groups:     groups,
		Cache:      viewCache,
		CacheTTL:   cfg.Redis.TTL,
		Logger:     lg,
	})
	assignmentSvc := services.NewAssignmentService(services.AssignmentServiceDeps{
		UnitOfWork:   uow,
		Groups:       groups,
		Drivers:      drivers,
		Assignments:  assignments,
		AutoAssigner: autoAssigner,
		Cache:        viewCache,
		CacheTTL:     cfg.Redis.TTL,
		Publisher:    publisher,
		Roster:       documents.NewRosterPDF("Weekly Driver Roster"),
		Logger:       lg,
	})

	dashboardSvc := services.NewDashboardService(services.DashboardServiceDeps{
		Schedules: schedules,
		Trips:     trips,
		Tankers:   tankers,
		Drivers:   drivers,
		Customers: customers,
		Logger:    lg,
	})

	router := api.NewRouter(api.Deps{
		DB:                  database,
		Trips:               tripSvc,
		Schedules:           scheduleSvc,
		Assignments:         assignmentSvc,
		Dashboard:           dashboardSvc,
		Customers:           customers,
		Tankers:             validator,
		DefaultMinRestHours: cfg.Assign.DefaultMinRestHours,
		Logger:              lg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info(ctx, "server_start", "Server listening", map[string]any{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	lg.Info(shutdownCtx, "server_shutdown", "Draining connections", nil)
	return srv.Shutdown(shutdownCtx)
}
