package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"tanker-dispatch-service/internal/adapters/repositories"
	"tanker-dispatch-service/internal/config"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/db"
	"tanker-dispatch-service/internal/platform/logger"
	"time"
)

func main() {
	if !config.LoadDotEnv() {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	seedPath := flag.String("seed", cfg.Database.SeedPath, "fleet seed JSON file")
	schemaOnly := flag.Bool("schema-only", false, "create tables without seeding")
	week := flag.String("week", "", "first week (YYYY-MM-DD) to write driver availability for; defaults to the current week")
	weeks := flag.Int("weeks", 2, "number of weeks of driver availability to write")
	flag.Parse()

	lg := logger.New(cfg.ServiceName + "-dbtool")
	ctx := context.Background()

	database, err := db.Open(ctx, cfg.Database.URL, db.PoolSettings{MaxOpenConns: 2})
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	opts := repositories.SeedOptions{WeekStart: domain.WeekStart(time.Now()), Weeks: *weeks}
	if *week != "" {
		d, err := time.Parse(time.DateOnly, *week)
		if err != nil {
			log.Fatalf("invalid -week %q: %v", *week, err)
		}
		opts.WeekStart = domain.WeekStart(d)
	}

	if err := initAndSeed(ctx, database, lg, *seedPath, *schemaOnly, opts); err != nil {
		lg.Error(ctx, "dbtool_failed", "Database setup failed", err, nil)
		log.Fatal(err)
	}
}

func initAndSeed(
	ctx context.Context,
	database *sql.DB,
	lg *logger.Logger,
	seedPath string,
	schemaOnly bool,
	opts repositories.SeedOptions,
) error {
	lg.Info(ctx, "schema_init", "Initializing database schema", nil)
	if err := repositories.InitSchema(ctx, database); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	lg.Info(ctx, "schema_init", "Schema ready", nil)

	if schemaOnly {
		return nil
	}

	lg.Info(ctx, "seed", "Seeding database", map[string]any{
		"path":       seedPath,
		"week_start": opts.WeekStart.Format(time.DateOnly),
		"weeks":      opts.Weeks,
	})
	if err := repositories.SeedFromJSON(ctx, database, seedPath, opts); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	lg.Info(ctx, "seed", "Seeding complete", nil)

	return nil
}
