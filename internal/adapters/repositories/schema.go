package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS fuel_blends (
		blend_id SERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		biodiesel_percentage NUMERIC(5,2) NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS emirates (
		emirate_id SERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		driver_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		employee_id TEXT UNIQUE,
		driver_type TEXT NOT NULL DEFAULT 'internal'
			CONSTRAINT drivers_type_check CHECK (driver_type IN ('internal', '3pl')),
		phone TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS tankers (
		tanker_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		registration TEXT,
		max_capacity NUMERIC(10,2) NOT NULL
			CONSTRAINT tankers_capacity_check CHECK (max_capacity > 0),
		delivery_type TEXT NOT NULL
			CONSTRAINT tankers_delivery_type_check CHECK (delivery_type IN ('bulk', 'mobile', 'both')),
		status TEXT NOT NULL DEFAULT 'active'
			CONSTRAINT tankers_status_check CHECK (status IN ('active', 'maintenance', 'inactive')),
		is_3pl BOOLEAN NOT NULL DEFAULT FALSE,
		default_driver_id INTEGER REFERENCES drivers(driver_id) ON DELETE SET NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS tanker_blends (
		tanker_id INTEGER NOT NULL REFERENCES tankers(tanker_id) ON DELETE CASCADE,
		blend_id INTEGER NOT NULL REFERENCES fuel_blends(blend_id) ON DELETE CASCADE,
		PRIMARY KEY (tanker_id, blend_id)
	);`,
	`CREATE TABLE IF NOT EXISTS tanker_emirates (
		tanker_id INTEGER NOT NULL REFERENCES tankers(tanker_id) ON DELETE CASCADE,
		emirate_id INTEGER NOT NULL REFERENCES emirates(emirate_id) ON DELETE CASCADE,
		PRIMARY KEY (tanker_id, emirate_id)
	);`,
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT UNIQUE,
		customer_type TEXT NOT NULL DEFAULT 'bulk'
			CONSTRAINT customers_type_check CHECK (customer_type IN ('bulk', 'mobile', 'both')),
		fuel_blend_id INTEGER REFERENCES fuel_blends(blend_id),
		emirate_id INTEGER REFERENCES emirates(emirate_id),
		estimated_volume NUMERIC(10,2),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS driver_schedules (
		driver_id INTEGER NOT NULL REFERENCES drivers(driver_id) ON DELETE CASCADE,
		schedule_date DATE NOT NULL,
		status TEXT NOT NULL
			CONSTRAINT driver_schedules_status_check CHECK (status IN ('working', 'off', 'holiday', 'float')),
		PRIMARY KEY (driver_id, schedule_date)
	);`,
	`CREATE TABLE IF NOT EXISTS trip_groups (
		group_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		day_of_week SMALLINT
			CONSTRAINT trip_groups_day_check CHECK (day_of_week BETWEEN 0 AND 6),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS weekly_templates (
		template_id SERIAL PRIMARY KEY,
		customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
		day_of_week SMALLINT NOT NULL
			CONSTRAINT weekly_templates_day_check CHECK (day_of_week BETWEEN 0 AND 6),
		start_minute INTEGER NOT NULL
			CONSTRAINT weekly_templates_start_check CHECK (start_minute BETWEEN 0 AND 1440),
		end_minute INTEGER NOT NULL
			CONSTRAINT weekly_templates_end_check CHECK (end_minute BETWEEN 0 AND 1440),
		tanker_id INTEGER REFERENCES tankers(tanker_id),
		fuel_blend_id INTEGER REFERENCES fuel_blends(blend_id),
		volume_liters NUMERIC(10,2) NOT NULL
			CONSTRAINT weekly_templates_volume_check CHECK (volume_liters > 0),
		is_mobile_op BOOLEAN NOT NULL DEFAULT FALSE,
		needs_return BOOLEAN NOT NULL DEFAULT FALSE,
		priority INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		CONSTRAINT weekly_templates_time_check CHECK (end_minute > start_minute)
	);`,
	`CREATE TABLE IF NOT EXISTS trip_group_templates (
		group_id INTEGER NOT NULL REFERENCES trip_groups(group_id) ON DELETE CASCADE,
		template_id INTEGER NOT NULL REFERENCES weekly_templates(template_id) ON DELETE CASCADE,
		PRIMARY KEY (group_id, template_id)
	);`,
	`CREATE TABLE IF NOT EXISTS daily_schedules (
		schedule_id SERIAL PRIMARY KEY,
		schedule_date DATE NOT NULL UNIQUE,
		day_of_week SMALLINT NOT NULL
			CONSTRAINT daily_schedules_day_check CHECK (day_of_week BETWEEN 0 AND 6),
		is_locked BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS trips (
		trip_id SERIAL PRIMARY KEY,
		daily_schedule_id INTEGER NOT NULL REFERENCES daily_schedules(schedule_id) ON DELETE CASCADE,
		template_id INTEGER REFERENCES weekly_templates(template_id) ON DELETE SET NULL,
		customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
		tanker_id INTEGER REFERENCES tankers(tanker_id),
		driver_id INTEGER REFERENCES drivers(driver_id),
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		fuel_blend_id INTEGER REFERENCES fuel_blends(blend_id),
		volume_liters NUMERIC(10,2) NOT NULL
			CONSTRAINT trips_volume_check CHECK (volume_liters > 0),
		is_mobile_op BOOLEAN NOT NULL DEFAULT FALSE,
		needs_return BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT NOT NULL DEFAULT 'UNASSIGNED'
			CONSTRAINT trips_status_check CHECK (status IN ('UNASSIGNED', 'SCHEDULED', 'CONFLICT', 'COMPLETED', 'CANCELLED')),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT trips_time_check CHECK (end_minute > start_minute)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_tanker_schedule
	ON trips(tanker_id, daily_schedule_id);`,
	`CREATE TABLE IF NOT EXISTS weekly_driver_assignments (
		assignment_id SERIAL PRIMARY KEY,
		trip_group_id INTEGER NOT NULL REFERENCES trip_groups(group_id) ON DELETE CASCADE,
		driver_id INTEGER NOT NULL REFERENCES drivers(driver_id) ON DELETE CASCADE,
		week_start_date DATE NOT NULL,
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		assigned_by INTEGER,
		notes TEXT,
		CONSTRAINT unique_group_week UNIQUE (trip_group_id, week_start_date),
		CONSTRAINT unique_driver_week UNIQUE (driver_id, week_start_date)
	);`,
}

// InitSchema creates every table and index the service needs. It is
// idempotent and runs in one transaction.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
