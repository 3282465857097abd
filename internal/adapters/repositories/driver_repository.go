package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"tanker-dispatch-service/internal/domain"
	"time"
)

const driverColumns = `
	driver_id,
	name,
	COALESCE(employee_id, ''),
	driver_type,
	COALESCE(phone, ''),
	is_active`

// Postgres-backed implementation of the DriverRepository port.
type PostgresDriverRepository struct{ DB *sql.DB }

func NewPostgresDriverRepository(db *sql.DB) *PostgresDriverRepository {
	return &PostgresDriverRepository{DB: db}
}

func (r *PostgresDriverRepository) GetDriver(ctx context.Context, driverID int) (*domain.Driver, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	d, err := scanDriver(q.QueryRowContext(ctx, `SELECT`+driverColumns+`
	FROM drivers
	WHERE driver_id = $1;
	`, driverID))
	if err != nil {
		return nil, notFound("driver", driverID, fmt.Errorf("get driver: %w", err))
	}
	return d, nil
}

func (r *PostgresDriverRepository) ListActiveDrivers(ctx context.Context) ([]*domain.Driver, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT`+driverColumns+`
	FROM drivers
	WHERE is_active
	ORDER BY driver_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query drivers table: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, 32)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}
	return drivers, nil
}

func (r *PostgresDriverRepository) ListSchedules(ctx context.Context, from, to time.Time) ([]domain.DriverSchedule, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
	SELECT driver_id, schedule_date, status
	FROM driver_schedules
	WHERE schedule_date BETWEEN $1 AND $2
	ORDER BY schedule_date, driver_id;
	`, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("list driver schedules: query driver_schedules table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DriverSchedule, 0, 64)
	for rows.Next() {
		var ds domain.DriverSchedule
		var status string
		if err := rows.Scan(&ds.DriverID, &ds.Date, &status); err != nil {
			return nil, fmt.Errorf("list driver schedules: scan row: %w", err)
		}
		if ds.Status, err = domain.ParseScheduleStatus(status); err != nil {
			return nil, fmt.Errorf("list driver schedules: driver %d: %w", ds.DriverID, err)
		}
		ds.Date = domain.DateOf(ds.Date)
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list driver schedules: row iteration: %w", err)
	}
	return out, nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var d domain.Driver
	var driverType string
	var active bool
	if err := row.Scan(&d.DriverID, &d.Name, &d.EmployeeID, &driverType, &d.Phone, &active); err != nil {
		return nil, err
	}
	d.DriverType = domain.DriverType(driverType)
	d.Lifecycle = domain.LifecycleFromFlag(active)
	return &d, nil
}
