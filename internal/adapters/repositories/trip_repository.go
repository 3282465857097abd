package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"tanker-dispatch-service/internal/domain"
	"time"
)

const tripColumns = `
	t.trip_id,
	t.daily_schedule_id,
	ds.schedule_date,
	t.template_id,
	t.customer_id,
	t.tanker_id,
	t.driver_id,
	t.start_minute,
	t.end_minute,
	t.fuel_blend_id,
	t.volume_liters,
	t.is_mobile_op,
	t.needs_return,
	t.status,
	COALESCE(t.notes, '')
	FROM trips t
	JOIN daily_schedules ds ON ds.schedule_id = t.daily_schedule_id`

// Postgres-backed implementation of the TripRepository port.
type PostgresTripRepository struct{ DB *sql.DB }

func NewPostgresTripRepository(db *sql.DB) *PostgresTripRepository {
	return &PostgresTripRepository{DB: db}
}

func (r *PostgresTripRepository) GetTrip(ctx context.Context, tripID int) (*domain.Trip, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	t, err := scanTrip(q.QueryRowContext(ctx, `SELECT`+tripColumns+`
	WHERE t.trip_id = $1;
	`, tripID))
	if err != nil {
		return nil, notFound("trip", tripID, fmt.Errorf("get trip: %w", err))
	}
	return t, nil
}

func (r *PostgresTripRepository) ListTankerTrips(
	ctx context.Context,
	tankerID int,
	date time.Time,
	excludeTripID *int,
) ([]*domain.Trip, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT`+tripColumns+`
	WHERE t.tanker_id = $1
		AND ds.schedule_date = $2
		AND t.status NOT IN ('CANCELLED', 'COMPLETED')
		AND ($3::int IS NULL OR t.trip_id <> $3)
	ORDER BY t.start_minute, t.trip_id;
	`, tankerID, domain.DateOf(date), excludeTripID)
	if err != nil {
		return nil, fmt.Errorf("list tanker trips: query trips table: %w", err)
	}
	return collectTrips(rows, "list tanker trips")
}

func (r *PostgresTripRepository) ListScheduleTrips(ctx context.Context, scheduleID int) ([]*domain.Trip, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT`+tripColumns+`
	WHERE t.daily_schedule_id = $1
	ORDER BY t.start_minute, t.trip_id;
	`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list schedule trips: query trips table: %w", err)
	}
	return collectTrips(rows, "list schedule trips")
}

func (r *PostgresTripRepository) CreateTrip(ctx context.Context, trip *domain.Trip) error {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	err = q.QueryRowContext(ctx, `
	INSERT INTO trips (
		daily_schedule_id,
		template_id,
		customer_id,
		tanker_id,
		driver_id,
		start_minute,
		end_minute,
		fuel_blend_id,
		volume_liters,
		is_mobile_op,
		needs_return,
		status,
		notes
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
	RETURNING trip_id;
	`,
		trip.DailyScheduleID,
		trip.TemplateID,
		trip.CustomerID,
		trip.TankerID,
		trip.DriverID,
		trip.Start,
		trip.End,
		trip.FuelBlendID,
		trip.VolumeLiters,
		trip.IsMobileOp,
		trip.NeedsReturn,
		trip.Status.String(),
		trip.Notes,
	).Scan(&trip.TripID)
	if err != nil {
		return mapWriteError("trip", "trip already exists", fmt.Errorf("create trip: %w", err))
	}
	return nil
}

func (r *PostgresTripRepository) UpdateTrip(ctx context.Context, trip *domain.Trip) error {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
	UPDATE trips
	SET tanker_id = $1,
		driver_id = $2,
		start_minute = $3,
		end_minute = $4,
		fuel_blend_id = $5,
		volume_liters = $6,
		status = $7,
		notes = NULLIF($8, ''),
		updated_at = NOW()
	WHERE trip_id = $9;
	`,
		trip.TankerID,
		trip.DriverID,
		trip.Start,
		trip.End,
		trip.FuelBlendID,
		trip.VolumeLiters,
		trip.Status.String(),
		trip.Notes,
		trip.TripID,
	)
	if err != nil {
		return mapWriteError("trip", "trip update conflicts with existing data", fmt.Errorf("update trip: %w", err))
	}
	return requireRow(res, "trip", trip.TripID)
}

func (r *PostgresTripRepository) DeleteTrip(ctx context.Context, tripID int) error {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `DELETE FROM trips WHERE trip_id = $1;`, tripID)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return requireRow(res, "trip", tripID)
}

func (r *PostgresTripRepository) DeleteScheduleTrips(ctx context.Context, scheduleID int) (int, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return 0, err
	}

	res, err := q.ExecContext(ctx, `DELETE FROM trips WHERE daily_schedule_id = $1;`, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("delete schedule trips: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete schedule trips: rows affected: %w", err)
	}
	return int(n), nil
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var (
		t          domain.Trip
		templateID sql.Null[int64]
		tankerID   sql.Null[int64]
		driverID   sql.Null[int64]
		blendID    sql.Null[int64]
		status     string
	)
	err := row.Scan(
		&t.TripID,
		&t.DailyScheduleID,
		&t.ScheduleDate,
		&templateID,
		&t.CustomerID,
		&tankerID,
		&driverID,
		&t.Start,
		&t.End,
		&blendID,
		&t.VolumeLiters,
		&t.IsMobileOp,
		&t.NeedsReturn,
		&status,
		&t.Notes,
	)
	if err != nil {
		return nil, err
	}

	if t.Status, err = domain.ParseTripStatus(status); err != nil {
		return nil, fmt.Errorf("trip %d: %w", t.TripID, err)
	}
	t.ScheduleDate = domain.DateOf(t.ScheduleDate)
	t.TemplateID = nullID(templateID)
	t.TankerID = nullID(tankerID)
	t.DriverID = nullID(driverID)
	t.FuelBlendID = nullID(blendID)
	return &t, nil
}

func collectTrips(rows *sql.Rows, op string) ([]*domain.Trip, error) {
	defer rows.Close()

	trips := make([]*domain.Trip, 0, 16)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}
	return trips, nil
}
