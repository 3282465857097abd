package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tanker-dispatch-service/internal/domain"
	"time"
)

// Postgres-backed implementation of the ScheduleRepository port.
type PostgresScheduleRepository struct{ DB *sql.DB }

func NewPostgresScheduleRepository(db *sql.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{DB: db}
}

func (r *PostgresScheduleRepository) GetScheduleByDate(ctx context.Context, date time.Time) (*domain.DailySchedule, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	var s domain.DailySchedule
	err = q.QueryRowContext(ctx, `
	SELECT schedule_id, schedule_date, day_of_week, is_locked, COALESCE(notes, '')
	FROM daily_schedules
	WHERE schedule_date = $1;
	`, domain.DateOf(date)).Scan(&s.ScheduleID, &s.Date, &s.DayOfWeek, &s.Locked, &s.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError{
			Resource: fmt.Sprintf("schedule for %s", domain.DateOf(date).Format(time.DateOnly)),
			Err:      err,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	s.Date = domain.DateOf(s.Date)
	return &s, nil
}

// Insert the schedule and set its ScheduleID.
func (r *PostgresScheduleRepository) CreateSchedule(ctx context.Context, s *domain.DailySchedule) error {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	err = q.QueryRowContext(ctx, `
	INSERT INTO daily_schedules (schedule_date, day_of_week, is_locked, notes)
	VALUES ($1, $2, $3, NULLIF($4, ''))
	RETURNING schedule_id;
	`, domain.DateOf(s.Date), s.DayOfWeek, s.Locked, s.Notes).Scan(&s.ScheduleID)
	if err != nil {
		return mapWriteError("schedule", "a schedule already exists for this date", fmt.Errorf("create schedule: %w", err))
	}
	return nil
}

func (r *PostgresScheduleRepository) SetScheduleLocked(ctx context.Context, scheduleID int, locked bool) error {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
	UPDATE daily_schedules
	SET is_locked = $1, updated_at = NOW()
	WHERE schedule_id = $2;
	`, locked, scheduleID)
	if err != nil {
		return fmt.Errorf("set schedule lock: %w", err)
	}
	return requireRow(res, "schedule", scheduleID)
}
