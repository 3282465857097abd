package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"tanker-dispatch-service/internal/domain"
	"time"
)

const assignmentConflictMsg = "This driver or trip group is already assigned for this week"

const assignmentColumns = `
	a.assignment_id,
	a.trip_group_id,
	a.driver_id,
	a.week_start_date,
	a.assigned_at,
	a.assigned_by,
	COALESCE(a.notes, ''),
	tg.name,
	d.name
	FROM weekly_driver_assignments a
	JOIN trip_groups tg ON tg.group_id = a.trip_group_id
	JOIN drivers d ON d.driver_id = a.driver_id`

// Postgres-backed implementation of the AssignmentRepository port. The
// unique_group_week and unique_driver_week constraints surface as
// domain.ConflictError.
type PostgresAssignmentRepository struct{ DB *sql.DB }

func NewPostgresAssignmentRepository(db *sql.DB) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{DB: db}
}

func (r *PostgresAssignmentRepository) GetAssignment(ctx context.Context, assignmentID int) (*domain.WeeklyDriverAssignment, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	a, err := scanAssignment(q.QueryRowContext(ctx, `SELECT`+assignmentColumns+`
	WHERE a.assignment_id = $1;
	`, assignmentID))
	if err != nil {
		return nil, notFound("assignment", assignmentID, fmt.Errorf("get assignment: %w", err))
	}
	return a, nil
}

func (r *PostgresAssignmentRepository) ListWeekAssignments(ctx context.Context, weekStart time.Time) ([]*domain.WeeklyDriverAssignment, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT`+assignmentColumns+`
	WHERE a.week_start_date = $1
	ORDER BY tg.name, a.assignment_id;
	`, domain.DateOf(weekStart))
	if err != nil {
		return nil, fmt.Errorf("list week assignments: query assignments table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.WeeklyDriverAssignment, 0, 16)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("list week assignments: scan row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list week assignments: row iteration: %w", err)
	}
	return out, nil
}

func (r *PostgresAssignmentRepository) CreateAssignment(ctx context.Context, a *domain.WeeklyDriverAssignment) error {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	err = q.QueryRowContext(ctx, `
	INSERT INTO weekly_driver_assignments (trip_group_id, driver_id, week_start_date, assigned_by, notes)
	VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	RETURNING assignment_id, assigned_at;
	`, a.TripGroupID, a.DriverID, domain.DateOf(a.WeekStart), a.AssignedBy, a.Notes).Scan(&a.AssignmentID, &a.AssignedAt)
	if err != nil {
		return mapWriteError("assignment", assignmentConflictMsg, fmt.Errorf("create assignment: %w", err))
	}
	return nil
}

func (r *PostgresAssignmentRepository) UpdateAssignment(ctx context.Context, a *domain.WeeklyDriverAssignment) error {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
	UPDATE weekly_driver_assignments
	SET driver_id = $1, notes = NULLIF($2, '')
	WHERE assignment_id = $3;
	`, a.DriverID, a.Notes, a.AssignmentID)
	if err != nil {
		return mapWriteError("assignment", assignmentConflictMsg, fmt.Errorf("update assignment: %w", err))
	}
	return requireRow(res, "assignment", a.AssignmentID)
}

func (r *PostgresAssignmentRepository) DeleteAssignment(ctx context.Context, assignmentID int) error {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `DELETE FROM weekly_driver_assignments WHERE assignment_id = $1;`, assignmentID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return requireRow(res, "assignment", assignmentID)
}

func (r *PostgresAssignmentRepository) DeleteWeekAssignments(ctx context.Context, weekStart time.Time) (int, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return 0, err
	}

	res, err := q.ExecContext(ctx, `DELETE FROM weekly_driver_assignments WHERE week_start_date = $1;`, domain.DateOf(weekStart))
	if err != nil {
		return 0, fmt.Errorf("delete week assignments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete week assignments: rows affected: %w", err)
	}
	return int(n), nil
}

func scanAssignment(row rowScanner) (*domain.WeeklyDriverAssignment, error) {
	var a domain.WeeklyDriverAssignment
	var assignedBy sql.Null[int64]
	err := row.Scan(
		&a.AssignmentID,
		&a.TripGroupID,
		&a.DriverID,
		&a.WeekStart,
		&a.AssignedAt,
		&assignedBy,
		&a.Notes,
		&a.GroupName,
		&a.DriverName,
	)
	if err != nil {
		return nil, err
	}
	a.WeekStart = domain.DateOf(a.WeekStart)
	a.AssignedBy = nullID(assignedBy)
	return &a, nil
}
