package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"tanker-dispatch-service/internal/domain"
)

const templateColumns = `
	wt.template_id,
	wt.customer_id,
	wt.day_of_week,
	wt.start_minute,
	wt.end_minute,
	wt.tanker_id,
	wt.fuel_blend_id,
	wt.volume_liters,
	wt.is_mobile_op,
	wt.needs_return,
	wt.priority,
	COALESCE(wt.notes, ''),
	wt.is_active`

// Postgres-backed implementation of the TripGroupRepository port.
type PostgresTripGroupRepository struct{ DB *sql.DB }

func NewPostgresTripGroupRepository(db *sql.DB) *PostgresTripGroupRepository {
	return &PostgresTripGroupRepository{DB: db}
}

func (r *PostgresTripGroupRepository) GetTripGroup(ctx context.Context, groupID int) (*domain.TripGroup, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	g, err := scanTripGroup(q.QueryRowContext(ctx, `
	SELECT group_id, name, COALESCE(description, ''), COALESCE(day_of_week, 0), is_active
	FROM trip_groups
	WHERE group_id = $1;
	`, groupID))
	if err != nil {
		return nil, notFound("trip group", groupID, fmt.Errorf("get trip group: %w", err))
	}

	byID := map[int]*domain.TripGroup{g.GroupID: g}
	if err := loadGroupTemplates(ctx, q, byID, `WHERE tgt.group_id = $1`, groupID); err != nil {
		return nil, fmt.Errorf("get trip group: %w", err)
	}
	return g, nil
}

// Return active groups ordered by id with all their templates attached.
func (r *PostgresTripGroupRepository) ListActiveTripGroups(ctx context.Context) ([]*domain.TripGroup, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
	SELECT group_id, name, COALESCE(description, ''), COALESCE(day_of_week, 0), is_active
	FROM trip_groups
	WHERE is_active
	ORDER BY group_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list trip groups: query trip_groups table: %w", err)
	}
	defer rows.Close()

	groups := make([]*domain.TripGroup, 0, 16)
	byID := map[int]*domain.TripGroup{}
	for rows.Next() {
		g, err := scanTripGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("list trip groups: scan row: %w", err)
		}
		groups = append(groups, g)
		byID[g.GroupID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trip groups: row iteration: %w", err)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	err = loadGroupTemplates(ctx, q, byID, `JOIN trip_groups tg ON tg.group_id = tgt.group_id WHERE tg.is_active`)
	if err != nil {
		return nil, fmt.Errorf("list trip groups: %w", err)
	}
	return groups, nil
}

func (r *PostgresTripGroupRepository) ListDayTemplates(ctx context.Context, dayOfWeek int) ([]*domain.WeeklyTemplate, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT`+templateColumns+`
	FROM weekly_templates wt
	WHERE wt.day_of_week = $1 AND wt.is_active
	ORDER BY wt.start_minute, wt.template_id;
	`, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("list day templates: query weekly_templates table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.WeeklyTemplate, 0, 32)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("list day templates: scan row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list day templates: row iteration: %w", err)
	}
	return out, nil
}

func scanTripGroup(row rowScanner) (*domain.TripGroup, error) {
	var g domain.TripGroup
	var active bool
	if err := row.Scan(&g.GroupID, &g.Name, &g.Description, &g.DayOfWeek, &active); err != nil {
		return nil, err
	}
	g.Lifecycle = domain.LifecycleFromFlag(active)
	return &g, nil
}

func scanTemplate(row rowScanner, extra ...any) (*domain.WeeklyTemplate, error) {
	var (
		t        domain.WeeklyTemplate
		tankerID sql.Null[int64]
		blendID  sql.Null[int64]
		active   bool
	)
	dest := append(extra,
		&t.TemplateID,
		&t.CustomerID,
		&t.DayOfWeek,
		&t.Start,
		&t.End,
		&tankerID,
		&blendID,
		&t.VolumeLiters,
		&t.IsMobileOp,
		&t.NeedsReturn,
		&t.Priority,
		&t.Notes,
		&active,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	t.TankerID = nullID(tankerID)
	t.FuelBlendID = nullID(blendID)
	t.Lifecycle = domain.LifecycleFromFlag(active)
	return &t, nil
}

func loadGroupTemplates(ctx context.Context, q querier, byID map[int]*domain.TripGroup, filter string, args ...any) error {
	rows, err := q.QueryContext(ctx, `
	SELECT tgt.group_id,`+templateColumns+`
	FROM trip_group_templates tgt
	JOIN weekly_templates wt ON wt.template_id = tgt.template_id
	`+filter+`
	ORDER BY tgt.group_id, wt.day_of_week, wt.start_minute;
	`, args...)
	if err != nil {
		return fmt.Errorf("query group templates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID int
		t, err := scanTemplate(rows, &groupID)
		if err != nil {
			return fmt.Errorf("scan group template: %w", err)
		}
		if g, ok := byID[groupID]; ok {
			g.Templates = append(g.Templates, t)
		}
	}
	return rows.Err()
}
