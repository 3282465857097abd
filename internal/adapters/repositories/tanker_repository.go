package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"tanker-dispatch-service/internal/domain"
)

const tankerColumns = `
	tanker_id,
	name,
	COALESCE(registration, ''),
	max_capacity,
	delivery_type,
	status,
	is_3pl,
	default_driver_id,
	is_active`

// PostgresTankerRepository is the Postgres-backed TankerRepository.
type PostgresTankerRepository struct{ DB *sql.DB }

func NewPostgresTankerRepository(db *sql.DB) *PostgresTankerRepository {
	return &PostgresTankerRepository{DB: db}
}

func (r *PostgresTankerRepository) GetTanker(ctx context.Context, tankerID int) (*domain.Tanker, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	t, err := scanTanker(q.QueryRowContext(ctx, `SELECT`+tankerColumns+`
	FROM tankers
	WHERE tanker_id = $1;
	`, tankerID))
	if err != nil {
		return nil, notFound("tanker", tankerID, fmt.Errorf("get tanker: %w", err))
	}

	byID := map[int]*domain.Tanker{t.TankerID: t}
	if err := loadTankerBlends(ctx, q, byID, `WHERE tb.tanker_id = $1`, tankerID); err != nil {
		return nil, fmt.Errorf("get tanker: %w", err)
	}
	if err := loadTankerEmirates(ctx, q, byID, `WHERE te.tanker_id = $1`, tankerID); err != nil {
		return nil, fmt.Errorf("get tanker: %w", err)
	}
	return t, nil
}

// ListActiveTankers returns active tankers ordered by id, each with its blends
// and emirates.
func (r *PostgresTankerRepository) ListActiveTankers(ctx context.Context) ([]*domain.Tanker, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT`+tankerColumns+`
	FROM tankers
	WHERE is_active
	ORDER BY tanker_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list tankers: query tankers table: %w", err)
	}
	defer rows.Close()

	tankers := make([]*domain.Tanker, 0, 32)
	byID := map[int]*domain.Tanker{}
	for rows.Next() {
		t, err := scanTanker(rows)
		if err != nil {
			return nil, fmt.Errorf("list tankers: scan row: %w", err)
		}
		tankers = append(tankers, t)
		byID[t.TankerID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tankers: row iteration: %w", err)
	}
	if len(tankers) == 0 {
		return tankers, nil
	}

	const activeOnly = `JOIN tankers t ON t.tanker_id = %s.tanker_id WHERE t.is_active`
	if err := loadTankerBlends(ctx, q, byID, fmt.Sprintf(activeOnly, "tb")); err != nil {
		return nil, fmt.Errorf("list tankers: %w", err)
	}
	if err := loadTankerEmirates(ctx, q, byID, fmt.Sprintf(activeOnly, "te")); err != nil {
		return nil, fmt.Errorf("list tankers: %w", err)
	}
	return tankers, nil
}

// LockTanker takes a row lock held until the surrounding transaction ends.
func (r *PostgresTankerRepository) LockTanker(ctx context.Context, tankerID int) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	var id int
	err = tx.QueryRowContext(ctx, `
	SELECT tanker_id
	FROM tankers
	WHERE tanker_id = $1
	FOR UPDATE;
	`, tankerID).Scan(&id)
	if err != nil {
		return notFound("tanker", tankerID, fmt.Errorf("lock tanker: %w", err))
	}
	return nil
}

func scanTanker(row rowScanner) (*domain.Tanker, error) {
	var (
		t            domain.Tanker
		deliveryType string
		status       string
		driverID     sql.Null[int64]
		active       bool
	)
	err := row.Scan(
		&t.TankerID,
		&t.Name,
		&t.Registration,
		&t.CapacityLiters,
		&deliveryType,
		&status,
		&t.Is3PL,
		&driverID,
		&active,
	)
	if err != nil {
		return nil, err
	}

	if t.DeliveryType, err = domain.ParseDeliveryType(deliveryType); err != nil {
		return nil, fmt.Errorf("tanker %d: %w", t.TankerID, err)
	}
	if t.Status, err = domain.ParseTankerStatus(status); err != nil {
		return nil, fmt.Errorf("tanker %d: %w", t.TankerID, err)
	}
	t.DefaultDriverID = nullID(driverID)
	t.Lifecycle = domain.LifecycleFromFlag(active)
	return &t, nil
}

func loadTankerBlends(ctx context.Context, q querier, byID map[int]*domain.Tanker, filter string, args ...any) error {
	rows, err := q.QueryContext(ctx, `
	SELECT tb.tanker_id, fb.blend_id, fb.code, fb.name, fb.biodiesel_percentage
	FROM tanker_blends tb
	JOIN fuel_blends fb ON fb.blend_id = tb.blend_id
	`+filter+`
	ORDER BY tb.tanker_id, fb.code;
	`, args...)
	if err != nil {
		return fmt.Errorf("query tanker blends: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tankerID int
		var b domain.FuelBlend
		if err := rows.Scan(&tankerID, &b.BlendID, &b.Code, &b.Name, &b.BiodieselPercentage); err != nil {
			return fmt.Errorf("scan tanker blend: %w", err)
		}
		if t, ok := byID[tankerID]; ok {
			t.Blends = append(t.Blends, b)
		}
	}
	return rows.Err()
}

func loadTankerEmirates(ctx context.Context, q querier, byID map[int]*domain.Tanker, filter string, args ...any) error {
	rows, err := q.QueryContext(ctx, `
	SELECT te.tanker_id, e.emirate_id, e.code, e.name
	FROM tanker_emirates te
	JOIN emirates e ON e.emirate_id = te.emirate_id
	`+filter+`
	ORDER BY te.tanker_id, e.name;
	`, args...)
	if err != nil {
		return fmt.Errorf("query tanker emirates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tankerID int
		var e domain.Emirate
		if err := rows.Scan(&tankerID, &e.EmirateID, &e.Code, &e.Name); err != nil {
			return fmt.Errorf("scan tanker emirate: %w", err)
		}
		if t, ok := byID[tankerID]; ok {
			t.Emirates = append(t.Emirates, e)
		}
	}
	return rows.Err()
}
