package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"tanker-dispatch-service/internal/domain"
)

// Postgres-backed implementation of the CustomerRepository port.
type PostgresCustomerRepository struct{ DB *sql.DB }

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{DB: db}
}

func (r *PostgresCustomerRepository) GetCustomer(ctx context.Context, customerID int) (*domain.Customer, error) {
	q, err := conn(ctx, r.DB)
	if err != nil {
		return nil, err
	}

	var (
		c            domain.Customer
		deliveryType string
		blendID      sql.Null[int64]
		emirateID    sql.Null[int64]
		active       bool
	)
	err = q.QueryRowContext(ctx, `
	SELECT
		customer_id,
		name,
		COALESCE(code, ''),
		customer_type,
		fuel_blend_id,
		emirate_id,
		COALESCE(estimated_volume, 0),
		is_active
	FROM customers
	WHERE customer_id = $1;
	`, customerID).Scan(
		&c.CustomerID,
		&c.Name,
		&c.Code,
		&deliveryType,
		&blendID,
		&emirateID,
		&c.EstimatedVolumeLiters,
		&active,
	)
	if err != nil {
		return nil, notFound("customer", customerID, fmt.Errorf("get customer: %w", err))
	}

	if c.DeliveryType, err = domain.ParseDeliveryType(deliveryType); err != nil {
		return nil, fmt.Errorf("get customer %d: %w", customerID, err)
	}
	c.FuelBlendID = nullID(blendID)
	c.EmirateID = nullID(emirateID)
	c.Lifecycle = domain.LifecycleFromFlag(active)
	return &c, nil
}
