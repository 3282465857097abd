package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/obs"
	"tanker-dispatch-service/internal/ports"
)

const fieldTankerID = "tanker_id"

// CompatibilityValidator decides whether a tanker may serve a trip.
type CompatibilityValidator struct {
	tankers   ports.TankerRepository
	customers ports.CustomerRepository
}

func NewCompatibilityValidator(tankers ports.TankerRepository, customers ports.CustomerRepository) *CompatibilityValidator {
	return &CompatibilityValidator{tankers: tankers, customers: customers}
}

// ValidateAssignment runs every compatibility check without short-circuiting
// so the caller sees all violations at once. Tanker status only ever yields
// a warning.
func ValidateAssignment(trip *domain.Trip, tanker *domain.Tanker, customer *domain.Customer) domain.ValidationResult {
	res := domain.NewValidationResult()

	if tanker.CapacityLiters < trip.VolumeLiters {
		res.AddError(domain.CodeInsufficientCapacity, fieldTankerID, fmt.Sprintf(
			"Tanker capacity (%sL) is less than trip volume (%sL)",
			liters(tanker.CapacityLiters), liters(trip.VolumeLiters),
		))
	}

	if trip.FuelBlendID != nil && !tanker.SupportsBlend(*trip.FuelBlendID) {
		res.AddError(domain.CodeIncompatibleFuelBlend, fieldTankerID,
			"Tanker only supports blends: "+joinOrNone(tanker.BlendCodes()))
	}

	if customer.EmirateID != nil && !tanker.CoversEmirate(*customer.EmirateID) {
		res.AddError(domain.CodeEmirateNotCovered, fieldTankerID,
			"Tanker only covers: "+joinOrNone(tanker.EmirateNames()))
	}

	if !tanker.DeliveryType.Serves(customer.DeliveryType) {
		res.AddError(domain.CodeIncompatibleDeliveryType, fieldTankerID, fmt.Sprintf(
			"Tanker delivery type (%s) doesn't match customer type (%s)",
			tanker.DeliveryType, customer.DeliveryType,
		))
	}

	if tanker.Status != domain.TankerActive {
		res.AddWarning(domain.CodeTankerNotActive, fieldTankerID,
			fmt.Sprintf("Tanker status is '%s'", tanker.Status))
	}

	return res
}

func (v *CompatibilityValidator) ValidateAssignment(trip *domain.Trip, tanker *domain.Tanker, customer *domain.Customer) domain.ValidationResult {
	return ValidateAssignment(trip, tanker, customer)
}

// ValidateTankerForTrip loads the tanker and customer by id and validates them
// against trip. Missing references produce a failed result, not an error.
func (v *CompatibilityValidator) ValidateTankerForTrip(
	ctx context.Context,
	tankerID int,
	customerID int,
	trip *domain.Trip,
) (_ domain.ValidationResult, err error) {
	defer obs.Time(ctx, "compatibility.ValidateTankerForTrip")(&err)

	tanker, err := v.tankers.GetTanker(ctx, tankerID)
	if domain.IsNotFound(err) {
		res := domain.NewValidationResult()
		res.AddError(domain.CodeTankerNotFound, fieldTankerID, fmt.Sprintf("Tanker %d not found", tankerID))
		return res, nil
	}
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate tanker for trip: get tanker: %w", err)
	}

	customer, err := v.customers.GetCustomer(ctx, customerID)
	if domain.IsNotFound(err) {
		res := domain.NewValidationResult()
		res.AddError(domain.CodeCustomerNotFound, "customer_id", fmt.Sprintf("Customer %d not found", customerID))
		return res, nil
	}
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate tanker for trip: get customer: %w", err)
	}

	return ValidateAssignment(trip, tanker, customer), nil
}

// FindCompatibleTankers filters active tankers down to those that pass every
// blocking check for the customer, blend and volume. The result keeps store
// order and carries no ranking.
func (v *CompatibilityValidator) FindCompatibleTankers(
	ctx context.Context,
	customer *domain.Customer,
	fuelBlendID *int,
	volume float64,
) (_ []*domain.Tanker, err error) {
	defer obs.Time(ctx, "compatibility.FindCompatibleTankers")(&err)

	tankers, err := v.tankers.ListActiveTankers(ctx)
	if err != nil {
		return nil, fmt.Errorf("find compatible tankers: list tankers: %w", err)
	}

	out := make([]*domain.Tanker, 0, len(tankers))
	for _, t := range tankers {
		if !t.Lifecycle.IsActive() || t.Status != domain.TankerActive {
			continue
		}
		if t.CapacityLiters < volume {
			continue
		}
		if fuelBlendID != nil && !t.SupportsBlend(*fuelBlendID) {
			continue
		}
		if customer.EmirateID != nil && !t.CoversEmirate(*customer.EmirateID) {
			continue
		}
		if !t.DeliveryType.Serves(customer.DeliveryType) {
			continue
		}
		out = append(out, t)
	}

	return out, nil
}

func liters(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
