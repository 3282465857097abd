package domain

import (
	"errors"
	"strings"
)

// TripStatus is a trip status as stored in the `trips.status` column.
type TripStatus string

const (
	TripUnassigned TripStatus = "UNASSIGNED"
	TripScheduled  TripStatus = "SCHEDULED"
	TripConflict   TripStatus = "CONFLICT"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

var ErrInvalidTripStatus = errors.New("invalid trip status")

// ParseTripStatus normalizes (uppercases+trims) and validates a status string.
func ParseTripStatus(in string) (TripStatus, error) {
	status := TripStatus(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidTripStatus
}

// Valid reports whether status is one of the allowed trip status constants.
func (status TripStatus) Valid() bool {
	switch status {
	case TripUnassigned, TripScheduled, TripConflict, TripCompleted, TripCancelled:
		return true
	default:
		return false
	}
}

func (status TripStatus) String() string {
	return string(status)
}

// CanTransitionTo specifies if the status can move to next.
// UNASSIGNED cannot complete: a trip needs a tanker before it can be delivered.
func (status TripStatus) CanTransitionTo(next TripStatus) bool {
	if status == next {
		return !status.Terminal()
	}

	switch status {
	case TripUnassigned:
		return next == TripScheduled || next == TripCancelled

	case TripScheduled:
		return next == TripUnassigned || next == TripConflict || next == TripCompleted || next == TripCancelled

	case TripConflict:
		return next == TripUnassigned || next == TripScheduled || next == TripCancelled

	case TripCompleted, TripCancelled:
		return false

	default:
		return false
	}
}

// Terminal indicates the trip no longer takes part in conflict or volume aggregation.
func (status TripStatus) Terminal() bool {
	return status == TripCompleted || status == TripCancelled
}
