package services

import (
	"context"
	"fmt"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/obs"
	"tanker-dispatch-service/internal/ports"
	"time"
)

// ConflictDetector finds bookings of a tanker that overlap a time range.
type ConflictDetector struct {
	trips ports.TripRepository
}

func NewConflictDetector(trips ports.TripRepository) *ConflictDetector {
	return &ConflictDetector{trips: trips}
}

// FindConflicts returns the live trips of tankerID on date whose [start, end)
// overlaps the given range. Touching boundaries do not conflict.
//
// This is a read-then-decide check. Callers that commit on its result must
// hold the tanker row lock (TankerRepository.LockTanker) in the same
// transaction to keep a concurrent booking out.
func (d *ConflictDetector) FindConflicts(
	ctx context.Context,
	tankerID int,
	date time.Time,
	start, end domain.ClockTime,
	excludeTripID *int,
) (_ []*domain.Trip, err error) {
	defer obs.Time(ctx, "conflicts.FindConflicts")(&err)

	if _, err := domain.NewInterval(start, end); err != nil {
		return nil, domain.ValidationError{Field: "end_time", Msg: err.Error(), Err: err}
	}

	trips, err := d.trips.ListTankerTrips(ctx, tankerID, domain.DateOf(date), excludeTripID)
	if err != nil {
		return nil, fmt.Errorf("find conflicts: list tanker trips: %w", err)
	}

	out := make([]*domain.Trip, 0)
	for _, t := range trips {
		if t.Status.Terminal() {
			continue
		}
		if excludeTripID != nil && t.TripID == *excludeTripID {
			continue
		}
		if domain.Overlaps(start, end, t.Start, t.End) {
			out = append(out, t)
		}
	}

	return out, nil
}
