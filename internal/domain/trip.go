package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidVolume  = errors.New("volume must be greater than zero")
	ErrTripTerminal   = errors.New("trip is completed or cancelled")
	ErrTankerRequired = errors.New("a scheduled trip needs a tanker")
)

// Trip is a single delivery on a daily schedule.
type Trip struct {
	TripID          int
	DailyScheduleID int
	ScheduleDate    time.Time
	TemplateID      *int
	CustomerID      int
	TankerID        *int
	DriverID        *int
	Start           ClockTime
	End             ClockTime
	FuelBlendID     *int
	VolumeLiters    float64
	IsMobileOp      bool
	NeedsReturn     bool
	Status          TripStatus
	Notes           string
}

// TripFromTemplate copies a template onto a schedule date. Trips with a
// preset tanker start SCHEDULED, the rest UNASSIGNED.
func TripFromTemplate(tpl *WeeklyTemplate, scheduleID int, date time.Time) *Trip {
	status := TripUnassigned
	if tpl.TankerID != nil {
		status = TripScheduled
	}

	templateID := tpl.TemplateID
	return &Trip{
		DailyScheduleID: scheduleID,
		ScheduleDate:    DateOf(date),
		TemplateID:      &templateID,
		CustomerID:      tpl.CustomerID,
		TankerID:        copyID(tpl.TankerID),
		Start:           tpl.Start,
		End:             tpl.End,
		FuelBlendID:     copyID(tpl.FuelBlendID),
		VolumeLiters:    tpl.VolumeLiters,
		IsMobileOp:      tpl.IsMobileOp,
		NeedsReturn:     tpl.NeedsReturn,
		Status:          status,
		Notes:           tpl.Notes,
	}
}

// Validate checks the invariants every stored trip must hold.
func (t *Trip) Validate() error {
	if _, err := NewInterval(t.Start, t.End); err != nil {
		return fmt.Errorf("trip %d: %w", t.TripID, err)
	}
	if t.VolumeLiters <= 0 {
		return fmt.Errorf("trip %d: %w", t.TripID, ErrInvalidVolume)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("trip %d: %w", t.TripID, ErrInvalidTripStatus)
	}
	return nil
}

func (t *Trip) Interval() Interval {
	return Interval{Start: t.Start, End: t.End}
}

// AssignTanker attaches a tanker and moves the trip to SCHEDULED.
// Compatibility and conflicts are checked by the caller.
func (t *Trip) AssignTanker(tankerID int) error {
	if t.Status.Terminal() {
		return ErrTripTerminal
	}
	t.TankerID = &tankerID
	t.Status = TripScheduled
	return nil
}

// ClearTanker detaches the tanker. The trip always falls back to UNASSIGNED.
func (t *Trip) ClearTanker() error {
	if t.Status.Terminal() {
		return ErrTripTerminal
	}
	t.TankerID = nil
	t.Status = TripUnassigned
	return nil
}

// AssignDriver sets or clears the driver without touching the status.
func (t *Trip) AssignDriver(driverID *int) error {
	if t.Status.Terminal() {
		return ErrTripTerminal
	}
	t.DriverID = copyID(driverID)
	return nil
}

// SetStatus applies an explicit status change. Moving to UNASSIGNED releases
// the tanker so an unassigned trip never holds a booking.
func (t *Trip) SetStatus(next TripStatus) error {
	if !next.Valid() {
		return ErrInvalidTripStatus
	}
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTripStatus, t.Status, next)
	}
	if next == TripScheduled && t.TankerID == nil {
		return ErrTankerRequired
	}
	if next == TripUnassigned {
		return t.ClearTanker()
	}
	t.Status = next
	return nil
}

func copyID(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
