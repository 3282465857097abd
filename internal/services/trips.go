package services

import (
	"context"
	"fmt"
	"strings"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/platform/obs"
	"tanker-dispatch-service/internal/ports"
	"time"
)

// TripOutcome reports a tanker placement attempt. When Applied is false the
// trip was left untouched and Validation or Conflicts say why.
type TripOutcome struct {
	Trip       *domain.Trip             `json:"trip"`
	Applied    bool                     `json:"applied"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
	Conflicts  []*domain.Trip           `json:"conflicts,omitempty"`
}

type AssignTripInput struct {
	TankerID int
	DriverID *int
}

// TripPatch lists the fields of a trip update. Nil fields are left alone.
type TripPatch struct {
	TankerID     *int
	ClearTanker  bool
	DriverID     *int
	ClearDriver  bool
	Start        *domain.ClockTime
	End          *domain.ClockTime
	FuelBlendID  *int
	VolumeLiters *float64
	Status       *domain.TripStatus
	Notes        *string
}

type NewTripInput struct {
	CustomerID   int
	TankerID     *int
	DriverID     *int
	Start        domain.ClockTime
	End          domain.ClockTime
	FuelBlendID  *int
	VolumeLiters float64
	IsMobileOp   bool
	NeedsReturn  bool
	Notes        string
}

type TripServiceDeps struct {
	UnitOfWork ports.UnitOfWork
	Trips      ports.TripRepository
	Schedules  ports.ScheduleRepository
	Tankers    ports.TankerRepository
	Customers  ports.CustomerRepository
	Validator  *CompatibilityValidator
	Conflicts  *ConflictDetector
	Cache      ports.Cache
	Publisher  ports.EventPublisher
	Logger     *logger.Logger
}

// TripService places tankers and drivers on individual trips.
type TripService struct {
	uow       ports.UnitOfWork
	trips     ports.TripRepository
	schedules ports.ScheduleRepository
	tankers   ports.TankerRepository
	customers ports.CustomerRepository
	validator *CompatibilityValidator
	conflicts *ConflictDetector
	views     viewCache
	events    notifier
	log       *logger.Logger
	now       func() time.Time
}

func NewTripService(deps TripServiceDeps) *TripService {
	return &TripService{
		uow:       deps.UnitOfWork,
		trips:     deps.Trips,
		schedules: deps.Schedules,
		tankers:   deps.Tankers,
		customers: deps.Customers,
		validator: deps.Validator,
		conflicts: deps.Conflicts,
		views:     viewCache{cache: deps.Cache, log: deps.Logger},
		events:    notifier{pub: deps.Publisher, log: deps.Logger},
		log:       deps.Logger,
		now:       time.Now,
	}
}

// Validate checks tankerID against the trip without changing anything.
func (s *TripService) Validate(ctx context.Context, tripID, tankerID int) (domain.ValidationResult, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return s.validator.ValidateTankerForTrip(ctx, tankerID, trip.CustomerID, trip)
}

// Conflicts lists trips overlapping tripID on tankerID, or on the trip's own
// tanker when tankerID is nil.
func (s *TripService) Conflicts(ctx context.Context, tripID int, tankerID *int) ([]*domain.Trip, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if tankerID == nil {
		tankerID = trip.TankerID
	}
	if tankerID == nil {
		return nil, domain.ValidationError{Field: "tanker_id", Msg: errNoTanker.Error(), Err: errNoTanker}
	}

	return s.conflicts.FindConflicts(ctx, *tankerID, trip.ScheduleDate, trip.Start, trip.End, &trip.TripID)
}

// CompatibleTankers lists tankers that could serve the trip as it stands.
func (s *TripService) CompatibleTankers(ctx context.Context, tripID int) ([]*domain.Tanker, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetCustomer(ctx, trip.CustomerID)
	if err != nil {
		return nil, err
	}
	return s.validator.FindCompatibleTankers(ctx, customer, trip.FuelBlendID, trip.VolumeLiters)
}

// AssignTanker validates, checks conflicts and, if both pass, moves the trip
// to SCHEDULED. The tanker row stays locked until commit so two requests
// cannot book overlapping slots on the same tanker.
func (s *TripService) AssignTanker(ctx context.Context, tripID int, in AssignTripInput) (_ *TripOutcome, err error) {
	defer obs.Time(ctx, "trips.AssignTanker")(&err)

	var out *TripOutcome
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		trip, err := s.trips.GetTrip(ctx, tripID)
		if err != nil {
			return err
		}
		if trip.Status.Terminal() {
			return domain.ValidationError{Field: "status", Msg: domain.ErrTripTerminal.Error(), Err: domain.ErrTripTerminal}
		}
		if _, err := unlockedSchedule(ctx, s.schedules, trip.ScheduleDate); err != nil {
			return err
		}

		out, err = s.placeTanker(ctx, trip, in.TankerID)
		if err != nil || !out.Applied {
			return err
		}

		if in.DriverID != nil {
			if err := trip.AssignDriver(in.DriverID); err != nil {
				return err
			}
		}

		if err := s.trips.UpdateTrip(ctx, trip); err != nil {
			return fmt.Errorf("assign tanker: update trip: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Applied {
		s.afterTripChange(ctx, out.Trip)
	}
	return out, nil
}

// Update applies a patch. Clearing the tanker always drops the trip back to
// UNASSIGNED; setting a tanker or moving the time window re-runs validation
// and the conflict scan.
func (s *TripService) Update(ctx context.Context, tripID int, patch TripPatch) (_ *TripOutcome, err error) {
	defer obs.Time(ctx, "trips.Update")(&err)

	var out *TripOutcome
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		trip, err := s.trips.GetTrip(ctx, tripID)
		if err != nil {
			return err
		}
		if _, err := unlockedSchedule(ctx, s.schedules, trip.ScheduleDate); err != nil {
			return err
		}

		reschedule := false
		if patch.Start != nil {
			trip.Start = *patch.Start
			reschedule = true
		}
		if patch.End != nil {
			trip.End = *patch.End
			reschedule = true
		}
		if patch.VolumeLiters != nil {
			trip.VolumeLiters = *patch.VolumeLiters
			reschedule = true
		}
		if patch.FuelBlendID != nil {
			blend := *patch.FuelBlendID
			trip.FuelBlendID = &blend
			reschedule = true
		}
		if patch.Notes != nil {
			trip.Notes = strings.TrimSpace(*patch.Notes)
		}
		if err := trip.Validate(); err != nil {
			return domain.ValidationError{Field: "trip", Msg: err.Error(), Err: err}
		}

		switch {
		case patch.ClearTanker:
			if err := trip.ClearTanker(); err != nil {
				return domain.ValidationError{Field: "tanker_id", Msg: err.Error(), Err: err}
			}
			out = &TripOutcome{Trip: trip, Applied: true}
		case patch.TankerID != nil:
			out, err = s.placeTanker(ctx, trip, *patch.TankerID)
		case reschedule && trip.TankerID != nil && !trip.Status.Terminal():
			out, err = s.placeTanker(ctx, trip, *trip.TankerID)
		default:
			out = &TripOutcome{Trip: trip, Applied: true}
		}
		if err != nil || !out.Applied {
			return err
		}

		if patch.ClearDriver {
			err = trip.AssignDriver(nil)
		} else if patch.DriverID != nil {
			err = trip.AssignDriver(patch.DriverID)
		}
		if err != nil {
			return domain.ValidationError{Field: "driver_id", Msg: err.Error(), Err: err}
		}

		if patch.Status != nil {
			if err := trip.SetStatus(*patch.Status); err != nil {
				return domain.ValidationError{Field: "status", Msg: err.Error(), Err: err}
			}
		}

		if err := s.trips.UpdateTrip(ctx, trip); err != nil {
			return fmt.Errorf("update trip: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Applied {
		s.afterTripChange(ctx, out.Trip)
	}
	return out, nil
}

// CreateAdHoc adds an on-demand trip to the schedule of date, creating the
// schedule when the date has none yet.
func (s *TripService) CreateAdHoc(ctx context.Context, date time.Time, in NewTripInput) (_ *TripOutcome, err error) {
	defer obs.Time(ctx, "trips.CreateAdHoc")(&err)

	date = domain.DateOf(date)

	var out *TripOutcome
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		schedule, err := unlockedSchedule(ctx, s.schedules, date)
		if domain.IsNotFound(err) {
			schedule = domain.NewDailySchedule(date)
			err = s.schedules.CreateSchedule(ctx, schedule)
		}
		if err != nil {
			return err
		}

		if _, err := s.customers.GetCustomer(ctx, in.CustomerID); err != nil {
			return err
		}

		trip := &domain.Trip{
			DailyScheduleID: schedule.ScheduleID,
			ScheduleDate:    date,
			CustomerID:      in.CustomerID,
			DriverID:        in.DriverID,
			Start:           in.Start,
			End:             in.End,
			FuelBlendID:     in.FuelBlendID,
			VolumeLiters:    in.VolumeLiters,
			IsMobileOp:      in.IsMobileOp,
			NeedsReturn:     in.NeedsReturn,
			Status:          domain.TripUnassigned,
			Notes:           strings.TrimSpace(in.Notes),
		}
		if err := trip.Validate(); err != nil {
			return domain.ValidationError{Field: "trip", Msg: err.Error(), Err: err}
		}

		out = &TripOutcome{Trip: trip, Applied: true}
		if in.TankerID != nil {
			out, err = s.placeTanker(ctx, trip, *in.TankerID)
			if err != nil || !out.Applied {
				return err
			}
		}

		if err := s.trips.CreateTrip(ctx, trip); err != nil {
			return fmt.Errorf("create ad-hoc trip: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Applied {
		s.afterTripChange(ctx, out.Trip)
	}
	return out, nil
}

// Delete removes a trip while its schedule is unlocked.
func (s *TripService) Delete(ctx context.Context, tripID int) (err error) {
	defer obs.Time(ctx, "trips.Delete")(&err)

	var date time.Time
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		trip, err := s.trips.GetTrip(ctx, tripID)
		if err != nil {
			return err
		}
		if _, err := unlockedSchedule(ctx, s.schedules, trip.ScheduleDate); err != nil {
			return err
		}
		date = trip.ScheduleDate
		return s.trips.DeleteTrip(ctx, tripID)
	})
	if err != nil {
		return err
	}

	s.views.invalidate(ctx, scheduleKey(date))
	return nil
}

// placeTanker locks the tanker, validates it against the trip, and scans for
// overlapping bookings. On success the trip is SCHEDULED in memory; the
// caller persists it.
func (s *TripService) placeTanker(ctx context.Context, trip *domain.Trip, tankerID int) (*TripOutcome, error) {
	if err := s.tankers.LockTanker(ctx, tankerID); err != nil && !domain.IsNotFound(err) {
		return nil, fmt.Errorf("place tanker: lock tanker: %w", err)
	}

	res, err := s.validator.ValidateTankerForTrip(ctx, tankerID, trip.CustomerID, trip)
	if err != nil {
		return nil, err
	}
	if !res.IsValid {
		return &TripOutcome{Trip: trip, Validation: &res}, nil
	}

	var exclude *int
	if trip.TripID != 0 {
		exclude = &trip.TripID
	}
	conflicts, err := s.conflicts.FindConflicts(ctx, tankerID, trip.ScheduleDate, trip.Start, trip.End, exclude)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return &TripOutcome{Trip: trip, Validation: &res, Conflicts: conflicts}, nil
	}

	if err := trip.AssignTanker(tankerID); err != nil {
		return nil, domain.ValidationError{Field: "status", Msg: err.Error(), Err: err}
	}
	return &TripOutcome{Trip: trip, Applied: true, Validation: &res}, nil
}

func (s *TripService) afterTripChange(ctx context.Context, trip *domain.Trip) {
	s.views.invalidate(ctx, scheduleKey(trip.ScheduleDate))

	if trip.TankerID == nil {
		return
	}
	s.events.publish(ctx, EventTripAssigned, TripAssignedEvent{
		TripID:       trip.TripID,
		TankerID:     *trip.TankerID,
		DriverID:     trip.DriverID,
		ScheduleDate: trip.ScheduleDate.Format(time.DateOnly),
		OccurredAt:   s.now().UTC(),
	})
}
