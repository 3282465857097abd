package ports

import (
	"context"
	"tanker-dispatch-service/internal/domain"
	"time"
)

// Port: runs a function inside one store transaction. Repositories called with
// the ctx passed to fn join that transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Port: a boundary for retrieving Tanker entities with their blend and emirate sets.
type TankerRepository interface {
	// Return one tanker or a NotFoundError.
	GetTanker(ctx context.Context, tankerID int) (*domain.Tanker, error)
	// Return tankers whose lifecycle is active, in store order.
	ListActiveTankers(ctx context.Context) ([]*domain.Tanker, error)
	// Take a row lock on the tanker for the rest of the current transaction.
	LockTanker(ctx context.Context, tankerID int) error
}

// Port: a boundary for retrieving Customer entities.
type CustomerRepository interface {
	GetCustomer(ctx context.Context, customerID int) (*domain.Customer, error)
}

// Port: a boundary for drivers and their per-date availability.
type DriverRepository interface {
	GetDriver(ctx context.Context, driverID int) (*domain.Driver, error)
	ListActiveDrivers(ctx context.Context) ([]*domain.Driver, error)
	// Return every schedule row dated within [from, to].
	ListSchedules(ctx context.Context, from, to time.Time) ([]domain.DriverSchedule, error)
}

// Port: a boundary for Trip persistence.
type TripRepository interface {
	GetTrip(ctx context.Context, tripID int) (*domain.Trip, error)
	// Return non-cancelled, non-completed trips of a tanker on a date,
	// leaving out excludeTripID when set.
	ListTankerTrips(ctx context.Context, tankerID int, date time.Time, excludeTripID *int) ([]*domain.Trip, error)
	ListScheduleTrips(ctx context.Context, scheduleID int) ([]*domain.Trip, error)
	// Insert the trip and set its TripID.
	CreateTrip(ctx context.Context, trip *domain.Trip) error
	UpdateTrip(ctx context.Context, trip *domain.Trip) error
	DeleteTrip(ctx context.Context, tripID int) error
	DeleteScheduleTrips(ctx context.Context, scheduleID int) (int, error)
}

// Port: a boundary for trip groups and the templates they bundle.
type TripGroupRepository interface {
	GetTripGroup(ctx context.Context, groupID int) (*domain.TripGroup, error)
	// Return active groups with their templates attached.
	ListActiveTripGroups(ctx context.Context) ([]*domain.TripGroup, error)
	// Return active templates for one operational day.
	ListDayTemplates(ctx context.Context, dayOfWeek int) ([]*domain.WeeklyTemplate, error)
}

// Port: a boundary for weekly driver assignments. Implementations must
// report unique violations as a domain.ConflictError.
type AssignmentRepository interface {
	GetAssignment(ctx context.Context, assignmentID int) (*domain.WeeklyDriverAssignment, error)
	ListWeekAssignments(ctx context.Context, weekStart time.Time) ([]*domain.WeeklyDriverAssignment, error)
	// Insert the row and set AssignmentID and AssignedAt.
	CreateAssignment(ctx context.Context, a *domain.WeeklyDriverAssignment) error
	UpdateAssignment(ctx context.Context, a *domain.WeeklyDriverAssignment) error
	DeleteAssignment(ctx context.Context, assignmentID int) error
	DeleteWeekAssignments(ctx context.Context, weekStart time.Time) (int, error)
}

// Port: a boundary for daily schedules.
type ScheduleRepository interface {
	// Return the schedule for a date or a NotFoundError.
	GetScheduleByDate(ctx context.Context, date time.Time) (*domain.DailySchedule, error)
	CreateSchedule(ctx context.Context, s *domain.DailySchedule) error
	SetScheduleLocked(ctx context.Context, scheduleID int, locked bool) error
}
