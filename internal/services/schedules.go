package services

import (
	"context"
	"errors"
	"fmt"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/platform/obs"
	"tanker-dispatch-service/internal/ports"
	"time"
)

// ScheduleView is one date's schedule with its trips and counters.
type ScheduleView struct {
	Schedule *domain.DailySchedule  `json:"schedule"`
	DayName  string                 `json:"day_name"`
	Trips    []*domain.Trip         `json:"trips"`
	Summary  domain.ScheduleSummary `json:"summary"`
}

type ScheduleServiceDeps struct {
	UnitOfWork ports.UnitOfWork
	Schedules  ports.ScheduleRepository
	Trips      ports.TripRepository
	Groups     ports.TripGroupRepository
	Cache      ports.Cache
	CacheTTL   time.Duration
	Logger     *logger.Logger
}

// ScheduleService generates daily schedules from weekly templates and
// manages their lock state.
type ScheduleService struct {
	uow       ports.UnitOfWork
	schedules ports.ScheduleRepository
	trips     ports.TripRepository
	groups    ports.TripGroupRepository
	views     viewCache
	log       *logger.Logger
}

func NewScheduleService(deps ScheduleServiceDeps) *ScheduleService {
	return &ScheduleService{
		uow:       deps.UnitOfWork,
		schedules: deps.Schedules,
		trips:     deps.Trips,
		groups:    deps.Groups,
		views:     viewCache{cache: deps.Cache, ttl: deps.CacheTTL, log: deps.Logger},
		log:       deps.Logger,
	}
}

// Generate copies the active templates of the date's weekday into trips.
// An existing schedule is replaced only with overwrite and only while unlocked.
func (s *ScheduleService) Generate(ctx context.Context, date time.Time, overwrite bool) (_ *ScheduleView, err error) {
	defer obs.Time(ctx, "schedules.Generate")(&err)

	date = domain.DateOf(date)

	var view *ScheduleView
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		schedule, err := s.schedules.GetScheduleByDate(ctx, date)
		switch {
		case err == nil:
			if schedule.Locked {
				return domain.ConflictError{Resource: "schedule", Msg: "cannot regenerate a locked schedule", Err: domain.ErrScheduleLocked}
			}
			if !overwrite {
				return domain.ConflictError{Resource: "schedule", Msg: "schedule already exists for this date; set overwrite_existing to replace it"}
			}
			if _, err := s.trips.DeleteScheduleTrips(ctx, schedule.ScheduleID); err != nil {
				return fmt.Errorf("generate schedule: delete trips: %w", err)
			}
		case domain.IsNotFound(err):
			schedule = domain.NewDailySchedule(date)
			if err := s.schedules.CreateSchedule(ctx, schedule); err != nil {
				return fmt.Errorf("generate schedule: create schedule: %w", err)
			}
		default:
			return fmt.Errorf("generate schedule: get schedule: %w", err)
		}

		templates, err := s.groups.ListDayTemplates(ctx, schedule.DayOfWeek)
		if err != nil {
			return fmt.Errorf("generate schedule: list templates: %w", err)
		}

		trips := make([]*domain.Trip, 0, len(templates))
		for _, tpl := range templates {
			if !tpl.Lifecycle.IsActive() {
				continue
			}
			trip := domain.TripFromTemplate(tpl, schedule.ScheduleID, date)
			if err := s.trips.CreateTrip(ctx, trip); err != nil {
				return fmt.Errorf("generate schedule: create trip from template %d: %w", tpl.TemplateID, err)
			}
			trips = append(trips, trip)
		}

		view = newScheduleView(schedule, trips)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.views.invalidate(ctx, scheduleKey(date))
	s.log.Info(ctx, "schedule_generated", "Daily schedule generated from templates", map[string]any{
		"date":  date.Format(time.DateOnly),
		"trips": len(view.Trips),
	})
	return view, nil
}

func (s *ScheduleService) Get(ctx context.Context, date time.Time) (_ *ScheduleView, err error) {
	defer obs.Time(ctx, "schedules.Get")(&err)

	date = domain.DateOf(date)

	var cached ScheduleView
	if s.views.get(ctx, scheduleKey(date), &cached) {
		return &cached, nil
	}

	schedule, err := s.schedules.GetScheduleByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	trips, err := s.trips.ListScheduleTrips(ctx, schedule.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("get schedule: list trips: %w", err)
	}

	view := newScheduleView(schedule, trips)
	s.views.set(ctx, scheduleKey(date), view)
	return view, nil
}

func (s *ScheduleService) Lock(ctx context.Context, date time.Time) (*domain.DailySchedule, error) {
	return s.setLocked(ctx, date, true)
}

func (s *ScheduleService) Unlock(ctx context.Context, date time.Time) (*domain.DailySchedule, error) {
	return s.setLocked(ctx, date, false)
}

func (s *ScheduleService) setLocked(ctx context.Context, date time.Time, locked bool) (_ *domain.DailySchedule, err error) {
	defer obs.Time(ctx, "schedules.setLocked")(&err)

	date = domain.DateOf(date)
	schedule, err := s.schedules.GetScheduleByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	if err := s.schedules.SetScheduleLocked(ctx, schedule.ScheduleID, locked); err != nil {
		return nil, fmt.Errorf("set schedule lock: %w", err)
	}
	schedule.Locked = locked

	s.views.invalidate(ctx, scheduleKey(date))
	return schedule, nil
}

func newScheduleView(schedule *domain.DailySchedule, trips []*domain.Trip) *ScheduleView {
	return &ScheduleView{
		Schedule: schedule,
		DayName:  domain.DayName(schedule.DayOfWeek),
		Trips:    trips,
		Summary:  domain.Summarize(trips),
	}
}

// unlockedSchedule loads the schedule for date and rejects it when locked.
func unlockedSchedule(ctx context.Context, repo ports.ScheduleRepository, date time.Time) (*domain.DailySchedule, error) {
	schedule, err := repo.GetScheduleByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if schedule.Locked {
		return nil, domain.ConflictError{Resource: "schedule", Msg: "schedule is locked", Err: domain.ErrScheduleLocked}
	}
	return schedule, nil
}

var errNoTanker = errors.New("trip has no tanker")
