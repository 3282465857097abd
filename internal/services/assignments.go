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

// WeekOverview is the planning view of one week.
type WeekOverview struct {
	WeekStart        time.Time                        `json:"week_start"`
	Assignments      []*domain.WeeklyDriverAssignment `json:"assignments"`
	UnassignedGroups []*domain.TripGroup              `json:"unassigned_groups"`
	AvailableDrivers []*domain.Driver                 `json:"available_drivers"`
}

type CreateAssignmentInput struct {
	TripGroupID int
	DriverID    int
	WeekStart   time.Time
	ActorID     *int
	Notes       string
}

type UpdateAssignmentInput struct {
	DriverID *int
	Notes    *string
}

type AssignmentServiceDeps struct {
	UnitOfWork   ports.UnitOfWork
	Groups       ports.TripGroupRepository
	Drivers      ports.DriverRepository
	Assignments  ports.AssignmentRepository
	AutoAssigner *WeeklyAutoAssigner
	Cache        ports.Cache
	CacheTTL     time.Duration
	Publisher    ports.EventPublisher
	Roster       ports.RosterRenderer
	Logger       *logger.Logger
}

// AssignmentService manages weekly driver assignments.
type AssignmentService struct {
	uow          ports.UnitOfWork
	groups       ports.TripGroupRepository
	drivers      ports.DriverRepository
	assignments  ports.AssignmentRepository
	autoAssigner *WeeklyAutoAssigner
	roster       ports.RosterRenderer
	views        viewCache
	events       notifier
	log          *logger.Logger
	now          func() time.Time
}

func NewAssignmentService(deps AssignmentServiceDeps) *AssignmentService {
	return &AssignmentService{
		uow:          deps.UnitOfWork,
		groups:       deps.Groups,
		drivers:      deps.Drivers,
		assignments:  deps.Assignments,
		autoAssigner: deps.AutoAssigner,
		roster:       deps.Roster,
		views:        viewCache{cache: deps.Cache, ttl: deps.CacheTTL, log: deps.Logger},
		events:       notifier{pub: deps.Publisher, log: deps.Logger},
		log:          deps.Logger,
		now:          time.Now,
	}
}

// weekPlan is the cached part of a WeekOverview. Driver availability comes
// from driver_schedules, which is written outside this service, so it is
// always read fresh.
type weekPlan struct {
	Assignments      []*domain.WeeklyDriverAssignment `json:"assignments"`
	UnassignedGroups []*domain.TripGroup              `json:"unassigned_groups"`
}

// ListWeek returns the week's assignments, the active groups still without a
// driver, and the drivers still free to take one.
func (s *AssignmentService) ListWeek(ctx context.Context, week time.Time) (_ *WeekOverview, err error) {
	defer obs.Time(ctx, "assignments.ListWeek")(&err)

	weekStart := domain.WeekStart(week)

	plan, err := s.loadWeekPlan(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("list week: %w", err)
	}

	available, err := availableDrivers(ctx, s.drivers, weekStart)
	if err != nil {
		return nil, fmt.Errorf("list week: %w", err)
	}

	takenDrivers := make(map[int]struct{}, len(plan.Assignments))
	for _, r := range plan.Assignments {
		takenDrivers[r.DriverID] = struct{}{}
	}

	out := &WeekOverview{
		WeekStart:        weekStart,
		Assignments:      plan.Assignments,
		UnassignedGroups: plan.UnassignedGroups,
		AvailableDrivers: make([]*domain.Driver, 0, len(available)),
	}
	for _, d := range available {
		if _, ok := takenDrivers[d.DriverID]; !ok {
			out.AvailableDrivers = append(out.AvailableDrivers, d)
		}
	}
	return out, nil
}

func (s *AssignmentService) loadWeekPlan(ctx context.Context, weekStart time.Time) (*weekPlan, error) {
	var cached weekPlan
	if s.views.get(ctx, weekKey(weekStart), &cached) {
		return &cached, nil
	}

	rows, err := s.assignments.ListWeekAssignments(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	groups, err := s.groups.ListActiveTripGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trip groups: %w", err)
	}

	takenGroups := make(map[int]struct{}, len(rows))
	for _, r := range rows {
		takenGroups[r.TripGroupID] = struct{}{}
	}

	plan := &weekPlan{
		Assignments:      rows,
		UnassignedGroups: make([]*domain.TripGroup, 0, len(groups)),
	}
	for _, g := range groups {
		if _, ok := takenGroups[g.GroupID]; !ok {
			plan.UnassignedGroups = append(plan.UnassignedGroups, g)
		}
	}

	s.views.set(ctx, weekKey(weekStart), plan)
	return plan, nil
}

// Create binds a driver to a group for the week containing in.WeekStart.
func (s *AssignmentService) Create(ctx context.Context, in CreateAssignmentInput) (_ *domain.WeeklyDriverAssignment, err error) {
	defer obs.Time(ctx, "assignments.Create")(&err)

	if in.WeekStart.IsZero() {
		return nil, domain.ValidationError{Field: "week_start_date", Msg: "is required"}
	}

	row := &domain.WeeklyDriverAssignment{
		TripGroupID: in.TripGroupID,
		DriverID:    in.DriverID,
		WeekStart:   domain.WeekStart(in.WeekStart),
		AssignedBy:  in.ActorID,
		Notes:       strings.TrimSpace(in.Notes),
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		group, err := s.activeGroup(ctx, in.TripGroupID)
		if err != nil {
			return err
		}
		driver, err := s.activeDriver(ctx, in.DriverID)
		if err != nil {
			return err
		}

		if err := s.assignments.CreateAssignment(ctx, row); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}
		row.GroupName = group.Name
		row.DriverName = driver.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.views.invalidate(ctx, weekKey(row.WeekStart))
	s.events.publish(ctx, EventAssignmentCreated, AssignmentEvent{
		AssignmentID: row.AssignmentID,
		TripGroupID:  row.TripGroupID,
		DriverID:     row.DriverID,
		WeekStart:    row.WeekStart.Format(time.DateOnly),
		OccurredAt:   s.now().UTC(),
	})

	return row, nil
}

// Update swaps the driver and/or replaces the notes of an assignment.
func (s *AssignmentService) Update(ctx context.Context, assignmentID int, in UpdateAssignmentInput) (_ *domain.WeeklyDriverAssignment, err error) {
	defer obs.Time(ctx, "assignments.Update")(&err)

	var row *domain.WeeklyDriverAssignment
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		row, err = s.assignments.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}

		if in.DriverID != nil && *in.DriverID != row.DriverID {
			driver, err := s.activeDriver(ctx, *in.DriverID)
			if err != nil {
				return err
			}
			row.DriverID = driver.DriverID
			row.DriverName = driver.Name
		}
		if in.Notes != nil {
			row.Notes = strings.TrimSpace(*in.Notes)
		}

		if err := s.assignments.UpdateAssignment(ctx, row); err != nil {
			return fmt.Errorf("update assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.views.invalidate(ctx, weekKey(row.WeekStart))
	return row, nil
}

func (s *AssignmentService) Delete(ctx context.Context, assignmentID int) (err error) {
	defer obs.Time(ctx, "assignments.Delete")(&err)

	var row *domain.WeeklyDriverAssignment
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		row, err = s.assignments.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		return s.assignments.DeleteAssignment(ctx, assignmentID)
	})
	if err != nil {
		return err
	}

	s.views.invalidate(ctx, weekKey(row.WeekStart))
	s.events.publish(ctx, EventAssignmentRemoved, AssignmentEvent{
		AssignmentID: row.AssignmentID,
		TripGroupID:  row.TripGroupID,
		DriverID:     row.DriverID,
		WeekStart:    row.WeekStart.Format(time.DateOnly),
		OccurredAt:   s.now().UTC(),
	})
	return nil
}

// ClearWeek removes every assignment of the week and returns how many were removed.
func (s *AssignmentService) ClearWeek(ctx context.Context, week time.Time) (_ int, err error) {
	defer obs.Time(ctx, "assignments.ClearWeek")(&err)

	weekStart := domain.WeekStart(week)

	var n int
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.assignments.DeleteWeekAssignments(ctx, weekStart)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear week: %w", err)
	}

	s.views.invalidate(ctx, weekKey(weekStart))
	s.events.publish(ctx, EventWeekCleared, AssignmentEvent{
		WeekStart:  weekStart.Format(time.DateOnly),
		Count:      n,
		OccurredAt: s.now().UTC(),
	})
	return n, nil
}

// AutoAssign normalizes the week and delegates to the WeeklyAutoAssigner.
// Only live runs touch the cache or emit events.
func (s *AssignmentService) AutoAssign(ctx context.Context, req AutoAssignRequest) (*AutoAssignResult, error) {
	if !req.WeekStart.IsZero() {
		req.WeekStart = domain.WeekStart(req.WeekStart)
	}

	res, err := s.autoAssigner.AutoAssign(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.DryRun {
		return res, nil
	}

	s.views.invalidate(ctx, weekKey(res.WeekStart))
	if len(res.Created) > 0 {
		s.events.publish(ctx, EventWeekAutoAssigned, AssignmentEvent{
			WeekStart:  res.WeekStart.Format(time.DateOnly),
			Count:      len(res.Created),
			OccurredAt: s.now().UTC(),
		})
	}
	return res, nil
}

// Roster renders the week's assignments as a document.
func (s *AssignmentService) Roster(ctx context.Context, week time.Time) (_ []byte, contentType string, err error) {
	defer obs.Time(ctx, "assignments.Roster")(&err)

	if s.roster == nil {
		return nil, "", domain.InternalError{Msg: "roster rendering is not configured"}
	}

	weekStart := domain.WeekStart(week)
	rows, err := s.assignments.ListWeekAssignments(ctx, weekStart)
	if err != nil {
		return nil, "", fmt.Errorf("roster: list assignments: %w", err)
	}

	doc, err := s.roster.RenderRoster(weekStart, rows)
	if err != nil {
		return nil, "", fmt.Errorf("roster: render: %w", err)
	}
	return doc, s.roster.ContentType(), nil
}

func (s *AssignmentService) activeGroup(ctx context.Context, groupID int) (*domain.TripGroup, error) {
	g, err := s.groups.GetTripGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.Lifecycle.IsActive() {
		return nil, domain.ValidationError{Field: "trip_group_id", Msg: "trip group is not active"}
	}
	return g, nil
}

func (s *AssignmentService) activeDriver(ctx context.Context, driverID int) (*domain.Driver, error) {
	d, err := s.drivers.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !d.Lifecycle.IsActive() {
		return nil, domain.ValidationError{Field: "driver_id", Msg: "driver is not active"}
	}
	return d, nil
}
