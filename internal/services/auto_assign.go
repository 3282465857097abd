package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/platform/obs"
	"tanker-dispatch-service/internal/ports"
	"time"
)

const (
	MinRestHoursLower = 8
	MinRestHoursUpper = 24

	// Drivers must be working on days 0..5. The last day of the week is exempt.
	requiredWorkingDays = 6

	ReasonNoAvailableDrivers = "no available drivers"
	ReasonRestGap            = "remaining drivers do not meet rest gap requirements"

	dryRunPrefix = "[DRY RUN] "
)

type AutoAssignRequest struct {
	WeekStart    time.Time
	ActorID      *int
	MinRestHours int
	DryRun       bool
}

type UnassignedGroup struct {
	GroupID   int
	GroupName string
	Reason    string
}

// AutoAssignResult reports a run. Dry-run previews carry AssignmentID 0.
type AutoAssignResult struct {
	WeekStart  time.Time
	DryRun     bool
	Created    []*domain.WeeklyDriverAssignment
	Unassigned []UnassignedGroup
	Message    string
}

// WeeklyAutoAssigner allocates available drivers to unassigned trip groups
// for one week. It is a single-pass greedy allocator with a random tie-break
// and never backtracks.
type WeeklyAutoAssigner struct {
	uow         ports.UnitOfWork
	groups      ports.TripGroupRepository
	drivers     ports.DriverRepository
	assignments ports.AssignmentRepository
	rng         Rand
	log         *logger.Logger
	now         func() time.Time
}

func NewWeeklyAutoAssigner(
	uow ports.UnitOfWork,
	groups ports.TripGroupRepository,
	drivers ports.DriverRepository,
	assignments ports.AssignmentRepository,
	rng Rand,
	log *logger.Logger,
) *WeeklyAutoAssigner {
	return &WeeklyAutoAssigner{
		uow:         uow,
		groups:      groups,
		drivers:     drivers,
		assignments: assignments,
		rng:         rng,
		log:         log,
		now:         time.Now,
	}
}

// AutoAssign runs the weekly allocation. Groups compete for drivers in
// ascending group id order; candidates for a pick are ordered by driver id
// before the random index is drawn.
//
// A live run reads and writes inside one transaction: if any insert fails
// (for example a concurrent run already took the driver or group) nothing
// is kept and the error is returned. A dry run writes nothing.
func (a *WeeklyAutoAssigner) AutoAssign(ctx context.Context, req AutoAssignRequest) (_ *AutoAssignResult, err error) {
	defer obs.Time(ctx, "autoassign.AutoAssign")(&err)

	if a.rng == nil {
		return nil, errNoRand
	}
	if req.MinRestHours < MinRestHoursLower || req.MinRestHours > MinRestHoursUpper {
		return nil, domain.ValidationError{
			Field: "min_rest_hours",
			Msg:   fmt.Sprintf("must be between %d and %d", MinRestHoursLower, MinRestHoursUpper),
		}
	}
	if req.WeekStart.IsZero() {
		return nil, domain.ValidationError{Field: "week_start", Msg: "is required"}
	}

	weekStart := domain.WeekStart(req.WeekStart)

	var res *AutoAssignResult
	run := func(ctx context.Context) error {
		var err error
		res, err = a.plan(ctx, weekStart, req)
		if err != nil {
			return err
		}
		if req.DryRun {
			return nil
		}

		for _, row := range res.Created {
			if err := a.assignments.CreateAssignment(ctx, row); err != nil {
				return fmt.Errorf("auto assign: create assignment group_id=%d driver_id=%d: %w", row.TripGroupID, row.DriverID, err)
			}
		}
		return nil
	}

	if req.DryRun {
		err = run(ctx)
	} else {
		err = a.uow.WithinTx(ctx, run)
	}
	if err != nil {
		a.log.Error(ctx, "auto_assign_failed", "Weekly auto-assignment aborted", err, map[string]any{
			"week_start": weekStart.Format(time.DateOnly),
			"dry_run":    req.DryRun,
		})
		return nil, err
	}

	a.log.Info(ctx, "auto_assign_completed", res.Message, map[string]any{
		"week_start": weekStart.Format(time.DateOnly),
		"dry_run":    req.DryRun,
		"created":    len(res.Created),
		"unassigned": len(res.Unassigned),
	})

	return res, nil
}

// plan computes the allocation without writing anything.
func (a *WeeklyAutoAssigner) plan(ctx context.Context, weekStart time.Time, req AutoAssignRequest) (*AutoAssignResult, error) {
	groups, err := a.groups.ListActiveTripGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("auto assign: list trip groups: %w", err)
	}

	existing, err := a.assignments.ListWeekAssignments(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("auto assign: list week assignments: %w", err)
	}

	takenGroups := make(map[int]struct{}, len(existing))
	takenDrivers := make(map[int]struct{}, len(existing))
	for _, e := range existing {
		takenGroups[e.TripGroupID] = struct{}{}
		takenDrivers[e.DriverID] = struct{}{}
	}

	candidateGroups := make([]*domain.TripGroup, 0, len(groups))
	for _, g := range groups {
		if _, ok := takenGroups[g.GroupID]; ok || !g.Lifecycle.IsActive() {
			continue
		}
		candidateGroups = append(candidateGroups, g)
	}
	slices.SortStableFunc(candidateGroups, func(x, y *domain.TripGroup) int {
		return x.GroupID - y.GroupID
	})

	available, err := availableDrivers(ctx, a.drivers, weekStart)
	if err != nil {
		return nil, fmt.Errorf("auto assign: %w", err)
	}

	candidates := make([]*domain.Driver, 0, len(available))
	for _, d := range available {
		if _, ok := takenDrivers[d.DriverID]; !ok {
			candidates = append(candidates, d)
		}
	}

	res := &AutoAssignResult{
		WeekStart:  weekStart,
		DryRun:     req.DryRun,
		Created:    []*domain.WeeklyDriverAssignment{},
		Unassigned: []UnassignedGroup{},
	}

	consumed := make(map[int]struct{}, len(candidates))
	for _, g := range candidateGroups {
		eligible := make([]*domain.Driver, 0, len(candidates))
		if HasSufficientRest(g, req.MinRestHours) {
			for _, d := range candidates {
				if _, used := consumed[d.DriverID]; !used {
					eligible = append(eligible, d)
				}
			}
		}

		if len(eligible) == 0 {
			reason := ReasonRestGap
			if len(candidates) == 0 {
				reason = ReasonNoAvailableDrivers
			}
			res.Unassigned = append(res.Unassigned, UnassignedGroup{GroupID: g.GroupID, GroupName: g.Name, Reason: reason})
			continue
		}

		pick := eligible[a.rng.IntN(len(eligible))]
		consumed[pick.DriverID] = struct{}{}

		res.Created = append(res.Created, &domain.WeeklyDriverAssignment{
			TripGroupID: g.GroupID,
			DriverID:    pick.DriverID,
			WeekStart:   weekStart,
			AssignedAt:  a.now().UTC(),
			AssignedBy:  req.ActorID,
			GroupName:   g.Name,
			DriverName:  pick.Name,
		})
	}

	res.Message = summaryMessage(len(candidateGroups), len(res.Created), len(res.Unassigned), req.DryRun)
	return res, nil
}

func summaryMessage(total, assigned, unassigned int, dryRun bool) string {
	var msg string
	switch {
	case total == 0:
		msg = "No unassigned trip groups for this week"
	case assigned == total:
		msg = fmt.Sprintf("Successfully assigned all %d trip groups", assigned)
	case assigned > 0:
		msg = fmt.Sprintf("Assigned %d of %d groups. %d groups could not be assigned.", assigned, total, unassigned)
	default:
		msg = "No groups could be assigned - check driver availability and schedules"
	}

	if dryRun {
		msg = dryRunPrefix + msg
	}
	return msg
}

// availableDrivers returns active drivers that are working on every one of
// the first six days of the week, ordered by driver id. A missing schedule
// row counts as not working.
func availableDrivers(ctx context.Context, repo ports.DriverRepository, weekStart time.Time) ([]*domain.Driver, error) {
	drivers, err := repo.ListActiveDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active drivers: %w", err)
	}

	dates := domain.WeekDates(weekStart)
	required := dates[:requiredWorkingDays]

	schedules, err := repo.ListSchedules(ctx, required[0], required[len(required)-1])
	if err != nil {
		return nil, fmt.Errorf("list driver schedules: %w", err)
	}

	working := make(map[int]map[time.Time]struct{})
	for _, s := range schedules {
		if s.Status != domain.ScheduleWorking {
			continue
		}
		day := domain.DateOf(s.Date)
		if day.Before(required[0]) || day.After(required[len(required)-1]) {
			continue
		}
		if working[s.DriverID] == nil {
			working[s.DriverID] = make(map[time.Time]struct{}, requiredWorkingDays)
		}
		working[s.DriverID][day] = struct{}{}
	}

	out := make([]*domain.Driver, 0, len(drivers))
	for _, d := range drivers {
		if !d.Lifecycle.IsActive() {
			continue
		}
		if len(working[d.DriverID]) == requiredWorkingDays {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(x, y *domain.Driver) int {
		return x.DriverID - y.DriverID
	})

	return out, nil
}

var errNoRand = errors.New("auto assign: random source is nil")
