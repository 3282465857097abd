package services

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/platform/obs"
	"tanker-dispatch-service/internal/ports"
	"time"
)

type AlertLevel string

const (
	AlertInfo    AlertLevel = "info"
	AlertWarning AlertLevel = "warning"
	AlertError   AlertLevel = "error"
)

// Alert codes. The plural codes are the aggregated form used by DailySummary.
const (
	AlertUnassignedTrip     = "UNASSIGNED_TRIP"
	AlertTripConflict       = "TRIP_CONFLICT"
	AlertTankerMaintenance  = "TANKER_MAINTENANCE"
	AlertDriverNoSchedule   = "DRIVER_NO_SCHEDULE"
	AlertUnassignedTrips    = "UNASSIGNED_TRIPS"
	AlertTripConflicts      = "TRIP_CONFLICTS"
	AlertTankersMaintenance = "TANKERS_MAINTENANCE"
)

// driverStatusUnset marks an active driver with no schedule row for the date.
const driverStatusUnset = "unset"

type Alert struct {
	Level        AlertLevel
	Code         string
	Message      string
	Count        int
	TripID       *int
	TankerID     *int
	DriverID     *int
	CustomerCode string
}

// TankerUtilization is one tanker's booked volume on a date against its capacity.
type TankerUtilization struct {
	TankerID           int
	Name               string
	CapacityLiters     float64
	VolumeScheduled    float64
	TripCount          int
	UtilizationPercent float64
	Status             domain.TankerStatus
}

type DriverDayStatus struct {
	DriverID int
	Name     string
	Status   string
}

type DriverStatusReport struct {
	Date    time.Time
	Counts  map[string]int
	Drivers []DriverDayStatus
}

type DailySummary struct {
	Date           time.Time
	Trips          domain.ScheduleSummary
	CompletedTrips int
	ActiveTankers  int
	ActiveDrivers  int
	WorkingDrivers int
	ScheduleLocked bool
	Alerts         []Alert
}

type DayOverview struct {
	Date    time.Time
	DayName string
	Summary domain.ScheduleSummary
	Locked  bool
}

type DashboardServiceDeps struct {
	Schedules ports.ScheduleRepository
	Trips     ports.TripRepository
	Tankers   ports.TankerRepository
	Drivers   ports.DriverRepository
	Customers ports.CustomerRepository
	Logger    *logger.Logger
}

// DashboardService reports on one date or week from the stored schedules,
// tankers and driver rosters. Nothing here is cached: tanker status and
// driver_schedules change outside the services that invalidate views.
type DashboardService struct {
	schedules ports.ScheduleRepository
	trips     ports.TripRepository
	tankers   ports.TankerRepository
	drivers   ports.DriverRepository
	customers ports.CustomerRepository
	log       *logger.Logger
}

func NewDashboardService(deps DashboardServiceDeps) *DashboardService {
	return &DashboardService{
		schedules: deps.Schedules,
		trips:     deps.Trips,
		tankers:   deps.Tankers,
		drivers:   deps.Drivers,
		customers: deps.Customers,
		log:       deps.Logger,
	}
}

// Summary returns the date's trip counters, resource counts and aggregated alerts.
func (s *DashboardService) Summary(ctx context.Context, date time.Time) (_ *DailySummary, err error) {
	defer obs.Time(ctx, "dashboard.Summary")(&err)

	date = domain.DateOf(date)
	schedule, trips, err := s.dayTrips(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}

	tankers, err := s.tankers.ListActiveTankers(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: list tankers: %w", err)
	}
	drivers, err := s.drivers.ListActiveDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: list drivers: %w", err)
	}
	rosters, err := s.drivers.ListSchedules(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: list driver schedules: %w", err)
	}

	out := &DailySummary{
		Date:          date,
		Trips:         domain.Summarize(trips),
		ActiveDrivers: len(drivers),
		Alerts:        []Alert{},
	}
	if schedule != nil {
		out.ScheduleLocked = schedule.Locked
	}
	for _, t := range trips {
		if t.Status == domain.TripCompleted {
			out.CompletedTrips++
		}
	}

	active := make(map[int]struct{}, len(drivers))
	for _, d := range drivers {
		active[d.DriverID] = struct{}{}
	}
	for _, r := range rosters {
		if _, ok := active[r.DriverID]; ok && r.Status == domain.ScheduleWorking {
			out.WorkingDrivers++
		}
	}

	maintenance := 0
	for _, t := range tankers {
		switch t.Status {
		case domain.TankerActive:
			out.ActiveTankers++
		case domain.TankerMaintenance:
			maintenance++
		}
	}

	if n := out.Trips.UnassignedTrips; n > 0 {
		out.Alerts = append(out.Alerts, Alert{
			Level: AlertWarning, Code: AlertUnassignedTrips, Count: n,
			Message: fmt.Sprintf("%d trips need tanker assignment", n),
		})
	}
	if n := out.Trips.ConflictTrips; n > 0 {
		out.Alerts = append(out.Alerts, Alert{
			Level: AlertError, Code: AlertTripConflicts, Count: n,
			Message: fmt.Sprintf("%d trips have scheduling conflicts", n),
		})
	}
	if maintenance > 0 {
		out.Alerts = append(out.Alerts, Alert{
			Level: AlertInfo, Code: AlertTankersMaintenance, Count: maintenance,
			Message: fmt.Sprintf("%d tankers in maintenance", maintenance),
		})
	}
	return out, nil
}

// TankerUtilization returns booked volume per active tanker, ordered by name.
// Cancelled trips do not count.
func (s *DashboardService) TankerUtilization(ctx context.Context, date time.Time) (_ []TankerUtilization, err error) {
	defer obs.Time(ctx, "dashboard.TankerUtilization")(&err)

	date = domain.DateOf(date)
	_, trips, err := s.dayTrips(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("tanker utilization: %w", err)
	}

	tankers, err := s.tankers.ListActiveTankers(ctx)
	if err != nil {
		return nil, fmt.Errorf("tanker utilization: list tankers: %w", err)
	}

	byTanker := make(map[int]*TankerUtilization, len(tankers))
	out := make([]TankerUtilization, len(tankers))
	for i, t := range tankers {
		out[i] = TankerUtilization{
			TankerID:       t.TankerID,
			Name:           t.Name,
			CapacityLiters: t.CapacityLiters,
			Status:         t.Status,
		}
		byTanker[t.TankerID] = &out[i]
	}

	for _, trip := range trips {
		if trip.TankerID == nil || trip.Status == domain.TripCancelled {
			continue
		}
		u, ok := byTanker[*trip.TankerID]
		if !ok {
			continue
		}
		u.TripCount++
		u.VolumeScheduled += trip.VolumeLiters
	}

	for i := range out {
		if out[i].CapacityLiters > 0 {
			out[i].UtilizationPercent = math.Round(out[i].VolumeScheduled/out[i].CapacityLiters*1000) / 10
		}
	}
	slices.SortStableFunc(out, func(a, b TankerUtilization) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.TankerID, b.TankerID))
	})
	return out, nil
}

// DriverStatus counts active drivers by their roster status on the date.
func (s *DashboardService) DriverStatus(ctx context.Context, date time.Time) (_ *DriverStatusReport, err error) {
	defer obs.Time(ctx, "dashboard.DriverStatus")(&err)

	date = domain.DateOf(date)
	drivers, rosters, err := s.driverDay(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("driver status: %w", err)
	}

	out := &DriverStatusReport{
		Date: date,
		Counts: map[string]int{
			string(domain.ScheduleWorking): 0,
			string(domain.ScheduleOff):     0,
			string(domain.ScheduleHoliday): 0,
			string(domain.ScheduleFloat):   0,
			driverStatusUnset:              0,
		},
		Drivers: make([]DriverDayStatus, 0, len(drivers)),
	}
	for _, d := range drivers {
		status := driverStatusUnset
		if st, ok := rosters[d.DriverID]; ok {
			status = string(st)
		}
		out.Counts[status]++
		out.Drivers = append(out.Drivers, DriverDayStatus{DriverID: d.DriverID, Name: d.Name, Status: status})
	}
	return out, nil
}

// Alerts lists one entry per unassigned trip, conflicting trip, tanker in
// maintenance, and active driver without a roster row for the date.
func (s *DashboardService) Alerts(ctx context.Context, date time.Time) (_ []Alert, err error) {
	defer obs.Time(ctx, "dashboard.Alerts")(&err)

	date = domain.DateOf(date)
	_, trips, err := s.dayTrips(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}

	customers := map[int]*domain.Customer{}
	customer := func(id int) (*domain.Customer, error) {
		if c, ok := customers[id]; ok {
			return c, nil
		}
		c, err := s.customers.GetCustomer(ctx, id)
		if domain.IsNotFound(err) {
			c, err = &domain.Customer{CustomerID: id, Name: fmt.Sprintf("customer %d", id)}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("get customer %d: %w", id, err)
		}
		customers[id] = c
		return c, nil
	}

	alerts := []Alert{}
	for _, t := range trips {
		if t.TankerID != nil || t.Status == domain.TripCancelled {
			continue
		}
		c, err := customer(t.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("alerts: %w", err)
		}
		alerts = append(alerts, Alert{
			Level:        AlertWarning,
			Code:         AlertUnassignedTrip,
			Message:      fmt.Sprintf("Trip to %s (%s-%s) needs tanker", c.Name, t.Start, t.End),
			TripID:       intRef(t.TripID),
			CustomerCode: c.Code,
		})
	}
	for _, t := range trips {
		if t.Status != domain.TripConflict {
			continue
		}
		c, err := customer(t.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("alerts: %w", err)
		}
		alerts = append(alerts, Alert{
			Level:        AlertError,
			Code:         AlertTripConflict,
			Message:      fmt.Sprintf("Trip to %s has a scheduling conflict", c.Name),
			TripID:       intRef(t.TripID),
			CustomerCode: c.Code,
		})
	}

	tankers, err := s.tankers.ListActiveTankers(ctx)
	if err != nil {
		return nil, fmt.Errorf("alerts: list tankers: %w", err)
	}
	for _, t := range tankers {
		if t.Status != domain.TankerMaintenance {
			continue
		}
		alerts = append(alerts, Alert{
			Level:    AlertInfo,
			Code:     AlertTankerMaintenance,
			Message:  fmt.Sprintf("Tanker %s is in maintenance", t.Name),
			TankerID: intRef(t.TankerID),
		})
	}

	drivers, rosters, err := s.driverDay(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}
	for _, d := range drivers {
		if _, ok := rosters[d.DriverID]; ok {
			continue
		}
		alerts = append(alerts, Alert{
			Level:    AlertInfo,
			Code:     AlertDriverNoSchedule,
			Message:  fmt.Sprintf("Driver %s has no schedule set for this date", d.Name),
			DriverID: intRef(d.DriverID),
		})
	}
	return alerts, nil
}

// WeeklyOverview returns the counters of each day of the week containing week.
// Days without a schedule report zeros.
func (s *DashboardService) WeeklyOverview(ctx context.Context, week time.Time) (_ []DayOverview, err error) {
	defer obs.Time(ctx, "dashboard.WeeklyOverview")(&err)

	dates := domain.WeekDates(domain.WeekStart(week))
	out := make([]DayOverview, 0, len(dates))
	for _, d := range dates {
		schedule, trips, err := s.dayTrips(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("weekly overview: %w", err)
		}
		day := DayOverview{
			Date:    d,
			DayName: domain.DayName(domain.DayOfWeek(d)),
			Summary: domain.Summarize(trips),
		}
		if schedule != nil {
			day.Locked = schedule.Locked
		}
		out = append(out, day)
	}
	return out, nil
}

// dayTrips returns the date's schedule and trips. A date without a schedule
// yields a nil schedule and no trips.
func (s *DashboardService) dayTrips(ctx context.Context, date time.Time) (*domain.DailySchedule, []*domain.Trip, error) {
	schedule, err := s.schedules.GetScheduleByDate(ctx, date)
	if domain.IsNotFound(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get schedule: %w", err)
	}

	trips, err := s.trips.ListScheduleTrips(ctx, schedule.ScheduleID)
	if err != nil {
		return nil, nil, fmt.Errorf("list trips: %w", err)
	}
	return schedule, trips, nil
}

// driverDay returns active drivers and their roster status on date, keyed by driver.
func (s *DashboardService) driverDay(ctx context.Context, date time.Time) ([]*domain.Driver, map[int]domain.ScheduleStatus, error) {
	drivers, err := s.drivers.ListActiveDrivers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list drivers: %w", err)
	}
	rows, err := s.drivers.ListSchedules(ctx, date, date)
	if err != nil {
		return nil, nil, fmt.Errorf("list driver schedules: %w", err)
	}

	rosters := make(map[int]domain.ScheduleStatus, len(rows))
	for _, r := range rows {
		rosters[r.DriverID] = r.Status
	}
	return drivers, rosters, nil
}

func intRef(v int) *int { return &v }
