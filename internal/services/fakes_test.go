package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"sync"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"time"
)

// memStore is an in-memory implementation of every repository port plus a
// UnitOfWork that restores the previous state when fn fails.
type memStore struct {
	mu sync.Mutex

	tankers         map[int]*domain.Tanker
	customers       map[int]*domain.Customer
	drivers         []*domain.Driver
	driverSchedules []domain.DriverSchedule
	groups          []*domain.TripGroup
	templates       []*domain.WeeklyTemplate
	assignments     []*domain.WeeklyDriverAssignment
	trips           map[int]*domain.Trip
	schedules       map[string]*domain.DailySchedule

	nextAssignmentID int
	nextTripID       int
	nextScheduleID   int

	// failAssignmentInsert makes the n-th CreateAssignment call (1-based) fail.
	failAssignmentInsert int
	assignmentInserts    int

	lockedTankers []int
	txCount       int
}

func newMemStore() *memStore {
	return &memStore{
		tankers:   map[int]*domain.Tanker{},
		customers: map[int]*domain.Customer{},
		trips:     map[int]*domain.Trip{},
		schedules: map[string]*domain.DailySchedule{},
	}
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("test", io.Discard)
}

// seqRand returns the queued picks in order, modulo n.
type seqRand struct {
	picks []int
	i     int
}

func (r *seqRand) IntN(n int) int {
	if len(r.picks) == 0 {
		return 0
	}
	v := r.picks[r.i%len(r.picks)]
	r.i++
	return v % n
}

func intPtr(v int) *int { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clock(s string) domain.ClockTime {
	c, err := domain.ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ----- UnitOfWork -----

type memSnapshot struct {
	assignments []domain.WeeklyDriverAssignment
	trips       map[int]domain.Trip
	schedules   map[string]domain.DailySchedule
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{trips: map[int]domain.Trip{}, schedules: map[string]domain.DailySchedule{}}
	for _, a := range s.assignments {
		snap.assignments = append(snap.assignments, *a)
	}
	for id, t := range s.trips {
		snap.trips[id] = *t
	}
	for k, d := range s.schedules {
		snap.schedules[k] = *d
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments = nil
	for i := range snap.assignments {
		a := snap.assignments[i]
		s.assignments = append(s.assignments, &a)
	}
	s.trips = map[int]*domain.Trip{}
	for id, t := range snap.trips {
		s.trips[id] = &t
	}
	s.schedules = map[string]*domain.DailySchedule{}
	for k, d := range snap.schedules {
		s.schedules[k] = &d
	}
}

type txMarker struct{}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	s.txCount++
	s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ----- tankers / customers -----

func (s *memStore) GetTanker(ctx context.Context, tankerID int) (*domain.Tanker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tankers[tankerID]
	if !ok {
		return nil, domain.NotFoundError{Resource: "tanker", ID: tankerID}
	}
	return t, nil
}

func (s *memStore) ListActiveTankers(ctx context.Context) ([]*domain.Tanker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*domain.Tanker{}
	for _, t := range s.tankers {
		if t.Lifecycle.IsActive() {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Tanker) int { return a.TankerID - b.TankerID })
	return out, nil
}

func (s *memStore) LockTanker(ctx context.Context, tankerID int) error {
	if ctx.Value(txMarker{}) == nil {
		return errors.New("lock tanker outside transaction")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tankers[tankerID]; !ok {
		return domain.NotFoundError{Resource: "tanker", ID: tankerID}
	}
	s.lockedTankers = append(s.lockedTankers, tankerID)
	return nil
}

func (s *memStore) GetCustomer(ctx context.Context, customerID int) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[customerID]
	if !ok {
		return nil, domain.NotFoundError{Resource: "customer", ID: customerID}
	}
	return c, nil
}

// ----- drivers -----

func (s *memStore) GetDriver(ctx context.Context, driverID int) (*domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.drivers {
		if d.DriverID == driverID {
			return d, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "driver", ID: driverID}
}

func (s *memStore) ListActiveDrivers(ctx context.Context) ([]*domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*domain.Driver{}
	for _, d := range s.drivers {
		if d.Lifecycle.IsActive() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memStore) ListSchedules(ctx context.Context, from, to time.Time) ([]domain.DriverSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.DriverSchedule{}
	for _, ds := range s.driverSchedules {
		if ds.Date.Before(from) || ds.Date.After(to) {
			continue
		}
		out = append(out, ds)
	}
	return out, nil
}

// addDriver registers an active driver with the given status on each of the
// seven days of the week opened by weekStart.
func (s *memStore) addDriver(id int, name string, weekStart time.Time, week [7]domain.ScheduleStatus) {
	s.drivers = append(s.drivers, &domain.Driver{DriverID: id, Name: name, Lifecycle: domain.LifecycleActive})
	for i, st := range week {
		if st == "" {
			continue
		}
		s.driverSchedules = append(s.driverSchedules, domain.DriverSchedule{
			DriverID: id,
			Date:     weekStart.AddDate(0, 0, i),
			Status:   st,
		})
	}
}

func fullWeek() [7]domain.ScheduleStatus {
	var w [7]domain.ScheduleStatus
	for i := range w {
		w[i] = domain.ScheduleWorking
	}
	return w
}

// ----- trip groups / templates -----

func (s *memStore) GetTripGroup(ctx context.Context, groupID int) (*domain.TripGroup, error) {
	for _, g := range s.groups {
		if g.GroupID == groupID {
			return g, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "trip group", ID: groupID}
}

func (s *memStore) ListActiveTripGroups(ctx context.Context) ([]*domain.TripGroup, error) {
	out := []*domain.TripGroup{}
	for _, g := range s.groups {
		if g.Lifecycle.IsActive() {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memStore) ListDayTemplates(ctx context.Context, dayOfWeek int) ([]*domain.WeeklyTemplate, error) {
	out := []*domain.WeeklyTemplate{}
	for _, t := range s.templates {
		if t.DayOfWeek == dayOfWeek && t.Lifecycle.IsActive() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) addGroup(id int, name string, templates ...*domain.WeeklyTemplate) *domain.TripGroup {
	g := &domain.TripGroup{GroupID: id, Name: name, Lifecycle: domain.LifecycleActive, Templates: templates}
	s.groups = append(s.groups, g)
	return g
}

func tpl(dayOfWeek int, start, end string) *domain.WeeklyTemplate {
	return &domain.WeeklyTemplate{
		DayOfWeek:    dayOfWeek,
		Start:        clock(start),
		End:          clock(end),
		VolumeLiters: 1000,
		Lifecycle:    domain.LifecycleActive,
	}
}

// ----- assignments -----

func (s *memStore) GetAssignment(ctx context.Context, assignmentID int) (*domain.WeeklyDriverAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.assignments {
		if a.AssignmentID == assignmentID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "assignment", ID: assignmentID}
}

func (s *memStore) ListWeekAssignments(ctx context.Context, weekStart time.Time) ([]*domain.WeeklyDriverAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*domain.WeeklyDriverAssignment{}
	for _, a := range s.assignments {
		if a.WeekStart.Equal(weekStart) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) CreateAssignment(ctx context.Context, a *domain.WeeklyDriverAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignmentInserts++
	if s.failAssignmentInsert > 0 && s.assignmentInserts == s.failAssignmentInsert {
		return errors.New("connection reset by peer")
	}

	for _, e := range s.assignments {
		if !e.WeekStart.Equal(a.WeekStart) {
			continue
		}
		if e.TripGroupID == a.TripGroupID || e.DriverID == a.DriverID {
			return domain.ConflictError{Resource: "assignment", Msg: "This driver or trip group is already assigned for this week"}
		}
	}

	s.nextAssignmentID++
	a.AssignmentID = s.nextAssignmentID
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	cp := *a
	s.assignments = append(s.assignments, &cp)
	return nil
}

func (s *memStore) UpdateAssignment(ctx context.Context, a *domain.WeeklyDriverAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.assignments {
		if e.AssignmentID != a.AssignmentID && e.WeekStart.Equal(a.WeekStart) && e.DriverID == a.DriverID {
			return domain.ConflictError{Resource: "assignment", Msg: "This driver or trip group is already assigned for this week"}
		}
	}
	for _, e := range s.assignments {
		if e.AssignmentID == a.AssignmentID {
			*e = *a
			return nil
		}
	}
	return domain.NotFoundError{Resource: "assignment", ID: a.AssignmentID}
}

func (s *memStore) DeleteAssignment(ctx context.Context, assignmentID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.assignments {
		if e.AssignmentID == assignmentID {
			s.assignments = slices.Delete(s.assignments, i, i+1)
			return nil
		}
	}
	return domain.NotFoundError{Resource: "assignment", ID: assignmentID}
}

func (s *memStore) DeleteWeekAssignments(ctx context.Context, weekStart time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.assignments)
	s.assignments = slices.DeleteFunc(s.assignments, func(a *domain.WeeklyDriverAssignment) bool {
		return a.WeekStart.Equal(weekStart)
	})
	return before - len(s.assignments), nil
}

// ----- trips -----

func (s *memStore) GetTrip(ctx context.Context, tripID int) (*domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[tripID]
	if !ok {
		return nil, domain.NotFoundError{Resource: "trip", ID: tripID}
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) ListTankerTrips(ctx context.Context, tankerID int, date time.Time, excludeTripID *int) ([]*domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*domain.Trip{}
	for _, t := range s.trips {
		if t.TankerID == nil || *t.TankerID != tankerID || !t.ScheduleDate.Equal(date) {
			continue
		}
		if t.Status == domain.TripCancelled {
			continue
		}
		if excludeTripID != nil && t.TripID == *excludeTripID {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *domain.Trip) int { return a.TripID - b.TripID })
	return out, nil
}

func (s *memStore) ListScheduleTrips(ctx context.Context, scheduleID int) ([]*domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*domain.Trip{}
	for _, t := range s.trips {
		if t.DailyScheduleID == scheduleID {
			cp := *t
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Trip) int { return a.TripID - b.TripID })
	return out, nil
}

func (s *memStore) CreateTrip(ctx context.Context, trip *domain.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTripID++
	trip.TripID = s.nextTripID
	cp := *trip
	s.trips[trip.TripID] = &cp
	return nil
}

func (s *memStore) UpdateTrip(ctx context.Context, trip *domain.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[trip.TripID]; !ok {
		return domain.NotFoundError{Resource: "trip", ID: trip.TripID}
	}
	cp := *trip
	s.trips[trip.TripID] = &cp
	return nil
}

func (s *memStore) DeleteTrip(ctx context.Context, tripID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[tripID]; !ok {
		return domain.NotFoundError{Resource: "trip", ID: tripID}
	}
	delete(s.trips, tripID)
	return nil
}

func (s *memStore) DeleteScheduleTrips(ctx context.Context, scheduleID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, t := range s.trips {
		if t.DailyScheduleID == scheduleID {
			delete(s.trips, id)
			n++
		}
	}
	return n, nil
}

// addTrip stores a trip as-is (TripID must be set) and keeps the id sequence ahead of it.
func (s *memStore) addTrip(t *domain.Trip) {
	s.trips[t.TripID] = t
	if t.TripID > s.nextTripID {
		s.nextTripID = t.TripID
	}
}

// ----- daily schedules -----

func (s *memStore) GetScheduleByDate(ctx context.Context, date time.Time) (*domain.DailySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.schedules[date.Format(time.DateOnly)]
	if !ok {
		return nil, domain.NotFoundError{Resource: "daily schedule"}
	}
	cp := *d
	return &cp, nil
}

func (s *memStore) CreateSchedule(ctx context.Context, d *domain.DailySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := d.Date.Format(time.DateOnly)
	if _, ok := s.schedules[key]; ok {
		return domain.ConflictError{Resource: "daily schedule", Msg: "schedule already exists"}
	}
	s.nextScheduleID++
	d.ScheduleID = s.nextScheduleID
	cp := *d
	s.schedules[key] = &cp
	return nil
}

func (s *memStore) SetScheduleLocked(ctx context.Context, scheduleID int, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.schedules {
		if d.ScheduleID == scheduleID {
			d.Locked = locked
			return nil
		}
	}
	return domain.NotFoundError{Resource: "daily schedule", ID: scheduleID}
}

func (s *memStore) addSchedule(date time.Time, locked bool) *domain.DailySchedule {
	s.nextScheduleID++
	d := &domain.DailySchedule{ScheduleID: s.nextScheduleID, Date: date, DayOfWeek: domain.DayOfWeek(date), Locked: locked}
	s.schedules[date.Format(time.DateOnly)] = d
	return d
}

// ----- cache / publisher -----

// memCache records writes. Reads miss unless serveHits is set, in which case
// stored values come back through a JSON round trip like the Redis cache.
type memCache struct {
	mu        sync.Mutex
	entries   map[string]any
	deleted   []string
	serveHits bool
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]any{}}
}

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	if !c.serveHits || !ok {
		return false, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type publishedEvent struct {
	key     string
	payload any
}

type memPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *memPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{key: routingKey, payload: payload})
	return nil
}
