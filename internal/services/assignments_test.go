package services

import (
	"context"
	"errors"
	"slices"
	"tanker-dispatch-service/internal/domain"
	"testing"
	"time"
)

type stubRoster struct {
	weekStart time.Time
	rows      int
}

func (r *stubRoster) RenderRoster(weekStart time.Time, rows []*domain.WeeklyDriverAssignment) ([]byte, error) {
	r.weekStart = weekStart
	r.rows = len(rows)
	return []byte("%PDF-1.3"), nil
}

func (r *stubRoster) ContentType() string { return "application/pdf" }

type assignmentFixture struct {
	store  *memStore
	cache  *memCache
	pub    *memPublisher
	roster *stubRoster
	svc    *AssignmentService
}

func newAssignmentFixture() *assignmentFixture {
	store := newMemStore()
	store.addDriver(1, "Ahmed", testWeek, fullWeek())
	store.addDriver(2, "Bilal", testWeek, fullWeek())
	store.addGroup(1, "Jebel Ali AM", tpl(0, "06:00", "12:00"))
	store.addGroup(2, "Sharjah PM", tpl(1, "13:00", "18:00"))

	cache := newMemCache()
	pub := &memPublisher{}
	roster := &stubRoster{}
	svc := NewAssignmentService(AssignmentServiceDeps{
		UnitOfWork:   store,
		Groups:       store,
		Drivers:      store,
		Assignments:  store,
		AutoAssigner: NewWeeklyAutoAssigner(store, store, store, store, &seqRand{}, testLogger()),
		Cache:        cache,
		Publisher:    pub,
		Roster:       roster,
		Logger:       testLogger(),
	})
	return &assignmentFixture{store: store, cache: cache, pub: pub, roster: roster, svc: svc}
}

func TestAssignmentCreate(t *testing.T) {
	f := newAssignmentFixture()

	row, err := f.svc.Create(context.Background(), CreateAssignmentInput{
		TripGroupID: 1,
		DriverID:    2,
		WeekStart:   testWeek.AddDate(0, 0, 3),
		ActorID:     intPtr(42),
		Notes:       " cover ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !row.WeekStart.Equal(testWeek) {
		t.Fatalf("week start = %s, want %s", row.WeekStart, testWeek)
	}
	if row.GroupName != "Jebel Ali AM" || row.DriverName != "Bilal" || row.Notes != "cover" {
		t.Fatalf("row = %+v", row)
	}
	if row.AssignedBy == nil || *row.AssignedBy != 42 {
		t.Fatalf("assigned by = %v", row.AssignedBy)
	}
	if !slices.Contains(f.cache.deleted, "week:2026-01-17") {
		t.Fatalf("week view not invalidated: %v", f.cache.deleted)
	}
	if len(f.pub.events) != 1 || f.pub.events[0].key != EventAssignmentCreated {
		t.Fatalf("events = %+v", f.pub.events)
	}
}

func TestAssignmentCreateRejectsDuplicates(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateAssignmentInput{TripGroupID: 1, DriverID: 1, WeekStart: testWeek}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.svc.Create(ctx, CreateAssignmentInput{TripGroupID: 2, DriverID: 1, WeekStart: testWeek}); !domain.IsConflict(err) {
		t.Fatalf("same driver twice: err = %v, want ConflictError", err)
	}
	if _, err := f.svc.Create(ctx, CreateAssignmentInput{TripGroupID: 1, DriverID: 2, WeekStart: testWeek}); !domain.IsConflict(err) {
		t.Fatalf("same group twice: err = %v, want ConflictError", err)
	}

	if _, err := f.svc.Create(ctx, CreateAssignmentInput{TripGroupID: 1, DriverID: 1, WeekStart: testWeek.AddDate(0, 0, 7)}); err != nil {
		t.Fatalf("next week is independent: %v", err)
	}
}

func TestAssignmentCreateValidatesReferences(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	f.store.drivers[1].Lifecycle = domain.LifecycleDeactivated

	tests := []struct {
		name  string
		in    CreateAssignmentInput
		check func(error) bool
	}{
		{"missing week", CreateAssignmentInput{TripGroupID: 1, DriverID: 1}, domain.IsValidation},
		{"unknown group", CreateAssignmentInput{TripGroupID: 9, DriverID: 1, WeekStart: testWeek}, domain.IsNotFound},
		{"unknown driver", CreateAssignmentInput{TripGroupID: 1, DriverID: 9, WeekStart: testWeek}, domain.IsNotFound},
		{"inactive driver", CreateAssignmentInput{TripGroupID: 1, DriverID: 2, WeekStart: testWeek}, domain.IsValidation},
	}

	for _, tc := range tests {
		if _, err := f.svc.Create(ctx, tc.in); !tc.check(err) {
			t.Errorf("%s: unexpected err %v", tc.name, err)
		}
	}
	if len(f.store.assignments) != 0 {
		t.Fatalf("nothing should be stored, got %d", len(f.store.assignments))
	}
}

func TestAssignmentListWeek(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateAssignmentInput{TripGroupID: 2, DriverID: 1, WeekStart: testWeek}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := f.svc.ListWeek(ctx, testWeek.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("ListWeek: %v", err)
	}
	if !got.WeekStart.Equal(testWeek) {
		t.Fatalf("week start = %s", got.WeekStart)
	}
	if len(got.Assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(got.Assignments))
	}
	if len(got.UnassignedGroups) != 1 || got.UnassignedGroups[0].GroupID != 1 {
		t.Fatalf("unassigned groups = %+v", got.UnassignedGroups)
	}
	if len(got.AvailableDrivers) != 1 || got.AvailableDrivers[0].DriverID != 2 {
		t.Fatalf("available drivers = %+v", got.AvailableDrivers)
	}
	if _, ok := f.cache.entries["week:2026-01-17"]; !ok {
		t.Fatalf("week view not cached")
	}
}

func TestAssignmentListWeekReadsDriverAvailabilityFresh(t *testing.T) {
	f := newAssignmentFixture()
	f.cache.serveHits = true
	ctx := context.Background()

	if _, err := f.svc.ListWeek(ctx, testWeek); err != nil {
		t.Fatalf("ListWeek: %v", err)
	}
	if _, ok := f.cache.entries["week:2026-01-17"].(*weekPlan); !ok {
		t.Fatalf("cached entry = %T, want *weekPlan", f.cache.entries["week:2026-01-17"])
	}

	// Driver 2 goes off for the week through a path that never touches the
	// week key, like a re-seed of driver_schedules.
	f.store.mu.Lock()
	kept := f.store.driverSchedules[:0]
	for _, ds := range f.store.driverSchedules {
		if ds.DriverID != 2 {
			kept = append(kept, ds)
		}
	}
	f.store.driverSchedules = kept
	f.store.mu.Unlock()

	got, err := f.svc.ListWeek(ctx, testWeek)
	if err != nil {
		t.Fatalf("ListWeek: %v", err)
	}
	if len(got.UnassignedGroups) != 2 {
		t.Fatalf("unassigned groups = %d, want 2 from the cached plan", len(got.UnassignedGroups))
	}
	if len(got.AvailableDrivers) != 1 || got.AvailableDrivers[0].DriverID != 1 {
		t.Fatalf("available drivers = %+v, want only driver 1", got.AvailableDrivers)
	}
}

func TestAssignmentUpdateAndDelete(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()

	row, err := f.svc.Create(ctx, CreateAssignmentInput{TripGroupID: 1, DriverID: 1, WeekStart: testWeek})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	notes := "swapped after leave request"
	updated, err := f.svc.Update(ctx, row.AssignmentID, UpdateAssignmentInput{DriverID: intPtr(2), Notes: &notes})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DriverID != 2 || updated.DriverName != "Bilal" || updated.Notes != notes {
		t.Fatalf("updated = %+v", updated)
	}

	if err := f.svc.Delete(ctx, row.AssignmentID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.svc.Delete(ctx, row.AssignmentID); !domain.IsNotFound(err) {
		t.Fatalf("second delete: err = %v, want NotFoundError", err)
	}

	keys := make([]string, 0, len(f.pub.events))
	for _, e := range f.pub.events {
		keys = append(keys, e.key)
	}
	if !slices.Equal(keys, []string{EventAssignmentCreated, EventAssignmentRemoved}) {
		t.Fatalf("events = %v", keys)
	}
}

func TestAssignmentClearWeek(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()

	for _, in := range []CreateAssignmentInput{
		{TripGroupID: 1, DriverID: 1, WeekStart: testWeek},
		{TripGroupID: 2, DriverID: 2, WeekStart: testWeek},
		{TripGroupID: 1, DriverID: 1, WeekStart: testWeek.AddDate(0, 0, 7)},
	} {
		if _, err := f.svc.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	n, err := f.svc.ClearWeek(ctx, testWeek.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("ClearWeek: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}
	if len(f.store.assignments) != 1 {
		t.Fatalf("other weeks must survive, left %d", len(f.store.assignments))
	}
}

func TestAssignmentAutoAssignPublishesOnlyForLiveRuns(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()

	res, err := f.svc.AutoAssign(ctx, AutoAssignRequest{WeekStart: testWeek, MinRestHours: 12, DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if len(res.Created) != 2 || len(f.store.assignments) != 0 || len(f.pub.events) != 0 || len(f.cache.deleted) != 0 {
		t.Fatalf("dry run had side effects: created=%d stored=%d events=%d deleted=%v",
			len(res.Created), len(f.store.assignments), len(f.pub.events), f.cache.deleted)
	}

	res, err = f.svc.AutoAssign(ctx, AutoAssignRequest{WeekStart: testWeek.AddDate(0, 0, 1), MinRestHours: 12})
	if err != nil {
		t.Fatalf("live run: %v", err)
	}
	if len(res.Created) != 2 || len(f.store.assignments) != 2 {
		t.Fatalf("live run created=%d stored=%d", len(res.Created), len(f.store.assignments))
	}
	if len(f.pub.events) != 1 || f.pub.events[0].key != EventWeekAutoAssigned {
		t.Fatalf("events = %+v", f.pub.events)
	}
}

func TestAssignmentPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newAssignmentFixture()
	f.pub.err = errors.New("broker unavailable")

	if _, err := f.svc.Create(context.Background(), CreateAssignmentInput{TripGroupID: 1, DriverID: 1, WeekStart: testWeek}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(f.store.assignments) != 1 {
		t.Fatalf("assignment not committed")
	}
}

func TestAssignmentRoster(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateAssignmentInput{TripGroupID: 1, DriverID: 1, WeekStart: testWeek}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	doc, contentType, err := f.svc.Roster(ctx, testWeek.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if contentType != "application/pdf" || string(doc) != "%PDF-1.3" {
		t.Fatalf("unexpected document %q (%s)", doc, contentType)
	}
	if !f.roster.weekStart.Equal(testWeek) || f.roster.rows != 1 {
		t.Fatalf("renderer got week=%s rows=%d", f.roster.weekStart, f.roster.rows)
	}
}
