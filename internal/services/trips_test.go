package services

import (
	"context"
	"slices"
	"tanker-dispatch-service/internal/domain"
	"testing"
)

type tripFixture struct {
	store *memStore
	cache *memCache
	pub   *memPublisher
	svc   *TripService
}

// newTripFixture seeds tanker 5, customer 3 and an unlocked schedule on
// testWeek holding trip 10 (unassigned, 09:00-10:00) and trip 11 (tanker 5,
// 11:00-12:00).
func newTripFixture(t *testing.T) *tripFixture {
	t.Helper()

	store := newMemStore()
	tanker := baseTanker()
	tanker.TankerID = 5
	store.tankers[5] = tanker
	store.customers[3] = baseCustomer()

	sched := store.addSchedule(testWeek, false)
	store.addTrip(&domain.Trip{
		TripID: 10, DailyScheduleID: sched.ScheduleID, ScheduleDate: testWeek, CustomerID: 3,
		Start: clock("09:00"), End: clock("10:00"), VolumeLiters: 1000, Status: domain.TripUnassigned,
	})
	store.addTrip(&domain.Trip{
		TripID: 11, DailyScheduleID: sched.ScheduleID, ScheduleDate: testWeek, CustomerID: 3, TankerID: intPtr(5),
		Start: clock("11:00"), End: clock("12:00"), VolumeLiters: 1000, Status: domain.TripScheduled,
	})

	cache := newMemCache()
	pub := &memPublisher{}
	svc := NewTripService(TripServiceDeps{
		UnitOfWork: store,
		Trips:      store,
		Schedules:  store,
		Tankers:    store,
		Customers:  store,
		Validator:  NewCompatibilityValidator(store, store),
		Conflicts:  NewConflictDetector(store),
		Cache:      cache,
		Publisher:  pub,
		Logger:     testLogger(),
	})
	return &tripFixture{store: store, cache: cache, pub: pub, svc: svc}
}

func (f *tripFixture) trip(t *testing.T, id int) *domain.Trip {
	t.Helper()
	trip, err := f.store.GetTrip(context.Background(), id)
	if err != nil {
		t.Fatalf("get trip %d: %v", id, err)
	}
	return trip
}

func TestTripAssignTanker(t *testing.T) {
	f := newTripFixture(t)

	out, err := f.svc.AssignTanker(context.Background(), 10, AssignTripInput{TankerID: 5, DriverID: intPtr(9)})
	if err != nil {
		t.Fatalf("AssignTanker: %v", err)
	}
	if !out.Applied {
		t.Fatalf("expected assignment to apply, got %+v", out)
	}

	got := f.trip(t, 10)
	if got.Status != domain.TripScheduled || got.TankerID == nil || *got.TankerID != 5 {
		t.Fatalf("stored trip = %+v, want SCHEDULED on tanker 5", got)
	}
	if got.DriverID == nil || *got.DriverID != 9 {
		t.Fatalf("driver = %v, want 9", got.DriverID)
	}
	if !slices.Contains(f.store.lockedTankers, 5) {
		t.Fatalf("tanker 5 was not locked during placement")
	}
	if !slices.Contains(f.cache.deleted, "schedule:2026-01-17") {
		t.Fatalf("schedule view not invalidated: %v", f.cache.deleted)
	}
	if len(f.pub.events) != 1 || f.pub.events[0].key != EventTripAssigned {
		t.Fatalf("events = %+v", f.pub.events)
	}
}

func TestTripAssignTankerIncompatibleLeavesTripAlone(t *testing.T) {
	f := newTripFixture(t)
	f.store.tankers[5].CapacityLiters = 500

	out, err := f.svc.AssignTanker(context.Background(), 10, AssignTripInput{TankerID: 5})
	if err != nil {
		t.Fatalf("AssignTanker: %v", err)
	}
	if out.Applied {
		t.Fatalf("incompatible tanker must not be applied")
	}
	if out.Validation == nil || !out.Validation.HasError(domain.CodeInsufficientCapacity) {
		t.Fatalf("validation = %+v", out.Validation)
	}

	got := f.trip(t, 10)
	if got.Status != domain.TripUnassigned || got.TankerID != nil {
		t.Fatalf("trip changed: %+v", got)
	}
	if len(f.pub.events) != 0 {
		t.Fatalf("no event expected, got %+v", f.pub.events)
	}
}

func TestTripAssignTankerUnknownTanker(t *testing.T) {
	f := newTripFixture(t)

	out, err := f.svc.AssignTanker(context.Background(), 10, AssignTripInput{TankerID: 404})
	if err != nil {
		t.Fatalf("AssignTanker: %v", err)
	}
	if out.Applied || out.Validation == nil || !out.Validation.HasError(domain.CodeTankerNotFound) {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestTripAssignTankerReportsConflicts(t *testing.T) {
	f := newTripFixture(t)
	f.store.addTrip(&domain.Trip{
		TripID: 12, DailyScheduleID: 1, ScheduleDate: testWeek, CustomerID: 3, TankerID: intPtr(5),
		Start: clock("09:30"), End: clock("10:30"), VolumeLiters: 500, Status: domain.TripScheduled,
	})

	out, err := f.svc.AssignTanker(context.Background(), 10, AssignTripInput{TankerID: 5})
	if err != nil {
		t.Fatalf("AssignTanker: %v", err)
	}
	if out.Applied {
		t.Fatalf("overlapping booking must not be applied")
	}
	if len(out.Conflicts) != 1 || out.Conflicts[0].TripID != 12 {
		t.Fatalf("conflicts = %+v", out.Conflicts)
	}
	if f.trip(t, 10).TankerID != nil {
		t.Fatalf("trip 10 should still have no tanker")
	}
}

func TestTripAssignTankerRejectsLockedAndTerminal(t *testing.T) {
	f := newTripFixture(t)
	f.store.trips[10].Status = domain.TripCancelled

	_, err := f.svc.AssignTanker(context.Background(), 10, AssignTripInput{TankerID: 5})
	if !domain.IsValidation(err) {
		t.Fatalf("cancelled trip: err = %v, want ValidationError", err)
	}

	f = newTripFixture(t)
	f.store.schedules["2026-01-17"].Locked = true

	_, err = f.svc.AssignTanker(context.Background(), 10, AssignTripInput{TankerID: 5})
	if !domain.IsConflict(err) {
		t.Fatalf("locked schedule: err = %v, want ConflictError", err)
	}

	_, err = f.svc.AssignTanker(context.Background(), 99, AssignTripInput{TankerID: 5})
	if !domain.IsNotFound(err) {
		t.Fatalf("unknown trip: err = %v, want NotFoundError", err)
	}
}

func TestTripUpdateClearTanker(t *testing.T) {
	f := newTripFixture(t)

	out, err := f.svc.Update(context.Background(), 11, TripPatch{ClearTanker: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !out.Applied {
		t.Fatalf("expected update to apply")
	}

	got := f.trip(t, 11)
	if got.TankerID != nil || got.Status != domain.TripUnassigned {
		t.Fatalf("trip = %+v, want UNASSIGNED without tanker", got)
	}
	if len(f.pub.events) != 0 {
		t.Fatalf("clearing a tanker publishes nothing, got %+v", f.pub.events)
	}
}

func TestTripUpdateStatusUnassignedReleasesTanker(t *testing.T) {
	f := newTripFixture(t)
	ctx := context.Background()

	status := domain.TripUnassigned
	out, err := f.svc.Update(ctx, 11, TripPatch{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !out.Applied {
		t.Fatalf("expected update to apply")
	}

	got := f.trip(t, 11)
	if got.Status != domain.TripUnassigned || got.TankerID != nil {
		t.Fatalf("trip = %+v, want UNASSIGNED without tanker", got)
	}

	conflicts, err := NewConflictDetector(f.store).FindConflicts(ctx, 5, testWeek, clock("11:00"), clock("12:00"), nil)
	if err != nil {
		t.Fatalf("FindConflicts: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("released trip still blocks tanker 5: %+v", conflicts)
	}
}

func TestTripUpdateMoveRechecksConflicts(t *testing.T) {
	f := newTripFixture(t)
	f.store.addTrip(&domain.Trip{
		TripID: 12, DailyScheduleID: 1, ScheduleDate: testWeek, CustomerID: 3, TankerID: intPtr(5),
		Start: clock("13:00"), End: clock("14:00"), VolumeLiters: 500, Status: domain.TripScheduled,
	})

	end := clock("13:30")
	out, err := f.svc.Update(context.Background(), 11, TripPatch{End: &end})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if out.Applied || len(out.Conflicts) != 1 {
		t.Fatalf("outcome = %+v, want one conflict", out)
	}
	if got := f.trip(t, 11); got.End != clock("12:00") {
		t.Fatalf("trip end changed to %s", got.End)
	}

	end = clock("13:00")
	out, err = f.svc.Update(context.Background(), 11, TripPatch{End: &end})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !out.Applied {
		t.Fatalf("touching trips must not conflict: %+v", out)
	}
	if got := f.trip(t, 11); got.End != clock("13:00") {
		t.Fatalf("trip end = %s, want 13:00", got.End)
	}
}

func TestTripUpdateRejectsInvalidChanges(t *testing.T) {
	f := newTripFixture(t)

	status := domain.TripScheduled
	if _, err := f.svc.Update(context.Background(), 10, TripPatch{Status: &status}); !domain.IsValidation(err) {
		t.Fatalf("SCHEDULED without tanker: err = %v", err)
	}

	end := clock("08:00")
	if _, err := f.svc.Update(context.Background(), 10, TripPatch{End: &end}); !domain.IsValidation(err) {
		t.Fatalf("end before start: err = %v", err)
	}

	completed := domain.TripCompleted
	if _, err := f.svc.Update(context.Background(), 11, TripPatch{Status: &completed}); err != nil {
		t.Fatalf("SCHEDULED -> COMPLETED: %v", err)
	}
	reopened := domain.TripScheduled
	if _, err := f.svc.Update(context.Background(), 11, TripPatch{Status: &reopened}); !domain.IsValidation(err) {
		t.Fatalf("COMPLETED is terminal: err = %v", err)
	}
}

func TestTripConflictsUsesOwnTanker(t *testing.T) {
	f := newTripFixture(t)
	f.store.addTrip(&domain.Trip{
		TripID: 12, DailyScheduleID: 1, ScheduleDate: testWeek, CustomerID: 3, TankerID: intPtr(5),
		Start: clock("11:30"), End: clock("12:30"), VolumeLiters: 500, Status: domain.TripScheduled,
	})

	got, err := f.svc.Conflicts(context.Background(), 11, nil)
	if err != nil {
		t.Fatalf("Conflicts: %v", err)
	}
	if len(got) != 1 || got[0].TripID != 12 {
		t.Fatalf("conflicts = %+v", got)
	}

	if _, err := f.svc.Conflicts(context.Background(), 10, nil); !domain.IsValidation(err) {
		t.Fatalf("trip without tanker: err = %v", err)
	}
}

func TestTripCreateAdHoc(t *testing.T) {
	f := newTripFixture(t)
	date := testWeek.AddDate(0, 0, 2)

	out, err := f.svc.CreateAdHoc(context.Background(), date, NewTripInput{
		CustomerID:   3,
		TankerID:     intPtr(5),
		Start:        clock("07:00"),
		End:          clock("08:00"),
		VolumeLiters: 2000,
		Notes:        "  urgent top-up ",
	})
	if err != nil {
		t.Fatalf("CreateAdHoc: %v", err)
	}
	if !out.Applied || out.Trip.TripID == 0 {
		t.Fatalf("outcome = %+v", out)
	}

	sched, err := f.store.GetScheduleByDate(context.Background(), date)
	if err != nil {
		t.Fatalf("schedule not created: %v", err)
	}
	if sched.DayOfWeek != 2 {
		t.Fatalf("day of week = %d, want 2", sched.DayOfWeek)
	}

	got := f.trip(t, out.Trip.TripID)
	if got.Status != domain.TripScheduled || got.DailyScheduleID != sched.ScheduleID || got.Notes != "urgent top-up" {
		t.Fatalf("stored trip = %+v", got)
	}
}

func TestTripCreateAdHocUnknownCustomerRollsBack(t *testing.T) {
	f := newTripFixture(t)
	date := testWeek.AddDate(0, 0, 3)

	_, err := f.svc.CreateAdHoc(context.Background(), date, NewTripInput{
		CustomerID: 77, Start: clock("07:00"), End: clock("08:00"), VolumeLiters: 10,
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if _, err := f.store.GetScheduleByDate(context.Background(), date); !domain.IsNotFound(err) {
		t.Fatalf("schedule should have been rolled back, err = %v", err)
	}
}

func TestTripDelete(t *testing.T) {
	f := newTripFixture(t)

	if err := f.svc.Delete(context.Background(), 10); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.store.GetTrip(context.Background(), 10); !domain.IsNotFound(err) {
		t.Fatalf("trip 10 still present")
	}

	f.store.schedules["2026-01-17"].Locked = true
	if err := f.svc.Delete(context.Background(), 11); !domain.IsConflict(err) {
		t.Fatalf("locked schedule: err = %v, want ConflictError", err)
	}
}
