package domain

import (
	"testing"
	"time"
)

func tripDate() time.Time {
	return time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)
}

func TestTripGroupDerivedTotals(t *testing.T) {
	g := &TripGroup{
		GroupID: 1,
		Templates: []*WeeklyTemplate{
			{TemplateID: 1, Start: 360, End: 480, VolumeLiters: 1000, Lifecycle: LifecycleActive},
			{TemplateID: 2, Start: 540, End: 720, VolumeLiters: 2500, Lifecycle: LifecycleActive},
			{TemplateID: 3, Start: 60, End: 1400, VolumeLiters: 9000, Lifecycle: LifecycleDeactivated},
		},
	}

	start, ok := g.EarliestStart()
	if !ok || start != 360 {
		t.Fatalf("EarliestStart = %v,%v want 360,true", start, ok)
	}
	end, ok := g.LatestEnd()
	if !ok || end != 720 {
		t.Fatalf("LatestEnd = %v,%v want 720,true", end, ok)
	}
	if g.TotalDurationMinutes() != 300 {
		t.Fatalf("TotalDurationMinutes = %d, want 300", g.TotalDurationMinutes())
	}
	if g.TotalVolume() != 3500 {
		t.Fatalf("TotalVolume = %v, want 3500", g.TotalVolume())
	}
}

func TestTripGroupWithoutActiveTemplates(t *testing.T) {
	g := &TripGroup{GroupID: 2}

	if _, ok := g.EarliestStart(); ok {
		t.Fatalf("expected no earliest start")
	}
	if _, ok := g.LatestEnd(); ok {
		t.Fatalf("expected no latest end")
	}
}

func TestSummarizeSkipsTerminalVolume(t *testing.T) {
	trips := []*Trip{
		{Status: TripScheduled, VolumeLiters: 1000},
		{Status: TripUnassigned, VolumeLiters: 500},
		{Status: TripConflict, VolumeLiters: 200},
		{Status: TripCancelled, VolumeLiters: 4000},
		{Status: TripCompleted, VolumeLiters: 3000},
	}

	s := Summarize(trips)
	if s.TotalTrips != 5 || s.AssignedTrips != 1 || s.UnassignedTrips != 1 || s.ConflictTrips != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.TotalVolume != 1700 {
		t.Fatalf("TotalVolume = %v, want 1700", s.TotalVolume)
	}
}

func TestSummarizeCountsByStatusNotTanker(t *testing.T) {
	tanker := 5
	trips := []*Trip{
		{Status: TripConflict, TankerID: &tanker, VolumeLiters: 100},
		{Status: TripCompleted, TankerID: &tanker, VolumeLiters: 100},
		{Status: TripCancelled, VolumeLiters: 100},
	}

	s := Summarize(trips)
	if s.AssignedTrips != 0 || s.UnassignedTrips != 0 || s.ConflictTrips != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
}
