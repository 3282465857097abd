package domain

import (
	"errors"
	"time"
)

var ErrScheduleLocked = errors.New("schedule is locked")

// DailySchedule is the container of trips for one date.
type DailySchedule struct {
	ScheduleID int
	Date       time.Time
	DayOfWeek  int
	Locked     bool
	Notes      string
}

func NewDailySchedule(date time.Time) *DailySchedule {
	date = DateOf(date)
	return &DailySchedule{Date: date, DayOfWeek: DayOfWeek(date)}
}

type ScheduleSummary struct {
	TotalTrips      int
	AssignedTrips   int
	UnassignedTrips int
	ConflictTrips   int
	TotalVolume     float64
}

// Summarize counts trips by status, not by tanker presence. Terminal trips are
// left out of the volume.
func Summarize(trips []*Trip) ScheduleSummary {
	s := ScheduleSummary{TotalTrips: len(trips)}
	for _, t := range trips {
		switch t.Status {
		case TripScheduled:
			s.AssignedTrips++
		case TripUnassigned:
			s.UnassignedTrips++
		case TripConflict:
			s.ConflictTrips++
		}
		if !t.Status.Terminal() {
			s.TotalVolume += t.VolumeLiters
		}
	}
	return s
}
