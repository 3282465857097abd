package services

import "tanker-dispatch-service/internal/domain"

// HasSufficientRest reports whether every pair of consecutive operating days
// (d, d+1) for d in 0..5 leaves at least minRestHours between the latest end
// on d and the earliest start on d+1. Day 6 has no successor and is not
// checked against the next week's day 0.
//
// The check only looks at the group's own template times. It does not know
// which driver will take the group or what that driver did the week before,
// so it yields the same answer for every driver.
func HasSufficientRest(group *domain.TripGroup, minRestHours int) bool {
	type dayBounds struct {
		earliestStart domain.ClockTime
		latestEnd     domain.ClockTime
		present       bool
	}

	var days [domain.DaysPerWeek]dayBounds
	for _, t := range group.ActiveTemplates() {
		if !domain.ValidDayOfWeek(t.DayOfWeek) {
			continue
		}

		b := &days[t.DayOfWeek]
		if !b.present {
			*b = dayBounds{earliestStart: t.Start, latestEnd: t.End, present: true}
			continue
		}
		b.earliestStart = min(b.earliestStart, t.Start)
		b.latestEnd = max(b.latestEnd, t.End)
	}

	for d := 0; d < domain.DaysPerWeek-1; d++ {
		today, tomorrow := days[d], days[d+1]
		if !today.present || !tomorrow.present {
			continue
		}

		gapMinutes := (domain.MinutesPerDay - today.latestEnd.Minutes()) + tomorrow.earliestStart.Minutes()
		if float64(gapMinutes)/60 < float64(minRestHours) {
			return false
		}
	}

	return true
}
