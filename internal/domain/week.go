package domain

import "time"

// The operational week runs Saturday (day 0) through Friday (day 6).
const DaysPerWeek = 7

var dayNames = [DaysPerWeek]string{
	"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday",
}

// DateOf drops the clock part of t and pins it to UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayOfWeek returns the operational day index of d (Saturday = 0).
func DayOfWeek(d time.Time) int {
	return (int(d.Weekday()) + 1) % DaysPerWeek
}

// WeekStart normalizes d to the Saturday that opens its week. Every read or
// write of weekly assignments is keyed by this value.
func WeekStart(d time.Time) time.Time {
	d = DateOf(d)
	return d.AddDate(0, 0, -DayOfWeek(d))
}

// WeekDates lists the seven dates of the week opened by weekStart.
func WeekDates(weekStart time.Time) []time.Time {
	start := DateOf(weekStart)
	out := make([]time.Time, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		out = append(out, start.AddDate(0, 0, i))
	}
	return out
}

func DayName(day int) string {
	if day < 0 || day >= DaysPerWeek {
		return "Unknown"
	}
	return dayNames[day]
}

func ValidDayOfWeek(day int) bool {
	return day >= 0 && day < DaysPerWeek
}
