package domain

import "time"

// WeeklyDriverAssignment binds one driver to one trip group for the week
// opening on WeekStart. The store enforces one row per (group, week) and
// one row per (driver, week).
type WeeklyDriverAssignment struct {
	AssignmentID int
	TripGroupID  int
	DriverID     int
	WeekStart    time.Time
	AssignedAt   time.Time
	AssignedBy   *int
	Notes        string

	// Display names, filled by list queries only.
	GroupName  string
	DriverName string
}
