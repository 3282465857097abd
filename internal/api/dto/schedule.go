package dto

type GenerateScheduleRequest struct {
	OverwriteExisting bool `json:"overwrite_existing"`
}

type ScheduleResponse struct {
	ScheduleID int    `json:"schedule_id"`
	Date       string `json:"schedule_date"`
	DayOfWeek  int    `json:"day_of_week"`
	DayName    string `json:"day_name"`
	IsLocked   bool   `json:"is_locked"`
	Notes      string `json:"notes,omitempty"`
}

type ScheduleSummaryResponse struct {
	TotalTrips      int     `json:"total_trips"`
	AssignedTrips   int     `json:"assigned_trips"`
	UnassignedTrips int     `json:"unassigned_trips"`
	ConflictTrips   int     `json:"conflict_trips"`
	TotalVolume     float64 `json:"total_volume"`
}

type ScheduleDetailResponse struct {
	Schedule ScheduleResponse        `json:"schedule"`
	Trips    []TripResponse          `json:"trips"`
	Summary  ScheduleSummaryResponse `json:"summary"`
}
