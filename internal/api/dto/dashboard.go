package dto

type AlertResponse struct {
	Type         string `json:"type"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	Count        int    `json:"count,omitempty"`
	TripID       *int   `json:"trip_id,omitempty"`
	TankerID     *int   `json:"tanker_id,omitempty"`
	DriverID     *int   `json:"driver_id,omitempty"`
	CustomerCode string `json:"customer_code,omitempty"`
}

type AlertsResponse struct {
	Date        string          `json:"date"`
	TotalAlerts int             `json:"total_alerts"`
	Alerts      []AlertResponse `json:"alerts"`
}

type TripCountsResponse struct {
	Total      int `json:"total"`
	Assigned   int `json:"assigned"`
	Unassigned int `json:"unassigned"`
	Conflicts  int `json:"conflicts"`
	Completed  int `json:"completed"`
}

type ResourceCountsResponse struct {
	ActiveTankers  int `json:"active_tankers"`
	ActiveDrivers  int `json:"active_drivers"`
	WorkingDrivers int `json:"working_drivers"`
}

type DashboardSummaryResponse struct {
	Date           string                 `json:"date"`
	Trips          TripCountsResponse     `json:"trips"`
	TotalVolume    float64                `json:"total_volume_scheduled"`
	Resources      ResourceCountsResponse `json:"resources"`
	Alerts         []AlertResponse        `json:"alerts"`
	ScheduleLocked bool                   `json:"schedule_locked"`
}

type TankerUtilizationResponse struct {
	TankerID           int     `json:"tanker_id"`
	TankerName         string  `json:"tanker_name"`
	MaxCapacity        float64 `json:"max_capacity"`
	VolumeScheduled    float64 `json:"volume_scheduled"`
	TripCount          int     `json:"trip_count"`
	UtilizationPercent float64 `json:"utilization_percent"`
	Status             string  `json:"status"`
}

type UtilizationResponse struct {
	Date    string                      `json:"date"`
	Tankers []TankerUtilizationResponse `json:"tankers"`
}

type DriverDayStatusResponse struct {
	DriverID int    `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

type DriverStatusResponse struct {
	Date    string                    `json:"date"`
	Summary map[string]int            `json:"summary"`
	Drivers []DriverDayStatusResponse `json:"drivers"`
}

type DayOverviewResponse struct {
	Date            string  `json:"date"`
	DayName         string  `json:"day_name"`
	TotalTrips      int     `json:"total_trips"`
	AssignedTrips   int     `json:"assigned_trips"`
	UnassignedTrips int     `json:"unassigned_trips"`
	ConflictTrips   int     `json:"conflict_trips"`
	TotalVolume     float64 `json:"total_volume"`
	IsLocked        bool    `json:"is_locked"`
}

type WeeklyDashboardResponse struct {
	WeekStart string                `json:"week_start"`
	WeekEnd   string                `json:"week_end"`
	Days      []DayOverviewResponse `json:"days"`
}
