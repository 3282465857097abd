package dto

import "time"

type AssignmentResponse struct {
	AssignmentID int       `json:"assignment_id"`
	TripGroupID  int       `json:"trip_group_id"`
	GroupName    string    `json:"group_name,omitempty"`
	DriverID     int       `json:"driver_id"`
	DriverName   string    `json:"driver_name,omitempty"`
	WeekStart    string    `json:"week_start"`
	AssignedAt   time.Time `json:"assigned_at"`
	AssignedBy   *int      `json:"assigned_by"`
	Notes        string    `json:"notes,omitempty"`
}

type TripGroupResponse struct {
	GroupID       int     `json:"group_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	TemplateCount int     `json:"template_count"`
	TotalVolume   float64 `json:"total_volume"`
}

type WeekOverviewResponse struct {
	WeekStart        string               `json:"week_start"`
	WeekEnd          string               `json:"week_end"`
	Assignments      []AssignmentResponse `json:"assignments"`
	UnassignedGroups []TripGroupResponse  `json:"unassigned_groups"`
	AvailableDrivers []DriverResponse     `json:"available_drivers"`
}

type CreateAssignmentRequest struct {
	TripGroupID int    `json:"trip_group_id"`
	DriverID    int    `json:"driver_id"`
	WeekStart   string `json:"week_start"`
	ActorID     *int   `json:"actor_id"`
	Notes       string `json:"notes"`
}

type UpdateAssignmentRequest struct {
	DriverID *int    `json:"driver_id"`
	Notes    *string `json:"notes"`
}

// AutoAssignRequest falls back to the configured rest gap when
// min_rest_hours is omitted.
type AutoAssignRequest struct {
	WeekStart    string `json:"week_start"`
	MinRestHours *int   `json:"min_rest_hours"`
	DryRun       bool   `json:"dry_run"`
	ActorID      *int   `json:"actor_id"`
}

type UnassignedGroupResponse struct {
	GroupID   int    `json:"group_id"`
	GroupName string `json:"group_name"`
	Reason    string `json:"reason"`
}

type AutoAssignResponse struct {
	WeekStart   string                    `json:"week_start"`
	DryRun      bool                      `json:"dry_run"`
	Message     string                    `json:"message"`
	Assignments []AssignmentResponse      `json:"assignments"`
	Unassigned  []UnassignedGroupResponse `json:"unassigned_groups"`
}

type ClearWeekResponse struct {
	WeekStart string `json:"week_start"`
	Deleted   int    `json:"deleted"`
}
