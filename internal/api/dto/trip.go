package dto

import "tanker-dispatch-service/internal/domain"

type TripResponse struct {
	TripID          int              `json:"trip_id"`
	DailyScheduleID int              `json:"daily_schedule_id"`
	ScheduleDate    string           `json:"schedule_date"`
	TemplateID      *int             `json:"template_id"`
	CustomerID      int              `json:"customer_id"`
	TankerID        *int             `json:"tanker_id"`
	DriverID        *int             `json:"driver_id"`
	StartTime       domain.ClockTime `json:"start_time"`
	EndTime         domain.ClockTime `json:"end_time"`
	FuelBlendID     *int             `json:"fuel_blend_id"`
	VolumeLiters    float64          `json:"volume_liters"`
	IsMobileOp      bool             `json:"is_mobile_op"`
	NeedsReturn     bool             `json:"needs_return"`
	Status          string           `json:"status"`
	Notes           string           `json:"notes,omitempty"`
}

type ValidateTripRequest struct {
	TripID   int `json:"trip_id"`
	TankerID int `json:"tanker_id"`
}

type AssignTripRequest struct {
	TankerID int  `json:"tanker_id"`
	DriverID *int `json:"driver_id"`
}

// UpdateTripRequest is a partial update. Omitted fields are left alone;
// clear_tanker and clear_driver remove the current assignment.
type UpdateTripRequest struct {
	TankerID     *int              `json:"tanker_id"`
	ClearTanker  bool              `json:"clear_tanker"`
	DriverID     *int              `json:"driver_id"`
	ClearDriver  bool              `json:"clear_driver"`
	StartTime    *domain.ClockTime `json:"start_time"`
	EndTime      *domain.ClockTime `json:"end_time"`
	FuelBlendID  *int              `json:"fuel_blend_id"`
	VolumeLiters *float64          `json:"volume_liters"`
	Status       *string           `json:"status"`
	Notes        *string           `json:"notes"`
}

type CreateTripRequest struct {
	CustomerID   int              `json:"customer_id"`
	TankerID     *int             `json:"tanker_id"`
	DriverID     *int             `json:"driver_id"`
	StartTime    domain.ClockTime `json:"start_time"`
	EndTime      domain.ClockTime `json:"end_time"`
	FuelBlendID  *int             `json:"fuel_blend_id"`
	VolumeLiters float64          `json:"volume_liters"`
	IsMobileOp   bool             `json:"is_mobile_op"`
	NeedsReturn  bool             `json:"needs_return"`
	Notes        string           `json:"notes"`
}

type TripOutcomeResponse struct {
	Trip       TripResponse             `json:"trip"`
	Applied    bool                     `json:"applied"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
	Conflicts  []TripResponse           `json:"conflicts,omitempty"`
}

type ConflictsResponse struct {
	TripID       int            `json:"trip_id"`
	TankerID     *int           `json:"tanker_id"`
	HasConflicts bool           `json:"has_conflicts"`
	Conflicts    []TripResponse `json:"conflicts"`
}
