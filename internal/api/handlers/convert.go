package handlers

import (
	"tanker-dispatch-service/internal/api/dto"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/services"
	"time"
)

func toTripResponse(t *domain.Trip) dto.TripResponse {
	return dto.TripResponse{
		TripID:          t.TripID,
		DailyScheduleID: t.DailyScheduleID,
		ScheduleDate:    t.ScheduleDate.Format(time.DateOnly),
		TemplateID:      t.TemplateID,
		CustomerID:      t.CustomerID,
		TankerID:        t.TankerID,
		DriverID:        t.DriverID,
		StartTime:       t.Start,
		EndTime:         t.End,
		FuelBlendID:     t.FuelBlendID,
		VolumeLiters:    t.VolumeLiters,
		IsMobileOp:      t.IsMobileOp,
		NeedsReturn:     t.NeedsReturn,
		Status:          t.Status.String(),
		Notes:           t.Notes,
	}
}

func toTripResponses(trips []*domain.Trip) []dto.TripResponse {
	out := make([]dto.TripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripResponse(t))
	}
	return out
}

func toOutcomeResponse(o *services.TripOutcome) dto.TripOutcomeResponse {
	res := dto.TripOutcomeResponse{
		Trip:       toTripResponse(o.Trip),
		Applied:    o.Applied,
		Validation: o.Validation,
	}
	if len(o.Conflicts) > 0 {
		res.Conflicts = toTripResponses(o.Conflicts)
	}
	return res
}

func toTankerResponses(tankers []*domain.Tanker) dto.ListTankersResponse {
	res := dto.ListTankersResponse{Tankers: make([]dto.TankerResponse, 0, len(tankers))}
	for _, t := range tankers {
		res.Tankers = append(res.Tankers, dto.TankerResponse{
			TankerID:       t.TankerID,
			Name:           t.Name,
			Registration:   t.Registration,
			CapacityLiters: t.CapacityLiters,
			DeliveryType:   t.DeliveryType.String(),
			Status:         t.Status.String(),
			Is3PL:          t.Is3PL,
			FuelBlends:     t.BlendCodes(),
			Emirates:       t.EmirateNames(),
		})
	}
	res.Count = len(res.Tankers)
	return res
}

func toScheduleResponse(s *domain.DailySchedule) dto.ScheduleResponse {
	return dto.ScheduleResponse{
		ScheduleID: s.ScheduleID,
		Date:       s.Date.Format(time.DateOnly),
		DayOfWeek:  s.DayOfWeek,
		DayName:    domain.DayName(s.DayOfWeek),
		IsLocked:   s.Locked,
		Notes:      s.Notes,
	}
}

func toScheduleDetail(v *services.ScheduleView) dto.ScheduleDetailResponse {
	return dto.ScheduleDetailResponse{
		Schedule: toScheduleResponse(v.Schedule),
		Trips:    toTripResponses(v.Trips),
		Summary: dto.ScheduleSummaryResponse{
			TotalTrips:      v.Summary.TotalTrips,
			AssignedTrips:   v.Summary.AssignedTrips,
			UnassignedTrips: v.Summary.UnassignedTrips,
			ConflictTrips:   v.Summary.ConflictTrips,
			TotalVolume:     v.Summary.TotalVolume,
		},
	}
}

func toAssignmentResponse(a *domain.WeeklyDriverAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		AssignmentID: a.AssignmentID,
		TripGroupID:  a.TripGroupID,
		GroupName:    a.GroupName,
		DriverID:     a.DriverID,
		DriverName:   a.DriverName,
		WeekStart:    a.WeekStart.Format(time.DateOnly),
		AssignedAt:   a.AssignedAt,
		AssignedBy:   a.AssignedBy,
		Notes:        a.Notes,
	}
}

func toAssignmentResponses(rows []*domain.WeeklyDriverAssignment) []dto.AssignmentResponse {
	out := make([]dto.AssignmentResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, toAssignmentResponse(a))
	}
	return out
}

func toWeekOverview(v *services.WeekOverview) dto.WeekOverviewResponse {
	res := dto.WeekOverviewResponse{
		WeekStart:        v.WeekStart.Format(time.DateOnly),
		WeekEnd:          v.WeekStart.AddDate(0, 0, domain.DaysPerWeek-1).Format(time.DateOnly),
		Assignments:      toAssignmentResponses(v.Assignments),
		UnassignedGroups: make([]dto.TripGroupResponse, 0, len(v.UnassignedGroups)),
		AvailableDrivers: make([]dto.DriverResponse, 0, len(v.AvailableDrivers)),
	}
	for _, g := range v.UnassignedGroups {
		res.UnassignedGroups = append(res.UnassignedGroups, dto.TripGroupResponse{
			GroupID:       g.GroupID,
			Name:          g.Name,
			Description:   g.Description,
			TemplateCount: len(g.ActiveTemplates()),
			TotalVolume:   g.TotalVolume(),
		})
	}
	for _, d := range v.AvailableDrivers {
		res.AvailableDrivers = append(res.AvailableDrivers, dto.DriverResponse{
			DriverID:   d.DriverID,
			Name:       d.Name,
			EmployeeID: d.EmployeeID,
			DriverType: string(d.DriverType),
		})
	}
	return res
}

func toAutoAssignResponse(r *services.AutoAssignResult) dto.AutoAssignResponse {
	res := dto.AutoAssignResponse{
		WeekStart:   r.WeekStart.Format(time.DateOnly),
		DryRun:      r.DryRun,
		Message:     r.Message,
		Assignments: toAssignmentResponses(r.Created),
		Unassigned:  make([]dto.UnassignedGroupResponse, 0, len(r.Unassigned)),
	}
	for _, u := range r.Unassigned {
		res.Unassigned = append(res.Unassigned, dto.UnassignedGroupResponse{
			GroupID:   u.GroupID,
			GroupName: u.GroupName,
			Reason:    u.Reason,
		})
	}
	return res
}

func toAlertResponses(alerts []services.Alert) []dto.AlertResponse {
	out := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.AlertResponse{
			Type:         string(a.Level),
			Code:         a.Code,
			Message:      a.Message,
			Count:        a.Count,
			TripID:       a.TripID,
			TankerID:     a.TankerID,
			DriverID:     a.DriverID,
			CustomerCode: a.CustomerCode,
		})
	}
	return out
}

func toAlertsResponse(date time.Time, alerts []services.Alert) dto.AlertsResponse {
	return dto.AlertsResponse{
		Date:        date.Format(time.DateOnly),
		TotalAlerts: len(alerts),
		Alerts:      toAlertResponses(alerts),
	}
}

func toDashboardSummary(s *services.DailySummary) dto.DashboardSummaryResponse {
	return dto.DashboardSummaryResponse{
		Date: s.Date.Format(time.DateOnly),
		Trips: dto.TripCountsResponse{
			Total:      s.Trips.TotalTrips,
			Assigned:   s.Trips.AssignedTrips,
			Unassigned: s.Trips.UnassignedTrips,
			Conflicts:  s.Trips.ConflictTrips,
			Completed:  s.CompletedTrips,
		},
		TotalVolume: s.Trips.TotalVolume,
		Resources: dto.ResourceCountsResponse{
			ActiveTankers:  s.ActiveTankers,
			ActiveDrivers:  s.ActiveDrivers,
			WorkingDrivers: s.WorkingDrivers,
		},
		Alerts:         toAlertResponses(s.Alerts),
		ScheduleLocked: s.ScheduleLocked,
	}
}

func toUtilizationResponse(date time.Time, rows []services.TankerUtilization) dto.UtilizationResponse {
	res := dto.UtilizationResponse{
		Date:    date.Format(time.DateOnly),
		Tankers: make([]dto.TankerUtilizationResponse, 0, len(rows)),
	}
	for _, u := range rows {
		res.Tankers = append(res.Tankers, dto.TankerUtilizationResponse{
			TankerID:           u.TankerID,
			TankerName:         u.Name,
			MaxCapacity:        u.CapacityLiters,
			VolumeScheduled:    u.VolumeScheduled,
			TripCount:          u.TripCount,
			UtilizationPercent: u.UtilizationPercent,
			Status:             u.Status.String(),
		})
	}
	return res
}

func toDriverStatusResponse(r *services.DriverStatusReport) dto.DriverStatusResponse {
	res := dto.DriverStatusResponse{
		Date:    r.Date.Format(time.DateOnly),
		Summary: r.Counts,
		Drivers: make([]dto.DriverDayStatusResponse, 0, len(r.Drivers)),
	}
	for _, d := range r.Drivers {
		res.Drivers = append(res.Drivers, dto.DriverDayStatusResponse{DriverID: d.DriverID, Name: d.Name, Status: d.Status})
	}
	return res
}

func toWeeklyDashboard(days []services.DayOverview) dto.WeeklyDashboardResponse {
	res := dto.WeeklyDashboardResponse{Days: make([]dto.DayOverviewResponse, 0, len(days))}
	if len(days) > 0 {
		res.WeekStart = days[0].Date.Format(time.DateOnly)
		res.WeekEnd = days[len(days)-1].Date.Format(time.DateOnly)
	}
	for _, d := range days {
		res.Days = append(res.Days, dto.DayOverviewResponse{
			Date:            d.Date.Format(time.DateOnly),
			DayName:         d.DayName,
			TotalTrips:      d.Summary.TotalTrips,
			AssignedTrips:   d.Summary.AssignedTrips,
			UnassignedTrips: d.Summary.UnassignedTrips,
			ConflictTrips:   d.Summary.ConflictTrips,
			TotalVolume:     d.Summary.TotalVolume,
			IsLocked:        d.Locked,
		})
	}
	return res
}
