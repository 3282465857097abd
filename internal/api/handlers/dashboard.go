package handlers

import (
	"context"
	"net/http"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/services"
	"time"
)

type DashboardService interface {
	Summary(ctx context.Context, date time.Time) (*services.DailySummary, error)
	TankerUtilization(ctx context.Context, date time.Time) ([]services.TankerUtilization, error)
	DriverStatus(ctx context.Context, date time.Time) (*services.DriverStatusReport, error)
	Alerts(ctx context.Context, date time.Time) ([]services.Alert, error)
	WeeklyOverview(ctx context.Context, week time.Time) ([]services.DayOverview, error)
}

type DashboardHandler struct {
	responder
	Dashboard DashboardService
}

func NewDashboardHandler(dashboard DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{responder: responder{log: log}, Dashboard: dashboard}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	sum, err := h.Dashboard.Summary(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, "dashboard_summary", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toDashboardSummary(sum))
}

func (h *DashboardHandler) Utilization(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	rows, err := h.Dashboard.TankerUtilization(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, "dashboard_utilization", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toUtilizationResponse(date, rows))
}

func (h *DashboardHandler) DriverStatus(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	report, err := h.Dashboard.DriverStatus(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, "dashboard_driver_status", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toDriverStatusResponse(report))
}

func (h *DashboardHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	alerts, err := h.Dashboard.Alerts(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, "dashboard_alerts", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toAlertsResponse(date, alerts))
}

// Week accepts any date and reports the week that contains it.
func (h *DashboardHandler) Week(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	days, err := h.Dashboard.WeeklyOverview(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, "dashboard_week", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toWeeklyDashboard(days))
}
