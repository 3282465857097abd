package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"tanker-dispatch-service/internal/api/dto"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/services"
	"time"
)

type AssignmentService interface {
	ListWeek(ctx context.Context, week time.Time) (*services.WeekOverview, error)
	Create(ctx context.Context, in services.CreateAssignmentInput) (*domain.WeeklyDriverAssignment, error)
	Update(ctx context.Context, assignmentID int, in services.UpdateAssignmentInput) (*domain.WeeklyDriverAssignment, error)
	Delete(ctx context.Context, assignmentID int) error
	ClearWeek(ctx context.Context, week time.Time) (int, error)
	AutoAssign(ctx context.Context, req services.AutoAssignRequest) (*services.AutoAssignResult, error)
	Roster(ctx context.Context, week time.Time) ([]byte, string, error)
}

// AssignmentHandler exposes weekly driver planning.
type AssignmentHandler struct {
	responder
	Assignments         AssignmentService
	DefaultMinRestHours int
}

func NewAssignmentHandler(assignments AssignmentService, defaultMinRestHours int, log *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		responder:           responder{log: log},
		Assignments:         assignments,
		DefaultMinRestHours: defaultMinRestHours,
	}
}

func (h *AssignmentHandler) ListWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	overview, err := h.Assignments.ListWeek(r.Context(), week)
	if err != nil {
		h.writeServiceError(w, r, "list_week_assignments", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toWeekOverview(overview))
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAssignmentRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.TripGroupID <= 0 || req.DriverID <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "trip_group_id and driver_id are required")
		return
	}
	week, ok := parseDate(req.WeekStart)
	if !ok {
		h.writeError(w, r, http.StatusBadRequest, "week_start must be a date (YYYY-MM-DD)")
		return
	}

	a, err := h.Assignments.Create(r.Context(), services.CreateAssignmentInput{
		TripGroupID: req.TripGroupID,
		DriverID:    req.DriverID,
		WeekStart:   week,
		ActorID:     req.ActorID,
		Notes:       req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, r, "create_assignment", err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, toAssignmentResponse(a))
}

func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateAssignmentRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.DriverID != nil && *req.DriverID <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "driver_id must be a positive integer")
		return
	}

	a, err := h.Assignments.Update(r.Context(), id, services.UpdateAssignmentInput{
		DriverID: req.DriverID,
		Notes:    req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, r, "update_assignment", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toAssignmentResponse(a))
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Assignments.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "delete_assignment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssignmentHandler) ClearWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	n, err := h.Assignments.ClearWeek(r.Context(), week)
	if err != nil {
		h.writeServiceError(w, r, "clear_week_assignments", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.ClearWeekResponse{
		WeekStart: domain.WeekStart(week).Format(time.DateOnly),
		Deleted:   n,
	})
}

// AutoAssign runs the weekly allocator. The range check on min_rest_hours
// lives in the service so every caller gets it.
func (h *AssignmentHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	var req dto.AutoAssignRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	week, ok := parseDate(strings.TrimSpace(req.WeekStart))
	if !ok {
		h.writeError(w, r, http.StatusBadRequest, "week_start must be a date (YYYY-MM-DD)")
		return
	}

	minRest := h.DefaultMinRestHours
	if req.MinRestHours != nil {
		minRest = *req.MinRestHours
	}

	res, err := h.Assignments.AutoAssign(r.Context(), services.AutoAssignRequest{
		WeekStart:    week,
		ActorID:      req.ActorID,
		MinRestHours: minRest,
		DryRun:       req.DryRun,
	})
	if err != nil {
		h.writeServiceError(w, r, "auto_assign", err)
		return
	}

	status := http.StatusCreated
	if req.DryRun {
		status = http.StatusOK
	}
	h.writeJSON(w, r, status, toAutoAssignResponse(res))
}

func (h *AssignmentHandler) Roster(w http.ResponseWriter, r *http.Request) {
	week, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	doc, contentType, err := h.Assignments.Roster(r.Context(), week)
	if err != nil {
		h.writeServiceError(w, r, "week_roster", err)
		return
	}

	name := "roster-" + domain.WeekStart(week).Format(time.DateOnly) + ".pdf"
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.log.Error(r.Context(), "week_roster", "Writing roster failed", err, nil)
	}
}
