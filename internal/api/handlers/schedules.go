package handlers

import (
	"context"
	"errors"
	"net/http"
	"tanker-dispatch-service/internal/api/dto"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/services"
	"time"
)

type ScheduleService interface {
	Generate(ctx context.Context, date time.Time, overwrite bool) (*services.ScheduleView, error)
	Get(ctx context.Context, date time.Time) (*services.ScheduleView, error)
	Lock(ctx context.Context, date time.Time) (*domain.DailySchedule, error)
	Unlock(ctx context.Context, date time.Time) (*domain.DailySchedule, error)
}

type ScheduleHandler struct {
	responder
	Schedules ScheduleService
}

func NewScheduleHandler(schedules ScheduleService, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{responder: responder{log: log}, Schedules: schedules}
}

// Generate accepts an empty body, which means no overwrite.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	var req dto.GenerateScheduleRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.Schedules.Generate(r.Context(), date, req.OverwriteExisting)
	if err != nil {
		h.writeServiceError(w, r, "generate_schedule", err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, toScheduleDetail(view))
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	view, err := h.Schedules.Get(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, "get_schedule", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toScheduleDetail(view))
}

func (h *ScheduleHandler) Lock(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, h.Schedules.Lock, "lock_schedule")
}

func (h *ScheduleHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, h.Schedules.Unlock, "unlock_schedule")
}

func (h *ScheduleHandler) setLocked(
	w http.ResponseWriter,
	r *http.Request,
	apply func(context.Context, time.Time) (*domain.DailySchedule, error),
	action string,
) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	schedule, err := apply(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, action, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toScheduleResponse(schedule))
}
