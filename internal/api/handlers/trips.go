package handlers

import (
	"context"
	"net/http"
	"tanker-dispatch-service/internal/api/dto"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/services"
	"time"
)

type TripService interface {
	Validate(ctx context.Context, tripID, tankerID int) (domain.ValidationResult, error)
	Conflicts(ctx context.Context, tripID int, tankerID *int) ([]*domain.Trip, error)
	CompatibleTankers(ctx context.Context, tripID int) ([]*domain.Tanker, error)
	AssignTanker(ctx context.Context, tripID int, in services.AssignTripInput) (*services.TripOutcome, error)
	Update(ctx context.Context, tripID int, patch services.TripPatch) (*services.TripOutcome, error)
	CreateAdHoc(ctx context.Context, date time.Time, in services.NewTripInput) (*services.TripOutcome, error)
	Delete(ctx context.Context, tripID int) error
}

// TripHandler exposes per-trip validation, conflict and assignment endpoints.
type TripHandler struct {
	responder
	Trips TripService
}

func NewTripHandler(trips TripService, log *logger.Logger) *TripHandler {
	return &TripHandler{responder: responder{log: log}, Trips: trips}
}

func (h *TripHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateTripRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.TripID <= 0 || req.TankerID <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "trip_id and tanker_id are required")
		return
	}

	res, err := h.Trips.Validate(r.Context(), req.TripID, req.TankerID)
	if err != nil {
		h.writeServiceError(w, r, "validate_trip", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *TripHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	tankerID, err := queryInt(r, "tanker_id")
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	conflicts, err := h.Trips.Conflicts(r.Context(), tripID, tankerID)
	if err != nil {
		h.writeServiceError(w, r, "trip_conflicts", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, dto.ConflictsResponse{
		TripID:       tripID,
		TankerID:     tankerID,
		HasConflicts: len(conflicts) > 0,
		Conflicts:    toTripResponses(conflicts),
	})
}

func (h *TripHandler) CompatibleTankers(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	tankers, err := h.Trips.CompatibleTankers(r.Context(), tripID)
	if err != nil {
		h.writeServiceError(w, r, "trip_compatible_tankers", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toTankerResponses(tankers))
}

func (h *TripHandler) Assign(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.AssignTripRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.TankerID <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "tanker_id is required")
		return
	}

	out, err := h.Trips.AssignTanker(r.Context(), tripID, services.AssignTripInput{
		TankerID: req.TankerID,
		DriverID: req.DriverID,
	})
	if err != nil {
		h.writeServiceError(w, r, "assign_trip", err)
		return
	}
	h.writeOutcome(w, r, http.StatusOK, out)
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateTripRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.ClearTanker && req.TankerID != nil {
		h.writeError(w, r, http.StatusBadRequest, "tanker_id and clear_tanker are mutually exclusive")
		return
	}

	patch := services.TripPatch{
		TankerID:     req.TankerID,
		ClearTanker:  req.ClearTanker,
		DriverID:     req.DriverID,
		ClearDriver:  req.ClearDriver,
		Start:        req.StartTime,
		End:          req.EndTime,
		FuelBlendID:  req.FuelBlendID,
		VolumeLiters: req.VolumeLiters,
		Notes:        req.Notes,
	}
	if req.Status != nil {
		status, err := domain.ParseTripStatus(*req.Status)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		patch.Status = &status
	}

	out, err := h.Trips.Update(r.Context(), tripID, patch)
	if err != nil {
		h.writeServiceError(w, r, "update_trip", err)
		return
	}
	h.writeOutcome(w, r, http.StatusOK, out)
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}
	var req dto.CreateTripRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.CustomerID <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "customer_id is required")
		return
	}

	out, err := h.Trips.CreateAdHoc(r.Context(), date, services.NewTripInput{
		CustomerID:   req.CustomerID,
		TankerID:     req.TankerID,
		DriverID:     req.DriverID,
		Start:        req.StartTime,
		End:          req.EndTime,
		FuelBlendID:  req.FuelBlendID,
		VolumeLiters: req.VolumeLiters,
		IsMobileOp:   req.IsMobileOp,
		NeedsReturn:  req.NeedsReturn,
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, r, "create_trip", err)
		return
	}
	h.writeOutcome(w, r, http.StatusCreated, out)
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Trips.Delete(r.Context(), tripID); err != nil {
		h.writeServiceError(w, r, "delete_trip", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeOutcome sends 400 for a failed compatibility check and 409 for a
// booking overlap. The body always carries the outcome.
func (h *TripHandler) writeOutcome(w http.ResponseWriter, r *http.Request, okStatus int, out *services.TripOutcome) {
	status := okStatus
	switch {
	case out.Applied:
	case len(out.Conflicts) > 0:
		status = http.StatusConflict
	default:
		status = http.StatusBadRequest
	}
	h.writeJSON(w, r, status, toOutcomeResponse(out))
}
