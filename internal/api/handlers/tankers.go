package handlers

import (
	"context"
	"net/http"
	"strconv"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/ports"
)

type TankerFinder interface {
	FindCompatibleTankers(ctx context.Context, customer *domain.Customer, fuelBlendID *int, volume float64) ([]*domain.Tanker, error)
}

// TankerHandler answers fleet lookups that are not tied to a stored trip.
type TankerHandler struct {
	responder
	Customers ports.CustomerRepository
	Finder    TankerFinder
}

func NewTankerHandler(customers ports.CustomerRepository, finder TankerFinder, log *logger.Logger) *TankerHandler {
	return &TankerHandler{responder: responder{log: log}, Customers: customers, Finder: finder}
}

func (h *TankerHandler) Compatible(w http.ResponseWriter, r *http.Request) {
	customerID, err := queryInt(r, "customer_id")
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if customerID == nil {
		h.writeError(w, r, http.StatusBadRequest, "customer_id is required")
		return
	}
	blendID, err := queryInt(r, "fuel_blend_id")
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	volume := 0.0
	if raw := r.URL.Query().Get("volume"); raw != "" {
		volume, err = strconv.ParseFloat(raw, 64)
		if err != nil || volume < 0 {
			h.writeError(w, r, http.StatusBadRequest, "volume must be a non-negative number")
			return
		}
	}

	customer, err := h.Customers.GetCustomer(r.Context(), *customerID)
	if err != nil {
		h.writeServiceError(w, r, "compatible_tankers", err)
		return
	}

	tankers, err := h.Finder.FindCompatibleTankers(r.Context(), customer, blendID, volume)
	if err != nil {
		h.writeServiceError(w, r, "compatible_tankers", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toTankerResponses(tankers))
}
