package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"time"
)

var errEmptyBody = errors.New("empty body")

// responder carries the logger shared by every handler's JSON helpers.
type responder struct {
	log *logger.Logger
}

func (h responder) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error(r.Context(), "encode_response", "Encoding response failed", err, map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}
}

func (h responder) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps typed domain errors onto status codes. Anything
// untyped is logged and reported as a bare 500.
func (h responder) writeServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case domain.IsNotFound(err):
		h.writeError(w, r, http.StatusNotFound, err.Error())
	case domain.IsValidation(err):
		h.writeError(w, r, http.StatusBadRequest, err.Error())
	case domain.IsConflict(err):
		h.writeError(w, r, http.StatusConflict, err.Error())
	default:
		h.log.Error(r.Context(), action, "Request failed", err, map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		h.writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads exactly one JSON object with no unknown fields. An empty
// body yields errEmptyBody so callers with optional bodies can accept it.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

func (h responder) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		if errors.Is(err, errEmptyBody) {
			h.writeError(w, r, http.StatusBadRequest, "request body is required")
			return false
		}
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h responder) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		h.writeError(w, r, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h responder) pathDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	d, ok := parseDate(r.PathValue(name))
	if !ok {
		h.writeError(w, r, http.StatusBadRequest, name+" must be a date (YYYY-MM-DD)")
	}
	return d, ok
}

func parseDate(raw string) (time.Time, bool) {
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return nil, errors.New(name + " must be a positive integer")
	}
	return &v, nil
}
