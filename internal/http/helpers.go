package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	applog "cashflow/internal/log"
)

const dateLayout = "2006-01-02"

// decodeJSON reads the request body into v. A malformed body is a client
// error and the caller should bail out.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.NewDate(t.Year(), t.Month(), t.Day()), nil
}

// rejected maps a guard failure to a response. Validation guards leave the
// ledger untouched, so the client keeps its current view; unknown IDs are a
// no-op rather than an error.
func (s *Server) rejected(w http.ResponseWriter, op string, err error) {
	mutationFailures.WithLabelValues(op).Inc()

	if errors.Is(err, ledger.ErrNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidColor),
		errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrInvalidDate):
		// guard errors keep 422
	default:
		status = http.StatusBadRequest
	}

	s.logger.Warn("mutation rejected",
		applog.FieldOperation, op,
		applog.FieldError, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
