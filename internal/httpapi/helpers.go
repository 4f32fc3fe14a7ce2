package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"coopra.org/internal/approval"
	"coopra.org/internal/audit"
	"coopra.org/internal/coop"
	"coopra.org/internal/member"
	"coopra.org/internal/product"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData frames domain payloads in the `{message, data}` envelope the
// frontend expects.
func writeData(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, map[string]any{
		"message": message,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"message": msg,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleDomainError maps domain errors onto HTTP codes: validation to 400,
// missing resources to 404, and every illegal state transition to 409 so
// terminal requests and already-decided cooperatives surface as conflicts.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, coop.ErrInvalidInput),
		errors.Is(err, approval.ErrInvalidInput),
		errors.Is(err, approval.ErrNotesRequired),
		errors.Is(err, member.ErrInvalidInput),
		errors.Is(err, product.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, approval.ErrMemberCannotDecide):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, coop.ErrNotFound),
		errors.Is(err, approval.ErrNotFound),
		errors.Is(err, member.ErrNotFound),
		errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, coop.ErrInvalidTransition),
		errors.Is(err, coop.ErrNotApproved),
		errors.Is(err, approval.ErrTerminal),
		errors.Is(err, approval.ErrDuplicateDecision),
		errors.Is(err, member.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
