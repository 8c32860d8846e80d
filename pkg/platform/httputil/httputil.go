// Package httputil holds the JSON response helpers shared by all handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// errorResponse is the uniform error body. Description is omitted for
// internal errors so database details never leak to clients.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON serializes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps sentinel errors to HTTP statuses and writes the uniform
// error body. Unrecognized errors become an opaque 500.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Description: err.Error()})
	case errors.Is(err, sentinel.ErrConflict):
		WriteJSON(w, http.StatusConflict, errorResponse{Error: "conflict", Description: err.Error()})
	case errors.Is(err, sentinel.ErrInvalidState):
		WriteJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid_state", Description: err.Error()})
	case errors.Is(err, sentinel.ErrUnavailable):
		WriteJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "unavailable", Description: err.Error()})
	default:
		WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}

// WriteBadRequest reports a client error with its description.
func WriteBadRequest(w http.ResponseWriter, description string) {
	WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Description: description})
}

// WriteUnauthorized reports a missing or invalid credential.
func WriteUnauthorized(w http.ResponseWriter, description string) {
	WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Description: description})
}

// DecodeJSON parses the request body into T. On failure it writes a 400 and
// returns ok=false; the handler should return immediately.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		WriteBadRequest(w, "malformed JSON body")
		return v, false
	}
	return v, true
}
