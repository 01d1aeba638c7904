// Package httpx provides HTTP response utilities for the JSON API surface.
package httpx

import (
	"encoding/json"
	"net/http"
)

// APIError is the error body shape returned by every failing endpoint.
type APIError struct {
	Code    int                 `json:"code"`
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// NoContent sends an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error sends an APIError body with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, APIError{
		Code:    status,
		Status:  http.StatusText(status),
		Message: message,
	})
}

// ValidationError sends a 422 body carrying a field -> reasons mapping.
func ValidationError(w http.ResponseWriter, fieldErrors map[string][]string) {
	JSON(w, http.StatusUnprocessableEntity, APIError{
		Code:    http.StatusUnprocessableEntity,
		Status:  http.StatusText(http.StatusUnprocessableEntity),
		Message: MsgUnprocessableEntity,
		Errors:  fieldErrors,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
