package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Contractual messages for each error kind.
const (
	MsgUnauthorized          = "Authentication credentials is invalid."
	MsgForbidden             = "Don't have necessary permissions for this resource."
	MsgNotFound              = "The URL is not recognized or endpoint is valid but the resource itself does not exist."
	MsgConflict              = "The request could not be completed due to a conflict with the current state of the target resource."
	MsgUnprocessableEntity   = "The request was well-formed but was unable to be followed due to semantic errors."
	MsgInternalServerError   = "Something went wrong."
)

// RespondError maps domain errors to their contractual HTTP responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		Error(w, http.StatusUnauthorized, MsgUnauthorized)
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusForbidden, MsgForbidden)
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, ErrConflict):
		Error(w, http.StatusConflict, MsgConflict)
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusUnprocessableEntity, MsgUnprocessableEntity)
	default:
		Error(w, http.StatusInternalServerError, MsgInternalServerError)
	}
}
