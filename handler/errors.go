package handler

import (
	"errors"
	"net/http"
)

// HTTPError is an error carrying the status code and a stable machine key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

var (
	ErrNilResponse = errors.New("handler returned nil response")

	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrPaymentRequired     = HTTPError{Code: http.StatusPaymentRequired, Key: "upgrade_required"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnprocessableEntity = HTTPError{Code: http.StatusUnprocessableEntity, Key: "validation_error"}
	ErrInternal            = HTTPError{Code: http.StatusInternalServerError, Key: "internal_error"}
	ErrServiceUnavailable  = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)
