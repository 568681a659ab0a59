package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope of every JSON response.
type JSONResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus overrides the status code.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

// JSON renders v as {"data": v} with 200.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders an error envelope with the given status and detail.
func JSONError(status int, detail ErrorDetail) Response {
	return &jsonResponse{status: status, body: JSONResponse{Error: &detail}}
}

type emptyResponse struct{ status int }

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty responds with a status code and no body.
func Empty(status int) Response {
	return emptyResponse{status: status}
}

type errorResponse struct{ err error }

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

// Fail hands err to the wrapping ErrorHandler.
func Fail(err error) Response {
	return errorResponse{err: err}
}
