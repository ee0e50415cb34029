// Package httputil writes JSON responses and maps domain errors onto HTTP
// status codes.
package httputil

import (
	"encoding/json"
	"net/http"
	"time"

	dErrors "channelling/pkg/domain-errors"
)

// ErrorResponse is the body of every error response. Description is omitted
// for internal errors so no persistence detail leaks to callers.
type ErrorResponse struct {
	Error       string    `json:"error"`
	Description string    `json:"error_description,omitempty"`
	Errors      []string  `json:"errors,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Status      int       `json:"status"`
}

// now is swapped in tests.
var now = time.Now

// StatusFor returns the HTTP status for an error code.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeDuplicateKey, dErrors.CodeStaleWrite:
		return http.StatusUnprocessableEntity
	case dErrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as an ErrorResponse. Uncoded errors are reported as
// internal errors.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	var description string
	var fields []string
	if de, ok := dErrors.As(err); ok {
		code = de.Code
		description = de.Message
		fields = de.Fields
	}

	status := StatusFor(code)
	if status == http.StatusInternalServerError {
		code = dErrors.CodeInternal
		description = ""
		fields = nil
	}

	WriteJSON(w, status, ErrorResponse{
		Error:       string(code),
		Description: description,
		Errors:      fields,
		Timestamp:   now().UTC(),
		Status:      status,
	})
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes the request body into dst. Malformed bodies become
// CodeBadRequest errors.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
