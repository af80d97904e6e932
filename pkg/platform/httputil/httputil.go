// Package httputil centralizes JSON response writing so every handler speaks
// the same error envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "aos/pkg/domain-errors"
)

// statusOf maps domain error codes to HTTP statuses.
func statusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeDuplicateIdentity, dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnknownRole, dErrors.CodeInvalidStatus, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeRoleNotEligible:
		return http.StatusUnprocessableEntity
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders a domain error as a JSON envelope. Server-side failures
// omit the description so internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := statusOf(code)

	body := map[string]string{"error": string(code)}
	if status < http.StatusInternalServerError {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body["error_description"] = de.Message
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders a payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
