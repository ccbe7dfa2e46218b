// Package response writes the versioned JSON envelope for handlers that sit
// outside huma, such as the raw image route.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/store"
)

// Version is the envelope format version carried in every response.
const Version = 1

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{V: Version, Success: true, Data: data}
}

// Fail builds an error envelope.
func Fail(code, message string, details any) Envelope {
	return Envelope{
		V:       Version,
		Success: false,
		Error:   message,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	JSON(w, status, Fail(code, message, nil), logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, string(domainerrors.CodeValidation), message, logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain and store errors keep their status, unknown errors become 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		JSON(w, domainErr.HTTPStatus(), Fail(string(domainErr.Code), domainErr.Message, domainErr.Details), logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) && storeErr.HTTPCode() < http.StatusInternalServerError {
		Error(w, storeErr.HTTPCode(), CodeForStatus(storeErr.HTTPCode()), storeErr.Message, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	Error(w, http.StatusInternalServerError, string(domainerrors.CodeInternal), "internal server error", logger)
}

// CodeForStatus maps an HTTP status to the closest domain error code.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthenticated)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
