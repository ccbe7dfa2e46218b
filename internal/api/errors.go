package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/http/response"
	"github.com/larderapp/larder-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		var details []string
		for _, err := range errs {
			if err == nil {
				continue
			}

			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromDomainError(domainErr)
			}

			// Store "not found" errors that escaped a service become 404.
			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.HTTPCode() == http.StatusNotFound {
				return &APIError{
					status:  http.StatusNotFound,
					Code:    string(domainerrors.CodeNotFound),
					Message: storeErr.Message,
				}
			}

			// Request validation failures from huma itself.
			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				details = append(details, detailString(detail))
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    response.CodeForStatus(status),
			Message: message,
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

func fromDomainError(err *domainerrors.Error) *APIError {
	return &APIError{
		status:  err.HTTPStatus(),
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
}

// detailString renders a huma error detail without the offending value,
// which huma prints as <nil> when it could not be parsed.
func detailString(d *huma.ErrorDetail) string {
	if d.Location == "" {
		return d.Message
	}
	return fmt.Sprintf("%s (%s)", d.Message, d.Location)
}
