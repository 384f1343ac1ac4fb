package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/store"
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

// genericMessages replace the message of server-side errors so causes never
// reach clients.
var genericMessages = map[domainerrors.Code]string{
	domainerrors.CodeUpstreamUnavailable: "The book catalog is unavailable, please try again later",
	domainerrors.CodePersistence:         "Internal server error",
	domainerrors.CodeInternal:            "Internal server error",
}

// RegisterErrorHandler configures huma to use domain errors. Server-side
// failures are logged with their cause and answered with a generic message.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromDomain(domainErr, logger)
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return fromDomain(domainerrors.Wrap(err, statusToCode(storeErr.HTTPCode()), storeErr.Message), logger)
			}
		}

		out := &APIError{
			status:  status,
			Code:    string(statusToCode(status)),
			Message: message,
		}
		// Request schema violations are plain client errors here.
		if status == http.StatusUnprocessableEntity {
			out.status = http.StatusBadRequest
			out.Details = schemaDetails(errs)
		}
		return out
	}
}

func schemaDetails(errs []error) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		var d *huma.ErrorDetail
		if errors.As(err, &d) {
			details[d.Location] = d.Message
		}
	}
	return details
}

func fromDomain(err *domainerrors.Error, logger *slog.Logger) *APIError {
	out := &APIError{
		status:  err.HTTPStatus(),
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
	if err.Code.IsServerSide() {
		logger.Error("request failed", "code", err.Code, "error", err)
		out.Message = genericMessages[err.Code]
		if out.Message == "" {
			out.Message = "Internal server error"
		}
		out.Details = nil
	}
	return out
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) domainerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domainerrors.CodeValidation
	case http.StatusUnauthorized:
		return domainerrors.CodeUnauthorized
	case http.StatusForbidden:
		return domainerrors.CodeForbidden
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusConflict:
		return domainerrors.CodeConflict
	case http.StatusTooManyRequests:
		return domainerrors.CodeRateLimited
	case http.StatusBadGateway:
		return domainerrors.CodeUpstreamUnavailable
	default:
		return domainerrors.CodeInternal
	}
}
