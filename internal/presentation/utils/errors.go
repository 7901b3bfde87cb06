package utils

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
)

// StatusFor maps a domain error to the HTTP status and the message shown to
// the client. Anything unrecognised is a 500 with a generic message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidDepartment):
		return http.StatusBadRequest, "Invalid input or department."
	case errors.Is(err, domain.ErrInvalidAction):
		return http.StatusBadRequest, "Invalid action."
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "Email already exists."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email, department, or password."
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "Document not found."
	case errors.Is(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, "QR Code not found."
	default:
		return http.StatusInternalServerError, "An unexpected error occurred."
	}
}

// WriteTextError answers an HTML route with a plain-text error. Server-side
// failures are logged with the request id.
func WriteTextError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	status, msg := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(logging.RequestResponse, logging.ExternalService, "request failed", map[logging.ExtraKey]any{
			logging.Method:       r.Method,
			logging.Path:         r.URL.Path,
			logging.RequestID:    middleware.GetReqID(r.Context()),
			logging.ErrorMessage: err.Error(),
		})
	}
	http.Error(w, msg, status)
}
