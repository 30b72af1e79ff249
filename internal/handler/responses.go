package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	e := acquireEncoder()
	defer e.release()

	// Encode before writing headers so a failure can still become a 500
	if err := e.enc.Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"` + ErrMsgGenericServerError + `"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := e.buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs err and maps it to a user-facing response
func respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(LogMsgServiceError, "operation", op, "error", err)
	} else {
		log.Warn(LogMsgServiceError, "operation", op, "error", err)
	}
	respondError(w, status, msg)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"
	ErrMsgInvalidInputError  = "Invalid request. Please check your inputs."
	ErrMsgDefinitionNotFound = "Variable is not defined"
	ErrMsgValueNotFoundError = "Variable has no value in the current cycle"
	ErrMsgConfigurationError = "Variable definitions are invalid"
	ErrMsgUnavailableError   = "Store is temporarily unavailable. Please try again later."
	ErrMsgDuplicateKeyError  = "Variable definitions contain a duplicate key"
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and messages
func mapServiceErrorToUserMessage(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrMsgUnknownError
	case errors.Is(err, domain.ErrDefinitionNotFound):
		return http.StatusNotFound, ErrMsgDefinitionNotFound
	case errors.Is(err, domain.ErrValueNotFound):
		return http.StatusNotFound, ErrMsgValueNotFoundError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusUnprocessableEntity, ErrMsgDuplicateKeyError
	case domain.IsConfiguration(err):
		return http.StatusUnprocessableEntity, ErrMsgConfigurationError
	case domain.IsTransient(err):
		return http.StatusServiceUnavailable, ErrMsgUnavailableError
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
