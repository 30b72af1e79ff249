package handler

import (
	"encoding/json"
	"net/http"

	"github.com/osse101/CycleVars_Go/internal/logger"
)

// Upper bound for JSON request bodies
const maxRequestBodyBytes = 1 << 16

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// DecodeAndValidateRequest decodes a JSON request body into req and validates it.
// If it returns an error the response has already been written and the handler should return.
//
// Example usage:
//
//	var req SetValueRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Set value"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		log.Warn(LogMsgDecodeFailed, "action", actionName, "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}

	return nil
}

// GetOptionalQueryParam retrieves an optional query parameter from the request
func GetOptionalQueryParam(r *http.Request, paramName string, defaultValue string) string {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		return defaultValue
	}
	return value
}

// getPlayerParam reads an optional player id and checks it is a UUID.
// If ok is false the response has already been written.
func getPlayerParam(w http.ResponseWriter, player string) (string, bool) {
	if player == "" {
		return "", true
	}
	if err := GetValidator().ValidateVar(player, "uuid"); err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidPlayerID)
		return "", false
	}
	return player, true
}
