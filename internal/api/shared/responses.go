package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondWithJSON writes a JSON response with the given status code and body.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithSuccess writes an enveloped success response. Message may be
// empty; data may be nil for message-only responses.
func RespondWithSuccess(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	RespondWithJSON(w, r, status, Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// RespondWithError writes an enveloped error response with the given status
// code and message. The message must already be safe for clients.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}
	slog.Log(r.Context(), logLevel, "API error response",
		"status_code", status,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, Response{
		Success: false,
		Message: message,
	})
}

// RespondWithValidationErrors writes a 400 envelope carrying the structured
// field errors.
func RespondWithValidationErrors(w http.ResponseWriter, r *http.Request, errs []ValidationError) {
	slog.Debug("request validation failed",
		"trace_id", GetTraceID(r.Context()),
		"path", r.URL.Path,
		"errors", len(errs))

	RespondWithJSON(w, r, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}
