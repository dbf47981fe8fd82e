package web

// errors.go provides unified error response handling for the API.
//
// Every handler funnels failures through respondError, which logs the
// technical error with the chi request ID and maps it to a stable
// machine code plus an HTTP status. Clients branch on the code, not on
// message text.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mquintana/itemcheck/internal/auth"
	"github.com/mquintana/itemcheck/internal/session"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError logs the technical error and writes the mapped JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := mapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Code: code})
}

// mapError translates service errors into status, code and client message.
func mapError(err error) (status int, code, msg string) {
	var (
		catErr    *session.CategorizationError
		uploadErr *session.UploadError
	)

	switch {
	case errors.As(err, &uploadErr):
		return http.StatusBadRequest, "UPLOAD_REJECTED", uploadErr.Error()
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND", "session not found or expired"
	case errors.Is(err, session.ErrNoCategorization):
		return http.StatusConflict, "NO_CATEGORIZATION", "assign variable roles before validating"
	case errors.Is(err, session.ErrNoReport):
		return http.StatusNotFound, "REPORT_NOT_FOUND", "run a validation before requesting the report"
	case errors.As(err, &catErr):
		return http.StatusUnprocessableEntity, "INVALID_CATEGORIZATION", catErr.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

// respondBadRequest writes a 400 with the given code and message.
func respondBadRequest(w http.ResponseWriter, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Code: code})
}

// writeJSON encodes v as JSON. Encoding errors are logged since headers
// are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
