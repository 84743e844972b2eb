package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// ErrorKind is the machine readable category carried in every error body.
type ErrorKind string

const (
	KindValidation         ErrorKind = "ValidationError"
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindUnauthorized       ErrorKind = "Unauthorized"
	KindForbidden          ErrorKind = "Forbidden"
	KindNotFound           ErrorKind = "NotFound"
	KindConflict           ErrorKind = "Conflict"
	KindInternal           ErrorKind = "InternalError"
)

// AuthHeader is the Observatory API token header, accepted next to a bearer Authorization header.
const AuthHeader = "X-OBSERVATORY-AUTH"

// ErrorResponse is the body of every non 2xx answer.
type ErrorResponse struct {
	Kind             ErrorKind         `json:"kind"`
	Error            string            `json:"error"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
}

// MessageResponse is the body of operations that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, kind ErrorKind, message string) {
	RespondJSON(w, logger, status, ErrorResponse{Kind: kind, Error: message})
}

// RespondValidation answers 400 with a per-field message mapping.
func RespondValidation(w http.ResponseWriter, logger *slog.Logger, fields map[string]string) {
	RespondJSON(w, logger, http.StatusBadRequest, ErrorResponse{
		Kind:             KindValidation,
		Error:            "validation failed",
		ValidationErrors: fields,
	})
}

// RespondOK answers 200 with {"message": "OK"}.
func RespondOK(w http.ResponseWriter, logger *slog.Logger) {
	RespondJSON(w, logger, http.StatusOK, MessageResponse{Message: "OK"})
}

// ParseID extracts and validates the numeric ID from the request path. Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	pathValueID := r.PathValue("id")
	id, err := strconv.ParseInt(pathValueID, 10, 64)
	if err != nil || id <= 0 {
		RespondJSON(w, logger, http.StatusBadRequest, ErrorResponse{
			Kind:             KindValidation,
			Error:            fmt.Sprintf("Invalid ID: %s", pathValueID),
			ValidationErrors: map[string]string{"id": "must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}

// Token returns the session token of the request: a bearer Authorization header
// or the X-OBSERVATORY-AUTH header. Returns an empty string when neither is present.
func Token(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.Header.Get(AuthHeader))
}
