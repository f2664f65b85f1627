package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/room-booking/internal/application"
)

const (
	msgBadRequestBody  = "Invalid request body"
	msgInvalidBooking  = "Invalid booking id"
	msgInvalidUser     = "Invalid user id"
	msgAccessDenied    = "Access denied"
	msgAdminOnly       = "Access denied. Admin only."
	msgSlotTaken       = "This room is already booked for the selected time slot"
	msgRoomUnavailable = "Room is not available for the selected time slot"
	msgInvalidStatus   = "Invalid status value"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeMessage(ctx context.Context, w http.ResponseWriter, status int, message string) {
	r.writeJSON(ctx, w, status, messageResponse{Message: message})
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// writeServerError reports an unexpected failure with its detail in "error".
func (r responder) writeServerError(ctx context.Context, w http.ResponseWriter, message string, err error) {
	resp := errorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", http.StatusInternalServerError, "error", err)
	r.writeJSON(ctx, w, http.StatusInternalServerError, resp)
}

// handleServiceError maps application errors to their HTTP form. internal is
// the message used for unexpected failures.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error, internal string) {
	var (
		vErr *application.ValidationError
		sErr *application.StatusError
	)
	switch {
	case err == nil:
		r.writeServerError(ctx, w, internal, errors.New("unknown error"))
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Message: vErr.Error(), Errors: vErr.FieldErrors})
	case errors.As(err, &sErr):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			Message:       msgInvalidStatus,
			Received:      sErr.Received,
			AllowedValues: sErr.Allowed,
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeError(ctx, w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeError(ctx, w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, application.ErrSlotTaken):
		r.writeError(ctx, w, http.StatusBadRequest, msgSlotTaken)
	case errors.Is(err, application.ErrRoomUnavailable):
		r.writeError(ctx, w, http.StatusBadRequest, msgRoomUnavailable)
	case errors.Is(err, application.ErrAccessDenied):
		r.writeError(ctx, w, http.StatusForbidden, msgAccessDenied)
	case errors.Is(err, application.ErrNotFound):
		r.writeError(ctx, w, http.StatusNotFound, "Not found")
	case isTokenError(err):
		r.writeTokenError(ctx, w, err)
	default:
		r.writeServerError(ctx, w, internal, err)
	}
}

func isTokenError(err error) bool {
	return errors.Is(err, application.ErrTokenMissing) ||
		errors.Is(err, application.ErrTokenExpired) ||
		errors.Is(err, application.ErrTokenInvalid) ||
		errors.Is(err, application.ErrTokenRevoked)
}

func (r responder) writeTokenError(ctx context.Context, w http.ResponseWriter, err error) {
	resp := errorResponse{Code: "INVALID_TOKEN", Message: "Invalid token"}
	switch {
	case errors.Is(err, application.ErrTokenMissing):
		resp = errorResponse{Code: "NO_TOKEN", Message: "Access denied. No token provided."}
	case errors.Is(err, application.ErrTokenExpired):
		resp = errorResponse{Code: "TOKEN_EXPIRED", Message: "Token has expired"}
	case errors.Is(err, application.ErrTokenRevoked):
		resp = errorResponse{Code: "TOKEN_REVOKED", Message: "Token has been revoked"}
	}
	r.writeJSON(ctx, w, http.StatusUnauthorized, resp)
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Message       string            `json:"message"`
	Code          string            `json:"code,omitempty"`
	Error         string            `json:"error,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	Received      any               `json:"received,omitempty"`
	AllowedValues []string          `json:"allowedValues,omitempty"`
}
