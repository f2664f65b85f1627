package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

type authService interface {
	Register(ctx context.Context, params application.RegisterParams) (application.User, error)
	Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
	Me(ctx context.Context, principal application.Principal) (application.User, error)
}

type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "Register", "error_kind", "bad_request").ErrorContext(ctx, "failed to decode register request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	_, err := h.service.Register(ctx, application.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err, "Server error")
		return
	}

	h.responder.writeMessage(ctx, w, http.StatusCreated, "User registered successfully")
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "Login", "error_kind", "bad_request").ErrorContext(ctx, "failed to decode login request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	result, err := h.service.Login(ctx, application.LoginParams{Email: req.Email, Password: req.Password})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err, "Server error")
		return
	}

	message := "User login successful"
	if result.User.IsAdmin {
		message = "Admin login successful"
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, loginResponse{
		Message:   message,
		Token:     result.Token,
		Role:      booking.RoleLabel(result.User.IsAdmin),
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User: loginUserDTO{
			ID:       result.User.ID,
			Username: result.User.Username,
			Email:    result.User.Email,
		},
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return
	}

	user, err := h.service.Me(ctx, principal)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			h.responder.writeError(ctx, w, http.StatusNotFound, "User not found")
			return
		}
		h.responder.handleServiceError(ctx, w, err, "Error fetching user details")
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, meResponse{User: profileDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      booking.DisplayRole(user.IsAdmin),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}})
}

type loginUserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	Role      string       `json:"role"`
	ExpiresAt string       `json:"expires_at"`
	User      loginUserDTO `json:"user"`
}

type profileDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type meResponse struct {
	User profileDTO `json:"user"`
}
