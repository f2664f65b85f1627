package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

type userService interface {
	ListUsers(ctx context.Context, principal application.Principal) ([]application.User, error)
	UpdateUser(ctx context.Context, params application.UpdateUserParams) error
	UpdateUserRole(ctx context.Context, params application.UpdateUserRoleParams) error
	DeleteUser(ctx context.Context, principal application.Principal, id int64) error
}

type UserHandler struct {
	service   userService
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(service userService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return
	}

	users, err := h.service.ListUsers(ctx, principal)
	if err != nil {
		if errors.Is(err, application.ErrAccessDenied) {
			h.responder.writeError(ctx, w, http.StatusForbidden, msgAdminOnly)
			return
		}
		h.responder.handleServiceError(ctx, w, err, "Server error")
		return
	}

	data := make([]userDTO, 0, len(users))
	for _, u := range users {
		data = append(data, userDTO{ID: u.ID, Username: u.Username, Email: u.Email, Role: booking.RoleLabel(u.IsAdmin)})
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, userListResponse{Data: data})
}

// Update handles PUT /api/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "Update", "error_kind", "bad_request").ErrorContext(ctx, "failed to decode user update", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	err := h.service.UpdateUser(ctx, application.UpdateUserParams{
		Principal: principal,
		UserID:    id,
		Username:  req.Username,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err, "Server error")
		return
	}
	h.responder.writeMessage(ctx, w, http.StatusOK, "User updated successfully")
}

// UpdateRole handles PATCH /api/users/{id}/role.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "UpdateRole", "error_kind", "bad_request").ErrorContext(ctx, "failed to decode role update", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	err := h.service.UpdateUserRole(ctx, application.UpdateUserRoleParams{
		Principal: principal,
		UserID:    id,
		Role:      req.Role,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err, "Server error")
		return
	}
	h.responder.writeMessage(ctx, w, http.StatusOK, "User role updated successfully")
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(ctx, principal, id); err != nil {
		h.responder.handleServiceError(ctx, w, err, "Server error")
		return
	}
	h.responder.writeMessage(ctx, w, http.StatusOK, "User deleted successfully")
}

// target resolves the principal and the {id} parameter, writing the error
// response itself when either is missing.
func (h *UserHandler) target(w http.ResponseWriter, r *http.Request) (application.Principal, int64, bool) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return application.Principal{}, 0, false
	}
	if !principal.IsAdmin {
		h.responder.writeError(ctx, w, http.StatusForbidden, msgAccessDenied)
		return application.Principal{}, 0, false
	}
	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgInvalidUser)
		return application.Principal{}, 0, false
	}
	return principal, id, true
}

type userDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type userListResponse struct {
	Data []userDTO `json:"data"`
}
