package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/room-booking/internal/application"
)

type roomService interface {
	ListAvailableRooms(ctx context.Context, principal application.Principal) ([]application.Room, error)
	CheckAvailability(ctx context.Context, params application.CheckAvailabilityParams) ([]application.Room, error)
}

type RoomHandler struct {
	service   roomService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

// Available handles GET /api/rooms/available.
func (h *RoomHandler) Available(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return
	}

	rooms, err := h.service.ListAvailableRooms(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err, "Error fetching rooms")
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, roomListResponse{Data: toRoomDTOs(rooms)})
}

// CheckAvailability handles GET /api/rooms/check-availability?date=&time_slot=.
func (h *RoomHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return
	}

	query := r.URL.Query()
	rooms, err := h.service.CheckAvailability(ctx, application.CheckAvailabilityParams{
		Principal: principal,
		Date:      query.Get("date"),
		TimeSlot:  query.Get("time_slot"),
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err, "Error checking room availability")
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, roomListResponse{Data: toRoomDTOs(rooms)})
}

type roomDTO struct {
	RoomNumber string `json:"room_number"`
	Status     string `json:"status"`
}

type roomListResponse struct {
	Data []roomDTO `json:"data"`
}

func toRoomDTOs(rooms []application.Room) []roomDTO {
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, roomDTO{RoomNumber: room.RoomNumber, Status: room.Status})
	}
	return out
}
