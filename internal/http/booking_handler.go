package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

type bookingService interface {
	ListBookings(ctx context.Context, principal application.Principal) ([]application.Booking, error)
	ListOwnBookings(ctx context.Context, principal application.Principal) ([]application.Booking, error)
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	UpdateBooking(ctx context.Context, params application.UpdateBookingParams) error
	UpdateBookingStatus(ctx context.Context, params application.UpdateBookingStatusParams) (booking.Status, error)
	DeleteBooking(ctx context.Context, principal application.Principal, id int64) error
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// List handles GET /api/bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListBookings)
}

// ListOwn handles GET /api/bookings/user.
func (h *BookingHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListOwnBookings)
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, application.Principal) ([]application.Booking, error)) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return
	}

	bookings, err := fetch(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err, "Error fetching bookings")
		return
	}

	data := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		data = append(data, toBookingDTO(b))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, bookingListResponse{
		Message: "Bookings fetched successfully",
		Data:    data,
	})
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return
	}

	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "Create", "error_kind", "bad_request").ErrorContext(ctx, "failed to decode booking request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	created, err := h.service.CreateBooking(ctx, application.CreateBookingParams{
		Principal:   principal,
		Name:        req.Name,
		BookingDate: req.BookingDate,
		TimeSlot:    req.TimeSlot,
		RoomNumber:  req.RoomNumber.String(),
	})
	if err != nil {
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			h.responder.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
				Message: vErr.Error(),
				Errors:  vErr.FieldErrors,
				Received: receivedBooking{
					Name:        req.Name,
					BookingDate: req.BookingDate,
					TimeSlot:    req.TimeSlot,
					RoomNumber:  req.RoomNumber.String(),
				},
			})
			return
		}
		h.responder.handleServiceError(ctx, w, err, "Error creating booking")
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, createBookingResponse{
		Message: "Booking added successfully",
		ID:      created.ID,
		Booking: toBookingDTO(created),
	})
}

// Update handles PUT /api/bookings/{id}.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgInvalidBooking)
		return
	}

	var req updateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "Update", "error_kind", "bad_request").ErrorContext(ctx, "failed to decode booking update", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	err := h.service.UpdateBooking(ctx, application.UpdateBookingParams{
		Principal:   principal,
		BookingID:   id,
		Name:        req.Name,
		BookingDate: req.BookingDate,
		RoomNumber:  req.RoomNumber.String(),
		Status:      req.Status,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err, "Error updating booking")
		return
	}

	h.responder.writeMessage(ctx, w, http.StatusOK, "Booking updated successfully")
}

// UpdateStatus handles PUT /api/bookings/{id}/status.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgInvalidBooking)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "UpdateStatus", "error_kind", "bad_request").ErrorContext(ctx, "failed to decode status update", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	status, err := h.service.UpdateBookingStatus(ctx, application.UpdateBookingStatusParams{
		Principal: principal,
		BookingID: id,
		Status:    req.Status,
	})
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			h.responder.writeError(ctx, w, http.StatusNotFound, "Booking not found")
			return
		}
		h.responder.handleServiceError(ctx, w, err, "Failed to update status")
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, statusResponse{
		Message:   "Status updated successfully",
		BookingID: id,
		NewStatus: status.String(),
	})
}

// Delete handles DELETE /api/bookings/{id}.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.writeTokenError(ctx, w, application.ErrTokenMissing)
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, msgInvalidBooking)
		return
	}

	if err := h.service.DeleteBooking(ctx, principal, id); err != nil {
		h.responder.handleServiceError(ctx, w, err, "Error deleting booking")
		return
	}

	h.responder.writeMessage(ctx, w, http.StatusOK, "Booking deleted successfully")
}

type bookingDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	BookingDate string `json:"booking_date"`
	TimeSlot    string `json:"time_slot"`
	RoomNumber  string `json:"room_number"`
	Status      string `json:"status"`
	UserID      int64  `json:"user_id"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	return bookingDTO{
		ID:          b.ID,
		Name:        b.Name,
		BookingDate: b.BookingDate,
		TimeSlot:    b.TimeSlot,
		RoomNumber:  b.RoomNumber,
		Status:      b.Status.String(),
		UserID:      b.UserID,
	}
}

type bookingListResponse struct {
	Message string       `json:"message"`
	Data    []bookingDTO `json:"data"`
}

type receivedBooking struct {
	Name        string `json:"name"`
	BookingDate string `json:"booking_date"`
	TimeSlot    string `json:"time_slot"`
	RoomNumber  string `json:"room_number"`
}

type createBookingResponse struct {
	Message string     `json:"message"`
	ID      int64      `json:"id"`
	Booking bookingDTO `json:"booking"`
}

type statusResponse struct {
	Message   string `json:"message"`
	BookingID int64  `json:"bookingId"`
	NewStatus string `json:"newStatus"`
}
