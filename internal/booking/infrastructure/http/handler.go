package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/hoteldesk/booking-system/internal/booking/application"
	"github.com/hoteldesk/booking-system/internal/booking/domain"
)

// BookingService is the application surface the routes expose.
type BookingService interface {
	ConfirmBooking(ctx context.Context, req application.ConfirmRequest) (domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
}

type Handler struct {
	log      *slog.Logger
	service  BookingService
	validate *validator.Validate
	tracer   trace.Tracer
	redis    *redis.Client
}

func NewHandler(log *slog.Logger, service BookingService, rdb *redis.Client) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		tracer:   otel.Tracer("booking-http"),
		redis:    rdb,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.health)
	r.Post("/bookings/confirm", h.confirmBooking)
	r.Get("/bookings", h.listBookings)
	r.Get("/bookings/{id}", h.getBooking)
	r.Get("/bookings/user/{userID}", h.listUserBookings)
	return r
}

type confirmBookingReq struct {
	UserID       int64  `json:"user_id" validate:"required,gt=0"`
	RoomID       int64  `json:"room_id" validate:"required,gt=0"`
	CheckInDate  string `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"check_out_date" validate:"required,datetime=2006-01-02"`
}

type bookingDTO struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	RoomID          int64  `json:"room_id"`
	CheckInDate     string `json:"check_in_date"`
	CheckOutDate    string `json:"check_out_date"`
	TotalPriceCents int64  `json:"total_price_cents"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toDTO(b domain.Booking) bookingDTO {
	return bookingDTO{
		ID:              b.ID,
		UserID:          b.UserID,
		RoomID:          b.RoomID,
		CheckInDate:     b.CheckInDate.Format(domain.DateLayout),
		CheckOutDate:    b.CheckOutDate.Format(domain.DateLayout),
		TotalPriceCents: b.TotalPriceCents,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	redisStatus := "connected"
	if err := h.redis.Ping(r.Context()).Err(); err != nil {
		redisStatus = "error: " + err.Error()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "booking",
		"redis":   redisStatus,
	})
}

func (h *Handler) confirmBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ConfirmBooking")
	defer span.End()

	var req confirmBookingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	checkIn, _ := time.Parse(domain.DateLayout, req.CheckInDate)
	checkOut, _ := time.Parse(domain.DateLayout, req.CheckOutDate)

	booking, err := h.service.ConfirmBooking(ctx, application.ConfirmRequest{
		UserID:   req.UserID,
		RoomID:   req.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Booking confirmed successfully",
		"booking": toDTO(booking),
	})
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid booking id")
		return
	}
	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "booking": toDTO(booking)})
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListBookings(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(bookings),
		"bookings": toDTOs(bookings),
	})
}

func (h *Handler) listUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	bookings, err := h.service.ListUserBookings(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "bookings": toDTOs(bookings)})
}

func toDTOs(bookings []domain.Booking) []bookingDTO {
	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toDTO(b))
	}
	return out
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		writeFailure(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeFailure(w, http.StatusBadRequest, "Check-out date must be after check-in date")
	case errors.Is(err, domain.ErrRoomUnavailable):
		writeFailure(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrLockUnavailable):
		writeFailure(w, http.StatusServiceUnavailable, "Could not acquire lock for booking. Please try again.")
	case errors.Is(err, domain.ErrPeerUnavailable):
		writeFailure(w, http.StatusServiceUnavailable, "Inventory service unavailable")
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "Booking not found")
	default:
		h.log.Error("booking request failed", "err", err)
		writeFailure(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
