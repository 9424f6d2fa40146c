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

	"github.com/hoteldesk/booking-system/internal/inventory/domain"
)

// InventoryService is the application surface the routes expose.
type InventoryService interface {
	GetRoom(ctx context.Context, roomID int64) (domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	Check(ctx context.Context, roomID int64, date time.Time) (domain.Availability, error)
	Reserve(ctx context.Context, roomID int64, date time.Time) (int, error)
	Release(ctx context.Context, roomID int64, date time.Time) (int, error)
}

type Handler struct {
	log     *slog.Logger
	service InventoryService
}

func NewHandler(log *slog.Logger, service InventoryService) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.health)
	r.Get("/rooms", h.listRooms)
	r.Get("/rooms/{id}", h.getRoom)
	r.Get("/rooms/{id}/availability", h.checkAvailability)
	r.Post("/rooms/{id}/reserve", h.reserveRoom)
	r.Post("/rooms/{id}/release", h.releaseRoom)
	return r
}

type dateReq struct {
	Date string `json:"date"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": "inventory"})
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "rooms": rooms})
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}
	room, err := h.service.GetRoom(r.Context(), roomID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "room": room})
}

func (h *Handler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeFailure(w, http.StatusBadRequest, "Date parameter required")
		return
	}
	date, err := time.Parse(domain.DateLayout, dateStr)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	a, err := h.service.Check(r.Context(), roomID, date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"room_id":            roomID,
		"date":               dateStr,
		"available_quantity": a.AvailableQuantity,
		"is_available":       a.IsAvailable(),
	})
}

func (h *Handler) reserveRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}
	date, ok := h.bodyDate(w, r)
	if !ok {
		return
	}

	remaining, err := h.service.Reserve(r.Context(), roomID, date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"message":            "Room reserved successfully",
		"remaining_quantity": remaining,
	})
}

func (h *Handler) releaseRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}
	date, ok := h.bodyDate(w, r)
	if !ok {
		return
	}

	available, err := h.service.Release(r.Context(), roomID, date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"message":            "Room released successfully",
		"available_quantity": available,
	})
}

func (h *Handler) roomID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid room id")
		return 0, false
	}
	return id, true
}

func (h *Handler) bodyDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	var req dateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
		writeFailure(w, http.StatusBadRequest, "Date required")
		return time.Time{}, false
	}
	date, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid date format")
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		writeFailure(w, http.StatusNotFound, "Room not found")
	case errors.Is(err, domain.ErrAvailabilityNotFound):
		writeFailure(w, http.StatusNotFound, "Availability record not found")
	case errors.Is(err, domain.ErrNoAvailability):
		writeFailure(w, http.StatusConflict, "No availability for this date")
	case errors.Is(err, domain.ErrAtCapacity):
		writeFailure(w, http.StatusBadRequest, "Cannot release, already at maximum capacity")
	default:
		h.log.Error("inventory request failed", "err", err)
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
