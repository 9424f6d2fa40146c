package application

import (
	"context"
	"time"

	"github.com/hoteldesk/booking-system/internal/inventory/domain"
)

// StockRepository is the transactional store behind the inventory engine.
// Reserve and Release run inside row-locked transactions; the store, not the
// caller, serializes concurrent mutations of one (room, date) counter.
type StockRepository interface {
	GetRoom(ctx context.Context, roomID int64) (domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	CheckAvailability(ctx context.Context, roomID int64, date time.Time) (domain.Availability, error)
	Reserve(ctx context.Context, roomID int64, date time.Time) (int, error)
	Release(ctx context.Context, roomID int64, date time.Time) (int, error)
}
