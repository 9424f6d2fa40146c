package application

import (
	"context"
	"time"

	"github.com/hoteldesk/booking-system/internal/booking/domain"
)

// BookingTx is one confirmation transaction. InsertPending gives the row an
// identity without making it durable; only Commit does that. Rollback after
// Commit is a no-op, so callers can defer it unconditionally.
type BookingTx interface {
	InsertPending(ctx context.Context, b *domain.Booking) error
	Confirm(ctx context.Context, b *domain.Booking, eventType string, payload []byte) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type BookingRepository interface {
	Begin(ctx context.Context) (BookingTx, error)
	Get(ctx context.Context, id int64) (domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
}

// RoomInfo is the peer's view of a room, as much of it as the saga needs.
type RoomInfo struct {
	ID                 int64
	RoomNumber         string
	RoomType           string
	PricePerNightCents int64
	TotalQuantity      int
}

// AvailabilityInfo is the peer's answer to an availability check.
type AvailabilityInfo struct {
	AvailableQuantity int
	IsAvailable       bool
}

// InventoryClient talks to the remote inventory service. Implementations
// must bound every call with a fixed timeout and surface transport failures
// as domain.ErrPeerUnavailable.
type InventoryClient interface {
	CheckAvailability(ctx context.Context, roomID int64, date time.Time) (AvailabilityInfo, error)
	GetRoom(ctx context.Context, roomID int64) (RoomInfo, error)
	Reserve(ctx context.Context, roomID int64, date time.Time) (int, error)
}
