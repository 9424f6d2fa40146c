package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoteldesk/booking-system/internal/booking/domain"
	"github.com/hoteldesk/booking-system/pkg/lock"
)

// ConfirmRequest is a validated confirmation attempt.
type ConfirmRequest struct {
	UserID   int64
	RoomID   int64
	CheckIn  time.Time
	CheckOut time.Time
}

type Service struct {
	log       *slog.Logger
	repo      BookingRepository
	inventory InventoryClient
	locker    lock.Locker
}

func NewService(log *slog.Logger, repo BookingRepository, inventory InventoryClient, locker lock.Locker) *Service {
	return &Service{log: log, repo: repo, inventory: inventory, locker: locker}
}

// ConfirmBooking runs the confirmation saga for one (room, check-in) slot:
// distributed lock, peer availability check, tentative local write, remote
// reserve, then commit. The local transaction stays open across the remote
// call and is rolled back on any failure, so a failed attempt leaves no row.
//
// The lock serializes attempts on the same slot but can expire mid-flight;
// the inventory service's own row lock remains the authority on quantity.
func (s *Service) ConfirmBooking(ctx context.Context, req ConfirmRequest) (domain.Booking, error) {
	if req.UserID <= 0 || req.RoomID <= 0 || req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return domain.Booking{}, domain.ErrMissingFields
	}
	if !req.CheckOut.After(req.CheckIn) {
		return domain.Booking{}, domain.ErrInvalidDateRange
	}

	checkIn := req.CheckIn.Format(domain.DateLayout)
	key := lock.RoomKey(req.RoomID, checkIn)

	token, err := s.locker.Acquire(ctx, key)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return domain.Booking{}, domain.ErrLockUnavailable
		}
		return domain.Booking{}, fmt.Errorf("%w: %v", domain.ErrLockUnavailable, err)
	}
	// Released on every exit path. A failed release is logged, never
	// escalated: the TTL self-heals the key.
	defer func() {
		released, rerr := s.locker.Release(context.WithoutCancel(ctx), key, token)
		if rerr != nil {
			s.log.Error("lock release failed", "key", key, "err", rerr)
		} else if !released {
			s.log.Warn("lock expired before release", "key", key)
		}
	}()

	s.log.Info("lock acquired", "room_id", req.RoomID, "date", checkIn)

	availability, err := s.inventory.CheckAvailability(ctx, req.RoomID, req.CheckIn)
	if err != nil {
		return domain.Booking{}, err
	}
	if !availability.IsAvailable {
		s.log.Warn("no availability", "room_id", req.RoomID, "date", checkIn)
		return domain.Booking{}, domain.ErrRoomUnavailable
	}

	room, err := s.inventory.GetRoom(ctx, req.RoomID)
	if err != nil {
		return domain.Booking{}, err
	}

	booking, err := domain.NewBooking(req.UserID, req.RoomID, req.CheckIn, req.CheckOut, room.PricePerNightCents)
	if err != nil {
		return domain.Booking{}, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return domain.Booking{}, err
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := tx.InsertPending(ctx, &booking); err != nil {
		return domain.Booking{}, err
	}

	// The pending row must never outlive a failed remote reserve; the
	// deferred rollback discards it before the lock is released.
	if _, err := s.inventory.Reserve(ctx, req.RoomID, req.CheckIn); err != nil {
		return domain.Booking{}, err
	}

	booking.Status = domain.StatusConfirmed
	payload, err := json.Marshal(domain.BookingConfirmed{
		BookingID:       booking.ID,
		UserID:          booking.UserID,
		RoomID:          booking.RoomID,
		CheckInDate:     checkIn,
		CheckOutDate:    req.CheckOut.Format(domain.DateLayout),
		TotalPriceCents: booking.TotalPriceCents,
	})
	if err != nil {
		return domain.Booking{}, err
	}
	if err := tx.Confirm(ctx, &booking, "BookingConfirmed", payload); err != nil {
		return domain.Booking{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Booking{}, err
	}

	s.log.Info("booking confirmed", "booking_id", booking.ID, "room_id", req.RoomID, "user_id", req.UserID)
	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}
