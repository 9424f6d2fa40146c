package application

import (
	"context"
	"time"

	"github.com/hoteldesk/booking-system/internal/inventory/domain"
)

type Service struct {
	repo StockRepository
}

func NewService(repo StockRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetRoom(ctx context.Context, roomID int64) (domain.Room, error) {
	return s.repo.GetRoom(ctx, roomID)
}

func (s *Service) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.repo.ListRooms(ctx)
}

func (s *Service) Check(ctx context.Context, roomID int64, date time.Time) (domain.Availability, error) {
	return s.repo.CheckAvailability(ctx, roomID, date)
}

func (s *Service) Reserve(ctx context.Context, roomID int64, date time.Time) (int, error) {
	return s.repo.Reserve(ctx, roomID, date)
}

func (s *Service) Release(ctx context.Context, roomID int64, date time.Time) (int, error) {
	return s.repo.Release(ctx, roomID, date)
}
