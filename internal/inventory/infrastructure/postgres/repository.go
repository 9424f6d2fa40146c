package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoteldesk/booking-system/internal/inventory/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS rooms (
		id BIGSERIAL PRIMARY KEY,
		room_number TEXT UNIQUE NOT NULL,
		room_type TEXT NOT NULL,
		price_per_night_cents BIGINT NOT NULL,
		total_quantity INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create rooms: %w", err)
	}
	_, err = r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS availability (
		id BIGSERIAL PRIMARY KEY,
		room_id BIGINT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		available_quantity INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (room_id, date)
	)`)
	if err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

func (r *Repository) GetRoom(ctx context.Context, roomID int64) (domain.Room, error) {
	var room domain.Room
	err := r.pool.QueryRow(ctx, `SELECT id, room_number, room_type, price_per_night_cents, total_quantity, created_at
		FROM rooms WHERE id=$1`, roomID).
		Scan(&room.ID, &room.RoomNumber, &room.RoomType, &room.PricePerNightCents, &room.TotalQuantity, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r *Repository) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, room_number, room_type, price_per_night_cents, total_quantity, created_at
		FROM rooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.RoomNumber, &room.RoomType, &room.PricePerNightCents, &room.TotalQuantity, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// CheckAvailability returns current state for (room, date), creating the row
// seeded at the room's total quantity on first access. The insert tolerates
// racing first-access callers via the (room_id, date) unique constraint.
func (r *Repository) CheckAvailability(ctx context.Context, roomID int64, date time.Time) (domain.Availability, error) {
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Availability{}, err
	}

	_, err = r.pool.Exec(ctx, `INSERT INTO availability (room_id, date, available_quantity)
		VALUES ($1,$2,$3) ON CONFLICT (room_id, date) DO NOTHING`,
		roomID, date, room.TotalQuantity)
	if err != nil {
		return domain.Availability{}, err
	}

	var a domain.Availability
	err = r.pool.QueryRow(ctx, `SELECT room_id, date, available_quantity, updated_at
		FROM availability WHERE room_id=$1 AND date=$2`, roomID, date).
		Scan(&a.RoomID, &a.Date, &a.AvailableQuantity, &a.UpdatedAt)
	if err != nil {
		return domain.Availability{}, err
	}
	return a, nil
}

// Reserve decrements the availability counter for (room, date) under an
// exclusive row lock. Concurrent reservers on the same row block until the
// holder commits; the store's lock queue provides the ordering. The row is
// created inside the same transaction if this is the night's first access.
func (r *Repository) Reserve(ctx context.Context, roomID int64, date time.Time) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var total int
	err = tx.QueryRow(ctx, `SELECT total_quantity FROM rooms WHERE id=$1`, roomID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrRoomNotFound
	}
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO availability (room_id, date, available_quantity)
		VALUES ($1,$2,$3) ON CONFLICT (room_id, date) DO NOTHING`,
		roomID, date, total)
	if err != nil {
		return 0, err
	}

	var qty int
	err = tx.QueryRow(ctx, `SELECT available_quantity FROM availability
		WHERE room_id=$1 AND date=$2 FOR UPDATE`, roomID, date).Scan(&qty)
	if err != nil {
		return 0, err
	}
	if qty <= 0 {
		return 0, domain.ErrNoAvailability
	}

	_, err = tx.Exec(ctx, `UPDATE availability SET available_quantity=available_quantity-1, updated_at=now()
		WHERE room_id=$1 AND date=$2`, roomID, date)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	r.log.Info("room reserved", "room_id", roomID, "date", date.Format(domain.DateLayout), "remaining", qty-1)
	return qty - 1, nil
}

// Release increments the counter under the same row lock, refusing to exceed
// the room's total quantity.
func (r *Repository) Release(ctx context.Context, roomID int64, date time.Time) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var qty, total int
	err = tx.QueryRow(ctx, `SELECT a.available_quantity, r.total_quantity
		FROM availability a JOIN rooms r ON r.id = a.room_id
		WHERE a.room_id=$1 AND a.date=$2 FOR UPDATE OF a`, roomID, date).
		Scan(&qty, &total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrAvailabilityNotFound
	}
	if err != nil {
		return 0, err
	}
	if qty >= total {
		return 0, domain.ErrAtCapacity
	}

	_, err = tx.Exec(ctx, `UPDATE availability SET available_quantity=available_quantity+1, updated_at=now()
		WHERE room_id=$1 AND date=$2`, roomID, date)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	r.log.Info("room released", "room_id", roomID, "date", date.Format(domain.DateLayout), "available", qty+1)
	return qty + 1, nil
}
