package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoteldesk/booking-system/internal/booking/application"
	"github.com/hoteldesk/booking-system/internal/booking/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		room_id BIGINT NOT NULL,
		check_in_date DATE NOT NULL,
		check_out_date DATE NOT NULL,
		total_price_cents BIGINT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create bookings: %w", err)
	}
	_, err = r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS outbox (
		id BIGSERIAL PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		type TEXT NOT NULL,
		payload BYTEA NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		relay_id TEXT,
		lease_until TIMESTAMPTZ,
		retry_count INT NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create outbox: %w", err)
	}
	return nil
}

func (r *Repository) Begin(ctx context.Context) (application.BookingTx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &bookingTx{tx: tx}, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Booking, error) {
	var b domain.Booking
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, room_id, check_in_date, check_out_date, total_price_cents, status, created_at, updated_at
		FROM bookings WHERE id=$1`, id).
		Scan(&b.ID, &b.UserID, &b.RoomID, &b.CheckInDate, &b.CheckOutDate, &b.TotalPriceCents, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT id, user_id, room_id, check_in_date, check_out_date, total_price_cents, status, created_at, updated_at
		FROM bookings ORDER BY id`)
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT id, user_id, room_id, check_in_date, check_out_date, total_price_cents, status, created_at, updated_at
		FROM bookings WHERE user_id=$1 ORDER BY id`, userID)
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoomID, &b.CheckInDate, &b.CheckOutDate, &b.TotalPriceCents, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

type bookingTx struct {
	tx pgx.Tx
}

// InsertPending writes the tentative row and fills in its identity. The row
// only becomes durable on Commit.
func (t *bookingTx) InsertPending(ctx context.Context, b *domain.Booking) error {
	return t.tx.QueryRow(ctx, `INSERT INTO bookings (user_id, room_id, check_in_date, check_out_date, total_price_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at, updated_at`,
		b.UserID, b.RoomID, b.CheckInDate, b.CheckOutDate, b.TotalPriceCents, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// Confirm flips the row to confirmed and enqueues the event in the same
// transaction, so the booking and its outbox record commit or vanish together.
func (t *bookingTx) Confirm(ctx context.Context, b *domain.Booking, eventType string, payload []byte) error {
	err := t.tx.QueryRow(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1 RETURNING updated_at`,
		b.ID, b.Status).Scan(&b.UpdatedAt)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, status)
		VALUES ('booking', $1, $2, $3, 'pending')`,
		fmt.Sprintf("%d", b.ID), eventType, payload)
	return err
}

func (t *bookingTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *bookingTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
