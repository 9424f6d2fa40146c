package postgres

import (
	"context"
	"time"
)

type seedRoom struct {
	number   string
	roomType string
	price    int64
	quantity int
}

var sampleRooms = []seedRoom{
	{"101", "Standard", 10000, 1},
	{"102", "Deluxe", 15000, 2},
	{"201", "Suite", 25000, 1},
	{"202", "Presidential", 50000, 1},
}

// Seed inserts the sample rooms plus 30 days of availability per room.
// It is a no-op when rooms already exist.
func (r *Repository) Seed(ctx context.Context) error {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM rooms`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		r.log.Info("rooms already present, skipping seed", "count", count)
		return nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, room := range sampleRooms {
		var id int64
		err := r.pool.QueryRow(ctx, `INSERT INTO rooms (room_number, room_type, price_per_night_cents, total_quantity)
			VALUES ($1,$2,$3,$4) RETURNING id`,
			room.number, room.roomType, room.price, room.quantity).Scan(&id)
		if err != nil {
			return err
		}
		for i := 0; i < 30; i++ {
			_, err = r.pool.Exec(ctx, `INSERT INTO availability (room_id, date, available_quantity)
				VALUES ($1,$2,$3) ON CONFLICT (room_id, date) DO NOTHING`,
				id, today.AddDate(0, 0, i), room.quantity)
			if err != nil {
				return err
			}
		}
	}
	r.log.Info("sample data seeded", "rooms", len(sampleRooms))
	return nil
}
