package domain

import "time"

// DateLayout is the wire format for availability dates.
const DateLayout = "2006-01-02"

type Room struct {
	ID                 int64     `json:"id"`
	RoomNumber         string    `json:"room_number"`
	RoomType           string    `json:"room_type"`
	PricePerNightCents int64     `json:"price_per_night_cents"`
	TotalQuantity      int       `json:"total_quantity"`
	CreatedAt          time.Time `json:"created_at"`
}

// Availability tracks how many units of a room remain for one night.
// available_quantity stays within [0, Room.TotalQuantity]; it is mutated
// only inside a row-locked transaction.
type Availability struct {
	RoomID            int64     `json:"room_id"`
	Date              time.Time `json:"-"`
	AvailableQuantity int       `json:"available_quantity"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (a Availability) IsAvailable() bool {
	return a.AvailableQuantity > 0
}
