package domain

import "time"

// DateLayout is the wire format for check-in/check-out dates.
const DateLayout = "2006-01-02"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
)

// Booking is written as pending inside the confirmation transaction and
// becomes durable only once the remote reservation succeeded. A rolled-back
// attempt leaves no row at all.
type Booking struct {
	ID              int64
	UserID          int64
	RoomID          int64
	CheckInDate     time.Time
	CheckOutDate    time.Time
	TotalPriceCents int64
	Status          BookingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBooking builds a pending booking, pricing it at pricePerNightCents per
// night between the two dates.
func NewBooking(userID, roomID int64, checkIn, checkOut time.Time, pricePerNightCents int64) (Booking, error) {
	if userID <= 0 || roomID <= 0 {
		return Booking{}, ErrMissingFields
	}
	if !checkOut.After(checkIn) {
		return Booking{}, ErrInvalidDateRange
	}
	nights := int64(checkOut.Sub(checkIn).Hours() / 24)
	return Booking{
		UserID:          userID,
		RoomID:          roomID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		TotalPriceCents: pricePerNightCents * nights,
		Status:          StatusPending,
	}, nil
}

func (b Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}

// BookingConfirmed is the outbox event emitted with the confirmation commit.
type BookingConfirmed struct {
	BookingID       int64  `json:"booking_id"`
	UserID          int64  `json:"user_id"`
	RoomID          int64  `json:"room_id"`
	CheckInDate     string `json:"check_in_date"`
	CheckOutDate    string `json:"check_out_date"`
	TotalPriceCents int64  `json:"total_price_cents"`
}
