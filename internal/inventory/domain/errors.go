package domain

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")

	ErrAvailabilityNotFound = errors.New("availability record not found")

	// ErrNoAvailability reports a reserve attempt against a night whose
	// counter already reached zero.
	ErrNoAvailability = errors.New("no availability for this date")

	// ErrAtCapacity reports a release that would push the counter past the
	// room's total quantity.
	ErrAtCapacity = errors.New("cannot release, already at maximum capacity")
)
