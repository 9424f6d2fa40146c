package domain

import "errors"

var (
	ErrMissingFields = errors.New("missing required fields")

	ErrInvalidDateRange = errors.New("check-out date must be after check-in date")

	// ErrLockUnavailable means the distributed lock was not obtained after
	// retries. Nothing was written; the caller may simply retry.
	ErrLockUnavailable = errors.New("could not acquire lock for booking")

	// ErrPeerUnavailable means the inventory service could not be reached
	// or timed out.
	ErrPeerUnavailable = errors.New("inventory service unavailable")

	// ErrRoomUnavailable is the business denial: the night has no remaining
	// quantity, reported either by the availability check or the reserve call.
	ErrRoomUnavailable = errors.New("room not available for selected date")

	ErrNotFound = errors.New("booking not found")
)
