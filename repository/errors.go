package repository

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStatusConflict is returned when an order's status changed between
	// the read and the conditional write.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
