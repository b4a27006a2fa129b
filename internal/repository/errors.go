// Package repository implements the MySQL backing store for the booking
// grid.  It is the authoritative side of the engine's optimistic protocol:
// every mutation re-validates state inside a transaction and, once
// committed, publishes the corresponding change-feed notification.  The
// sentinel errors below let the engine and the HTTP layer distinguish
// rejection reasons without string matching.
package repository

import "errors"

// ErrRoomNotFound is returned when a room id does not exist.  Handlers
// translate this into an HTTP 404 response.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when a reservation id does not exist.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrConflict is returned when an insert would violate the no-overlap
// invariant: the candidate range collides with an active reservation on the
// same room.  Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflicting reservation")

// ErrBadState is returned when a lifecycle operation is attempted from the
// wrong reservation state, such as checking out a stay that was never
// checked in.  The optimistic layer rolls back on this error.
var ErrBadState = errors.New("invalid reservation state")

// ErrBalanceOutstanding is returned by check-out when the reservation still
// carries a pending balance and force was not set.
var ErrBalanceOutstanding = errors.New("pending balance outstanding")
