// Package booking owns the reservation lifecycle: it turns allocator
// decisions into committed inventory and ledger changes under a single
// exclusivity boundary.
package booking

import "errors"

// ErrSeatAlreadyBooked is returned when a seat turned out to be taken
// at apply time even though the decision saw it free.  The operation
// rolls back completely; the caller may retry against fresh state.
var ErrSeatAlreadyBooked = errors.New("seat already booked")

// ErrBookingNotFound is returned when cancelling a booking that does
// not exist, belongs to another user or is already inactive.
var ErrBookingNotFound = errors.New("booking not found")

// ErrActiveBookings is returned when the inventory cannot be rebuilt
// because active bookings still hold seats.
var ErrActiveBookings = errors.New("active bookings exist")
