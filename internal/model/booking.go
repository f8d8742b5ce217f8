package model

import "time"

// Booking groups the seats a user reserved in one request.  Bookings
// form an additive ledger: a cancelled booking is flipped to inactive
// but never deleted, so the history stays auditable.  The seats of all
// active bookings are exactly the seats marked booked in the
// inventory; the two must never diverge.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who owns the booking.
//  SeatNumbers – seat numbers reserved under this booking.
//  IsActive    – true until the booking is cancelled (one-way).
//  CreatedAt   – creation timestamp.
type Booking struct {
	ID          uint64    // bookings.id
	UserID      uint64    // bookings.user_id
	SeatNumbers []uint64  // booking_seats.seat_number, ascending
	IsActive    bool      // bookings.is_active
	CreatedAt   time.Time // bookings.created_at
}
