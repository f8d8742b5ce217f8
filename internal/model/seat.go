package model

import "time"

// Seat is a single unit of the coach inventory.  Seat numbers are
// globally unique and sequential across the whole layout; the row
// number places the seat within the coach.  A seat is booked exactly
// when BookedBy is set.
//
// Fields:
//  SeatNumber – globally unique seat number (1-based).
//  RowNumber  – row the seat belongs to (1-based).
//  BookedBy   – ID of the user holding the seat, nil when free.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Seat struct {
	SeatNumber uint64    // seats.seat_number
	RowNumber  uint32    // seats.row_num
	BookedBy   *uint64   // seats.booked_by (nullable)
	CreatedAt  time.Time // seats.created_at
	UpdatedAt  time.Time // seats.updated_at
}

// Booked reports whether the seat is currently held by a booking.
func (s Seat) Booked() bool { return s.BookedBy != nil }
