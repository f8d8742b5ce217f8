// Package queue defines the booking event payloads exchanged over the
// message broker and the background consumer that records them.
package queue

// Event types published on the booking.events queue.
const (
	EventBooked    = "BOOKED"
	EventCancelled = "CANCELLED"
)

// BookingEvent is published after a reservation commits or a booking
// is cancelled.  It carries enough information for downstream
// consumers to log, notify or feed analytics without querying the
// primary database.  For BOOKED events, Exact tells whether the
// granted seats were the ones requested or a fallback block.
type BookingEvent struct {
	Type        string   `json:"type"`
	BookingID   uint64   `json:"booking_id"`
	UserID      uint64   `json:"user_id"`
	SeatNumbers []uint64 `json:"seat_numbers"`
	Exact       bool     `json:"exact,omitempty"`
	OccurredAt  string   `json:"occurred_at"`
}
