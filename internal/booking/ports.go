package booking

import (
	"context"

	"github.com/iliyamo/train-seat-booking/internal/model"
)

// Store is the persistence surface the Coordinator mutates.  All
// methods are called inside UnitOfWork.Within, so an implementation
// backs them with one transaction and must either commit every change
// of a call or none of them.
type Store interface {
	// SeatSnapshot returns every seat ordered by seat number,
	// reflecting state at call time.
	SeatSnapshot(ctx context.Context) ([]model.Seat, error)
	// MarkBooked sets the owner on the given free seats.  It fails
	// with ErrSeatAlreadyBooked when any of them is taken, leaving
	// all of them untouched.
	MarkBooked(ctx context.Context, seatNumbers []uint64, userID uint64) error
	// MarkFree clears the owner of the given seats.
	MarkFree(ctx context.Context, seatNumbers []uint64) error
	// CreateBooking appends an active booking covering the seats.
	CreateBooking(ctx context.Context, userID uint64, seatNumbers []uint64) (*model.Booking, error)
	// ActiveBooking loads an active booking by id for its owner, or
	// ErrBookingNotFound.
	ActiveBooking(ctx context.Context, bookingID, userID uint64) (*model.Booking, error)
	// DeactivateBooking flips a booking to inactive.  The record is
	// kept; bookings are never deleted.
	DeactivateBooking(ctx context.Context, bookingID uint64) error
	// ActiveBookingCount returns the number of active bookings across
	// all users.
	ActiveBookingCount(ctx context.Context) (int, error)
	// ResetSeats wipes the inventory and reinserts the given seats,
	// all free.
	ResetSeats(ctx context.Context, seats []model.Seat) error
}

// UnitOfWork runs fn atomically against the store: when fn returns an
// error nothing it did is visible afterwards.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
