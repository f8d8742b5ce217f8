package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/train-seat-booking/internal/booking"
	"github.com/iliyamo/train-seat-booking/internal/model"
)

// UnitOfWork implements booking.UnitOfWork on top of MySQL: every
// Within call runs inside one transaction, so the seat updates and the
// ledger write of a reserve (or cancel) commit together or not at all.
type UnitOfWork struct {
	db       *sql.DB
	seats    *SeatRepo
	bookings *BookingRepo
}

// NewUnitOfWork builds the transactional store over the given repos.
func NewUnitOfWork(db *sql.DB, seats *SeatRepo, bookings *BookingRepo) *UnitOfWork {
	return &UnitOfWork{db: db, seats: seats, bookings: bookings}
}

// Within begins a transaction, hands fn a Store bound to it and
// commits when fn succeeds.  Any error from fn (or the commit) leaves
// the database untouched.
func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, s booking.Store) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, &txStore{tx: tx, seats: u.seats, bookings: u.bookings}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// txStore adapts the ...Tx repository methods to booking.Store.
type txStore struct {
	tx       *sql.Tx
	seats    *SeatRepo
	bookings *BookingRepo
}

func (s *txStore) SeatSnapshot(ctx context.Context) ([]model.Seat, error) {
	return s.seats.SnapshotTx(ctx, s.tx)
}

func (s *txStore) MarkBooked(ctx context.Context, seatNumbers []uint64, userID uint64) error {
	return s.seats.MarkBookedTx(ctx, s.tx, seatNumbers, userID)
}

func (s *txStore) MarkFree(ctx context.Context, seatNumbers []uint64) error {
	return s.seats.MarkFreeTx(ctx, s.tx, seatNumbers)
}

func (s *txStore) CreateBooking(ctx context.Context, userID uint64, seatNumbers []uint64) (*model.Booking, error) {
	return s.bookings.CreateTx(ctx, s.tx, userID, seatNumbers)
}

func (s *txStore) ActiveBooking(ctx context.Context, bookingID, userID uint64) (*model.Booking, error) {
	return s.bookings.GetActiveForUserTx(ctx, s.tx, bookingID, userID)
}

func (s *txStore) DeactivateBooking(ctx context.Context, bookingID uint64) error {
	return s.bookings.DeactivateTx(ctx, s.tx, bookingID)
}

func (s *txStore) ActiveBookingCount(ctx context.Context) (int, error) {
	return s.bookings.CountActiveTx(ctx, s.tx)
}

func (s *txStore) ResetSeats(ctx context.Context, seats []model.Seat) error {
	return s.seats.ResetTx(ctx, s.tx, seats)
}
