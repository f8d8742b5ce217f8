package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-seat-booking/internal/booking"
	"github.com/iliyamo/train-seat-booking/internal/model"
)

// BookingRepo persists the booking ledger.  A booking row groups the
// seats reserved together under one user; its seats live in the
// booking_seats table.  The ledger is additive: cancellation flips
// is_active to 0 and nothing is ever deleted, which keeps the history
// auditable and re-reads idempotent.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts an active booking and its seats within the scope of
// an existing transaction and returns the stored record.  The caller
// must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID uint64, seatNumbers []uint64) (*model.Booking, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO bookings (user_id) VALUES (?)`, userID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	b := &model.Booking{
		ID:          uint64(id),
		UserID:      userID,
		SeatNumbers: append([]uint64(nil), seatNumbers...),
		IsActive:    true,
	}
	if len(seatNumbers) > 0 {
		query := `INSERT INTO booking_seats (booking_id, seat_number) VALUES `
		args := make([]interface{}, 0, len(seatNumbers)*2)
		for i, n := range seatNumbers {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, b.ID, n)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
	}
	// Query back the row to populate the DB-side timestamp.
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetActiveForUserTx loads an active booking by id, enforcing
// ownership.  Unknown, foreign and inactive bookings all come back as
// booking.ErrBookingNotFound so callers cannot tell them apart.
func (r *BookingRepo) GetActiveForUserTx(ctx context.Context, tx *sql.Tx, bookingID, userID uint64) (*model.Booking, error) {
	const q = `SELECT id, user_id, is_active, created_at
	           FROM bookings
	           WHERE id = ? AND user_id = ? AND is_active = 1`
	var b model.Booking
	err := tx.QueryRowContext(ctx, q, bookingID, userID).
		Scan(&b.ID, &b.UserID, &b.IsActive, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, err
	}
	const seatQ = `SELECT seat_number FROM booking_seats WHERE booking_id = ? ORDER BY seat_number`
	rows, err := tx.QueryContext(ctx, seatQ, b.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var n uint64
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		b.SeatNumbers = append(b.SeatNumbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeactivateTx flips a booking to inactive within the transaction.
func (r *BookingRepo) DeactivateTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	res, err := tx.ExecContext(ctx, `UPDATE bookings SET is_active = 0 WHERE id = ? AND is_active = 1`, bookingID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

// ListActiveByUser returns all active bookings of a user, newest
// first, each with its seat numbers in ascending order.  When the user
// has no bookings an empty slice is returned.
func (r *BookingRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT id, user_id, is_active, created_at
	           FROM bookings
	           WHERE user_id = ? AND is_active = 1
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Booking, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.SeatNumbers = []uint64{}
		index[b.ID] = len(items)
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	// Fetch seats for all bookings in one query.
	ids := make([]interface{}, 0, len(items))
	for _, b := range items {
		ids = append(ids, b.ID)
	}
	seatQ := `SELECT booking_id, seat_number FROM booking_seats
	          WHERE booking_id IN (` + placeholders(len(ids)) + `)
	          ORDER BY booking_id, seat_number`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid, n uint64
		if err := srows.Scan(&bid, &n); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			items[idx].SeatNumbers = append(items[idx].SeatNumbers, n)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CountActiveTx returns the number of active bookings across all
// users, inside an existing transaction.  The admin layout reset
// refuses to run while this is non-zero.
func (r *BookingRepo) CountActiveTx(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE is_active = 1`).Scan(&n)
	return n, err
}
