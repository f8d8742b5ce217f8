package repository // repository defines data access for the seat inventory

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/train-seat-booking/internal/booking"
	"github.com/iliyamo/train-seat-booking/internal/model"
)

// SeatRepo provides methods to work with the seats table.  Seat rows
// are created once from the layout and afterwards only their booked_by
// column changes.  The mutating ...Tx methods expect the caller to
// hold the coordinator's exclusivity guarantee; they are not safe as
// standalone concurrent operations.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

const seatColumns = `seat_number, row_num, booked_by, created_at, updated_at`

func scanSeat(scan func(dest ...interface{}) error) (model.Seat, error) {
	var s model.Seat
	var bookedBy sql.NullInt64
	if err := scan(&s.SeatNumber, &s.RowNumber, &bookedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return model.Seat{}, err
	}
	if bookedBy.Valid {
		owner := uint64(bookedBy.Int64)
		s.BookedBy = &owner
	}
	return s, nil
}

// Snapshot returns every seat ordered by seat number, reflecting
// committed state at call time.  Listing endpoints use this without
// any lock; the coordinator uses SnapshotTx instead.
func (r *SeatRepo) Snapshot(ctx context.Context) ([]model.Seat, error) {
	return r.snapshot(ctx, r.db.QueryContext)
}

// SnapshotTx is Snapshot within an existing transaction.
func (r *SeatRepo) SnapshotTx(ctx context.Context, tx *sql.Tx) ([]model.Seat, error) {
	return r.snapshot(ctx, tx.QueryContext)
}

type queryFn func(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

func (r *SeatRepo) snapshot(ctx context.Context, query queryFn) ([]model.Seat, error) {
	rows, err := query(ctx, `SELECT `+seatColumns+` FROM seats ORDER BY seat_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []model.Seat
	for rows.Next() {
		s, err := scanSeat(rows.Scan)
		if err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// MarkBookedTx claims the given free seats for a user.  The UPDATE
// only touches rows whose booked_by is still NULL; when fewer rows
// than requested are affected some seat was taken between decision and
// apply, and booking.ErrSeatAlreadyBooked is returned so the caller
// rolls back the transaction.
func (r *SeatRepo) MarkBookedTx(ctx context.Context, tx *sql.Tx, seatNumbers []uint64, userID uint64) error {
	if len(seatNumbers) == 0 {
		return nil
	}
	query := `UPDATE seats SET booked_by = ?, updated_at = CURRENT_TIMESTAMP
	          WHERE booked_by IS NULL AND seat_number IN (` + placeholders(len(seatNumbers)) + `)`
	args := make([]interface{}, 0, len(seatNumbers)+1)
	args = append(args, userID)
	for _, n := range seatNumbers {
		args = append(args, n)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != int64(len(seatNumbers)) {
		return booking.ErrSeatAlreadyBooked
	}
	return nil
}

// MarkFreeTx clears booked_by for the given seats.
func (r *SeatRepo) MarkFreeTx(ctx context.Context, tx *sql.Tx, seatNumbers []uint64) error {
	if len(seatNumbers) == 0 {
		return nil
	}
	query := `UPDATE seats SET booked_by = NULL, updated_at = CURRENT_TIMESTAMP
	          WHERE seat_number IN (` + placeholders(len(seatNumbers)) + `)`
	args := make([]interface{}, 0, len(seatNumbers))
	for _, n := range seatNumbers {
		args = append(args, n)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Count returns the number of seat rows.  Used at startup to decide
// whether the layout still needs seeding.
func (r *SeatRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats`).Scan(&n)
	return n, err
}

// CreateBulk inserts multiple seats in a single statement.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (seat_number, row_num) VALUES `
	args := make([]interface{}, 0, len(seats)*2)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, s.SeatNumber, s.RowNumber)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ResetTx wipes all seat rows and reinserts the layout from scratch.
// The caller must already have verified that no active bookings exist.
func (r *SeatRepo) ResetTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM seats`); err != nil {
		return err
	}
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (seat_number, row_num) VALUES `
	args := make([]interface{}, 0, len(seats)*2)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, s.SeatNumber, s.RowNumber)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// placeholders returns "?,?,...,?" with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
