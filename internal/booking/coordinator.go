package booking

import (
	"context"
	"sync"

	"github.com/iliyamo/train-seat-booking/internal/allocator"
	"github.com/iliyamo/train-seat-booking/internal/model"
)

// Result reports what a reserve call actually committed.  The granted
// seats may differ from the requested ones; Exact tells the boundary
// layer whether to ask the user for confirmation before treating the
// substitution as accepted.
type Result struct {
	BookingID   uint64   `json:"booking_id"`
	SeatNumbers []uint64 `json:"seat_numbers"`
	Exact       bool     `json:"exact"`
}

// Coordinator serializes every mutation of the shared seat inventory
// and booking ledger.  A single mutex spans the whole
// snapshot-decide-validate-apply sequence of Reserve and the
// load-free-deactivate sequence of Cancel; the transactional store
// underneath re-checks seat state at apply time as a backstop.  Reads
// do not take the mutex.
type Coordinator struct {
	mu            sync.Mutex
	uow           UnitOfWork
	maxPerBooking int
}

// NewCoordinator builds a Coordinator on top of the given unit of
// work.  maxPerBooking caps the seats of a single reservation.
func NewCoordinator(uow UnitOfWork, maxPerBooking int) *Coordinator {
	if uow == nil {
		panic("nil unit of work passed to NewCoordinator")
	}
	return &Coordinator{uow: uow, maxPerBooking: maxPerBooking}
}

// MaxPerBooking returns the per-reservation seat cap.
func (c *Coordinator) MaxPerBooking() int { return c.maxPerBooking }

// Reserve books seats for the user.  The requested seats are granted
// verbatim when they are free and share a row; otherwise the allocator
// picks a same-row fallback block and the result carries Exact=false.
// Validation and availability failures surface as the allocator's
// sentinel errors, apply-time races as ErrSeatAlreadyBooked; in every
// failure case no state changes.
func (c *Coordinator) Reserve(ctx context.Context, userID uint64, seatNumbers []uint64) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res *Result
	err := c.uow.Within(ctx, func(ctx context.Context, s Store) error {
		snap, err := s.SeatSnapshot(ctx)
		if err != nil {
			return err
		}
		alloc, err := allocator.Decide(snap, seatNumbers, c.maxPerBooking)
		if err != nil {
			return err
		}
		if err := s.MarkBooked(ctx, alloc.SeatNumbers, userID); err != nil {
			return err
		}
		b, err := s.CreateBooking(ctx, userID, alloc.SeatNumbers)
		if err != nil {
			return err
		}
		res = &Result{
			BookingID:   b.ID,
			SeatNumbers: alloc.SeatNumbers,
			Exact:       alloc.Outcome == allocator.Exact,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Cancel frees every seat of the user's active booking and flips it to
// inactive as one unit.  Unknown, foreign and already-cancelled
// bookings all return ErrBookingNotFound without touching state.
func (c *Coordinator) Cancel(ctx context.Context, userID, bookingID uint64) ([]uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var freed []uint64
	err := c.uow.Within(ctx, func(ctx context.Context, s Store) error {
		b, err := s.ActiveBooking(ctx, bookingID, userID)
		if err != nil {
			return err
		}
		if err := s.MarkFree(ctx, b.SeatNumbers); err != nil {
			return err
		}
		if err := s.DeactivateBooking(ctx, b.ID); err != nil {
			return err
		}
		freed = b.SeatNumbers
		return nil
	})
	if err != nil {
		return nil, err
	}
	return freed, nil
}

// ResetInventory rebuilds the seat inventory from the given layout
// seats.  It holds the same mutex as Reserve and Cancel, so the
// active-booking guard cannot race an in-flight reservation: either
// the reservation committed first and the reset is refused with
// ErrActiveBookings, or the reset runs first against settled state.
func (c *Coordinator) ResetInventory(ctx context.Context, seats []model.Seat) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.uow.Within(ctx, func(ctx context.Context, s Store) error {
		active, err := s.ActiveBookingCount(ctx)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveBookings
		}
		return s.ResetSeats(ctx, seats)
	})
}
