package booking

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-seat-booking/internal/allocator"
	"github.com/iliyamo/train-seat-booking/internal/model"
)

// memStore is an in-memory Store plus UnitOfWork used to exercise the
// Coordinator without a database.  Within snapshots the whole state
// before running fn and restores it on error, mirroring a transaction
// rollback.
type memStore struct {
	mu       sync.Mutex
	seats    map[uint64]model.Seat
	bookings map[uint64]model.Booking
	nextID   uint64

	// snapshotHook, when set, rewrites the snapshot handed to the
	// caller.  Tests use it to simulate a stale read.
	snapshotHook func([]model.Seat) []model.Seat
}

func newMemStore(layout model.Layout) *memStore {
	m := &memStore{
		seats:    make(map[uint64]model.Seat),
		bookings: make(map[uint64]model.Booking),
	}
	for _, s := range layout.Seats() {
		m.seats[s.SeatNumber] = s
	}
	return m
}

func (m *memStore) Within(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seatsBackup := make(map[uint64]model.Seat, len(m.seats))
	for k, v := range m.seats {
		seatsBackup[k] = v
	}
	bookingsBackup := make(map[uint64]model.Booking, len(m.bookings))
	for k, v := range m.bookings {
		v.SeatNumbers = append([]uint64(nil), v.SeatNumbers...)
		bookingsBackup[k] = v
	}
	idBackup := m.nextID
	if err := fn(ctx, m); err != nil {
		m.seats = seatsBackup
		m.bookings = bookingsBackup
		m.nextID = idBackup
		return err
	}
	return nil
}

func (m *memStore) SeatSnapshot(context.Context) ([]model.Seat, error) {
	out := make([]model.Seat, 0, len(m.seats))
	for _, s := range m.seats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	if m.snapshotHook != nil {
		out = m.snapshotHook(out)
	}
	return out, nil
}

func (m *memStore) MarkBooked(_ context.Context, seatNumbers []uint64, userID uint64) error {
	for _, n := range seatNumbers {
		s, ok := m.seats[n]
		if !ok || s.Booked() {
			return ErrSeatAlreadyBooked
		}
	}
	for _, n := range seatNumbers {
		s := m.seats[n]
		owner := userID
		s.BookedBy = &owner
		m.seats[n] = s
	}
	return nil
}

func (m *memStore) MarkFree(_ context.Context, seatNumbers []uint64) error {
	for _, n := range seatNumbers {
		s := m.seats[n]
		s.BookedBy = nil
		m.seats[n] = s
	}
	return nil
}

func (m *memStore) CreateBooking(_ context.Context, userID uint64, seatNumbers []uint64) (*model.Booking, error) {
	m.nextID++
	b := model.Booking{
		ID:          m.nextID,
		UserID:      userID,
		SeatNumbers: append([]uint64(nil), seatNumbers...),
		IsActive:    true,
	}
	m.bookings[b.ID] = b
	return &b, nil
}

func (m *memStore) ActiveBooking(_ context.Context, bookingID, userID uint64) (*model.Booking, error) {
	b, ok := m.bookings[bookingID]
	if !ok || !b.IsActive || b.UserID != userID {
		return nil, ErrBookingNotFound
	}
	b.SeatNumbers = append([]uint64(nil), b.SeatNumbers...)
	return &b, nil
}

func (m *memStore) DeactivateBooking(_ context.Context, bookingID uint64) error {
	b, ok := m.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	b.IsActive = false
	m.bookings[bookingID] = b
	return nil
}

func (m *memStore) ActiveBookingCount(context.Context) (int, error) {
	n := 0
	for _, b := range m.bookings {
		if b.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ResetSeats(_ context.Context, seats []model.Seat) error {
	m.seats = make(map[uint64]model.Seat, len(seats))
	for _, s := range seats {
		m.seats[s.SeatNumber] = s
	}
	return nil
}

// assertLedgerMatchesInventory checks the core invariant: the booked
// seat set equals the union of active bookings' seats, with no seat in
// two active bookings.
func assertLedgerMatchesInventory(t *testing.T, m *memStore) {
	t.Helper()
	fromLedger := make(map[uint64]int)
	for _, b := range m.bookings {
		if !b.IsActive {
			continue
		}
		for _, n := range b.SeatNumbers {
			fromLedger[n]++
		}
	}
	for n, count := range fromLedger {
		assert.Equal(t, 1, count, "seat %d held by %d active bookings", n, count)
	}
	for n, s := range m.seats {
		_, inLedger := fromLedger[n]
		assert.Equal(t, s.Booked(), inLedger, "seat %d inventory/ledger mismatch", n)
	}
	assert.Len(t, fromLedger, bookedCount(m))
}

func bookedCount(m *memStore) int {
	n := 0
	for _, s := range m.seats {
		if s.Booked() {
			n++
		}
	}
	return n
}

func coach() model.Layout { return model.Layout{FullRows: 11, SeatsPerRow: 7, LastRowSeats: 3} }

func TestReserveExact(t *testing.T) {
	store := newMemStore(coach())
	c := NewCoordinator(store, 7)

	res, err := c.Reserve(context.Background(), 1, []uint64{8, 9, 10})
	require.NoError(t, err)
	assert.True(t, res.Exact)
	assert.Equal(t, []uint64{8, 9, 10}, res.SeatNumbers)
	assert.NotZero(t, res.BookingID)
	assertLedgerMatchesInventory(t, store)
}

func TestReserveFallbackSurfaced(t *testing.T) {
	store := newMemStore(coach())
	c := NewCoordinator(store, 7)

	_, err := c.Reserve(context.Background(), 1, []uint64{1, 2})
	require.NoError(t, err)

	// Seat 1 is taken, so user 2 gets a substitute block and must be
	// told about it.
	res, err := c.Reserve(context.Background(), 2, []uint64{1, 3})
	require.NoError(t, err)
	assert.False(t, res.Exact)
	assert.Equal(t, []uint64{3, 4}, res.SeatNumbers)
	assertLedgerMatchesInventory(t, store)
}

func TestReserveValidation(t *testing.T) {
	store := newMemStore(coach())
	c := NewCoordinator(store, 7)

	_, err := c.Reserve(context.Background(), 1, nil)
	assert.ErrorIs(t, err, allocator.ErrNoSeatsRequested)

	_, err = c.Reserve(context.Background(), 1, []uint64{1, 2, 3, 4, 5, 6, 7, 8})
	assert.ErrorIs(t, err, allocator.ErrTooManySeats)

	assert.Zero(t, bookedCount(store), "failed requests must not change state")
	assert.Empty(t, store.bookings)
}

func TestReserveCapBound(t *testing.T) {
	store := newMemStore(coach())
	c := NewCoordinator(store, 7)

	res, err := c.Reserve(context.Background(), 1, []uint64{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	assert.Len(t, res.SeatNumbers, 7)
	assert.LessOrEqual(t, len(res.SeatNumbers), c.MaxPerBooking())
}

// The walk-through from the one-row example: book, fail, cancel, rebook.
func TestSingleRowScenario(t *testing.T) {
	store := newMemStore(model.Layout{FullRows: 1, SeatsPerRow: 3})
	c := NewCoordinator(store, 7)
	ctx := context.Background()

	resA, err := c.Reserve(ctx, 1, []uint64{1, 2})
	require.NoError(t, err)
	assert.True(t, resA.Exact)
	assert.Equal(t, []uint64{1, 2}, resA.SeatNumbers)

	_, err = c.Reserve(ctx, 2, []uint64{1, 3})
	assert.ErrorIs(t, err, allocator.ErrNoAvailability)
	assertLedgerMatchesInventory(t, store)

	freed, err := c.Cancel(ctx, 1, resA.BookingID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, freed)
	assert.Zero(t, bookedCount(store))

	resB, err := c.Reserve(ctx, 2, []uint64{3})
	require.NoError(t, err)
	assert.True(t, resB.Exact)
	assert.Equal(t, []uint64{3}, resB.SeatNumbers)
	assertLedgerMatchesInventory(t, store)
}

func TestCancelReversibility(t *testing.T) {
	store := newMemStore(coach())
	c := NewCoordinator(store, 7)
	ctx := context.Background()

	first, err := c.Reserve(ctx, 1, []uint64{15, 16, 17})
	require.NoError(t, err)
	_, err = c.Cancel(ctx, 1, first.BookingID)
	require.NoError(t, err)

	again, err := c.Reserve(ctx, 1, []uint64{15, 16, 17})
	require.NoError(t, err)
	assert.True(t, again.Exact)
	assert.Equal(t, []uint64{15, 16, 17}, again.SeatNumbers)
	assertLedgerMatchesInventory(t, store)
}

func TestCancelNotFound(t *testing.T) {
	store := newMemStore(coach())
	c := NewCoordinator(store, 7)
	ctx := context.Background()

	// Unknown id.
	_, err := c.Cancel(ctx, 1, 99)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	res, err := c.Reserve(ctx, 1, []uint64{1})
	require.NoError(t, err)

	// Someone else's booking.
	_, err = c.Cancel(ctx, 2, res.BookingID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.Equal(t, 1, bookedCount(store))

	// Already cancelled.
	_, err = c.Cancel(ctx, 1, res.BookingID)
	require.NoError(t, err)
	_, err = c.Cancel(ctx, 1, res.BookingID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

// A stale snapshot must be caught by the apply-time re-check and roll
// back without partial effects.
func TestReserveApplyRaceRollsBack(t *testing.T) {
	store := newMemStore(coach())
	c := NewCoordinator(store, 7)
	ctx := context.Background()

	_, err := c.Reserve(ctx, 1, []uint64{5})
	require.NoError(t, err)

	store.snapshotHook = func(seats []model.Seat) []model.Seat {
		for i := range seats {
			if seats[i].SeatNumber == 5 {
				seats[i].BookedBy = nil // pretend seat 5 is still free
			}
		}
		return seats
	}
	_, err = c.Reserve(ctx, 2, []uint64{5})
	assert.ErrorIs(t, err, ErrSeatAlreadyBooked)

	store.snapshotHook = nil
	assert.Equal(t, 1, bookedCount(store))
	assert.Len(t, store.bookings, 1)
	assertLedgerMatchesInventory(t, store)
}

func TestConcurrentReserveSingleSeat(t *testing.T) {
	store := newMemStore(model.Layout{FullRows: 1, SeatsPerRow: 1})
	c := NewCoordinator(store, 7)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Reserve(context.Background(), uint64(i+1), []uint64{1})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, allocator.ErrNoAvailability)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, bookedCount(store))
	assertLedgerMatchesInventory(t, store)
}

func TestResetRefusedWhileBookingsActive(t *testing.T) {
	store := newMemStore(coach())
	c := NewCoordinator(store, 7)
	ctx := context.Background()

	res, err := c.Reserve(ctx, 1, []uint64{1, 2})
	require.NoError(t, err)

	err = c.ResetInventory(ctx, coach().Seats())
	assert.ErrorIs(t, err, ErrActiveBookings)
	assert.Equal(t, 2, bookedCount(store), "refused reset must not touch the inventory")
	assertLedgerMatchesInventory(t, store)

	_, err = c.Cancel(ctx, 1, res.BookingID)
	require.NoError(t, err)

	require.NoError(t, c.ResetInventory(ctx, coach().Seats()))
	assert.Zero(t, bookedCount(store))
	assert.Len(t, store.seats, coach().TotalSeats())
}

// A reset racing a reservation must never wipe seats a committed
// booking holds: whichever wins the lock, the booked seat set has to
// match the active ledger afterwards.
func TestResetSerializedWithReserve(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := newMemStore(coach())
		c := NewCoordinator(store, 7)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = c.Reserve(context.Background(), 1, []uint64{1, 2})
		}()
		go func() {
			defer wg.Done()
			_ = c.ResetInventory(context.Background(), coach().Seats())
		}()
		wg.Wait()

		assertLedgerMatchesInventory(t, store)
		if active, _ := store.ActiveBookingCount(context.Background()); active == 1 {
			assert.Equal(t, 2, bookedCount(store), "a surviving booking must still hold its seats")
		}
	}
}

func TestConcurrentReserveNoDoubleBooking(t *testing.T) {
	store := newMemStore(coach())
	c := NewCoordinator(store, 7)

	const callers = 20
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Everyone wants the same front-row pair; losers are
			// shifted to fallback rows.
			_, _ = c.Reserve(context.Background(), uint64(i+1), []uint64{1, 2})
		}(i)
	}
	wg.Wait()

	assertLedgerMatchesInventory(t, store)
}
