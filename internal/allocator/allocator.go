// Package allocator decides which seats satisfy a booking request.  It
// is pure: decisions are computed from an inventory snapshot without
// touching shared state, so the same function backs both the
// authoritative reserve path and the non-binding preview endpoint.
package allocator

import (
	"errors"
	"sort"

	"github.com/iliyamo/train-seat-booking/internal/model"
)

// Outcome tells the caller how the granted seats relate to the request.
type Outcome int

const (
	// Exact means the granted seats are precisely the requested ones.
	Exact Outcome = iota
	// Fallback means the request could not be honoured as-is and a
	// different same-row block was selected instead.
	Fallback
)

var (
	// ErrNoSeatsRequested is returned for an empty request.  It is a
	// validation failure, not an availability one.
	ErrNoSeatsRequested = errors.New("no seats requested")
	// ErrTooManySeats is returned when the request exceeds the
	// per-booking cap.
	ErrTooManySeats = errors.New("too many seats requested")
	// ErrNoAvailability is returned when no single row holds enough
	// free seats for the request.
	ErrNoAvailability = errors.New("no row with enough free seats")
)

// Allocation is a successful decision: the seats to book and whether
// they match the request.
type Allocation struct {
	Outcome     Outcome
	SeatNumbers []uint64 // ascending
}

// Decide resolves a request against a snapshot of the inventory.
//
// The fast path grants the request verbatim when every requested seat
// exists, is free and the seats share one row.  Otherwise the fallback
// scans rows in ascending order and picks the lowest-numbered free
// seats of the first row that can hold the whole party.  No attempt is
// made to assemble seats across rows.  The scan order makes the result
// deterministic for a given snapshot: lowest qualifying row first,
// lowest seat numbers within it.
func Decide(snapshot []model.Seat, requested []uint64, maxPerRequest int) (Allocation, error) {
	want := dedupe(requested)
	if len(want) == 0 {
		return Allocation{}, ErrNoSeatsRequested
	}
	if len(want) > maxPerRequest {
		return Allocation{}, ErrTooManySeats
	}

	byNumber := make(map[uint64]model.Seat, len(snapshot))
	for _, s := range snapshot {
		byNumber[s.SeatNumber] = s
	}

	if exact(byNumber, want) {
		granted := append([]uint64(nil), want...)
		sort.Slice(granted, func(i, j int) bool { return granted[i] < granted[j] })
		return Allocation{Outcome: Exact, SeatNumbers: granted}, nil
	}

	if seats := bestRow(snapshot, len(want)); seats != nil {
		return Allocation{Outcome: Fallback, SeatNumbers: seats}, nil
	}
	return Allocation{}, ErrNoAvailability
}

// exact reports whether every requested seat exists, is free and all
// requested seats sit in the same row.
func exact(byNumber map[uint64]model.Seat, want []uint64) bool {
	var row uint32
	for i, n := range want {
		s, ok := byNumber[n]
		if !ok || s.Booked() {
			return false
		}
		if i == 0 {
			row = s.RowNumber
		} else if s.RowNumber != row {
			return false
		}
	}
	return true
}

// bestRow returns the k lowest-numbered free seats of the first row
// (ascending row order) holding at least k free seats, or nil when no
// row qualifies.
func bestRow(snapshot []model.Seat, k int) []uint64 {
	freeByRow := make(map[uint32][]uint64)
	for _, s := range snapshot {
		if !s.Booked() {
			freeByRow[s.RowNumber] = append(freeByRow[s.RowNumber], s.SeatNumber)
		}
	}
	rows := make([]uint32, 0, len(freeByRow))
	for r := range freeByRow {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i] < rows[j] })
	for _, r := range rows {
		free := freeByRow[r]
		if len(free) < k {
			continue
		}
		sort.Slice(free, func(i, j int) bool { return free[i] < free[j] })
		return free[:k]
	}
	return nil
}

// dedupe drops zero and repeated seat numbers while keeping the
// request order.
func dedupe(nums []uint64) []uint64 {
	out := make([]uint64, 0, len(nums))
	seen := make(map[uint64]struct{}, len(nums))
	for _, n := range nums {
		if n == 0 {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
