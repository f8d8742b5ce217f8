package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-seat-booking/internal/model"
)

const maxPerRequest = 7

// snapshot builds the standard 11x7+3 coach with the given seats booked.
func snapshot(booked ...uint64) []model.Seat {
	owner := uint64(42)
	seats := model.Layout{FullRows: 11, SeatsPerRow: 7, LastRowSeats: 3}.Seats()
	taken := make(map[uint64]bool, len(booked))
	for _, n := range booked {
		taken[n] = true
	}
	for i := range seats {
		if taken[seats[i].SeatNumber] {
			seats[i].BookedBy = &owner
		}
	}
	return seats
}

func TestDecideExact(t *testing.T) {
	tests := []struct {
		name      string
		booked    []uint64
		requested []uint64
		want      []uint64
	}{
		{name: "single seat", requested: []uint64{5}, want: []uint64{5}},
		{name: "full row", requested: []uint64{8, 9, 10, 11, 12, 13, 14}, want: []uint64{8, 9, 10, 11, 12, 13, 14}},
		{name: "unordered request is sorted", requested: []uint64{3, 1, 2}, want: []uint64{1, 2, 3}},
		{name: "duplicates collapse", requested: []uint64{4, 4, 5}, want: []uint64{4, 5}},
		{name: "partial row", booked: []uint64{1, 2}, requested: []uint64{3, 4}, want: []uint64{3, 4}},
		{name: "last short row", requested: []uint64{78, 79, 80}, want: []uint64{78, 79, 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(snapshot(tt.booked...), tt.requested, maxPerRequest)
			require.NoError(t, err)
			assert.Equal(t, Exact, got.Outcome)
			assert.Equal(t, tt.want, got.SeatNumbers)
		})
	}
}

func TestDecideFallback(t *testing.T) {
	tests := []struct {
		name      string
		booked    []uint64
		requested []uint64
		want      []uint64
	}{
		{
			name:      "request spans two rows",
			requested: []uint64{7, 8}, // row 1 / row 2
			want:      []uint64{1, 2},
		},
		{
			name:      "requested seat already booked",
			booked:    []uint64{3},
			requested: []uint64{3, 4},
			want:      []uint64{1, 2},
		},
		{
			name:      "unknown seat number",
			requested: []uint64{4, 999},
			want:      []uint64{1, 2},
		},
		{
			name:      "first row too full, second row wins",
			booked:    []uint64{1, 2, 3, 4, 5, 6},
			requested: []uint64{5, 6},
			want:      []uint64{8, 9},
		},
		{
			name:      "lowest free seats of the row, not contiguous",
			booked:    []uint64{2, 9},
			requested: []uint64{2, 16}, // seat 2 taken, so fall back within row 1
			want:      []uint64{1, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(snapshot(tt.booked...), tt.requested, maxPerRequest)
			require.NoError(t, err)
			assert.Equal(t, Fallback, got.Outcome)
			assert.Equal(t, tt.want, got.SeatNumbers)
		})
	}
}

func TestDecideValidation(t *testing.T) {
	_, err := Decide(snapshot(), nil, maxPerRequest)
	assert.ErrorIs(t, err, ErrNoSeatsRequested)

	_, err = Decide(snapshot(), []uint64{0, 0}, maxPerRequest)
	assert.ErrorIs(t, err, ErrNoSeatsRequested)

	_, err = Decide(snapshot(), []uint64{1, 2, 3, 4, 5, 6, 7, 8}, maxPerRequest)
	assert.ErrorIs(t, err, ErrTooManySeats)
}

func TestDecideNoAvailability(t *testing.T) {
	// One row of three seats, two of them taken: a party of two cannot
	// fit anywhere.
	owner := uint64(7)
	seats := model.Layout{FullRows: 1, SeatsPerRow: 3}.Seats()
	seats[0].BookedBy = &owner
	seats[1].BookedBy = &owner

	_, err := Decide(seats, []uint64{1, 3}, maxPerRequest)
	assert.ErrorIs(t, err, ErrNoAvailability)

	// A single remaining seat still satisfies a party of one.
	got, err := Decide(seats, []uint64{3}, maxPerRequest)
	require.NoError(t, err)
	assert.Equal(t, Exact, got.Outcome)
	assert.Equal(t, []uint64{3}, got.SeatNumbers)
}

func TestDecideDeterministic(t *testing.T) {
	snap := snapshot(3, 10, 17)
	first, err := Decide(snap, []uint64{3, 10}, maxPerRequest)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Decide(snap, []uint64{3, 10}, maxPerRequest)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDecideDoesNotMutateSnapshot(t *testing.T) {
	snap := snapshot(1)
	_, err := Decide(snap, []uint64{2, 3}, maxPerRequest)
	require.NoError(t, err)
	assert.Equal(t, snapshot(1), snap)
}
