package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutDefaultCoach(t *testing.T) {
	l := Layout{FullRows: 11, SeatsPerRow: 7, LastRowSeats: 3}

	assert.Equal(t, 12, l.Rows())
	assert.Equal(t, 80, l.TotalSeats())

	seats := l.Seats()
	require.Len(t, seats, 80)

	// Sequential numbering, row by row.
	for i, s := range seats {
		assert.Equal(t, uint64(i+1), s.SeatNumber)
		assert.False(t, s.Booked())
	}
	assert.Equal(t, uint32(1), seats[0].RowNumber)
	assert.Equal(t, uint32(1), seats[6].RowNumber)
	assert.Equal(t, uint32(2), seats[7].RowNumber)
	assert.Equal(t, uint32(11), seats[76].RowNumber)

	// The short last row holds seats 78..80.
	for _, s := range seats[77:] {
		assert.Equal(t, uint32(12), s.RowNumber)
	}
}

func TestLayoutWithoutPartialRow(t *testing.T) {
	l := Layout{FullRows: 3, SeatsPerRow: 4}

	assert.Equal(t, 3, l.Rows())
	assert.Equal(t, 12, l.TotalSeats())

	seats := l.Seats()
	require.Len(t, seats, 12)
	assert.Equal(t, uint32(3), seats[11].RowNumber)
	assert.Equal(t, uint64(12), seats[11].SeatNumber)
}
