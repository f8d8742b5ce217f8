package model

// Layout describes the fixed seating plan of the coach: a number of
// full rows of equal width, optionally followed by one shorter final
// row.  Seat numbers are assigned sequentially row by row, so the
// layout fully determines which seat number sits in which row.  It is
// built once from configuration and never changes afterwards.
type Layout struct {
	FullRows     int // number of rows holding SeatsPerRow seats
	SeatsPerRow  int // seats in each full row
	LastRowSeats int // seats in the trailing partial row, 0 for none
}

// Rows returns the total number of rows, counting the partial row.
func (l Layout) Rows() int {
	if l.LastRowSeats > 0 {
		return l.FullRows + 1
	}
	return l.FullRows
}

// TotalSeats returns the number of seats the layout defines.
func (l Layout) TotalSeats() int {
	return l.FullRows*l.SeatsPerRow + l.LastRowSeats
}

// Seats expands the layout into the full ordered seat list with
// sequential seat numbers, all unbooked.  Used when seeding the
// inventory at startup.
func (l Layout) Seats() []Seat {
	seats := make([]Seat, 0, l.TotalSeats())
	num := uint64(1)
	for row := 1; row <= l.FullRows; row++ {
		for i := 0; i < l.SeatsPerRow; i++ {
			seats = append(seats, Seat{SeatNumber: num, RowNumber: uint32(row)})
			num++
		}
	}
	for i := 0; i < l.LastRowSeats; i++ {
		seats = append(seats, Seat{SeatNumber: num, RowNumber: uint32(l.FullRows + 1)})
		num++
	}
	return seats
}
