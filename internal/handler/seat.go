package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-booking/internal/allocator"
	"github.com/iliyamo/train-seat-booking/internal/booking"
	"github.com/iliyamo/train-seat-booking/internal/model"
	"github.com/iliyamo/train-seat-booking/internal/repository"
)

// SeatHandler serves the public seat map endpoints and the admin
// layout reset.  Reads hit the database directly and are safe to serve
// concurrently with reservations; clients treat the result as a
// snapshot that may be stale by the time they act on it.
type SeatHandler struct {
	SeatRepo    *repository.SeatRepo
	Coordinator *booking.Coordinator
	Layout      model.Layout
}

// NewSeatHandler constructs a SeatHandler.
func NewSeatHandler(seats *repository.SeatRepo, coord *booking.Coordinator, layout model.Layout) *SeatHandler {
	if seats == nil || coord == nil {
		panic("nil dependency passed to NewSeatHandler")
	}
	return &SeatHandler{SeatRepo: seats, Coordinator: coord, Layout: layout}
}

type seatView struct {
	SeatNumber uint64 `json:"seat_number"`
	RowNumber  uint32 `json:"row_number"`
	Booked     bool   `json:"booked"`
}

// List handles GET /v1/seats and returns every seat with its booked
// flag, ordered by seat number.
func (h *SeatHandler) List(c echo.Context) error {
	seats, err := h.SeatRepo.Snapshot(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}
	out := make([]seatView, 0, len(seats))
	for _, s := range seats {
		out = append(out, seatView{SeatNumber: s.SeatNumber, RowNumber: s.RowNumber, Booked: s.Booked()})
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": out, "total": len(out)})
}

// LayoutView handles GET /v1/seats/layout.  It groups the seat snapshot by
// row so clients can render the coach without re-deriving the layout.
func (h *SeatHandler) LayoutView(c echo.Context) error {
	seats, err := h.SeatRepo.Snapshot(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}

	type rowView struct {
		RowNumber uint32     `json:"row_number"`
		Seats     []seatView `json:"seats"`
	}
	rows := make([]rowView, 0, h.Layout.Rows())
	for _, s := range seats {
		if len(rows) == 0 || rows[len(rows)-1].RowNumber != s.RowNumber {
			rows = append(rows, rowView{RowNumber: s.RowNumber})
		}
		last := &rows[len(rows)-1]
		last.Seats = append(last.Seats, seatView{SeatNumber: s.SeatNumber, RowNumber: s.RowNumber, Booked: s.Booked()})
	}
	return c.JSON(http.StatusOK, echo.Map{"rows": rows, "total_seats": len(seats)})
}

type previewReq struct {
	SeatNumbers []uint64 `json:"seat_numbers"`
}

// Preview handles POST /v1/seats/preview.  It runs the allocation
// decision against the current snapshot without reserving anything, so
// a client can show the user which seats a booking would actually
// grant.  The answer carries no guarantee; another booking may land
// first.
func (h *SeatHandler) Preview(c echo.Context) error {
	var body previewReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	seats, err := h.SeatRepo.Snapshot(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}

	alloc, err := allocator.Decide(seats, body.SeatNumbers, h.Coordinator.MaxPerBooking())
	if err != nil {
		switch {
		case errors.Is(err, allocator.ErrNoSeatsRequested):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_numbers is required"})
		case errors.Is(err, allocator.ErrTooManySeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many seats requested"})
		case errors.Is(err, allocator.ErrNoAvailability):
			return c.JSON(http.StatusConflict, echo.Map{"error": "no row has enough free seats"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "preview failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seat_numbers": alloc.SeatNumbers,
		"exact":        alloc.Outcome == allocator.Exact,
		"checked_at":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Reset handles POST /v1/admin/seats/reset.  It wipes and reseeds the
// seat inventory from the configured layout.  The rebuild goes through
// the coordinator so it cannot interleave with an in-flight
// reservation; while any active booking exists it is refused with 409.
func (h *SeatHandler) Reset(c echo.Context) error {
	err := h.Coordinator.ResetInventory(c.Request().Context(), h.Layout.Seats())
	if err != nil {
		if errors.Is(err, booking.ErrActiveBookings) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "active bookings exist, reset refused"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "seat inventory reset",
		"total_seats": h.Layout.TotalSeats(),
	})
}
