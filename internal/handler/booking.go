package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-booking/internal/allocator"
	"github.com/iliyamo/train-seat-booking/internal/booking"
	"github.com/iliyamo/train-seat-booking/internal/queue"
	"github.com/iliyamo/train-seat-booking/internal/repository"
	queue_publisher "github.com/iliyamo/train-seat-booking/internal/service"
)

// BookingHandler exposes reservation endpoints on top of the
// coordinator.  All methods assume JWT authentication has already been
// performed by middleware; they may return 401 when the user ID cannot
// be extracted from the context.  Mutations go through the coordinator
// (which owns the exclusivity boundary); listings read committed state
// straight from the repositories.
type BookingHandler struct {
	Coordinator *booking.Coordinator
	BookingRepo *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies
// must be non-nil.
func NewBookingHandler(coord *booking.Coordinator, bookings *repository.BookingRepo) *BookingHandler {
	if coord == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Coordinator: coord, BookingRepo: bookings}
}

type reserveReq struct {
	SeatNumbers []uint64 `json:"seat_numbers"`
}

// Reserve handles POST /v1/bookings.  The body carries the seat
// numbers the user picked.  On success it returns 201 with the booking
// id and the seats actually granted; "exact" is false when the
// allocator substituted a different same-row block, so the client can
// tell the user before treating the seats as accepted.  A request that
// no row can hold returns 409; losing an apply-time race returns 409
// as well and can simply be retried.
func (h *BookingHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body reserveReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Coordinator.Reserve(c.Request().Context(), userID, body.SeatNumbers)
	if err != nil {
		switch {
		case errors.Is(err, allocator.ErrNoSeatsRequested):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_numbers is required"})
		case errors.Is(err, allocator.ErrTooManySeats):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "cannot book more than " + strconv.Itoa(h.Coordinator.MaxPerBooking()) + " seats at a time",
			})
		case errors.Is(err, allocator.ErrNoAvailability):
			return c.JSON(http.StatusConflict, echo.Map{"error": "no row has enough free seats"})
		case errors.Is(err, booking.ErrSeatAlreadyBooked):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seats were booked concurrently, please retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}

	// Best effort: the reservation is committed, a lost event must not
	// undo it.
	_ = queue_publisher.PublishBookingEvent(c.Request().Context(), queue.BookingEvent{
		Type:        queue.EventBooked,
		BookingID:   res.BookingID,
		UserID:      userID,
		SeatNumbers: res.SeatNumbers,
		Exact:       res.Exact,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":   res.BookingID,
		"seat_numbers": res.SeatNumbers,
		"exact":        res.Exact,
	})
}

// Cancel handles DELETE /v1/bookings/:id.  It frees the booking's
// seats and deactivates the record as one unit.  Unknown, foreign and
// already-cancelled bookings all answer 404.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	freed, err := h.Coordinator.Cancel(c.Request().Context(), userID, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}

	_ = queue_publisher.PublishBookingEvent(c.Request().Context(), queue.BookingEvent{
		Type:        queue.EventCancelled,
		BookingID:   bookingID,
		UserID:      userID,
		SeatNumbers: freed,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/bookings.  It returns the caller's active
// bookings, newest first, with their seat numbers.  Cancelled bookings
// stay in the ledger but are not listed.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.BookingRepo.ListActiveByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}

	type bookingItem struct {
		ID          uint64   `json:"id"`
		SeatNumbers []uint64 `json:"seat_numbers"`
		CreatedAt   string   `json:"created_at"`
	}
	out := make([]bookingItem, 0, len(items))
	for _, b := range items {
		out = append(out, bookingItem{
			ID:          b.ID,
			SeatNumbers: b.SeatNumbers,
			CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
