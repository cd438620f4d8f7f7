package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"movie-ticketing/models"
	"movie-ticketing/services"
)

type SeatHandler struct {
	ledger *services.LedgerService
}

func NewSeatHandler(ledger *services.LedgerService) *SeatHandler {
	return &SeatHandler{ledger: ledger}
}

// GetSeats - render the seat map for a showtime. Served from the
// ledger's last published state; it never waits on pending bookings.
func (h *SeatHandler) GetSeats(c echo.Context) error {
	showtimeID := c.Param("showtimeId")

	seats, err := h.ledger.Snapshot(showtimeID)
	if err != nil {
		return writeError(c, err)
	}

	available := 0
	for _, seat := range seats {
		if seat.Status == models.SeatFree {
			available++
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id":     showtimeID,
		"seats":           seats,
		"total_seats":     len(seats),
		"available_seats": available,
	})
}

// InitShowtime - register a showtime's seat layout with the ledger.
// Called by the catalog service when a showtime is scheduled; repeating
// the call for a known showtime is a no-op.
func (h *SeatHandler) InitShowtime(c echo.Context) error {
	showtimeID := c.Param("showtimeId")

	var req struct {
		Seats []struct {
			Label string          `json:"label"`
			Price decimal.Decimal `json:"price"`
		} `json:"seats"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}

	layout := make([]models.Seat, len(req.Seats))
	for i, seat := range req.Seats {
		layout[i] = models.Seat{Label: seat.Label, Price: seat.Price}
	}

	if err := h.ledger.Initialize(showtimeID, layout); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id": showtimeID,
		"total_seats": len(layout),
	})
}
