package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"movie-ticketing/config"
	"movie-ticketing/services"
)

type BookingHandler struct {
	booking *services.BookingService
	cfg     *config.Config
}

func NewBookingHandler(booking *services.BookingService, cfg *config.Config) *BookingHandler {
	return &BookingHandler{booking: booking, cfg: cfg}
}

// HoldSeats - reserve seats for the configured TTL ahead of payment.
// All-or-nothing: a single unavailable seat fails the whole request and
// names the seat so the UI can re-render.
func (h *BookingHandler) HoldSeats(c echo.Context) error {
	showtimeID := c.Param("showtimeId")

	var req struct {
		SeatLabels []string `json:"seat_labels"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.SeatLabels) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_labels is required"})
	}

	token, err := h.booking.Hold(c.Request().Context(), showtimeID, req.SeatLabels, h.cfg.HoldTTL)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"hold_token": token,
		"expires_at": time.Now().UTC().Add(h.cfg.HoldTTL),
	})
}

// CommitHold - promote a live hold into a confirmed booking. Normally
// reached through the payment flow after a successful charge.
func (h *BookingHandler) CommitHold(c echo.Context) error {
	showtimeID := c.Param("showtimeId")

	var req struct {
		HoldToken string `json:"hold_token"`
		PayerID   string `json:"payer_id"`
	}
	if err := c.Bind(&req); err != nil || req.HoldToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hold_token is required"})
	}

	booking, err := h.booking.Commit(c.Request().Context(), showtimeID, req.HoldToken, req.PayerID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, booking)
}

// ReleaseHold - free the seats held under a token. Idempotent: releasing
// an unknown or already expired token succeeds.
func (h *BookingHandler) ReleaseHold(c echo.Context) error {
	showtimeID := c.Param("showtimeId")

	var req struct {
		HoldToken string `json:"hold_token"`
	}
	if err := c.Bind(&req); err != nil || req.HoldToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hold_token is required"})
	}

	if err := h.booking.Release(c.Request().Context(), showtimeID, req.HoldToken); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"released": true})
}

// CancelBooking - revert a confirmed booking's seats to FREE.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	showtimeID := c.Param("showtimeId")

	var req struct {
		BookingID string `json:"booking_id"`
	}
	if err := c.Bind(&req); err != nil || req.BookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id is required"})
	}

	if err := h.booking.CancelBooking(c.Request().Context(), showtimeID, req.BookingID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"cancelled": true})
}
