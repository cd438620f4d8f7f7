package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"movie-ticketing/services"
)

type PaymentHandler struct {
	payment *services.PaymentService
}

func NewPaymentHandler(payment *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payment: payment}
}

// CreateSession - hold seats and open a payment session for them.
func (h *PaymentHandler) CreateSession(c echo.Context) error {
	var req struct {
		ShowtimeID string   `json:"showtime_id"`
		PayerID    string   `json:"payer_id"`
		SeatLabels []string `json:"seat_labels"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ShowtimeID == "" || len(req.SeatLabels) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_id and seat_labels are required"})
	}

	session, err := h.payment.CreateSession(c.Request().Context(), req.ShowtimeID, req.PayerID, req.SeatLabels)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, session)
}

// CompleteSession - charge the payer and commit the underlying hold.
func (h *PaymentHandler) CompleteSession(c echo.Context) error {
	paymentID := c.Param("paymentId")

	booking, err := h.payment.CompleteSession(c.Request().Context(), paymentID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, booking)
}

// AbandonSession - cancel checkout and release the held seats.
func (h *PaymentHandler) AbandonSession(c echo.Context) error {
	paymentID := c.Param("paymentId")

	if err := h.payment.AbandonSession(c.Request().Context(), paymentID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"abandoned": true})
}
