package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"movie-ticketing/status"
)

// writeError maps the booking error taxonomy to HTTP responses. Callers
// of the API key retry behaviour off these codes: 503/504 are transient,
// 409/410 mean re-render the seat map and start over.
func writeError(c echo.Context, err error) error {
	var unavailable *status.SeatUnavailableError
	if errors.As(err, &unavailable) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "seat unavailable",
			"seat":  unavailable.SeatLabel,
		})
	}

	var corrupt *status.StoreCorruptError
	if errors.As(err, &corrupt) {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "showtime unavailable",
		})
	}

	var persistence *status.PersistenceError
	if errors.As(err, &persistence) {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "temporary storage failure, please retry",
		})
	}

	switch {
	case errors.Is(err, status.ErrHoldExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "hold expired"})
	case errors.Is(err, status.ErrHoldNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
	case errors.Is(err, status.ErrShowtimeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	case errors.Is(err, status.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, status.ErrPaymentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment session not found"})
	case errors.Is(err, status.ErrOverloaded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "booking queue is busy, try again"})
	case errors.Is(err, status.ErrTimeout):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "operation timed out, check the seat map before retrying"})
	case errors.Is(err, status.ErrPaymentInProgress):
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment already in progress"})
	case errors.Is(err, status.ErrPaymentFailed):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment failed"})
	}

	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
