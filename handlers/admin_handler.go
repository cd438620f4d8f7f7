package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"movie-ticketing/services"
	"movie-ticketing/utils"
)

type AdminHandler struct {
	ledger *services.LedgerService
	redis  *redis.Client
}

func NewAdminHandler(ledger *services.LedgerService, redisClient *redis.Client) *AdminHandler {
	return &AdminHandler{ledger: ledger, redis: redisClient}
}

// ListShowtimes - enumerate showtimes registered with the ledger.
func (h *AdminHandler) ListShowtimes(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"showtimes": h.ledger.Showtimes(),
	})
}

// Health - liveness plus Redis connectivity.
func (h *AdminHandler) Health(c echo.Context) error {
	health := echo.Map{"status": "ok"}

	if h.redis != nil {
		if err := utils.RedisHealthCheck(h.redis); err != nil {
			health["status"] = "degraded"
			health["redis"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, health)
		}
		health["redis"] = "ok"
	}

	return c.JSON(http.StatusOK, health)
}
