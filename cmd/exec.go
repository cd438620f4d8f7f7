package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	log "github.com/sirupsen/logrus"

	"movie-ticketing/config"
	"movie-ticketing/handlers"
	"movie-ticketing/monitoring"
	"movie-ticketing/security"
	"movie-ticketing/services"
	"movie-ticketing/store"
	"movie-ticketing/utils"
)

func Start() error {
	// A .env file is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	log.SetLevel(log.InfoLevel)

	// Durable seat store.
	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0755); err != nil {
		return err
	}
	seatStore, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer seatStore.Close()

	// Redis backs payment sessions, the seat-map cache and rate limits.
	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// PubNub push is optional; enabled only when keys are configured.
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	// Core services.
	monitor := monitoring.NewMonitor()
	ledgerService := services.NewLedgerService(seatStore)

	// Re-register every persisted showtime so seat state survives a
	// restart without waiting for an init request.
	ids, err := seatStore.ShowtimeIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := ledgerService.Initialize(id, nil); err != nil {
			log.WithField("showtime", id).WithError(err).Error("showtime restore failed")
		}
	}
	notifier := services.NewNotifier(redisClient, pn)
	bookingService := services.NewBookingService(ledgerService, notifier, monitor, cfg)
	defer bookingService.Stop()

	expirer := services.NewExpirer(ledgerService, bookingService, monitor, cfg.SweepInterval)
	expirer.Start()
	defer expirer.Stop()

	paymentService := services.NewPaymentService(redisClient, bookingService, services.NewAutoApproveGateway(), cfg)

	// Handlers.
	seatHandler := handlers.NewSeatHandler(ledgerService)
	bookingHandler := handlers.NewBookingHandler(bookingService, cfg)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(ledgerService, redisClient)
	rateLimiter := security.NewRateLimiter(redisClient)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/healthz", adminHandler.Health)
	e.GET("/api/v1/showtimes", adminHandler.ListShowtimes)
	e.POST("/api/v1/showtimes/:showtimeId/init", seatHandler.InitShowtime)
	e.GET("/api/v1/showtimes/:showtimeId/seats", seatHandler.GetSeats)

	booking := e.Group("/api/v1/showtimes/:showtimeId", rateLimiter.BookingRateLimit())
	booking.POST("/holds", bookingHandler.HoldSeats)
	booking.POST("/commit", bookingHandler.CommitHold)
	booking.POST("/release", bookingHandler.ReleaseHold)
	booking.POST("/cancel", bookingHandler.CancelBooking)

	payments := e.Group("/api/v1/payments", rateLimiter.BookingRateLimit())
	payments.POST("", paymentHandler.CreateSession)
	payments.POST("/:paymentId/complete", paymentHandler.CompleteSession)
	payments.POST("/:paymentId/abandon", paymentHandler.AbandonSession)

	// Prometheus endpoint on its own port.
	if cfg.EnableMetrics {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			addr := ":" + cfg.MetricsPort
			log.WithField("addr", addr).Info("metrics listener started")
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.WithError(err).Error("metrics listener stopped")
			}
		}()
	}

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(log.Fields{"addr": addr, "env": cfg.Environment}).Info("booking service listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server start failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
