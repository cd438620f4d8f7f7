package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"movie-ticketing/config"
	"movie-ticketing/models"
	"movie-ticketing/status"
	"movie-ticketing/utils"
)

// ChargeGateway is the external payment collaborator. Implementations
// charge the payer for a session and return a transaction reference.
type ChargeGateway interface {
	Charge(ctx context.Context, session *models.PaymentSession) (string, error)
}

// PaymentService drives the external booking protocol: hold the seats,
// charge the payer, then commit on success or release on failure. Session
// state lives in Redis with a TTL so an abandoned checkout cannot pin a
// hold beyond its own expiry.
type PaymentService struct {
	redis   *redis.Client
	booking *BookingService
	gateway ChargeGateway
	breaker *utils.CircuitBreaker
	cfg     *config.Config
}

func NewPaymentService(redisClient *redis.Client, booking *BookingService, gateway ChargeGateway, cfg *config.Config) *PaymentService {
	return &PaymentService{
		redis:   redisClient,
		booking: booking,
		gateway: gateway,
		breaker: utils.NewCircuitBreaker("charge-gateway"),
		cfg:     cfg,
	}
}

// CreateSession holds the requested seats and opens a pending payment
// session for them. The hold TTL and the session TTL come from config;
// if the payer never completes, the expirer frees the seats.
func (s *PaymentService) CreateSession(ctx context.Context, showtimeID, payerID string, seatLabels []string) (*models.PaymentSession, error) {
	token, err := s.booking.Hold(ctx, showtimeID, seatLabels, s.cfg.HoldTTL)
	if err != nil {
		return nil, err
	}

	amount, err := s.seatTotal(showtimeID, seatLabels)
	if err != nil {
		// Seats are held but unreadable; release and bail out.
		if relErr := s.booking.Release(ctx, showtimeID, token); relErr != nil {
			log.WithError(relErr).Warn("release after failed pricing did not apply")
		}
		return nil, err
	}

	now := time.Now().UTC()
	session := &models.PaymentSession{
		ID:         uuid.New().String(),
		ShowtimeID: showtimeID,
		PayerID:    payerID,
		HoldToken:  token,
		SeatLabels: seatLabels,
		Amount:     amount,
		Status:     "pending",
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.PaymentTTL),
	}
	if err := s.saveSession(ctx, session); err != nil {
		if relErr := s.booking.Release(ctx, showtimeID, token); relErr != nil {
			log.WithError(relErr).Warn("release after failed session save did not apply")
		}
		return nil, err
	}
	return session, nil
}

// CompleteSession charges the payer and commits the hold. A declined or
// failed charge releases the seats and marks the session failed.
func (s *PaymentService) CompleteSession(ctx context.Context, paymentID string) (*models.Booking, error) {
	session, err := s.Session(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if session.Status != "pending" {
		return nil, status.ErrPaymentNotFound
	}

	// Claim the session before charging: concurrent completes of the
	// same session must not reach the gateway twice.
	claimed, err := s.redis.SetNX(ctx, claimKey(paymentID), "1", s.cfg.PaymentTTL).Result()
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, status.ErrPaymentInProgress
	}

	_, chargeErr := s.breaker.Execute(ctx, func() (any, error) {
		return s.gateway.Charge(ctx, session)
	})
	if chargeErr != nil {
		session.Status = "failed"
		if err := s.saveSession(ctx, session); err != nil {
			log.WithError(err).Warn("failed payment session not persisted")
		}
		if err := s.booking.Release(ctx, session.ShowtimeID, session.HoldToken); err != nil {
			log.WithError(err).Warn("release after failed charge did not apply")
		}
		return nil, fmt.Errorf("%w: %v", status.ErrPaymentFailed, chargeErr)
	}

	booking, err := s.booking.Commit(ctx, session.ShowtimeID, session.HoldToken, session.PayerID)
	if err != nil {
		// Charged but the hold is gone (expired under a slow payer).
		// The operator resolves the charge; the seats stay consistent.
		session.Status = "failed"
		if saveErr := s.saveSession(ctx, session); saveErr != nil {
			log.WithError(saveErr).Warn("failed payment session not persisted")
		}
		return nil, err
	}

	session.Status = "completed"
	if err := s.saveSession(ctx, session); err != nil {
		log.WithError(err).Warn("completed payment session not persisted")
	}
	return booking, nil
}

// AbandonSession releases the session's hold and marks it failed. Safe to
// call for sessions whose hold already expired or committed.
func (s *PaymentService) AbandonSession(ctx context.Context, paymentID string) error {
	session, err := s.Session(ctx, paymentID)
	if err != nil {
		return err
	}
	if err := s.booking.Release(ctx, session.ShowtimeID, session.HoldToken); err != nil {
		return err
	}
	session.Status = "failed"
	return s.saveSession(ctx, session)
}

// Session loads a payment session from Redis.
func (s *PaymentService) Session(ctx context.Context, paymentID string) (*models.PaymentSession, error) {
	raw, err := s.redis.Get(ctx, paymentKey(paymentID)).Bytes()
	if err == redis.Nil {
		return nil, status.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	var session models.PaymentSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *PaymentService) saveSession(ctx context.Context, session *models.PaymentSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, paymentKey(session.ID), raw, s.cfg.PaymentTTL).Err()
}

func (s *PaymentService) seatTotal(showtimeID string, seatLabels []string) (decimal.Decimal, error) {
	seats, err := s.booking.Snapshot(showtimeID)
	if err != nil {
		return decimal.Zero, err
	}
	prices := make(map[string]decimal.Decimal, len(seats))
	for _, seat := range seats {
		prices[seat.Label] = seat.Price
	}
	total := decimal.Zero
	for _, label := range seatLabels {
		total = total.Add(prices[label])
	}
	return total, nil
}

func paymentKey(paymentID string) string {
	return fmt.Sprintf("payment:%s", paymentID)
}

func claimKey(paymentID string) string {
	return fmt.Sprintf("payment:%s:claim", paymentID)
}
