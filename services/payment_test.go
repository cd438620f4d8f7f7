package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-ticketing/models"
	"movie-ticketing/status"
)

type stubGateway struct {
	txID string
	err  error
}

func (g *stubGateway) Charge(ctx context.Context, session *models.PaymentSession) (string, error) {
	return g.txID, g.err
}

func newTestPayment(t *testing.T, gateway ChargeGateway) (*PaymentService, *BookingService, *LedgerService, redismock.ClientMock) {
	t.Helper()
	cfg := testConfig()
	booking, ledger := newTestBooking(t, cfg)
	db, mock := redismock.NewClientMock()
	payment := NewPaymentService(db, booking, gateway, cfg)
	return payment, booking, ledger, mock
}

func pendingSession(showtimeID, token string, seatLabels []string) *models.PaymentSession {
	now := time.Now().UTC()
	return &models.PaymentSession{
		ID:         "pay-1",
		ShowtimeID: showtimeID,
		PayerID:    "payer-x",
		HoldToken:  token,
		SeatLabels: seatLabels,
		Amount:     decimal.NewFromInt(20),
		Status:     "pending",
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Minute),
	}
}

func expectSessionGet(t *testing.T, mock redismock.ClientMock, session *models.PaymentSession) {
	t.Helper()
	raw, err := json.Marshal(session)
	require.NoError(t, err)
	mock.ExpectGet("payment:" + session.ID).SetVal(string(raw))
}

func TestPayment_CreateSessionHoldsSeats(t *testing.T) {
	payment, _, ledger, mock := newTestPayment(t, &stubGateway{txID: "TX-1"})

	// Session ID is a fresh UUID; match key and body loosely.
	mock.Regexp().ExpectSet(`payment:.+`, `.+`, time.Minute).SetVal("OK")

	session, err := payment.CreateSession(context.Background(), "show-1", "payer-x", []string{"A1", "A2"})
	require.NoError(t, err)
	assert.Equal(t, "pending", session.Status)
	assert.NotEmpty(t, session.HoldToken)
	assert.True(t, session.Amount.Equal(decimal.NewFromInt(20)))

	statuses := seatStatuses(t, ledger, "show-1")
	assert.Equal(t, models.SeatHeld, statuses["A1"])
	assert.Equal(t, models.SeatHeld, statuses["A2"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayment_CreateSessionSeatTaken(t *testing.T) {
	payment, booking, _, _ := newTestPayment(t, &stubGateway{txID: "TX-1"})

	_, err := booking.Hold(context.Background(), "show-1", []string{"A2"}, time.Minute)
	require.NoError(t, err)

	_, err = payment.CreateSession(context.Background(), "show-1", "payer-y", []string{"A1", "A2"})
	var unavailable *status.SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "A2", unavailable.SeatLabel)
}

func TestPayment_CompleteSessionCommits(t *testing.T) {
	payment, booking, ledger, mock := newTestPayment(t, &stubGateway{txID: "TX-1"})

	token, err := booking.Hold(context.Background(), "show-1", []string{"A1", "A2"}, time.Minute)
	require.NoError(t, err)

	expectSessionGet(t, mock, pendingSession("show-1", token, []string{"A1", "A2"}))
	mock.ExpectSetNX("payment:pay-1:claim", "1", time.Minute).SetVal(true)
	mock.Regexp().ExpectSet(`payment:pay-1`, `.+`, time.Minute).SetVal("OK")

	result, err := payment.CompleteSession(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, result.Status)
	assert.Equal(t, "payer-x", result.PayerID)

	statuses := seatStatuses(t, ledger, "show-1")
	assert.Equal(t, models.SeatBooked, statuses["A1"])
	assert.Equal(t, models.SeatBooked, statuses["A2"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayment_CompleteSessionChargeFailsReleasesHold(t *testing.T) {
	payment, booking, ledger, mock := newTestPayment(t, &stubGateway{err: errors.New("card declined")})

	token, err := booking.Hold(context.Background(), "show-1", []string{"A1"}, time.Minute)
	require.NoError(t, err)

	expectSessionGet(t, mock, pendingSession("show-1", token, []string{"A1"}))
	mock.ExpectSetNX("payment:pay-1:claim", "1", time.Minute).SetVal(true)
	mock.Regexp().ExpectSet(`payment:pay-1`, `.+`, time.Minute).SetVal("OK")

	_, err = payment.CompleteSession(context.Background(), "pay-1")
	assert.ErrorIs(t, err, status.ErrPaymentFailed)

	// The charge failed, so the protocol releases the seats.
	assert.Equal(t, models.SeatFree, seatStatuses(t, ledger, "show-1")["A1"])
}

func TestPayment_CompleteSessionHoldExpired(t *testing.T) {
	payment, booking, _, mock := newTestPayment(t, &stubGateway{txID: "TX-1"})

	token, err := booking.Hold(context.Background(), "show-1", []string{"A1"}, -time.Second)
	require.NoError(t, err)

	expectSessionGet(t, mock, pendingSession("show-1", token, []string{"A1"}))
	mock.ExpectSetNX("payment:pay-1:claim", "1", time.Minute).SetVal(true)
	mock.Regexp().ExpectSet(`payment:pay-1`, `.+`, time.Minute).SetVal("OK")

	_, err = payment.CompleteSession(context.Background(), "pay-1")
	assert.ErrorIs(t, err, status.ErrHoldExpired)
}

func TestPayment_CompleteSessionSingleCharge(t *testing.T) {
	payment, booking, ledger, mock := newTestPayment(t, &stubGateway{txID: "TX-1"})

	token, err := booking.Hold(context.Background(), "show-1", []string{"A1"}, time.Minute)
	require.NoError(t, err)

	// A concurrent complete already claimed the session; this caller
	// must back off before the gateway is charged.
	expectSessionGet(t, mock, pendingSession("show-1", token, []string{"A1"}))
	mock.ExpectSetNX("payment:pay-1:claim", "1", time.Minute).SetVal(false)

	_, err = payment.CompleteSession(context.Background(), "pay-1")
	assert.ErrorIs(t, err, status.ErrPaymentInProgress)

	// The hold is untouched; the winning complete owns its fate.
	assert.Equal(t, models.SeatHeld, seatStatuses(t, ledger, "show-1")["A1"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayment_SessionNotFound(t *testing.T) {
	payment, _, _, mock := newTestPayment(t, &stubGateway{})

	mock.ExpectGet("payment:missing").RedisNil()

	_, err := payment.CompleteSession(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrPaymentNotFound)
}

func TestPayment_AbandonSessionFreesSeats(t *testing.T) {
	payment, booking, ledger, mock := newTestPayment(t, &stubGateway{txID: "TX-1"})

	token, err := booking.Hold(context.Background(), "show-1", []string{"A1"}, time.Minute)
	require.NoError(t, err)

	expectSessionGet(t, mock, pendingSession("show-1", token, []string{"A1"}))
	mock.Regexp().ExpectSet(`payment:pay-1`, `.+`, time.Minute).SetVal("OK")

	require.NoError(t, payment.AbandonSession(context.Background(), "pay-1"))
	assert.Equal(t, models.SeatFree, seatStatuses(t, ledger, "show-1")["A1"])
}
