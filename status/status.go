package status

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the booking core. All outcomes are returned
// as values to the caller; nothing in the core logs-and-swallows.
var (
	// ErrHoldExpired: commit arrived after the hold's TTL elapsed. The
	// seats were (or will be) reclaimed by the expirer.
	ErrHoldExpired = errors.New("booking: hold expired")

	// ErrHoldNotFound: no live hold under that token. Either it never
	// existed or it was already released or committed.
	ErrHoldNotFound = errors.New("booking: hold not found")

	// ErrShowtimeNotFound: no durable record for the showtime.
	ErrShowtimeNotFound = errors.New("store: showtime not found")

	// ErrBookingNotFound: cancellation referenced an unknown booking.
	ErrBookingNotFound = errors.New("booking: booking not found")

	// ErrOverloaded: the showtime's operation queue is saturated. The
	// caller should back off and retry.
	ErrOverloaded = errors.New("booking: queue overloaded")

	// ErrTimeout: the caller stopped waiting before its operation was
	// executed. The operation is NOT retracted and may still apply;
	// the caller must reconcile via a snapshot before retrying.
	ErrTimeout = errors.New("booking: operation timed out")

	// ErrPaymentFailed: the charge gateway declined or errored. The
	// hold has been released.
	ErrPaymentFailed = errors.New("payment: payment failed")

	// ErrPaymentNotFound: unknown or expired payment session.
	ErrPaymentNotFound = errors.New("payment: session not found")

	// ErrPaymentInProgress: another completion already claimed the
	// session; at most one charge is ever issued per session.
	ErrPaymentInProgress = errors.New("payment: completion already in progress")
)

// SeatUnavailableError reports the first requested seat that was not FREE
// at hold time. No seat was mutated.
type SeatUnavailableError struct {
	ShowtimeID string
	SeatLabel  string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("booking: seat %s unavailable for showtime %s", e.SeatLabel, e.ShowtimeID)
}

// PersistenceError wraps a store write failure. The in-memory ledger was
// rolled back to its pre-operation state; the caller may retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: persist failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StoreCorruptError means the persisted record for a showtime is
// malformed. It is fatal for that showtime's ledger and is surfaced to an
// operator rather than auto-recovered.
type StoreCorruptError struct {
	ShowtimeID string
	Reason     string
}

func (e *StoreCorruptError) Error() string {
	return fmt.Sprintf("store: corrupt record for showtime %s: %s", e.ShowtimeID, e.Reason)
}
