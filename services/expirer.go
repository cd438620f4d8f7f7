package services

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"movie-ticketing/monitoring"
)

// Expirer reclaims holds whose TTL elapsed without a commit. It never
// touches the ledger directly: expired holds are turned into release
// operations on the booking queue, so the per-showtime ordering
// guarantee stays intact. A hold that was committed or released by the
// time its release executes is simply a no-op.
type Expirer struct {
	ledger   *LedgerService
	booking  *BookingService
	monitor  *monitoring.Monitor
	interval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewExpirer(ledger *LedgerService, booking *BookingService, monitor *monitoring.Monitor, interval time.Duration) *Expirer {
	return &Expirer{
		ledger:   ledger,
		booking:  booking,
		monitor:  monitor,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background sweep goroutine.
func (e *Expirer) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		log.WithField("interval", e.interval).Info("hold expirer started")
		for {
			select {
			case <-ticker.C:
				e.Sweep(context.Background())
			case <-e.stopChan:
				log.Info("hold expirer stopping")
				return
			}
		}
	}()
}

// Sweep enqueues a release for every hold whose expiry has passed.
func (e *Expirer) Sweep(ctx context.Context) {
	expired := e.ledger.ExpiredHolds(time.Now().UTC())
	for showtimeID, tokens := range expired {
		for _, token := range tokens {
			if err := e.booking.Release(ctx, showtimeID, token); err != nil {
				// Overload or timeout: the hold stays expired and the
				// next sweep picks it up again.
				log.WithFields(log.Fields{
					"showtime": showtimeID,
				}).WithError(err).Warn("expired hold release not applied")
				continue
			}
			e.monitor.TrackHoldExpired()
			log.WithFields(log.Fields{
				"showtime": showtimeID,
			}).Debug("expired hold released")
		}
	}
}

func (e *Expirer) Stop() {
	close(e.stopChan)
	e.wg.Wait()
}
