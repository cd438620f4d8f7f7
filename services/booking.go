package services

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"movie-ticketing/config"
	"movie-ticketing/models"
	"movie-ticketing/monitoring"
	"movie-ticketing/status"
)

type opKind string

const (
	opHold    opKind = "hold"
	opCommit  opKind = "commit"
	opRelease opKind = "release"
	opCancel  opKind = "cancel"
)

// operation is one queued mutation against a showtime's ledger. The
// worker writes exactly one result to reply; callers that stop waiting
// abandon the buffered channel, they never retract the operation.
type operation struct {
	kind       opKind
	showtimeID string
	seatLabels []string
	token      string
	payerID    string
	bookingID  string
	ttl        time.Duration

	reply chan opResult
}

type opResult struct {
	token   string
	booking *models.Booking
	err     error
}

// worker owns one showtime: a bounded FIFO channel drained by a single
// goroutine, so no two mutations for the same showtime ever interleave.
type worker struct {
	ops chan operation
}

// BookingService serializes all mutating seat operations. It is the only
// caller of the ledger's apply* methods. Different showtimes get
// independent workers and run concurrently; operations for one showtime
// execute strictly in enqueue order.
type BookingService struct {
	ledger   *LedgerService
	notifier *Notifier
	monitor  *monitoring.Monitor
	cfg      *config.Config

	mu      sync.Mutex
	workers map[string]*worker

	stopped chan struct{}
	wg      sync.WaitGroup
}

func NewBookingService(ledger *LedgerService, notifier *Notifier, monitor *monitoring.Monitor, cfg *config.Config) *BookingService {
	return &BookingService{
		ledger:   ledger,
		notifier: notifier,
		monitor:  monitor,
		cfg:      cfg,
		workers:  make(map[string]*worker),
		stopped:  make(chan struct{}),
	}
}

// Hold reserves the given seats for ttl, returning the holder token. It
// fails without mutating anything when any requested seat is not FREE.
func (s *BookingService) Hold(ctx context.Context, showtimeID string, seatLabels []string, ttl time.Duration) (string, error) {
	res, err := s.submit(ctx, operation{
		kind:       opHold,
		showtimeID: showtimeID,
		seatLabels: seatLabels,
		ttl:        ttl,
	})
	if err != nil {
		return "", err
	}
	return res.token, res.err
}

// Commit promotes a live hold into a confirmed booking.
func (s *BookingService) Commit(ctx context.Context, showtimeID, token, payerID string) (*models.Booking, error) {
	res, err := s.submit(ctx, operation{
		kind:       opCommit,
		showtimeID: showtimeID,
		token:      token,
		payerID:    payerID,
	})
	if err != nil {
		return nil, err
	}
	return res.booking, res.err
}

// Release frees the seats held under token. Unknown tokens are a no-op.
func (s *BookingService) Release(ctx context.Context, showtimeID, token string) error {
	res, err := s.submit(ctx, operation{
		kind:       opRelease,
		showtimeID: showtimeID,
		token:      token,
	})
	if err != nil {
		return err
	}
	return res.err
}

// CancelBooking reverts a confirmed booking's seats to FREE.
func (s *BookingService) CancelBooking(ctx context.Context, showtimeID, bookingID string) error {
	res, err := s.submit(ctx, operation{
		kind:       opCancel,
		showtimeID: showtimeID,
		bookingID:  bookingID,
	})
	if err != nil {
		return err
	}
	return res.err
}

// Snapshot bypasses the queue: it reads the last published ledger state.
func (s *BookingService) Snapshot(showtimeID string) ([]models.Seat, error) {
	return s.ledger.Snapshot(showtimeID)
}

// submit enqueues op and waits for its result. A full queue fails fast
// with ErrOverloaded. When the caller's timeout or context expires first
// the outcome is unknown: the operation stays queued and will still be
// applied, so the caller must reconcile via a snapshot.
func (s *BookingService) submit(ctx context.Context, op operation) (opResult, error) {
	op.reply = make(chan opResult, 1)
	w, err := s.workerFor(op.showtimeID)
	if err != nil {
		return opResult{}, err
	}

	select {
	case w.ops <- op:
	default:
		s.monitor.TrackBookingOperation(string(op.kind), op.showtimeID, "overloaded")
		return opResult{}, status.ErrOverloaded
	}
	s.monitor.SetQueueDepth(op.showtimeID, len(w.ops))

	timer := time.NewTimer(s.cfg.OpTimeout)
	defer timer.Stop()

	select {
	case res := <-op.reply:
		return res, nil
	case <-timer.C:
		s.monitor.TrackBookingOperation(string(op.kind), op.showtimeID, "timeout")
		return opResult{}, status.ErrTimeout
	case <-ctx.Done():
		s.monitor.TrackBookingOperation(string(op.kind), op.showtimeID, "timeout")
		return opResult{}, status.ErrTimeout
	}
}

func (s *BookingService) workerFor(showtimeID string) (*worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[showtimeID]
	if !ok {
		// Workers exist only for registered showtimes; unknown IDs must
		// not accumulate goroutines and channels.
		if _, err := s.ledger.ledger(showtimeID); err != nil {
			return nil, err
		}
		w = &worker{ops: make(chan operation, s.cfg.QueueDepth)}
		s.workers[showtimeID] = w
		s.wg.Add(1)
		go s.run(showtimeID, w)
	}
	return w, nil
}

func (s *BookingService) run(showtimeID string, w *worker) {
	defer s.wg.Done()
	for {
		select {
		case op := <-w.ops:
			s.execute(op)
			s.monitor.SetQueueDepth(showtimeID, len(w.ops))
		case <-s.stopped:
			return
		}
	}
}

func (s *BookingService) execute(op operation) {
	started := time.Now()
	var res opResult

	switch op.kind {
	case opHold:
		res.token, res.err = s.ledger.applyHold(op.showtimeID, op.seatLabels, op.ttl)
	case opCommit:
		heldAt, tracked := s.ledger.holdCreatedAt(op.showtimeID, op.token)
		res.booking, res.err = s.ledger.applyCommit(op.showtimeID, op.token, op.payerID)
		if res.err == nil && tracked {
			s.monitor.TrackHoldDuration(time.Since(heldAt))
		}
	case opRelease:
		heldAt, tracked := s.ledger.holdCreatedAt(op.showtimeID, op.token)
		res.err = s.ledger.applyRelease(op.showtimeID, op.token)
		if res.err == nil && tracked {
			s.monitor.TrackHoldDuration(time.Since(heldAt))
		}
	case opCancel:
		res.err = s.ledger.applyCancel(op.showtimeID, op.bookingID)
	}

	outcome := "success"
	if res.err != nil {
		outcome = "failure"
		log.WithFields(log.Fields{
			"op":       op.kind,
			"showtime": op.showtimeID,
		}).WithError(res.err).Warn("booking operation failed")
	} else {
		s.notifySeatMap(op.showtimeID)
	}
	s.monitor.TrackBookingOperation(string(op.kind), op.showtimeID, outcome)
	s.monitor.TrackOperationDuration(string(op.kind), time.Since(started))

	op.reply <- res
}

func (s *BookingService) notifySeatMap(showtimeID string) {
	if s.notifier == nil {
		return
	}
	seats, err := s.ledger.Snapshot(showtimeID)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.notifier.SeatMapChanged(ctx, showtimeID, seats)
}

// Stop shuts down all workers. Queued operations that have not started
// are dropped; callers observe a timeout and reconcile via snapshot.
func (s *BookingService) Stop() {
	close(s.stopped)
	s.wg.Wait()
}
