package holds

import (
	"context"
	"log"
	"time"

	"bookmyticket/pkg/logger"
)

// Sweeper periodically reclaims expired holds. Lazy expiry inside the
// ledger keeps things correct regardless of cadence; the sweeper just
// bounds how long a lapsed claim can linger.
type Sweeper struct {
	ledger   Ledger
	interval time.Duration
	logger   *logger.Logger
	done     chan struct{}
}

func NewSweeper(ledger Ledger, interval time.Duration, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Sweeper{
		ledger:   ledger,
		interval: interval,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop
func (s *Sweeper) Start(ctx context.Context) {
	log.Printf("Starting hold sweeper with %v interval", s.interval)
	go s.run(ctx)
}

// Stop stops the background sweep loop
func (s *Sweeper) Stop() {
	log.Println("Stopping hold sweeper...")
	close(s.done)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	reclaimed, err := s.ledger.SweepExpired(ctx)
	if err != nil {
		log.Printf("Error sweeping expired holds: %v", err)
		return
	}

	if reclaimed > 0 {
		s.logger.LogHoldSwept(ctx, reclaimed)
	}
}
