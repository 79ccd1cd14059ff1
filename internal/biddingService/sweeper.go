package bidding

import (
	"context"
	"sync"
	"time"

	"storefront/utils"
)

// ExpiredAuctionCloser is the slice of AuctionService the sweeper drives
type ExpiredAuctionCloser interface {
	CloseExpiredAuctions(ctx context.Context) ([]CloseResult, error)
}

// Sweeper closes expired auctions once at start and then on every tick
type Sweeper struct {
	closer   ExpiredAuctionCloser
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(closer ExpiredAuctionCloser, interval time.Duration) *Sweeper {
	return &Sweeper{
		closer:   closer,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop in its own goroutine until ctx is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	results, err := s.closer.CloseExpiredAuctions(ctx)
	if err != nil {
		utils.Error("auction sweep failed", map[string]any{"error": err.Error()})
		return
	}
	utils.Debug("auction sweep completed", map[string]any{"closed": len(results)})
}
