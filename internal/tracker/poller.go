package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bistro/internal/metrics"
)

// OrderLookup is the slice of the API client the poll loop needs.
type OrderLookup interface {
	GetOrder(ctx context.Context, number string) (*OrderSnapshot, error)
}

// Poller keeps the cache in sync with the server. Two timers: a short
// one refreshing statuses, a long one pruning old entries. Lifecycle
// is tied to the context, no leaked timers.
type Poller struct {
	cache         *Cache
	client        OrderLookup
	pollInterval  time.Duration
	pruneInterval time.Duration
	onChange      func([]Entry)
}

func NewPoller(cache *Cache, client OrderLookup, pollInterval, pruneInterval time.Duration) *Poller {
	return &Poller{
		cache:         cache,
		client:        client,
		pollInterval:  pollInterval,
		pruneInterval: pruneInterval,
	}
}

// OnChange registers the presentation callback fired after each poll
// cycle with a fresh snapshot.
func (p *Poller) OnChange(fn func([]Entry)) {
	p.onChange = fn
}

func (p *Poller) Start(ctx context.Context) {
	slog.Info("starting order tracker", "poll", p.pollInterval, "prune", p.pruneInterval)

	p.cache.Prune()
	p.PollOnce(ctx)

	pollTicker := time.NewTicker(p.pollInterval)
	defer pollTicker.Stop()
	pruneTicker := time.NewTicker(p.pruneInterval)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("order tracker stopped")
			return
		case <-pollTicker.C:
			p.PollOnce(ctx)
		case <-pruneTicker.C:
			p.cache.Prune()
		}
	}
}

// PollOnce refreshes every non-terminal tracked order. Lookups run in
// parallel and independently: one failing order never blocks the rest.
func (p *Poller) PollOnce(ctx context.Context) {
	pending := p.cache.Pending()
	if len(pending) == 0 {
		p.cache.SweepMarked()
		p.notify()
		return
	}

	var g errgroup.Group
	for _, e := range pending {
		e := e
		g.Go(func() error {
			snap, err := p.client.GetOrder(ctx, e.OrderNumber)
			switch {
			case errors.Is(err, ErrOrderGone):
				slog.Info("order gone from server, dropping", "order", e.OrderNumber)
				p.cache.Remove(e.OrderNumber)
			case err != nil:
				// transient; the entry stays for the next cycle
				slog.Error("status check failed", "order", e.OrderNumber, "error", err)
				metrics.PollErrors.Inc()
			case snap.Status != e.Status:
				slog.Info("order status changed", "order", e.OrderNumber, "from", e.Status, "to", snap.Status)
				p.cache.UpdateStatus(e.OrderNumber, snap.Status)
			}
			return nil
		})
	}
	_ = g.Wait()

	p.cache.SweepMarked()
	metrics.PollCycles.Inc()
	p.notify()
}

func (p *Poller) notify() {
	if p.onChange != nil {
		p.onChange(p.cache.Snapshot())
	}
}
