package internal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var UpdateInterval = 2500 * time.Millisecond

// Refresher re-prices every selected symbol on a fixed interval. A single
// worker runs the cycles, so two cycles never overlap and symbols within a
// cycle are fetched one after another in selection order.
type Refresher struct {
	app        *App
	fetcher    PriceFetcher
	interval   time.Duration
	log        logrus.FieldLogger
	wake       chan struct{}
	refreshing atomic.Bool
}

func NewRefresher(app *App, fetcher PriceFetcher, interval time.Duration, log logrus.FieldLogger) *Refresher {
	if interval <= 0 {
		interval = UpdateInterval
	}
	return &Refresher{
		app:      app,
		fetcher:  fetcher,
		interval: interval,
		log:      log,
		wake:     make(chan struct{}, 1),
	}
}

// Trigger asks for a cycle as soon as the current one (if any) finishes.
// Requests made while one is already pending are merged.
func (r *Refresher) Trigger() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Refreshing reports whether a cycle is in progress.
func (r *Refresher) Refreshing() bool { return r.refreshing.Load() }

// Run refreshes once immediately, then on every tick or Trigger until ctx
// is done.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Price refresh stopped")
			return
		case <-ticker.C:
			r.Tick(ctx)
		case <-r.wake:
			r.Tick(ctx)
			ticker.Reset(r.interval)
		}
	}
}

// Tick runs one complete cycle over a snapshot of the selection. A failed
// symbol leaves an error row and the cycle moves on to the next one.
func (r *Refresher) Tick(ctx context.Context) {
	r.refreshing.Store(true)
	defer r.refreshing.Store(false)

	start := time.Now()
	snapshot := r.app.Selection()
	failed := 0
	for i, sym := range snapshot {
		if ctx.Err() != nil {
			return
		}
		obs, err := r.fetcher.FetchPrice(ctx, sym)
		if err != nil {
			failed++
		}
		r.app.ApplyResult(i, sym, obs, err)
	}
	r.log.WithFields(logrus.Fields{
		"symbols": len(snapshot),
		"failed":  failed,
		"took":    time.Since(start).Round(time.Millisecond),
	}).Debug("Prices refreshed")
}
