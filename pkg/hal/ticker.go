package hal

import (
	"context"
	"time"
)

// IntervalTicker is the host tick source: one wake event per fixed
// interval. On the real device this is the watchdog timer waking the part
// from power-down; here it is a time.Ticker.
type IntervalTicker struct {
	ticker *time.Ticker
}

func NewIntervalTicker(interval time.Duration) *IntervalTicker {
	return &IntervalTicker{ticker: time.NewTicker(interval)}
}

func (t *IntervalTicker) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.ticker.C:
		return nil
	}
}

// Stop releases the underlying ticker.
func (t *IntervalTicker) Stop() {
	t.ticker.Stop()
}
