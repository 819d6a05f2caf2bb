package display

import (
	"context"
	"sync/atomic"
	"time"
)

// Headless ticks without drawing anything and counts redraws.
type Headless struct {
	ticker  Ticker
	period  time.Duration
	redraws atomic.Uint64
}

func NewHeadless(cfg Config, t Ticker) *Headless {
	return &Headless{ticker: t, period: cfg.Frame()}
}

func (h *Headless) Run(ctx context.Context) error {
	tick := time.NewTicker(h.period)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tick.C:
			if _, redraw := h.ticker.Tick(now); redraw {
				h.redraws.Add(1)
			}
		}
	}
}

func (h *Headless) Redraws() uint64 { return h.redraws.Load() }
