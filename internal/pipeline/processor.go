package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/nutshell/internal/frame"
)

// Processor is the producing unit. Frames wait in a ready queue of
// Lookahead-1 slots plus the one the producer is holding, so with
// Lookahead 1 the next frame is only started after the previous one has been
// handed over.
type Processor struct {
	producer  Producer
	lookahead int
	need      <-chan struct{}
	frames    chan<- *frame.Frame
	stats     *Stats
	log       *slog.Logger
}

// Run produces and delivers frames until ctx is cancelled or production
// fails.
func (p *Processor) Run(ctx context.Context) error {
	ready := make(chan *frame.Frame, p.lookahead-1)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.produce(ctx, ready) })
	g.Go(func() error { return p.dispatch(ctx, ready) })
	return g.Wait()
}

func (p *Processor) produce(ctx context.Context, ready chan<- *frame.Frame) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		f, err := p.producer.Produce()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProduce, err)
		}
		p.stats.produced.Add(1)
		p.stats.lastProduction.Store(int64(f.Elapsed))
		p.log.Debug("frame produced", "index", f.Index, "elapsed", f.Elapsed.Round(time.Millisecond))

		select {
		case ready <- f:
		case <-ctx.Done():
			return nil
		}
	}
}

// dispatch hands ready frames over on request. The wait for the very first
// frame is startup latency and is not counted as starvation.
func (p *Processor) dispatch(ctx context.Context, ready <-chan *frame.Frame) error {
	delivered := false
	for {
		select {
		case <-p.need:
		case <-ctx.Done():
			return nil
		}

		var f *frame.Frame
		select {
		case f = <-ready:
		default:
			if delivered {
				p.stats.starved.Add(1)
				p.log.Warn("player starved", "produced", p.stats.produced.Load())
			}
			select {
			case f = <-ready:
			case <-ctx.Done():
				return nil
			}
		}

		select {
		case p.frames <- f:
			delivered = true
		case <-ctx.Done():
			return nil
		}
	}
}
