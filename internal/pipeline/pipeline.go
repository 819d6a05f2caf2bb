package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/nutshell/internal/frame"
	"github.com/san-kum/nutshell/internal/logging"
	"github.com/san-kum/nutshell/internal/reverb"
)

type Config struct {
	// Lookahead is how many frames may be ready ahead of the player.
	Lookahead       int
	DisplayInterval time.Duration
}

func (c Config) Validate() error {
	if c.Lookahead < 1 {
		return fmt.Errorf("%w: %d", ErrLookahead, c.Lookahead)
	}
	if c.DisplayInterval <= 0 {
		return fmt.Errorf("%w: %v", ErrInterval, c.DisplayInterval)
	}
	return nil
}

type Option func(*Pipeline)

// WithReverb runs e over every buffer the audio unit fills.
func WithReverb(e *reverb.Engine) Option {
	return func(p *Pipeline) { p.audio.reverb = e }
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.audio.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// Pipeline wires a Processor, an AudioUnit and a DisplayUnit together.
type Pipeline struct {
	processor *Processor
	audio     *AudioUnit
	display   *DisplayUnit
	stats     *Stats
	log       *slog.Logger

	quit     chan struct{}
	quitOnce sync.Once

	mu     sync.Mutex
	group  *errgroup.Group
	cancel context.CancelFunc
}

func New(producer Producer, cfg Config, opts ...Option) (*Pipeline, error) {
	if producer == nil {
		return nil, ErrNoSource
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	need := make(chan struct{}, 1)
	frames := make(chan *frame.Frame)
	video := make(chan *frame.VideoFrame, 1)
	stats := &Stats{}

	p := &Pipeline{
		stats: stats,
		quit:  make(chan struct{}),
		log:   logging.Discard(),
	}
	p.processor = &Processor{
		producer:  producer,
		lookahead: cfg.Lookahead,
		need:      need,
		frames:    frames,
		stats:     stats,
	}
	p.audio = &AudioUnit{
		need:   need,
		frames: frames,
		video:  video,
		done:   p.quit,
		stats:  stats,
	}
	if r, ok := producer.(Recycler); ok {
		p.audio.recycler = r
	}
	p.display = &DisplayUnit{
		video:    video,
		interval: cfg.DisplayInterval,
		stats:    stats,
	}

	for _, opt := range opts {
		opt(p)
	}
	p.log = logging.OrDiscard(p.log)
	p.processor.log = p.log.With("unit", "processing")
	p.audio.log = p.log.With("unit", "audio")
	return p, nil
}

func (p *Pipeline) Audio() *AudioUnit { return p.audio }

func (p *Pipeline) Display() *DisplayUnit { return p.display }

func (p *Pipeline) Stats() Snapshot { return p.stats.Snapshot() }

// Start launches the processing goroutine. Cancelling ctx or calling Close
// stops it and releases a blocked audio callback.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.group != nil {
		return ErrStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	p.group = g
	p.cancel = cancel

	g.Go(func() error {
		err := p.processor.Run(gctx)
		if err != nil {
			p.log.Error("processing stopped", "err", err)
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		p.shutdown()
		return nil
	})
	p.log.Info("pipeline started", "lookahead", p.processor.lookahead, "display_interval", p.display.interval)
	return nil
}

func (p *Pipeline) shutdown() {
	p.quitOnce.Do(func() { close(p.quit) })
}

// Bind derives a context from parent that is also cancelled when the
// pipeline shuts down, so a window can stop after a production failure.
func (p *Pipeline) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-p.quit:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Done is closed once the pipeline has shut down.
func (p *Pipeline) Done() <-chan struct{} { return p.quit }

// Wait blocks until the pipeline stops and returns the first production
// error, if any.
func (p *Pipeline) Wait() error {
	p.mu.Lock()
	g := p.group
	p.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}

// Close stops the pipeline and waits for it. Safe to call more than once.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.shutdown()
	return p.Wait()
}
