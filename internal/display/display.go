// Package display shows the video snapshots handed out by a Ticker.
//
// A Window runs on the calling goroutine until the user closes it or ctx is
// cancelled; closing the window is the player's shutdown signal.
package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/san-kum/nutshell/internal/frame"
	"github.com/san-kum/nutshell/internal/logging"
)

var (
	ErrNoDisplay      = errors.New("display: no window system available")
	ErrUnknownBackend = errors.New("display: unknown backend")
	ErrConfig         = errors.New("display: invalid configuration")
)

const (
	BackendRaylib   = "raylib"
	BackendEbiten   = "ebiten"
	BackendTUI      = "tui"
	BackendHeadless = "headless"
)

// Ticker hands out the snapshot to show at now and whether it changed.
type Ticker interface {
	Tick(now time.Time) (*frame.VideoSample, bool)
}

type Window interface {
	Run(ctx context.Context) error
}

// StatusFunc returns a one-line summary drawn over the picture.
type StatusFunc func() string

type Config struct {
	Backend string
	// Scale is the on-screen size of one cell in pixels.
	Scale     int
	FPS       int
	Title     string
	ShowStats bool
}

func DefaultConfig() Config {
	return Config{Backend: BackendRaylib, Scale: 10, FPS: 60, Title: "nutshell", ShowStats: true}
}

func Backends() []string {
	return []string{BackendRaylib, BackendEbiten, BackendTUI, BackendHeadless}
}

func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func (c Config) Validate() error {
	if c.Scale < 1 || c.FPS < 1 {
		return fmt.Errorf("%w: scale %d, fps %d", ErrConfig, c.Scale, c.FPS)
	}
	if !slices.Contains(Backends(), normalize(c.Backend)) {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}

// Frame is the redraw period for the configured rate.
func (c Config) Frame() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Open builds the named backend for a width x height grid.
func Open(cfg Config, width, height int, t Ticker, status StatusFunc, logger *slog.Logger) (Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d grid", ErrConfig, width, height)
	}
	if !cfg.ShowStats {
		status = nil
	}
	logger = logging.OrDiscard(logger)

	var (
		w   Window
		err error
	)
	switch normalize(cfg.Backend) {
	case BackendRaylib:
		w, err = newRaylib(cfg, width, height, t, status)
	case BackendEbiten:
		w, err = newEbiten(cfg, width, height, t, status)
	case BackendTUI:
		w = NewTUI(cfg, t, status)
	case BackendHeadless:
		w = NewHeadless(cfg, t)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("display opened", "backend", normalize(cfg.Backend), "grid", fmt.Sprintf("%dx%d", width, height), "fps", cfg.FPS)
	return w, nil
}
