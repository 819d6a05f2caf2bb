//go:build !headless

package display

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Ebiten implements ebiten.Game over the snapshot stream. The picture is
// laid out at grid resolution and scaled by the window.
type Ebiten struct {
	ticker        Ticker
	status        StatusFunc
	width, height int
	scale         int
	fps           int
	title         string

	ctx    context.Context
	image  *ebiten.Image
	pixels []byte
	dirty  bool
}

func newEbiten(cfg Config, width, height int, t Ticker, status StatusFunc) (*Ebiten, error) {
	return &Ebiten{
		ticker: t,
		status: status,
		width:  width,
		height: height,
		scale:  cfg.Scale,
		fps:    cfg.FPS,
		title:  cfg.Title,
		pixels: make([]byte, 4*width*height),
	}, nil
}

func (e *Ebiten) Update() error {
	if e.ctx.Err() != nil {
		return ebiten.Termination
	}
	sample, redraw := e.ticker.Tick(time.Now())
	if redraw && sample != nil && sample.Width == e.width && sample.Height == e.height {
		if _, err := sample.CopyTo(e.pixels); err == nil {
			e.dirty = true
		}
	}
	return nil
}

func (e *Ebiten) Draw(screen *ebiten.Image) {
	if e.image == nil {
		e.image = ebiten.NewImage(e.width, e.height)
	}
	if e.dirty {
		e.image.WritePixels(e.pixels)
		e.dirty = false
	}
	screen.DrawImage(e.image, nil)
	if e.status != nil {
		ebitenutil.DebugPrint(screen, e.status())
	}
}

func (e *Ebiten) Layout(_, _ int) (int, int) {
	return e.width, e.height
}

func (e *Ebiten) Run(ctx context.Context) error {
	e.ctx = ctx
	ebiten.SetWindowSize(e.width*e.scale, e.height*e.scale)
	ebiten.SetWindowTitle(e.title)
	ebiten.SetTPS(e.fps)
	return ebiten.RunGame(e)
}
