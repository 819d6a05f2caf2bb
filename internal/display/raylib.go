//go:build !headless

package display

import (
	"context"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	colBg   = rl.NewColor(10, 10, 10, 255)
	colText = rl.NewColor(180, 180, 180, 255)
)

// Raylib draws into a texture scaled up to the window. It must run on the
// main goroutine.
type Raylib struct {
	ticker        Ticker
	status        StatusFunc
	width, height int
	scale         int
	fps           int
	title         string
}

func newRaylib(cfg Config, width, height int, t Ticker, status StatusFunc) (*Raylib, error) {
	return &Raylib{
		ticker: t,
		status: status,
		width:  width,
		height: height,
		scale:  cfg.Scale,
		fps:    cfg.FPS,
		title:  cfg.Title,
	}, nil
}

func (r *Raylib) Run(ctx context.Context) error {
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(r.width*r.scale), int32(r.height*r.scale), r.title)
	defer rl.CloseWindow()
	if !rl.IsWindowReady() {
		return ErrNoDisplay
	}
	rl.SetTargetFPS(int32(r.fps))

	img := rl.GenImageColor(r.width, r.height, colBg)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(tex)
	rl.SetTextureFilter(tex, rl.FilterPoint)

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		sample, redraw := r.ticker.Tick(time.Now())
		if redraw && sample != nil && sample.Width == r.width && sample.Height == r.height {
			rl.UpdateTexture(tex, sample.Pixels)
		}

		rl.BeginDrawing()
		rl.ClearBackground(colBg)
		rl.DrawTextureEx(tex, rl.NewVector2(0, 0), 0, float32(r.scale), rl.White)
		if r.status != nil {
			rl.DrawText(r.status(), 8, 8, 16, colText)
		}
		rl.EndDrawing()
	}
	return nil
}
