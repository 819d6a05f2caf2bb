//go:build headless

package display

import "fmt"

func newRaylib(Config, int, int, Ticker, StatusFunc) (Window, error) {
	return nil, fmt.Errorf("%w: raylib is not built into headless binaries", ErrNoDisplay)
}

func newEbiten(Config, int, int, Ticker, StatusFunc) (Window, error) {
	return nil, fmt.Errorf("%w: ebiten is not built into headless binaries", ErrNoDisplay)
}
