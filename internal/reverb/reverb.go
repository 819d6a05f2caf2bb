// Package reverb implements a cascading multi-tap echo that runs inside the
// audio callback. Tap i rings over Length>>i stereo frames and feeds back the
// mixed output scaled by FirstAmplitude*Falloff^i.
//
// An Engine is owned by a single goroutine and does no locking.
package reverb

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrTaps      = errors.New("reverb: at least one tap is required")
	ErrLength    = errors.New("reverb: every tap needs at least one frame")
	ErrAmplitude = errors.New("reverb: amplitude and falloff must be finite and non-negative")
	ErrWet       = errors.New("reverb: wet mix must be in [0, 1]")
)

// flush is the magnitude below which fed-back values are stored as zero, so
// a silent input eventually yields an exactly silent output.
const flush = 1e-12

type Config struct {
	Taps int
	// Length is the ring length of the first tap in stereo frames.
	Length         int
	FirstAmplitude float64
	Falloff        float64
	Wet            float64
}

// DefaultConfig is six taps starting at two seconds, a quarter gain halving
// per tap, and an even wet mix.
func DefaultConfig(sampleRate int) Config {
	return Config{
		Taps:           6,
		Length:         sampleRate * 2,
		FirstAmplitude: 0.25,
		Falloff:        0.5,
		Wet:            0.5,
	}
}

func (c Config) Validate() error {
	if c.Taps < 1 {
		return fmt.Errorf("%w: %d", ErrTaps, c.Taps)
	}
	if c.Taps > 62 || c.Length < 1 || c.Length>>(c.Taps-1) < 1 {
		return fmt.Errorf("%w: length %d over %d taps", ErrLength, c.Length, c.Taps)
	}
	for _, v := range []float64{c.FirstAmplitude, c.Falloff} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrAmplitude, v)
		}
	}
	if !(c.Wet >= 0 && c.Wet <= 1) {
		return fmt.Errorf("%w: %v", ErrWet, c.Wet)
	}
	return nil
}

type tap struct {
	front, back [][2]float32
	cursor      int
	amp         float32
}

type Engine struct {
	taps []tap
	wet  float32
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{taps: make([]tap, cfg.Taps), wet: float32(cfg.Wet)}
	amp := cfg.FirstAmplitude
	for i := range e.taps {
		n := cfg.Length >> i
		e.taps[i] = tap{
			front: make([][2]float32, n),
			back:  make([][2]float32, n),
			amp:   float32(amp),
		}
		amp *= cfg.Falloff
	}
	return e, nil
}

// Process mixes one stereo frame.
func (e *Engine) Process(dry [2]float32) [2]float32 {
	var echo [2]float32
	for i := range e.taps {
		f := e.taps[i].front[e.taps[i].cursor]
		echo[0] += f[0]
		echo[1] += f[1]
	}

	var out [2]float32
	for c := range out {
		w := e.wet * echo[c]
		out[c] = w + dry[c]*(1-w)
	}

	for i := range e.taps {
		t := &e.taps[i]
		t.back[t.cursor] = [2]float32{flushed(out[0] * t.amp), flushed(out[1] * t.amp)}
		t.cursor++
		if t.cursor == len(t.front) {
			t.cursor = 0
			t.front, t.back = t.back, t.front
		}
	}
	return out
}

func flushed(v float32) float32 {
	if v > -flush && v < flush {
		return 0
	}
	return v
}

// ProcessInterleaved runs Process over an interleaved stereo buffer in place.
// A trailing odd sample is left untouched.
func (e *Engine) ProcessInterleaved(buf []float32) {
	for i := 0; i+1 < len(buf); i += 2 {
		out := e.Process([2]float32{buf[i], buf[i+1]})
		buf[i], buf[i+1] = out[0], out[1]
	}
}

// Reset silences every tap and rewinds the cursors.
func (e *Engine) Reset() {
	for i := range e.taps {
		clear(e.taps[i].front)
		clear(e.taps[i].back)
		e.taps[i].cursor = 0
	}
}

// TapLengths reports the ring length of each tap in stereo frames.
func (e *Engine) TapLengths() []int {
	lengths := make([]int, len(e.taps))
	for i, t := range e.taps {
		lengths[i] = len(t.front)
	}
	return lengths
}

// Longest is the ring length of the first tap.
func (e *Engine) Longest() int { return len(e.taps[0].front) }
