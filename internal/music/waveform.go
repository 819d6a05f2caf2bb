package music

import (
	"fmt"
	"math"
	"strings"
)

// Waveform is the oscillator shape of an instrument component.
type Waveform int

const (
	Sine Waveform = iota
	Saw
	Square
	Triangle
	Algebraic
	Sigmoid
)

type shape struct {
	name string
	fn   func(phase float64) float64
}

// shapes is indexed by Waveform; phase is in [0, 1).
var shapes = [...]shape{
	Sine: {"sine", func(p float64) float64 { return math.Sin(2 * math.Pi * p) }},
	Saw:  {"saw", func(p float64) float64 { return 1 - 2*p }},
	Square: {"square", func(p float64) float64 {
		if p <= 0.5 {
			return 1
		}
		return -1
	}},
	Triangle: {"triangle", func(p float64) float64 { return 4*math.Abs(p-0.5) - 1 }},
	Algebraic: {"algebraic", func(p float64) float64 {
		x := 4 * (p - 0.5)
		return -1.5 * x / (1 + math.Abs(x))
	}},
	Sigmoid: {"sigmoid", func(p float64) float64 {
		x := 2*p - 1
		return -math.Sqrt2 * x / math.Sqrt(1+x*x)
	}},
}

// At evaluates the waveform at phase p. Unknown waveforms are silent.
func (w Waveform) At(p float64) float64 {
	if w < 0 || int(w) >= len(shapes) {
		return 0
	}
	return shapes[w].fn(p)
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(shapes) {
		return fmt.Sprintf("waveform(%d)", int(w))
	}
	return shapes[w].name
}

// ParseWaveform maps a name such as "sine" to its Waveform.
func ParseWaveform(name string) (Waveform, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, s := range shapes {
		if s.name == key {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWaveform, name)
}

// IndexToFrequency converts a semitone offset from A4 to Hz.
func IndexToFrequency(index int) float64 {
	return 440 * math.Pow(2, float64(index)/12)
}
