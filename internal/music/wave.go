package music

import "math"

// Wave is a stereo buffer of unbounded float samples.
type Wave struct {
	Samples [][2]float64
}

func NewWave(frames int) *Wave {
	return &Wave{Samples: make([][2]float64, frames)}
}

func (w *Wave) Len() int { return len(w.Samples) }

// Peak is the largest absolute sample value.
func (w *Wave) Peak() float64 {
	var peak float64
	for _, s := range w.Samples {
		peak = max(peak, math.Abs(s[0]), math.Abs(s[1]))
	}
	return peak
}

// Normalize scales the wave so its peak absolute value is 1. A silent wave is
// left untouched.
func (w *Wave) Normalize() {
	peak := w.Peak()
	if peak == 0 {
		return
	}
	for i := range w.Samples {
		w.Samples[i][0] /= peak
		w.Samples[i][1] /= peak
	}
}

// AddEcho mixes delayed copies of the wave onto itself. Each echo halves both
// its delay and its gain.
func (w *Wave) AddEcho(sampleRate int, firstDelay float64, echoes int, gain float64) {
	delay := firstDelay
	for range echoes {
		src := append([][2]float64(nil), w.Samples...)
		offset := int(delay * float64(sampleRate))
		for i := offset; i < len(w.Samples); i++ {
			w.Samples[i][0] += src[i-offset][0] * gain
			w.Samples[i][1] += src[i-offset][1] * gain
		}
		delay /= 2
		gain /= 2
	}
}

// Interleave writes left/right pairs into dst and returns the number of
// float32 values written.
func (w *Wave) Interleave(dst []float32) int {
	n := min(len(dst)/2, len(w.Samples))
	for i := 0; i < n; i++ {
		dst[2*i] = float32(w.Samples[i][0])
		dst[2*i+1] = float32(w.Samples[i][1])
	}
	return 2 * n
}
