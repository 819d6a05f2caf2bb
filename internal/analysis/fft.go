package analysis

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// MaxWindow bounds the number of samples fed to one transform.
const MaxWindow = 1 << 15

type Peak struct {
	Frequency float64
	Magnitude float64
	// Index is the nearest equal-tempered note relative to A4.
	Index int
}

// Mono averages the two channels of an interleaved stereo buffer.
func Mono(interleaved []float32) []float64 {
	out := make([]float64, len(interleaved)/2)
	for i := range out {
		out[i] = (float64(interleaved[2*i]) + float64(interleaved[2*i+1])) / 2
	}
	return out
}

// Envelope splits data into buckets and returns the peak |x| of each.
func Envelope(data []float64, buckets int) []float64 {
	if buckets <= 0 || len(data) == 0 {
		return nil
	}
	buckets = min(buckets, len(data))
	env := make([]float64, buckets)
	for i, v := range data {
		b := i * buckets / len(data)
		env[b] = math.Max(env[b], math.Abs(v))
	}
	return env
}

// windowed copies the leading power-of-two slice of data, at most MaxWindow
// long, and applies a Hann window.
func windowed(data []float64) []float64 {
	n := 1
	for n*2 <= len(data) && n*2 <= MaxWindow {
		n *= 2
	}
	if len(data) == 0 {
		return nil
	}
	x := append([]float64(nil), data[:n]...)
	window.Apply(x, window.Hann)
	return x
}

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// the windowed signal.
func PowerSpectrum(data []float64) []float64 {
	x := windowed(data)
	if len(x) < 2 {
		return nil
	}
	spectrum := fft.FFTReal(x)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// BinWidth is the frequency step between spectrum bins for a signal of n
// samples.
func BinWidth(n int, sampleRate float64) float64 {
	x := 1
	for x*2 <= n && x*2 <= MaxWindow {
		x *= 2
	}
	return sampleRate / float64(x)
}

// DominantFrequencies returns up to count local maxima of the spectrum,
// strongest first. The DC bin is ignored.
func DominantFrequencies(data []float64, sampleRate float64, count int) []Peak {
	ps := PowerSpectrum(data)
	if len(ps) < 3 || count <= 0 {
		return nil
	}
	step := BinWidth(len(data), sampleRate)

	var peaks []Peak
	for i := 1; i < len(ps)-1; i++ {
		if ps[i] > ps[i-1] && ps[i] >= ps[i+1] && ps[i] > 0 {
			f := float64(i) * step
			peaks = append(peaks, Peak{Frequency: f, Magnitude: ps[i], Index: NearestIndex(f)})
		}
	}
	sort.SliceStable(peaks, func(a, b int) bool { return peaks[a].Magnitude > peaks[b].Magnitude })
	if len(peaks) > count {
		peaks = peaks[:count]
	}
	return peaks
}

// NearestIndex inverts music.IndexToFrequency, rounding to a semitone.
func NearestIndex(freq float64) int {
	if freq <= 0 {
		return math.MinInt32
	}
	return int(math.Round(12 * math.Log2(freq/440)))
}

type BandEnergy struct {
	Bass, Mid, High float64
}

// Bands sums spectral magnitude below 250 Hz, below 2.5 kHz and above.
func Bands(data []float64, sampleRate float64) BandEnergy {
	ps := PowerSpectrum(data)
	step := BinWidth(len(data), sampleRate)
	var e BandEnergy
	for i, m := range ps {
		switch f := float64(i) * step; {
		case f < 250:
			e.Bass += m
		case f < 2500:
			e.Mid += m
		default:
			e.High += m
		}
	}
	return e
}
