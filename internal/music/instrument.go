package music

import "math"

// Component is one oscillator of an instrument. Decay is a hyperbolic
// envelope rate in 1/s: the gain at t seconds into a note is 1/(1+Decay*t).
type Component struct {
	Contribution float64
	Decay        float64
	Shape        Waveform
}

type Instrument struct {
	Components []Component
}

func NewInstrument(components ...Component) Instrument {
	return Instrument{Components: components}
}

// Line is a sequence of notes played by one instrument at a fixed gain.
type Line struct {
	Instrument Instrument
	Amplitude  float64
	Notes      []TimedNote
}

func (l *Line) Add(n TimedNote) { l.Notes = append(l.Notes, n) }

type Song struct {
	Lines []*Line
}

func (s *Song) AddLine(l *Line) { s.Lines = append(s.Lines, l) }

// NoteCount is the number of notes over every line.
func (s *Song) NoteCount() int {
	n := 0
	for _, l := range s.Lines {
		n += len(l.Notes)
	}
	return n
}

// Render mixes every note into wave. Notes running past the end of the wave
// are truncated.
func (s *Song) Render(wave *Wave, sampleRate int) error {
	if sampleRate <= 0 {
		return ErrSampleRate
	}
	sr := float64(sampleRate)
	for _, l := range s.Lines {
		for _, n := range l.Notes {
			for _, c := range l.Instrument.Components {
				c.write(wave.Samples, n, sr, l.Amplitude)
			}
		}
	}
	return nil
}

func (c Component) write(dst [][2]float64, n TimedNote, sr, gain float64) {
	start := int(n.Time * sr)
	if start < 0 {
		start = 0
	}
	end := min(start+int(n.Duration*sr), len(dst))
	cycle := sr / IndexToFrequency(n.Index)
	scale := c.Contribution * gain * n.Amplitude
	for i := start; i < end; i++ {
		rel := float64(i - start)
		t := rel / sr
		env := 1 / (1 + c.Decay*t) / (1 + n.Decay*t)
		v := c.Shape.At(math.Mod(rel, cycle)/cycle) * scale * env
		dst[i][0] += v
		dst[i][1] += v
	}
}
