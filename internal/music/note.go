package music

import (
	"fmt"
	"strings"
)

type TimedNote struct {
	Index     int
	Time      float64
	Duration  float64
	Amplitude float64
	Decay     float64
}

// End is the time at which the note stops sounding.
func (n TimedNote) End() float64 { return n.Time + n.Duration }

// ScaleDegree is a position in the seven-step major scale. Values built with
// Degree are always in [0, 7).
type ScaleDegree uint8

var majorSteps = [7]int{0, 2, 4, 5, 7, 9, 11}

// Degree splits an unbounded step count into a scale degree and an octave
// shift, rounding toward negative infinity.
func Degree(step int) (ScaleDegree, int) {
	d, octave := floorMod(step, 7)
	return ScaleDegree(d), octave
}

// Offset is the semitone distance of the degree from the tonic.
func (d ScaleDegree) Offset() int { return majorSteps[d%7] }

// Chord selects the three-tone arpeggio used by NoteInChord.
type Chord int

const (
	ChordMinor Chord = iota
	ChordMajor
)

var chords = [...]struct {
	name  string
	steps [3]int
}{
	ChordMinor: {"minor", [3]int{0, 4, 9}},
	ChordMajor: {"major", [3]int{0, 6, 11}},
}

func (c Chord) String() string {
	if c < 0 || int(c) >= len(chords) {
		return fmt.Sprintf("chord(%d)", int(c))
	}
	return chords[c].name
}

func ParseChord(name string) (Chord, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, c := range chords {
		if c.name == key {
			return Chord(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChord, name)
}

func floorMod(v, n int) (rem, quot int) {
	quot = v / n
	rem = v % n
	if rem < 0 {
		rem += n
		quot--
	}
	return rem, quot
}

// NoteWriter turns relative note choices into TimedNotes anchored on a base
// note and a base duration. Duration is measured in base durations.
type NoteWriter struct {
	BaseDuration float64
	BaseNote     int
	Time         float64
	Duration     float64
	Amplitude    float64
	Step         int
	Decay        float64
}

func NewNoteWriter(time float64, baseNote int, baseDuration float64) *NoteWriter {
	return &NoteWriter{
		BaseDuration: baseDuration,
		BaseNote:     baseNote,
		Time:         time,
		Duration:     1,
		Amplitude:    1,
	}
}

func (w *NoteWriter) SetTime(t float64) { w.Time = t }
func (w *NoteWriter) SetDuration(d float64) { w.Duration = d }
func (w *NoteWriter) SetAmplitude(a float64) { w.Amplitude = a }
func (w *NoteWriter) SetStep(s int) { w.Step = s }

// Advance moves the writer past the note it would emit next.
func (w *NoteWriter) Advance() { w.Time += w.Duration * w.BaseDuration }

func (w *NoteWriter) emit(index int) TimedNote {
	return TimedNote{
		Index:     index,
		Time:      w.Time,
		Duration:  w.BaseDuration * w.Duration,
		Amplitude: w.Amplitude,
		Decay:     w.Decay,
	}
}

// Note emits BaseNote + Step semitones.
func (w *NoteWriter) Note() TimedNote {
	return w.emit(w.BaseNote + w.Step)
}

// NoteInScale reads Step as a major-scale step.
func (w *NoteWriter) NoteInScale() TimedNote {
	d, octave := Degree(w.Step)
	return w.emit(w.BaseNote + 12*octave + d.Offset())
}

// NoteInChord reads Step as a step through the chord's three tones.
func (w *NoteWriter) NoteInChord(c Chord) TimedNote {
	if c < 0 || int(c) >= len(chords) {
		c = ChordMinor
	}
	step, octave := floorMod(w.Step, 3)
	return w.emit(w.BaseNote + 12*octave + chords[c].steps[step])
}

func (w *NoteWriter) NoteInMinor() TimedNote { return w.NoteInChord(ChordMinor) }

func (w *NoteWriter) NoteInMajor() TimedNote { return w.NoteInChord(ChordMajor) }
