package music

import (
	"errors"
	"math"
	"testing"
)

func TestDegreeFloorsNegativeSteps(t *testing.T) {
	tests := []struct {
		step   int
		degree ScaleDegree
		octave int
	}{
		{0, 0, 0},
		{6, 6, 0},
		{7, 0, 1},
		{-1, 6, -1},
		{-7, 0, -1},
		{-8, 6, -2},
		{15, 1, 2},
	}
	for _, tt := range tests {
		d, oct := Degree(tt.step)
		if d != tt.degree || oct != tt.octave {
			t.Errorf("Degree(%d) = (%d, %d), want (%d, %d)", tt.step, d, oct, tt.degree, tt.octave)
		}
	}
}

func TestNoteWriterScaleAndChords(t *testing.T) {
	w := NewNoteWriter(1.5, -12, 0.25)
	w.SetDuration(2)
	w.SetAmplitude(0.5)

	w.SetStep(2)
	if got := w.NoteInScale().Index; got != -12+4 {
		t.Errorf("scale step 2: got %d", got)
	}
	w.SetStep(-1)
	if got := w.NoteInScale().Index; got != -24+11 {
		t.Errorf("scale step -1: got %d", got)
	}
	w.SetStep(1)
	if got := w.NoteInMinor().Index; got != -12+4 {
		t.Errorf("minor step 1: got %d", got)
	}
	w.SetStep(5)
	if got := w.NoteInMajor().Index; got != -12+12+11 {
		t.Errorf("major step 5: got %d", got)
	}
	w.SetStep(3)
	n := w.Note()
	if n.Index != -9 {
		t.Errorf("plain note: got %d", n.Index)
	}
	if n.Time != 1.5 || n.Duration != 0.5 || n.Amplitude != 0.5 {
		t.Errorf("unexpected timing %+v", n)
	}
	if n.End() != 2.0 {
		t.Errorf("end = %v", n.End())
	}
}

func TestParseNames(t *testing.T) {
	for i := Sine; i <= Sigmoid; i++ {
		got, err := ParseWaveform(i.String())
		if err != nil || got != i {
			t.Errorf("round trip %v: got %v, %v", i, got, err)
		}
	}
	if _, err := ParseWaveform("noise"); !errors.Is(err, ErrUnknownWaveform) {
		t.Errorf("expected ErrUnknownWaveform, got %v", err)
	}
	if c, err := ParseChord(" Major "); err != nil || c != ChordMajor {
		t.Errorf("ParseChord: %v %v", c, err)
	}
	if _, err := ParseChord("diminished"); !errors.Is(err, ErrUnknownChord) {
		t.Errorf("expected ErrUnknownChord, got %v", err)
	}
}

func TestWaveformsBounded(t *testing.T) {
	for w := Sine; w <= Sigmoid; w++ {
		for i := 0; i < 100; i++ {
			v := w.At(float64(i) / 100)
			if math.Abs(v) > 1.5+1e-9 {
				t.Errorf("%v at %d out of range: %v", w, i, v)
			}
		}
	}
	if Waveform(99).At(0.3) != 0 {
		t.Error("unknown waveform should be silent")
	}
}

func TestIndexToFrequency(t *testing.T) {
	if f := IndexToFrequency(0); f != 440 {
		t.Errorf("A4 = %v", f)
	}
	if f := IndexToFrequency(12); math.Abs(f-880) > 1e-9 {
		t.Errorf("A5 = %v", f)
	}
	if f := IndexToFrequency(-12); math.Abs(f-220) > 1e-9 {
		t.Errorf("A3 = %v", f)
	}
}

func TestRenderTruncatesAtWaveEnd(t *testing.T) {
	const sr = 1000
	wave := NewWave(100)
	song := Song{}
	line := &Line{Instrument: NewInstrument(Component{Contribution: 1, Shape: Square}), Amplitude: 1}
	line.Add(TimedNote{Index: 0, Time: 0.05, Duration: 1, Amplitude: 1})
	song.AddLine(line)

	if err := song.Render(wave, sr); err != nil {
		t.Fatalf("render: %v", err)
	}
	if wave.Len() != 100 {
		t.Fatalf("wave grew to %d", wave.Len())
	}
	for i := 0; i < 50; i++ {
		if wave.Samples[i] != [2]float64{} {
			t.Fatalf("sample %d before onset: %v", i, wave.Samples[i])
		}
	}
	if wave.Samples[50][0] != 1 {
		t.Errorf("onset sample = %v", wave.Samples[50][0])
	}
	if song.NoteCount() != 1 {
		t.Errorf("note count = %d", song.NoteCount())
	}
	if err := song.Render(wave, 0); !errors.Is(err, ErrSampleRate) {
		t.Errorf("expected ErrSampleRate, got %v", err)
	}
}

func TestNormalizeAndInterleave(t *testing.T) {
	wave := &Wave{Samples: [][2]float64{{0.5, -2}, {1, 0}}}
	wave.Normalize()
	if wave.Peak() != 1 {
		t.Errorf("peak = %v", wave.Peak())
	}

	dst := make([]float32, 6)
	n := wave.Interleave(dst)
	if n != 4 {
		t.Errorf("wrote %d", n)
	}
	want := []float32{0.25, -1, 0.5, 0, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	silent := NewWave(4)
	silent.Normalize()
	if silent.Peak() != 0 {
		t.Error("silent wave changed")
	}
}

func TestAddEcho(t *testing.T) {
	wave := NewWave(8)
	wave.Samples[0] = [2]float64{1, 1}
	wave.AddEcho(1, 4, 2, 0.5)
	if wave.Samples[4][0] != 0.5 {
		t.Errorf("first echo = %v", wave.Samples[4][0])
	}
	if wave.Samples[2][0] != 0.25 {
		t.Errorf("second echo = %v", wave.Samples[2][0])
	}
	if wave.Samples[6][0] != 0.125 {
		t.Errorf("echo of echo = %v", wave.Samples[6][0])
	}
}
