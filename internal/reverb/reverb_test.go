package reverb

import (
	"errors"
	"math"
	"testing"
)

func TestSingleTapImpulse(t *testing.T) {
	e, err := New(Config{Taps: 1, Length: 4, FirstAmplitude: 1, Falloff: 0.5, Wet: 1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	want := []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	for i, w := range want {
		var in float32
		if i == 0 {
			in = 1
		}
		out := e.Process([2]float32{in, in})
		if out[0] != w || out[1] != w {
			t.Errorf("sample %d = %v, want %v", i, out, w)
		}
	}
}

func TestSilenceStaysSilent(t *testing.T) {
	e, err := New(DefaultConfig(100))
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float32, 2*(e.Longest()*2+7))
	e.ProcessInterleaved(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v", i, v)
		}
	}
}

func TestResetClearsTail(t *testing.T) {
	e, err := New(DefaultConfig(50))
	if err != nil {
		t.Fatal(err)
	}
	loud := make([]float32, 200)
	for i := range loud {
		loud[i] = float32(math.Sin(float64(i)))
	}
	e.ProcessInterleaved(loud)
	e.Reset()

	quiet := make([]float32, 4*e.Longest())
	e.ProcessInterleaved(quiet)
	for i, v := range quiet {
		if v != 0 {
			t.Fatalf("residual tail at %d: %v", i, v)
		}
	}
}

func TestTailDecaysToZero(t *testing.T) {
	e, err := New(Config{Taps: 2, Length: 8, FirstAmplitude: 0.5, Falloff: 0.5, Wet: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	e.Process([2]float32{1, -1})

	var last [2]float32
	for i := 0; i < 8*200; i++ {
		last = e.Process([2]float32{})
	}
	if last != ([2]float32{}) {
		t.Errorf("tail did not settle: %v", last)
	}
}

func TestTapLengthsHalve(t *testing.T) {
	e, err := New(DefaultConfig(48000))
	if err != nil {
		t.Fatal(err)
	}
	want := []int{96000, 48000, 24000, 12000, 6000, 3000}
	got := e.TapLengths()
	if len(got) != len(want) {
		t.Fatalf("got %d taps", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tap %d length = %d, want %d", i, got[i], want[i])
		}
	}
	if e.Longest() != 96000 {
		t.Errorf("longest = %d", e.Longest())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		sentinel error
	}{
		{"no taps", Config{Taps: 0, Length: 8}, ErrTaps},
		{"too short", Config{Taps: 4, Length: 4, Wet: 0.5}, ErrLength},
		{"negative amplitude", Config{Taps: 1, Length: 4, FirstAmplitude: -1}, ErrAmplitude},
		{"nan falloff", Config{Taps: 1, Length: 4, Falloff: math.NaN()}, ErrAmplitude},
		{"wet above one", Config{Taps: 1, Length: 4, Wet: 1.5}, ErrWet},
		{"nan wet", Config{Taps: 1, Length: 4, Wet: math.NaN()}, ErrWet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}
