package compose

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/san-kum/nutshell/internal/automaton"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.FrameSeconds = 2.5
	cfg.SampleRate = 8000
	return cfg
}

func newAutomaton(t *testing.T) *automaton.Automaton {
	t.Helper()
	a, err := automaton.New(12, 12, 4, 12)
	if err != nil {
		t.Fatalf("automaton: %v", err)
	}
	return a
}

func TestProduceFrameShape(t *testing.T) {
	tests := []struct {
		name         string
		seconds      float64
		rate         int
		videoPerSec  int
		wantSamples  int
		wantSnapshot int
	}{
		{"fractional seconds", 2.5, 8000, 2, 40000, 5},
		{"odd rate", 1, 11025, 3, 22050, 3},
		{"defaults", 16, 48000, 2, 1536000, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.FrameSeconds = tt.seconds
			cfg.SampleRate = tt.rate
			cfg.VideoSamplesPerSecond = tt.videoPerSec
			c, err := New(cfg)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			a := newAutomaton(t)
			f, err := c.ProduceFrame(a)
			if err != nil {
				t.Fatalf("produce: %v", err)
			}
			if got := len(f.Audio.Samples); got != tt.wantSamples {
				t.Errorf("audio samples = %d, want %d", got, tt.wantSamples)
			}
			if got := f.Video.Len(); got != tt.wantSnapshot {
				t.Errorf("video samples = %d, want %d", got, tt.wantSnapshot)
			}
			if a.Steps() != uint64(tt.wantSnapshot) {
				t.Errorf("automaton stepped %d times", a.Steps())
			}
		})
	}
}

func TestOnsetsStayInsideFrame(t *testing.T) {
	cfg := smallConfig()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a := newAutomaton(t)
	for i := 0; i < 6; i++ {
		f, err := c.ProduceFrame(a)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		want := cfg.VideoSamples() * cfg.Voices * cfg.NotesPerVoice
		if len(f.Notes) != want {
			t.Errorf("frame %d: %d notes, want %d", i, len(f.Notes), want)
		}
		for _, n := range f.Notes {
			if n.Time < 0 || n.Time >= cfg.FrameSeconds {
				t.Fatalf("frame %d: onset %v outside [0, %v)", i, n.Time, cfg.FrameSeconds)
			}
		}
		if f.Index != uint64(i) {
			t.Errorf("frame index = %d, want %d", f.Index, i)
		}
	}
}

func TestProduceFrameDeterministic(t *testing.T) {
	cfg := smallConfig()
	c1, _ := New(cfg)
	c2, _ := New(cfg)
	a1, a2 := newAutomaton(t), newAutomaton(t)

	for i := 0; i < 3; i++ {
		f1, err := c1.ProduceFrame(a1)
		if err != nil {
			t.Fatal(err)
		}
		f2, err := c2.ProduceFrame(a2)
		if err != nil {
			t.Fatal(err)
		}
		for j := range f1.Audio.Samples {
			if f1.Audio.Samples[j] != f2.Audio.Samples[j] {
				t.Fatalf("frame %d diverges at sample %d", i, j)
			}
		}
		for j := range f1.Notes {
			if f1.Notes[j] != f2.Notes[j] {
				t.Fatalf("frame %d note %d differs", i, j)
			}
		}
		if c1.Pointer() != c2.Pointer() {
			t.Fatalf("pointers differ: %v vs %v", c1.Pointer(), c2.Pointer())
		}
	}
}

func TestAudioIsNormalized(t *testing.T) {
	c, _ := New(smallConfig())
	f, err := c.ProduceFrame(newAutomaton(t))
	if err != nil {
		t.Fatal(err)
	}
	var peak float64
	for _, s := range f.Audio.Samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	if peak > 1+1e-6 {
		t.Errorf("peak = %v", peak)
	}
	if peak == 0 {
		t.Error("frame is silent")
	}
}

func TestValueMovesPointer(t *testing.T) {
	c, _ := New(smallConfig())
	a := newAutomaton(t)

	// the top layer starts empty, so every read is 0 and moves right
	if v := c.Value(a); v != 0 {
		t.Errorf("value = %d", v)
	}
	if c.Pointer() != (automaton.Point{X: 1, Y: 0}) {
		t.Errorf("pointer = %v", c.Pointer())
	}
	for i := 0; i < 11; i++ {
		c.Value(a)
	}
	if c.Pointer() != (automaton.Point{X: 0, Y: 0}) {
		t.Errorf("pointer did not wrap: %v", c.Pointer())
	}
}

func TestCellColor(t *testing.T) {
	m := automaton.Uniform(12)
	white := cellColor(automaton.Cell{}, m)
	if white != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("zero cell = %v", white)
	}
	black := cellColor(automaton.Cell{Color: 3, Saturation: 11, Brightness: 11}, m)
	if black != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("full brightness cell = %v", black)
	}
	// hue 6/12*360+180 wraps to 0, pure red
	red := cellColor(automaton.Cell{Color: 6, Saturation: 11}, m)
	if red != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("red cell = %v", red)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		sentinel error
	}{
		{"zero seconds", func(c *Config) { c.FrameSeconds = 0 }, ErrFrameSeconds},
		{"nan seconds", func(c *Config) { c.FrameSeconds = math.NaN() }, ErrFrameSeconds},
		{"zero rate", func(c *Config) { c.SampleRate = 0 }, ErrSampleRate},
		{"no video", func(c *Config) { c.VideoSamplesPerSecond = 0 }, ErrVideoRate},
		{"no voices", func(c *Config) { c.Voices = 0 }, ErrVoices},
		{"no notes", func(c *Config) { c.NotesPerVoice = 0 }, ErrVoices},
		{"long base", func(c *Config) { c.BaseDuration = 20 }, ErrBaseDuration},
		{"tiny base", func(c *Config) { c.BaseDuration = 1e-6 }, ErrBaseDuration},
		{"no waveforms", func(c *Config) { c.Waveforms = nil }, ErrNoWaveforms},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg); !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestRecycleReusesBuffers(t *testing.T) {
	c, _ := New(smallConfig())
	f, err := c.ProduceFrame(newAutomaton(t))
	if err != nil {
		t.Fatal(err)
	}
	c.Recycle(f.Audio)
	if c.FrameLength().Seconds() != 2.5 {
		t.Errorf("frame length = %v", c.FrameLength())
	}
}
