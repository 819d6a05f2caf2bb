package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nutshell/internal/audio"
	"github.com/san-kum/nutshell/internal/automaton"
	"github.com/san-kum/nutshell/internal/compose"
	"github.com/san-kum/nutshell/internal/display"
	"github.com/san-kum/nutshell/internal/logging"
	"github.com/san-kum/nutshell/internal/music"
	"github.com/san-kum/nutshell/internal/pipeline"
	"github.com/san-kum/nutshell/internal/reverb"
)

var ErrInvalid = errors.New("config: invalid value")

const (
	DefaultSize          = 60
	DefaultLayers        = 4
	DefaultModulus       = 12
	DefaultFrameSeconds  = 16.0
	DefaultSampleRate    = 48000
	DefaultVideoRate     = 2
	DefaultLookahead     = 2
	DefaultReverbSeconds = 2.0
)

type Config struct {
	Grid     GridConfig     `yaml:"grid"`
	Frame    FrameConfig    `yaml:"frame"`
	Composer ComposerConfig `yaml:"composer"`
	Reverb   ReverbConfig   `yaml:"reverb"`
	Audio    AudioConfig    `yaml:"audio"`
	Display  DisplayConfig  `yaml:"display"`
	Log      LogConfig      `yaml:"log"`
}

type GridConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Layers        int    `yaml:"layers"`
	Modulus       uint64 `yaml:"modulus"`
	FeedbackLayer int    `yaml:"feedback_layer"`
	// Rules overrides the default rule chain, one entry per layer.
	Rules []LayerConfig `yaml:"rules,omitempty"`
}

type LayerConfig struct {
	Rule   string `yaml:"rule"`
	Radius int    `yaml:"radius,omitempty"`
	// Modulus holds one value for every channel or one per channel.
	Modulus []uint64 `yaml:"modulus,omitempty"`
}

type FrameConfig struct {
	Seconds        float64 `yaml:"seconds"`
	SampleRate     int     `yaml:"sample_rate"`
	VideoPerSecond int     `yaml:"video_per_second"`
	Lookahead      int     `yaml:"lookahead"`
}

type ComposerConfig struct {
	Voices        int      `yaml:"voices"`
	NotesPerVoice int      `yaml:"notes_per_voice"`
	LowestOctave  int      `yaml:"lowest_octave"`
	BaseDuration  float64  `yaml:"base_duration"`
	Decay         float64  `yaml:"decay"`
	Contrast      float64  `yaml:"contrast"`
	Waveforms     []string `yaml:"waveforms"`
	Chord         string   `yaml:"chord"`
}

type ReverbConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Taps           int     `yaml:"taps"`
	Seconds        float64 `yaml:"seconds"`
	FirstAmplitude float64 `yaml:"first_amplitude"`
	Falloff        float64 `yaml:"falloff"`
	Wet            float64 `yaml:"wet"`
}

type AudioConfig struct {
	Backend      string `yaml:"backend"`
	BufferFrames int    `yaml:"buffer_frames"`
}

type DisplayConfig struct {
	Backend   string `yaml:"backend"`
	Scale     int    `yaml:"scale"`
	FPS       int    `yaml:"fps"`
	Title     string `yaml:"title"`
	ShowStats bool   `yaml:"show_stats"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	composer := compose.DefaultConfig()
	rev := reverb.DefaultConfig(DefaultSampleRate)
	dev := audio.DefaultConfig()
	disp := display.DefaultConfig()

	waveforms := make([]string, len(composer.Waveforms))
	for i, w := range composer.Waveforms {
		waveforms[i] = w.String()
	}

	return &Config{
		Grid: GridConfig{
			Width:         DefaultSize,
			Height:        DefaultSize,
			Layers:        DefaultLayers,
			Modulus:       DefaultModulus,
			FeedbackLayer: 1,
		},
		Frame: FrameConfig{
			Seconds:        DefaultFrameSeconds,
			SampleRate:     DefaultSampleRate,
			VideoPerSecond: DefaultVideoRate,
			Lookahead:      DefaultLookahead,
		},
		Composer: ComposerConfig{
			Voices:        composer.Voices,
			NotesPerVoice: composer.NotesPerVoice,
			LowestOctave:  composer.LowestOctave,
			BaseDuration:  composer.BaseDuration,
			Decay:         composer.Decay,
			Contrast:      composer.Contrast,
			Waveforms:     waveforms,
			Chord:         composer.Chord.String(),
		},
		Reverb: ReverbConfig{
			Enabled:        true,
			Taps:           rev.Taps,
			Seconds:        DefaultReverbSeconds,
			FirstAmplitude: rev.FirstAmplitude,
			Falloff:        rev.Falloff,
			Wet:            rev.Wet,
		},
		Audio: AudioConfig{
			Backend:      dev.Backend,
			BufferFrames: dev.BufferFrames,
		},
		Display: DisplayConfig{
			Backend:   disp.Backend,
			Scale:     disp.Scale,
			FPS:       disp.FPS,
			Title:     disp.Title,
			ShowStats: disp.ShowStats,
		},
		Log: LogConfig{Level: "info"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section by building the component configs from it.
func (c *Config) Validate() error {
	if _, err := c.Automaton(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	comp, err := c.ComposerConfig()
	if err != nil {
		return fmt.Errorf("composer: %w", err)
	}
	if err := comp.Validate(); err != nil {
		return fmt.Errorf("composer: %w", err)
	}
	if c.Frame.Lookahead < 1 {
		return fmt.Errorf("frame: %w: lookahead %d", ErrInvalid, c.Frame.Lookahead)
	}
	if c.Reverb.Enabled {
		if err := c.ReverbConfig().Validate(); err != nil {
			return fmt.Errorf("reverb: %w", err)
		}
	}
	if err := c.AudioConfig().Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if err := c.DisplayConfig().Validate(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	if _, err := logging.ResolveLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// Automaton builds and validates the automaton configuration.
func (c *Config) Automaton() (automaton.Config, error) {
	g := c.Grid
	layers := g.Layers
	if len(g.Rules) > 0 {
		layers = len(g.Rules)
	}
	cfg := automaton.DefaultConfig(g.Width, g.Height, layers, g.Modulus)
	cfg.FeedbackLayer = g.FeedbackLayer

	for i, r := range g.Rules {
		kind, err := automaton.ParseRule(r.Rule)
		if err != nil {
			return cfg, fmt.Errorf("rule %d: %w", i, err)
		}
		spec := automaton.LayerSpec{Rule: kind, Radius: r.Radius, Modulus: automaton.Uniform(g.Modulus)}
		switch len(r.Modulus) {
		case 0:
		case 1:
			spec.Modulus = automaton.Uniform(r.Modulus[0])
		case 3:
			copy(spec.Modulus[:], r.Modulus)
		default:
			return cfg, fmt.Errorf("rule %d: %w: modulus needs 1 or 3 values, got %d", i, ErrInvalid, len(r.Modulus))
		}
		cfg.Layers[i] = spec
	}

	if _, err := automaton.NewWithConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) ComposerConfig() (compose.Config, error) {
	cc := c.Composer
	cfg := compose.Config{
		FrameSeconds:          c.Frame.Seconds,
		SampleRate:            c.Frame.SampleRate,
		VideoSamplesPerSecond: c.Frame.VideoPerSecond,
		Voices:                cc.Voices,
		NotesPerVoice:         cc.NotesPerVoice,
		LowestOctave:          cc.LowestOctave,
		BaseDuration:          cc.BaseDuration,
		Decay:                 cc.Decay,
		Contrast:              cc.Contrast,
	}
	for _, name := range cc.Waveforms {
		w, err := music.ParseWaveform(name)
		if err != nil {
			return cfg, err
		}
		cfg.Waveforms = append(cfg.Waveforms, w)
	}
	if strings.TrimSpace(cc.Chord) != "" {
		chord, err := music.ParseChord(cc.Chord)
		if err != nil {
			return cfg, err
		}
		cfg.Chord = chord
	}
	return cfg, nil
}

func (c *Config) ReverbConfig() reverb.Config {
	return reverb.Config{
		Taps:           c.Reverb.Taps,
		Length:         int(c.Reverb.Seconds * float64(c.Frame.SampleRate)),
		FirstAmplitude: c.Reverb.FirstAmplitude,
		Falloff:        c.Reverb.Falloff,
		Wet:            c.Reverb.Wet,
	}
}

func (c *Config) AudioConfig() audio.Config {
	return audio.Config{
		Backend:      c.Audio.Backend,
		SampleRate:   c.Frame.SampleRate,
		BufferFrames: c.Audio.BufferFrames,
	}
}

func (c *Config) DisplayConfig() display.Config {
	return display.Config{
		Backend:   c.Display.Backend,
		Scale:     c.Display.Scale,
		FPS:       c.Display.FPS,
		Title:     c.Display.Title,
		ShowStats: c.Display.ShowStats,
	}
}

// PipelineConfig paces the display so every snapshot of a frame is shown
// for an equal share of it.
func (c *Config) PipelineConfig() pipeline.Config {
	length := time.Duration(c.Frame.Seconds * float64(time.Second))
	videos := int(float64(c.Frame.VideoPerSecond)*c.Frame.Seconds + 0.5)
	return pipeline.Config{
		Lookahead:       c.Frame.Lookahead,
		DisplayInterval: pipeline.Interval(length, videos),
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Composer.Waveforms = append([]string(nil), c.Composer.Waveforms...)
	if c.Grid.Rules != nil {
		out.Grid.Rules = make([]LayerConfig, len(c.Grid.Rules))
		for i, r := range c.Grid.Rules {
			r.Modulus = append([]uint64(nil), r.Modulus...)
			out.Grid.Rules[i] = r
		}
	}
	return &out
}
