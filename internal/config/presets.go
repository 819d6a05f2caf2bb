package config

import "sort"

func preset(mutate func(c *Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"classic": DefaultConfig(),
	"dense": preset(func(c *Config) {
		c.Grid.Width, c.Grid.Height = 90, 90
		c.Grid.Rules = []LayerConfig{
			{Rule: "copy"},
			{Rule: "sum", Radius: 1},
			{Rule: "flip"},
			{Rule: "fashion", Radius: 4},
			{Rule: "fashion", Radius: 1},
			{Rule: "fashion", Radius: 1},
		}
		c.Display.Scale = 8
	}),
	"prism": preset(func(c *Config) {
		c.Grid.Rules = []LayerConfig{
			{Rule: "copy"},
			{Rule: "sum", Radius: 1, Modulus: []uint64{12, 7, 5}},
			{Rule: "flip", Modulus: []uint64{12, 7, 5}},
			{Rule: "fashion", Radius: 2, Modulus: []uint64{12, 7, 5}},
		}
	}),
	"quick": preset(func(c *Config) {
		c.Grid.Width, c.Grid.Height = 32, 32
		c.Frame.Seconds = 4
		c.Frame.VideoPerSecond = 4
		c.Frame.Lookahead = 3
		c.Display.Scale = 16
	}),
	"drone": preset(func(c *Config) {
		c.Composer.Voices = 4
		c.Composer.NotesPerVoice = 1
		c.Composer.LowestOctave = -4
		c.Composer.BaseDuration = 0.5
		c.Composer.Decay = 0.25
		c.Composer.Waveforms = []string{"sine", "triangle"}
		c.Composer.Chord = "major"
		c.Reverb.Wet = 0.75
	}),
	"dry": preset(func(c *Config) {
		c.Reverb.Enabled = false
		c.Composer.Waveforms = []string{"square", "saw"}
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
