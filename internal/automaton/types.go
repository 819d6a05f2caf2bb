package automaton

import (
	"fmt"
	"strings"
)

// Channel selects one of the three counters of a cell.
type Channel int

const (
	ChannelColor Channel = iota
	ChannelSaturation
	ChannelBrightness
)

// Channels lists every channel in storage order.
var Channels = [3]Channel{ChannelColor, ChannelSaturation, ChannelBrightness}

func (c Channel) String() string {
	switch c {
	case ChannelColor:
		return "color"
	case ChannelSaturation:
		return "saturation"
	case ChannelBrightness:
		return "brightness"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

type Cell struct {
	Color      uint64
	Saturation uint64
	Brightness uint64
}

// Get returns the value of a single channel.
func (c Cell) Get(ch Channel) uint64 {
	switch ch {
	case ChannelSaturation:
		return c.Saturation
	case ChannelBrightness:
		return c.Brightness
	default:
		return c.Color
	}
}

// Mean is the integer average of the three channels.
func (c Cell) Mean() uint64 {
	return (c.Color + c.Saturation + c.Brightness) / 3
}

type Point struct {
	X, Y int
}

// RuleKind is the update rule of a layer.
type RuleKind int

const (
	RuleCopy RuleKind = iota
	RuleSum
	RuleFlip
	RuleFashion
)

var ruleNames = map[RuleKind]string{
	RuleCopy:    "copy",
	RuleSum:     "sum",
	RuleFlip:    "flip",
	RuleFashion: "fashion",
}

func (r RuleKind) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// ParseRule maps a rule name to its kind.
func ParseRule(name string) (RuleKind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for kind, n := range ruleNames {
		if n == key {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRule, name)
}

// LayerSpec describes one layer: its rule, the neighbourhood radius used by
// sum and fashion, and the modulus of each channel.
type LayerSpec struct {
	Rule    RuleKind
	Radius  int
	Modulus [3]uint64
}

// MaxModulus bounds every channel modulus so neighbourhood sums cannot
// overflow and fashion counters stay small.
const MaxModulus = 1 << 16

// Uniform returns a modulus triple with the same value on every channel.
func Uniform(m uint64) [3]uint64 {
	return [3]uint64{m, m, m}
}

// SeedSpec places the single non-zero cell of a fresh automaton.
type SeedSpec struct {
	Layer int
	X, Y  int
	Value uint64
}

type Config struct {
	Width, Height int
	Layers        []LayerSpec
	// FeedbackLayer is the layer whose previous-step values layer 0 reads.
	FeedbackLayer int
	Seed          SeedSpec
}

// DefaultLayers returns the classic rule chain: copy, sum (radius 1),
// flip-if-zero, fashion (radius 4), then fashion with radius 1 for any
// further layer.
func DefaultLayers(count int, modulus uint64) []LayerSpec {
	chain := []LayerSpec{
		{Rule: RuleCopy},
		{Rule: RuleSum, Radius: 1},
		{Rule: RuleFlip},
		{Rule: RuleFashion, Radius: 4},
	}
	layers := make([]LayerSpec, count)
	for i := range layers {
		if i < len(chain) {
			layers[i] = chain[i]
		} else {
			layers[i] = LayerSpec{Rule: RuleFashion, Radius: 1}
		}
		layers[i].Modulus = Uniform(modulus)
	}
	return layers
}

// DefaultConfig builds the configuration used by [New].
func DefaultConfig(width, height, layerCount int, modulus uint64) Config {
	seed := SeedSpec{Layer: 1, Value: 1}
	feedback := 1
	if layerCount < 2 {
		seed.Layer = 0
		feedback = 0
	}
	return Config{
		Width:         width,
		Height:        height,
		Layers:        DefaultLayers(layerCount, modulus),
		FeedbackLayer: feedback,
		Seed:          seed,
	}
}
