package compose

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/nutshell/internal/music"
)

var (
	ErrFrameSeconds = errors.New("compose: frame seconds must be positive")
	ErrSampleRate   = errors.New("compose: sample rate must be positive")
	ErrVideoRate    = errors.New("compose: video samples per frame must be at least 1")
	ErrVoices       = errors.New("compose: voices and notes per voice must be at least 1")
	ErrBaseDuration = errors.New("compose: base duration out of range for the frame")
	ErrNoWaveforms  = errors.New("compose: at least one waveform is required")
	ErrGridTooSmall = errors.New("compose: top layer modulus must be at least 2")
)

// MaxSlots bounds how many base durations fit in a frame. Every note walks
// the pointer in proportion to it.
const MaxSlots = 1 << 16

type Config struct {
	FrameSeconds          float64
	SampleRate            int
	VideoSamplesPerSecond int

	// Voices play in consecutive octaves starting at LowestOctave relative
	// to A4. Each voice writes NotesPerVoice notes per video sample.
	Voices        int
	NotesPerVoice int
	LowestOctave  int

	BaseDuration float64
	Decay        float64
	Contrast     float64

	Waveforms []music.Waveform
	Chord     music.Chord
}

func DefaultConfig() Config {
	return Config{
		FrameSeconds:          16,
		SampleRate:            48000,
		VideoSamplesPerSecond: 2,
		Voices:                7,
		NotesPerVoice:         2,
		LowestOctave:          -6,
		BaseDuration:          1.0 / 6.0,
		Decay:                 1,
		Contrast:              1,
		Waveforms:             []music.Waveform{music.Sine, music.Algebraic},
		Chord:                 music.ChordMinor,
	}
}

func (c Config) Validate() error {
	if c.FrameSeconds <= 0 || math.IsNaN(c.FrameSeconds) || math.IsInf(c.FrameSeconds, 0) {
		return fmt.Errorf("%w: %v", ErrFrameSeconds, c.FrameSeconds)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrSampleRate, c.SampleRate)
	}
	if c.VideoSamples() < 1 {
		return fmt.Errorf("%w: %d per second over %vs", ErrVideoRate, c.VideoSamplesPerSecond, c.FrameSeconds)
	}
	if c.Voices < 1 || c.NotesPerVoice < 1 {
		return fmt.Errorf("%w: %d voices, %d notes", ErrVoices, c.Voices, c.NotesPerVoice)
	}
	if c.BaseDuration <= 0 || c.slots() < 1 || c.slots() > MaxSlots {
		return fmt.Errorf("%w: %v", ErrBaseDuration, c.BaseDuration)
	}
	if len(c.Waveforms) == 0 {
		return ErrNoWaveforms
	}
	return nil
}

// VideoSamples is the number of snapshots in every frame.
func (c Config) VideoSamples() int {
	return int(math.Round(float64(c.VideoSamplesPerSecond) * c.FrameSeconds))
}

// AudioFrames is the number of stereo sample pairs in every frame.
func (c Config) AudioFrames() int {
	return int(math.Round(c.FrameSeconds * float64(c.SampleRate)))
}

// slots is how many base durations fit in a frame; onsets are whole slots.
func (c Config) slots() uint64 {
	if c.BaseDuration <= 0 {
		return 0
	}
	return uint64(math.Floor(c.FrameSeconds/c.BaseDuration + 1e-9))
}
