package music

import "errors"

var (
	ErrUnknownWaveform = errors.New("music: unknown waveform")
	ErrUnknownChord    = errors.New("music: unknown chord")
	ErrSampleRate      = errors.New("music: sample rate must be positive")
)
