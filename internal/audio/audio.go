// Package audio connects a pull-based sample source to a sound device.
//
// Every backend asks its Source for interleaved stereo float32 samples at the
// configured rate. Device construction failures are fatal startup errors.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/san-kum/nutshell/internal/logging"
)

var (
	ErrNoDevice       = errors.New("audio: no usable output device")
	ErrUnknownBackend = errors.New("audio: unknown backend")
	ErrConfig         = errors.New("audio: invalid configuration")
	ErrStarted        = errors.New("audio: device already started")
)

const (
	BackendPortAudio = "portaudio"
	BackendOto       = "oto"
	BackendNull      = "null"

	Channels = 2
)

// Source fills out with interleaved stereo samples. It is called from the
// device's real-time thread and must fill every slot.
type Source interface {
	Fill(out []float32)
}

type Device interface {
	Start() error
	Close() error
}

type Config struct {
	Backend    string
	SampleRate int
	// BufferFrames is the number of stereo frames requested per callback.
	BufferFrames int
}

func DefaultConfig() Config {
	return Config{Backend: BackendPortAudio, SampleRate: 48000, BufferFrames: 512}
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 || c.BufferFrames <= 0 {
		return fmt.Errorf("%w: rate %d, buffer %d", ErrConfig, c.SampleRate, c.BufferFrames)
	}
	if !slices.Contains(Backends(), normalize(c.Backend)) {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}

// BufferDuration is the span of audio requested per callback.
func (c Config) BufferDuration() time.Duration {
	return time.Duration(c.BufferFrames) * time.Second / time.Duration(c.SampleRate)
}

func Backends() []string {
	return []string{BackendPortAudio, BackendOto, BackendNull}
}

func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Open builds the named backend around src. The device is silent until
// Start is called.
func Open(cfg Config, src Source, logger *slog.Logger) (Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logging.OrDiscard(logger).With("backend", normalize(cfg.Backend))

	var (
		dev Device
		err error
	)
	switch normalize(cfg.Backend) {
	case BackendPortAudio:
		dev, err = openPortAudio(cfg, src)
	case BackendOto:
		dev, err = openOto(cfg, src)
	case BackendNull:
		dev = NewNull(cfg, src, true)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("audio device opened", "sample_rate", cfg.SampleRate, "buffer", cfg.BufferDuration())
	return dev, nil
}
