//go:build !headless

package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio plays through the default output stream, 0 in and 2 out.
type PortAudio struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	started bool
}

func openPortAudio(cfg Config, src Source) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: portaudio: %w", ErrNoDevice, err)
	}
	stream, err := portaudio.OpenDefaultStream(0, Channels, float64(cfg.SampleRate), cfg.BufferFrames, src.Fill)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: open stream: %w", ErrNoDevice, err)
	}
	return &PortAudio{stream: stream}, nil
}

func (p *PortAudio) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrStarted
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("%w: start stream: %w", ErrNoDevice, err)
	}
	p.started = true
	return nil
}

func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return nil
	}
	var err error
	if p.started {
		err = p.stream.Stop()
	}
	if cerr := p.stream.Close(); err == nil {
		err = cerr
	}
	p.stream = nil
	p.started = false
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
