//go:build headless

package audio

import "fmt"

func openPortAudio(Config, Source) (Device, error) {
	return nil, fmt.Errorf("%w: portaudio is not built into headless binaries", ErrNoDevice)
}

func openOto(Config, Source) (Device, error) {
	return nil, fmt.Errorf("%w: oto is not built into headless binaries", ErrNoDevice)
}
