// Package frame holds the unit exchanged between the producer and the audio
// and display consumers: a fixed span of interleaved stereo audio plus the
// video snapshots rendered while composing it.
package frame

import (
	"errors"
	"image/color"
	"time"

	"github.com/san-kum/nutshell/internal/music"
)

var ErrBufferSize = errors.New("frame: destination buffer too small")

// AudioFrame is interleaved stereo: L0 R0 L1 R1 ...
type AudioFrame struct {
	Samples []float32
}

// Frames is the number of stereo sample pairs.
func (a *AudioFrame) Frames() int { return len(a.Samples) / 2 }

// VideoSample is one snapshot of the rendered layer, row-major.
type VideoSample struct {
	Width, Height int
	Pixels        []color.RGBA
}

func NewVideoSample(width, height int) VideoSample {
	return VideoSample{Width: width, Height: height, Pixels: make([]color.RGBA, width*height)}
}

func (v *VideoSample) At(x, y int) color.RGBA {
	return v.Pixels[y*v.Width+x]
}

func (v *VideoSample) Set(x, y int, c color.RGBA) {
	v.Pixels[y*v.Width+x] = c
}

// CopyTo writes the snapshot as packed RGBA bytes into dst, which the caller
// owns and may reuse between draws. It returns the number of bytes written.
func (v *VideoSample) CopyTo(dst []byte) (int, error) {
	need := 4 * len(v.Pixels)
	if len(dst) < need {
		return 0, ErrBufferSize
	}
	for i, p := range v.Pixels {
		o := 4 * i
		dst[o] = p.R
		dst[o+1] = p.G
		dst[o+2] = p.B
		dst[o+3] = p.A
	}
	return need, nil
}

type VideoFrame struct {
	Samples []VideoSample
}

func (v *VideoFrame) Len() int { return len(v.Samples) }

type Frame struct {
	Index   uint64
	Audio   *AudioFrame
	Video   *VideoFrame
	Notes   []music.TimedNote
	Elapsed time.Duration
}

// TakeVideo detaches the video part so it can be handed to the display
// while the audio part stays with the player.
func (f *Frame) TakeVideo() *VideoFrame {
	v := f.Video
	f.Video = nil
	return v
}
