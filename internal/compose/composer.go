// Package compose reads a layered automaton as a structured random source and
// turns it into one frame of music and video at a time.
package compose

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/nutshell/internal/automaton"
	"github.com/san-kum/nutshell/internal/frame"
	"github.com/san-kum/nutshell/internal/music"
)

// Composer owns the read pointer that walks the top layer. It is not safe for
// concurrent use.
type Composer struct {
	cfg        Config
	pointer    automaton.Point
	instrument music.Instrument
	pool       *frame.Pool
	produced   uint64
}

func New(cfg Config) (*Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	components := make([]music.Component, len(cfg.Waveforms))
	for i, w := range cfg.Waveforms {
		components[i] = music.Component{Contribution: 1, Shape: w}
	}
	return &Composer{
		cfg:        cfg,
		instrument: music.NewInstrument(components...),
		pool:       frame.NewPool(cfg.AudioFrames() * 2),
	}, nil
}

func (c *Composer) Config() Config { return c.cfg }

func (c *Composer) Pointer() automaton.Point { return c.pointer }

// FrameLength is the wall-clock span covered by one frame.
func (c *Composer) FrameLength() time.Duration {
	return time.Duration(c.cfg.FrameSeconds * float64(time.Second))
}

func (c *Composer) VideoSamples() int { return c.cfg.VideoSamples() }

// Recycle returns a played audio buffer for reuse by later frames.
func (c *Composer) Recycle(a *frame.AudioFrame) { c.pool.Put(a) }

// Value reads the mean of the top layer's channels under the pointer, then
// moves the pointer right, down or diagonally depending on the value.
func (c *Composer) Value(a *automaton.Automaton) uint64 {
	v := a.At(a.Top(), c.pointer.X, c.pointer.Y).Mean()
	switch v % 3 {
	case 0:
		c.pointer = a.Right(c.pointer)
	case 1:
		c.pointer = a.Down(c.pointer)
	default:
		c.pointer = a.Down(a.Right(c.pointer))
	}
	return v
}

// ProduceFrame composes the next frame from a, stepping it once per video
// sample.
func (c *Composer) ProduceFrame(a *automaton.Automaton) (*frame.Frame, error) {
	mod := a.Modulus(a.Top())
	if mod[automaton.ChannelColor] < 2 {
		return nil, ErrGridTooSmall
	}
	start := time.Now()

	key, _ := music.Degree(int(c.Value(a) % 7))
	line := &music.Line{Instrument: c.instrument, Amplitude: 1}
	video := &frame.VideoFrame{Samples: make([]frame.VideoSample, 0, c.cfg.VideoSamples())}

	for range c.cfg.VideoSamples() {
		for v := range c.cfg.Voices {
			base := (v+c.cfg.LowestOctave)*12 + key.Offset()
			w := music.NewNoteWriter(0, base, c.cfg.BaseDuration)
			for range c.cfg.NotesPerVoice {
				n, err := c.note(a, w, v, mod[automaton.ChannelColor])
				if err != nil {
					return nil, err
				}
				line.Add(n)
			}
		}
		video.Samples = append(video.Samples, c.snapshot(a))
		a.Step()
	}

	audio, err := c.render(line)
	if err != nil {
		return nil, err
	}
	f := &frame.Frame{
		Index:   c.produced,
		Audio:   audio,
		Video:   video,
		Notes:   line.Notes,
		Elapsed: time.Since(start),
	}
	c.produced++
	return f, nil
}

func (c *Composer) note(a *automaton.Automaton, w *music.NoteWriter, voice int, modulus uint64) (music.TimedNote, error) {
	w.SetDuration(float64(c.Value(a)%3 + 1))
	w.SetAmplitude(1 / float64(c.Value(a)%4+1))
	w.Decay = c.cfg.Decay / c.cfg.BaseDuration * (float64(voice)*c.cfg.Contrast + 1)

	slots := c.cfg.slots()
	var g uint64
	for range (slots/modulus + 1) * 2 {
		g = (g + c.Value(a)) % slots
	}
	onset := c.cfg.BaseDuration * float64(g)
	if onset >= c.cfg.FrameSeconds {
		onset = c.cfg.BaseDuration * float64(slots-1)
	}
	if onset < 0 || onset >= c.cfg.FrameSeconds {
		return music.TimedNote{}, fmt.Errorf("compose: onset %v outside frame of %vs", onset, c.cfg.FrameSeconds)
	}
	w.SetTime(onset)

	if c.Value(a)%8 == 0 {
		w.SetStep(int(c.Value(a) % 7))
		return w.NoteInScale(), nil
	}
	w.SetStep(int(c.Value(a) % 3))
	return w.NoteInChord(c.cfg.Chord), nil
}

func (c *Composer) snapshot(a *automaton.Automaton) frame.VideoSample {
	width, height := a.Size()
	top := a.Top()
	m := a.Modulus(top)
	s := frame.NewVideoSample(width, height)
	for i, cell := range a.Layer(top) {
		s.Pixels[i] = cellColor(cell, m)
	}
	return s
}

// cellColor maps hue to colour/m, saturation to s/(m-1) and value to the
// inverted brightness 1-b/(m-1).
func cellColor(cell automaton.Cell, m [3]uint64) color.RGBA {
	hue := math.Mod(float64(cell.Color)/float64(m[0])*360+180, 360)
	sat := float64(cell.Saturation) / float64(m[1]-1)
	val := 1 - float64(cell.Brightness)/float64(m[2]-1)
	r, g, b := colorful.Hsv(hue, sat, val).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func (c *Composer) render(line *music.Line) (*frame.AudioFrame, error) {
	wave := music.NewWave(c.cfg.AudioFrames())
	song := music.Song{}
	song.AddLine(line)
	if err := song.Render(wave, c.cfg.SampleRate); err != nil {
		return nil, err
	}
	wave.Normalize()

	audio := c.pool.Get()
	wave.Interleave(audio.Samples)
	return audio, nil
}
