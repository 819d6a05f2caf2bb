package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/nutshell/internal/automaton"
	"github.com/san-kum/nutshell/internal/compose"
	"github.com/san-kum/nutshell/internal/frame"
)

var (
	ErrLookahead = errors.New("pipeline: lookahead must be at least 1")
	ErrInterval  = errors.New("pipeline: display interval must be positive")
	ErrNoSource  = errors.New("pipeline: producer is required")
	ErrProduce   = errors.New("pipeline: frame production failed")
	ErrStarted   = errors.New("pipeline: already started")
)

// Message is one of the point-to-point signals exchanged by the units.
type Message int

const (
	NeedFrame Message = iota
	FrameSent
	VideoFrameSent
)

func (m Message) String() string {
	switch m {
	case NeedFrame:
		return "NeedFrame"
	case FrameSent:
		return "FrameSent"
	case VideoFrameSent:
		return "VideoFrameSent"
	}
	return fmt.Sprintf("message(%d)", int(m))
}

// State is where a consumer sits in its request cycle.
type State int32

const (
	StateNeedFrame State = iota
	StateWaitingForFrame
	StateHasFrame
)

func (s State) String() string {
	switch s {
	case StateNeedFrame:
		return "need-frame"
	case StateWaitingForFrame:
		return "waiting-for-frame"
	case StateHasFrame:
		return "has-frame"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Observer sees the protocol from the audio unit's side: every NeedFrame it
// sends, every FrameSent it receives and every VideoFrameSent it forwards.
// It is called from the audio callback, so implementations must be quick.
type Observer interface {
	OnMessage(msg Message, index uint64)
}

type Producer interface {
	Produce() (*frame.Frame, error)
}

// Recycler takes back audio buffers once they have been played.
type Recycler interface {
	Recycle(a *frame.AudioFrame)
}

// AutomatonProducer composes frames from an automaton it owns exclusively.
type AutomatonProducer struct {
	composer  *compose.Composer
	automaton *automaton.Automaton
}

func NewAutomatonProducer(c *compose.Composer, a *automaton.Automaton) *AutomatonProducer {
	return &AutomatonProducer{composer: c, automaton: a}
}

func (p *AutomatonProducer) Produce() (*frame.Frame, error) {
	return p.composer.ProduceFrame(p.automaton)
}

func (p *AutomatonProducer) Recycle(a *frame.AudioFrame) { p.composer.Recycle(a) }

// DisplayInterval is the time each video snapshot stays on screen.
func (p *AutomatonProducer) DisplayInterval() time.Duration {
	return Interval(p.composer.FrameLength(), p.composer.VideoSamples())
}

// Interval divides a frame's span evenly between its video samples.
func Interval(frameLength time.Duration, videoSamples int) time.Duration {
	if videoSamples < 1 {
		return frameLength
	}
	return frameLength / time.Duration(videoSamples)
}
