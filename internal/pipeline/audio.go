package pipeline

import (
	"log/slog"
	"sync/atomic"

	"github.com/san-kum/nutshell/internal/frame"
	"github.com/san-kum/nutshell/internal/reverb"
)

// AudioUnit plays frames from inside the device callback. Fill must only be
// called from one goroutine at a time.
type AudioUnit struct {
	need     chan<- struct{}
	frames   <-chan *frame.Frame
	video    chan *frame.VideoFrame
	done     <-chan struct{}
	reverb   *reverb.Engine
	recycler Recycler
	stats    *Stats
	observer Observer
	log      *slog.Logger

	current *frame.AudioFrame
	cursor  int
	state   atomic.Int32
}

// State reports where the unit is in its request cycle.
func (u *AudioUnit) State() State { return State(u.state.Load()) }

// Fill writes exactly len(out) interleaved samples. It blocks while waiting
// for a frame and writes silence once the pipeline is closed or after a
// recovered fault.
func (u *AudioUnit) Fill(out []float32) {
	defer func() {
		if r := recover(); r != nil {
			u.stats.faults.Add(1)
			u.log.Error("audio fill recovered", "panic", r)
			clear(out)
			u.current = nil
			u.setState(StateNeedFrame)
		}
	}()

	for i := 0; i < len(out); {
		if u.current == nil || u.cursor >= len(u.current.Samples) {
			if !u.next() {
				clear(out[i:])
				break
			}
		}
		n := copy(out[i:], u.current.Samples[u.cursor:])
		u.cursor += n
		i += n
	}
	if u.reverb != nil {
		u.reverb.ProcessInterleaved(out)
	}
}

// next retires the exhausted frame and blocks for its successor. It returns
// false when the pipeline shut down first.
func (u *AudioUnit) next() bool {
	if u.current != nil {
		u.stats.played.Add(1)
		if u.recycler != nil {
			u.recycler.Recycle(u.current)
		}
		u.current = nil
	}
	u.setState(StateNeedFrame)

	select {
	case u.need <- struct{}{}:
	case <-u.done:
		return false
	}
	u.notify(NeedFrame, u.stats.played.Load())
	u.setState(StateWaitingForFrame)

	var f *frame.Frame
	select {
	case f = <-u.frames:
	case <-u.done:
		return false
	}
	u.notify(FrameSent, f.Index)
	u.forward(f)
	u.current = f.Audio
	u.cursor = 0
	u.setState(StateHasFrame)
	return true
}

// forward hands the video to the display, replacing an unread one.
func (u *AudioUnit) forward(f *frame.Frame) {
	v := f.TakeVideo()
	if v == nil {
		return
	}
	for {
		select {
		case u.video <- v:
			u.notify(VideoFrameSent, f.Index)
			return
		default:
		}
		select {
		case <-u.video:
			u.stats.droppedVideo.Add(1)
		default:
		}
	}
}

func (u *AudioUnit) setState(s State) { u.state.Store(int32(s)) }

func (u *AudioUnit) notify(msg Message, index uint64) {
	if u.observer != nil {
		u.observer.OnMessage(msg, index)
	}
}
