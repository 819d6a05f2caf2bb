package pipeline

import (
	"time"

	"github.com/san-kum/nutshell/internal/frame"
)

// DisplayUnit paces video snapshots for a window loop. Tick is cheap and
// never blocks; it must only be called from one goroutine.
type DisplayUnit struct {
	video    <-chan *frame.VideoFrame
	interval time.Duration
	stats    *Stats

	held   *frame.VideoFrame
	cursor int
	last   *frame.VideoSample
	due    time.Time
	state  State
}

func (d *DisplayUnit) Interval() time.Duration { return d.interval }

func (d *DisplayUnit) State() State { return d.state }

// Tick returns the snapshot to show at now and whether it changed since the
// previous call. While no video is available the last snapshot is kept.
func (d *DisplayUnit) Tick(now time.Time) (*frame.VideoSample, bool) {
	if d.held != nil && now.Before(d.due) {
		return d.last, false
	}

	if d.held == nil || d.cursor >= d.held.Len() {
		select {
		case v := <-d.video:
			d.held = v
			d.cursor = 0
			d.due = now
			d.state = StateHasFrame
		default:
			if d.state == StateHasFrame {
				d.stats.displayStarved.Add(1)
			}
			d.held = nil
			d.state = StateWaitingForFrame
			return d.last, false
		}
	}
	if d.held.Len() == 0 {
		d.held = nil
		return d.last, false
	}

	d.last = &d.held.Samples[d.cursor]
	d.cursor++
	if now.Sub(d.due) > d.interval {
		d.due = now
	}
	d.due = d.due.Add(d.interval)
	return d.last, true
}
