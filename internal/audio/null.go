package audio

import (
	"sync"
	"sync/atomic"
	"time"
)

// Null pulls from its source without a sound card. When paced it pulls one
// buffer per buffer duration of wall-clock time, otherwise as fast as the
// source allows.
type Null struct {
	src    Source
	frames int
	period time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	pulled  atomic.Uint64
	started bool
}

func NewNull(cfg Config, src Source, paced bool) *Null {
	n := &Null{src: src, frames: cfg.BufferFrames}
	if paced {
		n.period = cfg.BufferDuration()
	}
	return n
}

func (n *Null) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return ErrStarted
	}
	n.started = true
	n.stop = make(chan struct{})
	n.wg.Add(1)
	go n.loop(n.stop)
	return nil
}

func (n *Null) loop(stop <-chan struct{}) {
	defer n.wg.Done()
	buf := make([]float32, n.frames*Channels)
	var tick <-chan time.Time
	if n.period > 0 {
		t := time.NewTicker(n.period)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-stop:
			return
		default:
		}
		if tick != nil {
			select {
			case <-stop:
				return
			case <-tick:
			}
		}
		n.src.Fill(buf)
		n.pulled.Add(uint64(n.frames))
	}
}

// Pulled is the number of stereo frames taken from the source so far.
func (n *Null) Pulled() uint64 { return n.pulled.Load() }

// Close stops pulling. A Fill that is blocked inside the source must return
// before Close does.
func (n *Null) Close() error {
	n.mu.Lock()
	if !n.started {
		n.mu.Unlock()
		return nil
	}
	close(n.stop)
	n.started = false
	n.mu.Unlock()
	n.wg.Wait()
	return nil
}
