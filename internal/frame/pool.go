package frame

import "sync"

// Pool recycles audio buffers of a fixed sample count between the player and
// the producer.
type Pool struct {
	pool sync.Pool
	size int
}

func NewPool(samples int) *Pool {
	return &Pool{
		size: samples,
		pool: sync.Pool{
			New: func() any {
				return &AudioFrame{Samples: make([]float32, samples)}
			},
		},
	}
}

// Get returns a zeroed buffer of the pool's size. Clearing happens here, on
// the producer side, so Put stays cheap for the audio callback.
func (p *Pool) Get() *AudioFrame {
	a := p.pool.Get().(*AudioFrame)
	clear(a.Samples)
	return a
}

// Put hands a buffer back untouched. Buffers of the wrong size are dropped.
func (p *Pool) Put(a *AudioFrame) {
	if a == nil || len(a.Samples) != p.size {
		return
	}
	p.pool.Put(a)
}

func (p *Pool) Size() int { return p.size }
