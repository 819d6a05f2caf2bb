package audio

import (
	"encoding/binary"
	"math"
)

// Reader adapts a Source to the io.Reader that byte-oriented players pull
// from, encoding float32 little endian. Reads are rounded down to whole
// stereo frames.
type Reader struct {
	src Source
	buf []float32
}

func NewReader(src Source) *Reader {
	return &Reader{src: src, buf: make([]float32, 2048)}
}

func (r *Reader) Read(p []byte) (int, error) {
	const frameBytes = 4 * Channels
	n := len(p) / frameBytes * Channels
	if n == 0 {
		return 0, nil
	}
	if cap(r.buf) < n {
		r.buf = make([]float32, n)
	}
	samples := r.buf[:n]
	r.src.Fill(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(s))
	}
	return 4 * n, nil
}
