package beepaudio

import (
	"sync"

	"github.com/gopxl/beep"
)

// tap passes audio through while keeping the newest mono samples in a ring
// buffer for frequency analysis.
type tap struct {
	s beep.Streamer

	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

func newTap(s beep.Streamer, size int) *tap {
	return &tap{
		s:    s,
		buf:  make([]float64, size),
		size: size,
	}
}

// Stream implements beep.Streamer.
func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.mu.Lock()
	for i := range n {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
	return n, ok
}

// Err implements beep.Streamer.
func (t *tap) Err() error {
	return t.s.Err()
}

// resize replaces the ring buffer, dropping captured samples.
func (t *tap) resize(size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = make([]float64, size)
	t.pos = 0
	t.size = size
}

// samples copies the newest len(dst) samples into dst, oldest first.
// Slots never written are zero.
func (t *tap) samples(dst []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := min(len(dst), t.size)
	start := (t.pos - n + t.size) % t.size
	for i := range n {
		dst[i] = t.buf[(start+i)%t.size]
	}
	clear(dst[n:])
}
