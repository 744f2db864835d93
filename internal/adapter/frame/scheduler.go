// Package frame provides FrameScheduler implementations.
package frame

import (
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// DefaultRate is the frame rate used when none is configured.
const DefaultRate = 60

// entry is a pending frame callback.
type entry struct {
	id ports.FrameID
	fn func()
}

// queue holds pending callbacks in registration order.
type queue struct {
	mu      sync.Mutex
	next    ports.FrameID
	pending []entry
}

func (q *queue) add(fn func()) ports.FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	q.pending = append(q.pending, entry{id: q.next, fn: fn})
	return q.next
}

func (q *queue) cancel(id ports.FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.pending {
		if e.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// take removes and returns everything pending. Callbacks registered while
// the batch runs wait for the next frame.
func (q *queue) take() []entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = nil
	return batch
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Ticker fires pending callbacks at a fixed rate. Each batch is handed to
// dispatch, which in the UI runs it on the toolkit's main goroutine.
type Ticker struct {
	queue
	interval time.Duration
	dispatch func(func())

	mu      sync.Mutex
	started bool
	closed  bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewTicker creates a scheduler running at rate frames per second.
// A nil dispatch runs batches on the ticker goroutine.
func NewTicker(rate int, dispatch func(func())) *Ticker {
	if rate <= 0 {
		rate = DefaultRate
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Ticker{
		interval: time.Second / time.Duration(rate),
		dispatch: dispatch,
		stop:     make(chan struct{}),
	}
}

// RequestFrame schedules fn for the next tick. The ticker goroutine starts
// on the first request. Requests after Close are dropped.
func (t *Ticker) RequestFrame(fn func()) ports.FrameID {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0
	}
	id := t.add(fn)
	if !t.started {
		t.started = true
		t.wg.Add(1)
		go t.run()
	}
	return id
}

// CancelFrame drops a pending callback.
func (t *Ticker) CancelFrame(id ports.FrameID) {
	t.cancel(id)
}

// Close stops the ticker goroutine and drops pending callbacks.
func (t *Ticker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.stop)
	t.mu.Unlock()

	t.wg.Wait()
	t.take()
}

func (t *Ticker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			batch := t.take()
			if len(batch) == 0 {
				continue
			}
			t.dispatch(func() {
				for _, e := range batch {
					e.fn()
				}
			})
		}
	}
}

// Manual runs pending callbacks only when Step is called.
type Manual struct {
	queue
}

// NewManual creates an idle manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// RequestFrame schedules fn for the next Step.
func (m *Manual) RequestFrame(fn func()) ports.FrameID {
	return m.add(fn)
}

// CancelFrame drops a pending callback.
func (m *Manual) CancelFrame(id ports.FrameID) {
	m.cancel(id)
}

// Step runs the callbacks pending at the time of the call and returns how many ran.
func (m *Manual) Step() int {
	batch := m.take()
	for _, e := range batch {
		e.fn()
	}
	return len(batch)
}

// Pending returns the number of scheduled callbacks.
func (m *Manual) Pending() int {
	return m.len()
}

var (
	_ ports.FrameScheduler = (*Ticker)(nil)
	_ ports.FrameScheduler = (*Manual)(nil)
)
