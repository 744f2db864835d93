// Package mock provides in-memory implementations of the media and audio graph ports.
// They are used for testing services without an audio device.
package mock

import (
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// Element is a mock media element.
// It records calls and lets tests trigger the "ended" callback.
//
// Thread-safety: This implementation is thread-safe.
type Element struct {
	mu sync.Mutex

	store   *Store
	source  string
	paused  bool
	onEnded func()

	playCalls  int
	pauseCalls int

	// Behavior configuration (for testing error scenarios)
	failPlay      bool
	failSetSource bool
}

// NewElement creates a paused element. A non-nil store makes SetSource
// reject URLs the store does not know.
func NewElement(store *Store) *Element {
	return &Element{
		store:  store,
		paused: true,
	}
}

// SetFailPlay configures the mock to fail playback.
func (e *Element) SetFailPlay(fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failPlay = fail
}

// SetFailSetSource configures the mock to reject every source.
func (e *Element) SetFailSetSource(fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failSetSource = fail
}

// SetSource binds url and pauses the element.
func (e *Element) SetSource(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failSetSource {
		return domain.NewMediaError("set_source", url, "mock set source failed", nil)
	}
	if e.store != nil {
		if _, ok := e.store.Lookup(url); !ok {
			return domain.NewMediaError("set_source", url, "not an object url", domain.ErrUnknownResource)
		}
	}

	e.source = url
	e.paused = true
	return nil
}

// Source returns the bound URL.
func (e *Element) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Play starts playback.
func (e *Element) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.playCalls++
	if e.source == "" {
		return domain.ErrNoSource
	}
	if e.failPlay {
		return domain.ErrPlaybackFailed
	}

	e.paused = false
	return nil
}

// Pause pauses playback.
func (e *Element) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pauseCalls++
	e.paused = true
	return nil
}

// Paused reports whether the element is paused.
func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// SetOnEnded replaces the completion callback.
func (e *Element) SetOnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

// HasOnEnded reports whether a completion callback is registered.
func (e *Element) HasOnEnded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.onEnded != nil
}

// SimulateEnded pauses the element and runs the completion callback
// synchronously on the caller's goroutine.
func (e *Element) SimulateEnded() {
	e.mu.Lock()
	e.paused = true
	fn := e.onEnded
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// PlayCalls returns how many times Play was called.
func (e *Element) PlayCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playCalls
}

// PauseCalls returns how many times Pause was called.
func (e *Element) PauseCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pauseCalls
}

// Verify interface implementation at compile time.
var _ ports.MediaElement = (*Element)(nil)
