// Package beepaudio implements the media and audio graph ports on top of
// the gopxl/beep decoders and speaker.
package beepaudio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/tejashwikalptaru/tunescope/internal/analysis"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// Default output settings.
const (
	DefaultSampleRate = beep.SampleRate(44100)
	DefaultBuffer     = 100 * time.Millisecond
)

// SpeakerLock is the sync.Locker guarding everything the speaker streams.
type SpeakerLock struct{}

// Lock locks the speaker.
func (SpeakerLock) Lock() { speaker.Lock() }

// Unlock unlocks the speaker.
func (SpeakerLock) Unlock() { speaker.Unlock() }

// Config holds the output settings.
type Config struct {
	SampleRate beep.SampleRate
	Buffer     time.Duration
}

// Context is an audio graph whose destination is the speaker.
//
// Nodes form a chain of streamers. A node may feed exactly one downstream
// node; the destination mixes everything connected to it.
type Context struct {
	lock   sync.Locker
	rate   beep.SampleRate
	mixer  *beep.Mixer
	logger *slog.Logger

	mu      sync.Mutex
	dest    *destinationNode
	sources map[*Element]*sourceNode
	closed  bool
	speaker bool
}

// Open initializes the speaker and starts streaming the destination mixer.
func Open(cfg Config, logger *slog.Logger) (*Context, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultBuffer
	}

	if err := speaker.Init(cfg.SampleRate, cfg.SampleRate.N(cfg.Buffer)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAudioUnavailable, err)
	}

	c := newContext(cfg.SampleRate, SpeakerLock{}, logger)
	c.speaker = true
	speaker.Play(c.mixer)

	logger.Info("audio output opened",
		slog.Int("sample_rate", int(cfg.SampleRate)),
		slog.Duration("buffer", cfg.Buffer),
	)
	return c, nil
}

func newContext(rate beep.SampleRate, lock sync.Locker, logger *slog.Logger) *Context {
	c := &Context{
		lock:    lock,
		rate:    rate,
		mixer:   &beep.Mixer{},
		logger:  logger,
		sources: make(map[*Element]*sourceNode),
	}
	c.dest = &destinationNode{ctx: c, inputs: make(map[node]bool)}
	return c
}

// SampleRate returns the output rate. Elements must be created with it.
func (c *Context) SampleRate() beep.SampleRate {
	return c.rate
}

// Locker returns the lock guarding the streamed graph. Elements must share it.
func (c *Context) Locker() sync.Locker {
	return c.lock
}

// CreateMediaElementSource wraps a beep-backed element. An element can be
// wrapped only once.
func (c *Context) CreateMediaElementSource(element ports.MediaElement) (ports.AudioNode, error) {
	el, ok := element.(*Element)
	if !ok {
		return nil, domain.NewMediaError("create_source", "", fmt.Sprintf("unsupported element %T", element), domain.ErrNotConnectable)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.ErrAudioUnavailable
	}
	if _, exists := c.sources[el]; exists {
		return nil, domain.NewMediaError("create_source", "", "element already wrapped", domain.ErrNotConnectable)
	}

	src := &sourceNode{ctx: c, element: el}
	c.sources[el] = src
	return src, nil
}

// CreateAnalyser creates an unconnected analyser with the default window.
func (c *Context) CreateAnalyser() (ports.AnalyserNode, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, domain.ErrAudioUnavailable
	}

	a, err := analysis.New(domain.DefaultFFTSize)
	if err != nil {
		return nil, err
	}

	n := &analyserNode{ctx: c, analyser: a, input: &beep.Mixer{}}
	n.tap = newTap(n.input, domain.DefaultFFTSize)
	n.scratch = make([]float64, domain.DefaultFFTSize)
	return n, nil
}

// Destination returns the speaker node.
func (c *Context) Destination() ports.AudioNode {
	return c.dest
}

// Close stops the output. The speaker cannot be reopened afterwards.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.lock.Lock()
	c.mixer.Clear()
	c.lock.Unlock()

	if c.speaker {
		speaker.Clear()
		speaker.Close()
		c.logger.Info("audio output closed")
	}
	return nil
}

var _ ports.AudioContext = (*Context)(nil)
