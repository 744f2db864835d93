// Package visualizer paints the frequency spectrum of the playing track,
// one frame per display refresh.
package visualizer

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// Sampler provides frequency snapshots.
type Sampler interface {
	FrequencyBinCount() int
	Sample(dst []byte)
}

// State is the loop lifecycle state.
type State int

// Loop states.
const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds the loop's collaborators.
type Config struct {
	Scheduler ports.FrameScheduler
	Viewport  ports.Viewport
	Scheme    ports.ColorScheme

	// Surface is painted every frame. An OffscreenSurface needs a Renderer;
	// an OnscreenSurface is invalidated after painting.
	Surface  ports.Surface
	Renderer ports.BitmapRenderer

	// Bus is optional.
	Bus    ports.EventBus
	Logger *slog.Logger
}

// Loop drives the frame-by-frame spectrum painting.
//
// Frames run on the scheduler's goroutine. Start and Stop may be called
// from any goroutine.
type Loop struct {
	cfg     Config
	painter *Painter
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	pending ports.FrameID
	frames  uint64
}

// NewLoop validates cfg and creates an idle loop.
func NewLoop(cfg Config) (*Loop, error) {
	switch {
	case cfg.Scheduler == nil:
		return nil, errors.New("visualizer: scheduler is required")
	case cfg.Viewport == nil:
		return nil, errors.New("visualizer: viewport is required")
	case cfg.Scheme == nil:
		return nil, errors.New("visualizer: color scheme is required")
	case cfg.Surface == nil:
		return nil, errors.New("visualizer: surface is required")
	}
	if _, offscreen := cfg.Surface.(ports.OffscreenSurface); offscreen && cfg.Renderer == nil {
		return nil, errors.New("visualizer: offscreen surface needs a bitmap renderer")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Loop{
		cfg:     cfg,
		painter: NewPainter(),
		logger:  logger.With(slog.String("component", "visualizer")),
	}, nil
}

// Start begins scheduling frames that sample s. It is a no-op while running;
// a stopped loop starts over.
func (l *Loop) Start(s Sampler) error {
	if s == nil {
		return errors.New("visualizer: sampler is required")
	}

	l.mu.Lock()
	if l.state == StateRunning {
		l.mu.Unlock()
		return nil
	}

	bins := s.FrequencyBinCount()
	snapshot := domain.NewFrequencySnapshot(bins)
	l.state = StateRunning
	l.gen++
	gen := l.gen
	l.schedule(gen, s, snapshot)
	l.mu.Unlock()

	l.logger.Debug("visualizer started", slog.Int("bins", bins))
	if l.cfg.Bus != nil {
		l.cfg.Bus.Publish(domain.NewVisualizerStartedEvent(bins))
	}
	return nil
}

// Stop cancels the pending frame and prevents further ones.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.state != StateRunning {
		l.mu.Unlock()
		return
	}
	l.state = StateStopped
	l.cfg.Scheduler.CancelFrame(l.pending)
	l.pending = 0
	frames := l.frames
	l.mu.Unlock()

	l.logger.Debug("visualizer stopped", slog.Uint64("frames", frames))
	if l.cfg.Bus != nil {
		l.cfg.Bus.Publish(domain.NewVisualizerStoppedEvent(frames))
	}
}

// State returns the lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Frames returns the number of frames painted since construction.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// schedule registers the next frame. The caller holds mu.
func (l *Loop) schedule(gen uint64, s Sampler, snapshot domain.FrequencySnapshot) {
	l.pending = l.cfg.Scheduler.RequestFrame(func() {
		l.frame(gen, s, snapshot)
	})
}

// live reports whether frames of gen should still run. The caller holds mu.
func (l *Loop) live(gen uint64) bool {
	return l.state == StateRunning && l.gen == gen
}

func (l *Loop) frame(gen uint64, s Sampler, snapshot domain.FrequencySnapshot) {
	l.mu.Lock()
	if !l.live(gen) {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	s.Sample(snapshot)

	width, height := l.cfg.Viewport.Size()
	l.cfg.Surface.Resize(width, height)
	l.painter.Paint(l.cfg.Surface.Context(), snapshot, l.cfg.Scheme.PrefersDark())
	l.present()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames++
	if l.live(gen) {
		l.schedule(gen, s, snapshot)
	}
}

func (l *Loop) present() {
	switch surface := l.cfg.Surface.(type) {
	case ports.OffscreenSurface:
		l.cfg.Renderer.TransferFromImageBitmap(surface.TransferToImageBitmap())
	case ports.OnscreenSurface:
		surface.Invalidate()
	}
}
