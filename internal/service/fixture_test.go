package service

import (
	"context"
	"image"
	"image/draw"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunescope/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunescope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/logger"
	"github.com/tejashwikalptaru/tunescope/internal/visualizer"
)

// fakeSource returns a fixed library.
type fakeSource struct {
	mu     sync.Mutex
	tracks []*domain.TrackHandle
	err    error
}

func (s *fakeSource) LoadLibrary(context.Context) ([]*domain.TrackHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks, s.err
}

func (s *fakeSource) set(tracks []*domain.TrackHandle, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks, s.err = tracks, err
}

// fakeVisualizer records Start/Stop calls.
type fakeVisualizer struct {
	mu      sync.Mutex
	starts  int
	stops   int
	sampler visualizer.Sampler
}

func (v *fakeVisualizer) Start(s visualizer.Sampler) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.starts++
	v.sampler = s
	return nil
}

func (v *fakeVisualizer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stops++
}

// track returns a handle whose payload is its name.
func track(name string) *domain.TrackHandle {
	return domain.NewTrackHandle(name, "mem://"+name, func(ctx context.Context) (*domain.TrackData, error) {
		return &domain.TrackData{Name: name, Format: "mp3", Payload: []byte(name)}, nil
	})
}

func tracks(names ...string) []*domain.TrackHandle {
	out := make([]*domain.TrackHandle, len(names))
	for i, n := range names {
		out[i] = track(n)
	}
	return out
}

type fixture struct {
	c       *PlaybackController
	source  *fakeSource
	element *mock.Element
	store   *mock.Store
	audio   *mock.Context
	bridge  *AnalysisBridge
	vis     *fakeVisualizer
	bus     *eventbus.SyncEventBus

	mu     sync.Mutex
	events []domain.Event
}

func newFixture(t *testing.T, opts ControllerOptions, library ...*domain.TrackHandle) *fixture {
	t.Helper()

	log := logger.NewTestLogger()
	f := &fixture{
		source: &fakeSource{tracks: library},
		store:  mock.NewStore(),
		audio:  mock.NewContext(),
		vis:    &fakeVisualizer{},
		bus:    eventbus.NewSyncEventBus(log),
	}
	f.element = mock.NewElement(f.store)

	bridge, err := NewAnalysisBridge(log, f.audio, f.element, 0)
	require.NoError(t, err)
	f.bridge = bridge

	f.bus.SubscribeAll(func(e domain.Event) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, e)
	})

	f.c = NewPlaybackController(log, f.source, f.element, f.store, bridge, f.vis, f.bus, opts)
	t.Cleanup(func() {
		_ = f.c.Shutdown()
		_ = f.bus.Close()
	})
	return f
}

// eventsOf returns the published events of type et, in order.
func (f *fixture) eventsOf(et domain.EventType) []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Event
	for _, e := range f.events {
		if e.Type() == et {
			out = append(out, e)
		}
	}
	return out
}

type fixedViewport struct{ w, h int }

func (v fixedViewport) Size() (int, int) { return v.w, v.h }

type darkScheme struct{}

func (darkScheme) PrefersDark() bool { return true }

// recordingSurface is an on-screen surface that counts repaints.
type recordingSurface struct {
	img         *image.RGBA
	invalidated int
}

func (s *recordingSurface) Resize(w, h int)     { s.img = image.NewRGBA(image.Rect(0, 0, w, h)) }
func (s *recordingSurface) Context() draw.Image { return s.img }
func (s *recordingSurface) Invalidate()         { s.invalidated++ }
