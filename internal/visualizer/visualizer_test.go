package visualizer

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunescope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunescope/internal/adapter/frame"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/logger"
)

type fixedViewport struct{ w, h int }

func (v fixedViewport) Size() (int, int) { return v.w, v.h }

type scheme bool

func (s scheme) PrefersDark() bool { return bool(s) }

// fakeSampler fills every snapshot with the same values.
type fakeSampler struct {
	bins   int
	values []byte
	calls  int
}

func (s *fakeSampler) FrequencyBinCount() int { return s.bins }

func (s *fakeSampler) Sample(dst []byte) {
	s.calls++
	clear(dst)
	copy(dst, s.values)
}

// offscreen is a double-buffered test surface.
type offscreen struct {
	img     *image.RGBA
	resizes int
}

func (o *offscreen) Resize(w, h int) {
	o.resizes++
	o.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (o *offscreen) Context() draw.Image { return o.img }

func (o *offscreen) TransferToImageBitmap() image.Image {
	img := o.img
	o.img = image.NewRGBA(img.Bounds())
	return img
}

type renderer struct{ frames []image.Image }

func (r *renderer) TransferFromImageBitmap(img image.Image) { r.frames = append(r.frames, img) }

type onscreen struct {
	img         *image.RGBA
	invalidated int
}

func (o *onscreen) Resize(w, h int)     { o.img = image.NewRGBA(image.Rect(0, 0, w, h)) }
func (o *onscreen) Context() draw.Image { return o.img }
func (o *onscreen) Invalidate()         { o.invalidated++ }

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestLayout_Geometry(t *testing.T) {
	bars := Layout(100, 300, []byte{0, 10, 255, 50})
	require.Len(t, bars, 4)

	w := 100.0 / 4 * 4.5
	assert.InDelta(t, w, bars[0].Width, 1e-9)
	assert.Zero(t, bars[0].X)
	assert.InDelta(t, w+1, bars[1].X, 1e-9)
	assert.InDelta(t, 2*(w+1), bars[2].X, 1e-9)

	assert.Equal(t, 40.0, bars[1].Height)
	assert.Equal(t, 260.0, bars[1].Y)
	assert.Equal(t, 1020.0, bars[2].Height)
	assert.Equal(t, color.RGBA{R: 110, G: 107, B: 210, A: 255}, bars[1].Color)
	assert.Equal(t, color.RGBA{R: 255, G: 107, B: 210, A: 255}, bars[2].Color)
}

func TestLayout_AllZero(t *testing.T) {
	bars := Layout(640, 480, make([]byte, 1024))
	require.Len(t, bars, 1024)
	for _, b := range bars {
		assert.Zero(t, b.Height)
	}
	assert.Nil(t, Layout(640, 480, nil))
}

func TestPaint_Background(t *testing.T) {
	p := NewPainter()
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))

	p.Paint(img, make([]byte, 8), true)
	assert.Equal(t, DarkBackground, img.RGBAAt(0, 0))
	assert.Equal(t, DarkBackground, img.RGBAAt(31, 15))

	p.Paint(img, make([]byte, 8), false)
	assert.Equal(t, LightBackground, img.RGBAAt(16, 8))
}

func TestPaint_Bars(t *testing.T) {
	p := NewPainter()
	img := image.NewRGBA(image.Rect(0, 0, 90, 40))

	// One bin: a 405px wide bar clipped to the surface, 20px tall.
	p.Paint(img, []byte{5}, true)

	assert.Equal(t, BarColor(5), img.RGBAAt(10, 39))
	assert.Equal(t, BarColor(5), img.RGBAAt(89, 25))
	assert.Equal(t, DarkBackground, img.RGBAAt(10, 5))
}

func newLoop(t *testing.T, cfg Config) (*Loop, *frame.Manual) {
	t.Helper()
	sched := frame.NewManual()
	cfg.Scheduler = sched
	if cfg.Viewport == nil {
		cfg.Viewport = fixedViewport{64, 32}
	}
	if cfg.Scheme == nil {
		cfg.Scheme = scheme(true)
	}
	cfg.Logger = logger.NewTestLogger()

	l, err := NewLoop(cfg)
	require.NoError(t, err)
	return l, sched
}

func TestNewLoop_Validation(t *testing.T) {
	_, err := NewLoop(Config{})
	assert.Error(t, err)

	_, err = NewLoop(Config{
		Scheduler: frame.NewManual(),
		Viewport:  fixedViewport{1, 1},
		Scheme:    scheme(false),
		Surface:   &offscreen{},
	})
	assert.Error(t, err, "offscreen surface without renderer")
}

func TestLoop_OffscreenFrames(t *testing.T) {
	surface := &offscreen{}
	r := &renderer{}
	l, sched := newLoop(t, Config{Surface: surface, Renderer: r})

	s := &fakeSampler{bins: 4, values: []byte{0, 0, 0, 0}}
	require.NoError(t, l.Start(s))
	assert.Equal(t, StateRunning, l.State())
	assert.Equal(t, 1, sched.Pending())

	for range 3 {
		sched.Step()
	}
	assert.Equal(t, uint64(3), l.Frames())
	assert.Equal(t, 3, s.calls)
	require.Len(t, r.frames, 3)
	assert.Equal(t, 3, surface.resizes)

	// All-zero snapshot: nothing but the background.
	frame := r.frames[2].(*image.RGBA)
	assert.Equal(t, image.Rect(0, 0, 64, 32), frame.Bounds())
	for y := range 32 {
		for x := range 64 {
			require.Equal(t, DarkBackground, frame.RGBAAt(x, y))
		}
	}
}

func TestLoop_OnscreenInvalidates(t *testing.T) {
	surface := &onscreen{}
	l, sched := newLoop(t, Config{Surface: surface, Scheme: scheme(false)})

	require.NoError(t, l.Start(&fakeSampler{bins: 2, values: []byte{255, 0}}))
	sched.Step()

	assert.Equal(t, 1, surface.invalidated)
	assert.Equal(t, BarColor(255), rgba(surface.img.At(5, 31)))
}

func TestLoop_StartIsIdempotent(t *testing.T) {
	l, sched := newLoop(t, Config{Surface: &onscreen{}})
	s := &fakeSampler{bins: 2}

	require.NoError(t, l.Start(s))
	require.NoError(t, l.Start(s))
	assert.Equal(t, 1, sched.Pending())
	assert.Error(t, l.Start(nil))
}

func TestLoop_StopPreventsReRegistration(t *testing.T) {
	l, sched := newLoop(t, Config{Surface: &onscreen{}})
	s := &fakeSampler{bins: 2}

	require.NoError(t, l.Start(s))
	sched.Step()
	l.Stop()
	l.Stop()

	assert.Equal(t, StateStopped, l.State())
	assert.Zero(t, sched.Pending())
	assert.Zero(t, sched.Step())
	assert.Equal(t, 1, s.calls)

	// Restart after stop.
	require.NoError(t, l.Start(s))
	sched.Step()
	assert.Equal(t, 2, s.calls)
	assert.Equal(t, uint64(2), l.Frames())
}

func TestLoop_StopDuringFrame(t *testing.T) {
	surface := &onscreen{}
	l, sched := newLoop(t, Config{Surface: surface})

	s := &stoppingSampler{loop: l}
	require.NoError(t, l.Start(s))
	sched.Step()

	assert.Equal(t, StateStopped, l.State())
	assert.Zero(t, sched.Pending())
}

// stoppingSampler stops the loop from inside a frame.
type stoppingSampler struct{ loop *Loop }

func (s *stoppingSampler) FrequencyBinCount() int { return 4 }
func (s *stoppingSampler) Sample([]byte)          { s.loop.Stop() }

func TestLoop_PublishesEvents(t *testing.T) {
	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	defer bus.Close()

	var got []domain.EventType
	bus.SubscribeAll(func(e domain.Event) { got = append(got, e.Type()) })

	l, sched := newLoop(t, Config{Surface: &onscreen{}, Bus: bus})
	require.NoError(t, l.Start(&fakeSampler{bins: 8}))
	sched.Step()
	l.Stop()

	assert.Equal(t, []domain.EventType{domain.EventVisualizerStarted, domain.EventVisualizerStopped}, got)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", State(9).String())
}
