package fyne

import (
	"context"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunescope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/logger"
)

// fakePlayer counts the commands it receives.
type fakePlayer struct {
	mu        sync.Mutex
	tracks    []*domain.TrackHandle
	status    domain.PlaybackStatus
	libraries int
	loads     []*domain.TrackHandle
	plays     int
	pauses    int
}

func (p *fakePlayer) LoadLibrary(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.libraries++
	return nil
}

func (p *fakePlayer) LoadTrack(_ context.Context, h *domain.TrackHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads = append(p.loads, h)
	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	p.status = domain.StatusPlaying
	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
	p.status = domain.StatusPaused
	return nil
}

func (p *fakePlayer) Tracks() []*domain.TrackHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracks
}

func (p *fakePlayer) Status() domain.PlaybackStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *fakePlayer) counts() (libraries, loads, plays int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.libraries, len(p.loads), p.plays
}

func newTestWindow(t *testing.T, player *fakePlayer) *MainWindow {
	t.Helper()

	app := test.NewApp()
	t.Cleanup(app.Quit)

	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus(log)
	t.Cleanup(func() { _ = bus.Close() })

	w := NewMainWindow(app, canvas.NewRectangle(nil), log)
	p := NewPresenter(log, player, &fixedSource{}, nil, bus, w)
	t.Cleanup(p.Shutdown)
	w.SetPresenter(p)
	return w
}

func TestMainWindow_EmptyStateAndLibraryState(t *testing.T) {
	w := newTestWindow(t, &fakePlayer{})

	assert.True(t, w.emptyView.Visible())
	assert.False(t, w.libraryView.Visible())
	assert.False(t, w.playButton.Visible(), "play toggle needs tracks")

	w.SetTracks([]string{"a", "b"})
	assert.Eventually(t, func() bool {
		return w.libraryView.Visible() && !w.emptyView.Visible() && w.playButton.Visible() && w.barLoadButton.Visible()
	}, time.Second, 10*time.Millisecond)

	w.SetTracks(nil)
	assert.Eventually(t, func() bool {
		return !w.libraryView.Visible() && w.emptyView.Visible() && !w.playButton.Visible()
	}, time.Second, 10*time.Millisecond)
}

func TestMainWindow_TrackLabelPlaceholder(t *testing.T) {
	w := newTestWindow(t, &fakePlayer{})

	w.SetTrackLabel("Artist - Song")
	assert.Eventually(t, func() bool { return w.trackLabel.Text == "Artist - Song" }, time.Second, 10*time.Millisecond)

	w.SetTrackLabel("")
	assert.Eventually(t, func() bool { return w.trackLabel.Text == noTrackText }, time.Second, 10*time.Millisecond)
}

func TestMainWindow_PlayStateSwapsIdleGraphic(t *testing.T) {
	w := newTestWindow(t, &fakePlayer{})

	w.SetPlayState(true)
	assert.Eventually(t, func() bool { return !w.placeholder.Visible() }, time.Second, 10*time.Millisecond)

	w.SetPlayState(false)
	assert.Eventually(t, func() bool { return w.placeholder.Visible() }, time.Second, 10*time.Millisecond)
}

func TestMainWindow_ProgrammaticSelectDoesNotLoad(t *testing.T) {
	player := &fakePlayer{tracks: []*domain.TrackHandle{track("a"), track("b")}}
	w := newTestWindow(t, player)
	w.SetTracks([]string{"a", "b"})

	w.SelectTrack(1)

	assert.Never(t, func() bool {
		_, loads, _ := player.counts()
		return loads > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestMainWindow_UserSelectLoadsTrack(t *testing.T) {
	player := &fakePlayer{tracks: []*domain.TrackHandle{track("a"), track("b")}}
	w := newTestWindow(t, player)
	w.SetTracks([]string{"a", "b"})

	w.trackList.OnSelected(1)

	require.Eventually(t, func() bool {
		_, loads, _ := player.counts()
		return loads == 1
	}, time.Second, 10*time.Millisecond)
	player.mu.Lock()
	assert.Same(t, player.tracks[1], player.loads[0])
	player.mu.Unlock()
}

func TestMainWindow_ButtonsReachPresenter(t *testing.T) {
	player := &fakePlayer{tracks: []*domain.TrackHandle{track("a")}, status: domain.StatusPaused}
	w := newTestWindow(t, player)

	test.Tap(w.emptyLoad)
	assert.Eventually(t, func() bool {
		libraries, _, _ := player.counts()
		return libraries == 1
	}, time.Second, 10*time.Millisecond)

	test.Tap(w.playButton)
	assert.Eventually(t, func() bool {
		_, _, plays := player.counts()
		return plays == 1
	}, time.Second, 10*time.Millisecond)
}
