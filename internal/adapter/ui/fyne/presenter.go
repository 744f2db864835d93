// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// Player is the playback surface the presenter drives.
// *service.PlaybackController implements it.
type Player interface {
	LoadLibrary(ctx context.Context) error
	LoadTrack(ctx context.Context, handle *domain.TrackHandle) error
	Play() error
	Pause() error
	Tracks() []*domain.TrackHandle
	Status() domain.PlaybackStatus
}

// Presenter implements the Presenter pattern (MVP architecture).
// It translates UI commands into player calls and domain events into view updates.
//
// Command handlers block until the player returns; the window calls them
// off the UI thread. Event handlers only touch the view, which marshals
// onto the UI thread itself.
type Presenter struct {
	logger *slog.Logger
	player Player
	source ports.TrackSource
	prefs  ports.PreferencesRepository
	bus    ports.EventBus
	view   ports.View

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	subs         []domain.SubscriptionID
	shutdownOnce sync.Once
}

// NewPresenter creates a presenter and subscribes it to playback events.
// prefs may be nil, in which case the chosen library folder is not remembered.
func NewPresenter(
	logger *slog.Logger,
	player Player,
	source ports.TrackSource,
	prefs ports.PreferencesRepository,
	bus ports.EventBus,
	view ports.View,
) *Presenter {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger: logger,
		player: player,
		source: source,
		prefs:  prefs,
		bus:    bus,
		view:   view,
		ctx:    ctx,
		cancel: cancel,
	}
	p.subscribeToEvents()
	return p
}

func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		domain.EventLibraryLoaded: p.onLibraryLoaded,
		domain.EventTrackLoaded:   p.onTrackLoaded,
		domain.EventTrackStarted:  p.onTrackStarted,
		domain.EventTrackPaused:   p.onTrackPaused,
		domain.EventTrackError:    p.onTrackError,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for eventType, handler := range subscriptions {
		p.subs = append(p.subs, p.bus.Subscribe(eventType, handler))
	}
}

// Start shows the initial state and loads the library when a root is known.
// A rooted source without a configured root falls back to the remembered
// folder; with neither, the view stays in its "no tracks" state.
func (p *Presenter) Start() {
	p.view.SetTracks(nil)
	p.view.SetTrackLabel("")
	p.view.SetPlayState(false)

	if rooted, ok := p.source.(ports.RootedSource); ok && rooted.Root() == "" {
		folder := p.savedFolder()
		if folder == "" {
			p.logger.Debug("no library folder configured")
			return
		}
		rooted.SetRoot(folder)
	}

	if err := p.LoadLibrary(); err != nil {
		p.logger.Warn("initial library load failed", slog.Any("error", err))
	}
}

func (p *Presenter) savedFolder() string {
	if p.prefs == nil {
		return ""
	}
	folder, err := p.prefs.LoadLibraryFolder()
	if err != nil {
		p.logger.Warn("failed to read saved library folder", slog.Any("error", err))
		return ""
	}
	return folder
}

// Event handlers

func (p *Presenter) onLibraryLoaded(event domain.Event) {
	e, ok := event.(domain.LibraryLoadedEvent)
	if !ok {
		return
	}
	p.view.SetTracks(e.Names())
	p.view.SelectTrack(-1)
}

func (p *Presenter) onTrackLoaded(event domain.Event) {
	e, ok := event.(domain.TrackLoadedEvent)
	if !ok {
		return
	}
	p.view.SetTrackLabel(e.Track.Name)
	p.view.SelectTrack(e.Index)
}

func (p *Presenter) onTrackStarted(domain.Event) {
	p.view.SetPlayState(true)
}

func (p *Presenter) onTrackPaused(domain.Event) {
	p.view.SetPlayState(false)
}

func (p *Presenter) onTrackError(event domain.Event) {
	e, ok := event.(domain.TrackErrorEvent)
	if !ok {
		return
	}
	name := "track"
	if e.Handle != nil {
		name = e.Handle.Name
	}
	p.view.ShowError("Playback Error", "Could not play "+name+": "+e.Error.Error())
}

// UI Command handlers (called by UI)

// OnLoadClicked handles both "Load Music" buttons. A rooted source asks the
// user for a folder; any other source is reloaded in place.
func (p *Presenter) OnLoadClicked() {
	if _, ok := p.source.(ports.RootedSource); ok {
		p.view.PickFolder(func(path string) {
			if err := p.OnLibraryFolderChosen(path); err != nil {
				p.logger.Warn("library load failed", slog.String("path", path), slog.Any("error", err))
			}
		})
		return
	}
	if err := p.LoadLibrary(); err != nil {
		p.logger.Warn("library load failed", slog.Any("error", err))
	}
}

// OnLibraryFolderChosen points the source at path, loads it and remembers
// the folder once it produced a library.
func (p *Presenter) OnLibraryFolderChosen(path string) error {
	rooted, ok := p.source.(ports.RootedSource)
	if !ok {
		return domain.NewValidationError("source", path, "track source has no selectable root")
	}
	rooted.SetRoot(path)

	if err := p.LoadLibrary(); err != nil {
		return err
	}

	if p.prefs != nil {
		if err := p.prefs.SaveLibraryFolder(path); err != nil {
			p.logger.Warn("failed to save library folder", slog.Any("error", err))
		}
	}
	return nil
}

// LoadLibrary asks the player for a fresh track list. Failures are logged and
// returned; the view keeps showing the previous list.
func (p *Presenter) LoadLibrary() error {
	err := p.player.LoadLibrary(p.ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrLibraryEmpty):
		p.logger.Info("library has no playable tracks")
	default:
		p.logger.Error("failed to load library", slog.Any("error", err))
	}
	return err
}

// OnTrackSelected loads and plays the track at index in the current list.
func (p *Presenter) OnTrackSelected(index int) error {
	tracks := p.player.Tracks()
	if index < 0 || index >= len(tracks) {
		return domain.NewValidationError("index", index, "no track at this position")
	}
	return p.loadTrack(tracks[index])
}

func (p *Presenter) loadTrack(handle *domain.TrackHandle) error {
	err := p.player.LoadTrack(p.ctx, handle)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrLoadSuperseded):
		p.logger.Debug("track load superseded", slog.String("track", handle.Name))
	case errors.Is(err, domain.ErrLoadInFlight):
		p.logger.Debug("track load ignored, another load is running", slog.String("track", handle.Name))
	default:
		p.logger.Error("failed to load track", slog.String("track", handle.Name), slog.Any("error", err))
	}
	return err
}

// OnPlayPauseClicked toggles playback. With nothing loaded yet it starts
// the first track of the list.
func (p *Presenter) OnPlayPauseClicked() error {
	if p.player.Status() == domain.StatusPlaying {
		err := p.player.Pause()
		if err != nil {
			p.logger.Error("pause failed", slog.Any("error", err))
		}
		return err
	}

	err := p.player.Play()
	if errors.Is(err, domain.ErrNoTrackLoaded) {
		tracks := p.player.Tracks()
		if len(tracks) == 0 {
			return err
		}
		return p.loadTrack(tracks[0])
	}
	if err != nil {
		p.logger.Error("play failed", slog.Any("error", err))
	}
	return err
}

// Shutdown unsubscribes from the bus and cancels running commands.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.cancel()

		p.mu.Lock()
		subs := p.subs
		p.subs = nil
		p.mu.Unlock()

		for _, id := range subs {
			p.bus.Unsubscribe(id)
		}
	})
}
