// Package service provides the playback logic of tunescope.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
	"github.com/tejashwikalptaru/tunescope/internal/visualizer"
)

// Visualizer is the frame loop started on the first play.
type Visualizer interface {
	Start(s visualizer.Sampler) error
	Stop()
}

// ControllerOptions selects the controller's failure and concurrency policies.
type ControllerOptions struct {
	LoadFailure    domain.LoadFailurePolicy
	ConcurrentLoad domain.ConcurrentLoadPolicy
}

// PlaybackController owns the track list, the current track and the play state.
// It sequences load -> play -> advance on completion.
//
// All operations are thread-safe via sync.RWMutex. Track materialization runs
// without holding the lock.
type PlaybackController struct {
	// Dependencies (injected)
	logger *slog.Logger
	source ports.TrackSource
	media  ports.MediaElement
	store  ports.ResourceStore
	bridge *AnalysisBridge
	vis    Visualizer
	bus    ports.EventBus
	opts   ControllerOptions

	// Lifetime of the controller; auto-advance loads run under it
	ctx    context.Context
	cancel context.CancelFunc

	// State
	tracks        []*domain.TrackHandle
	currentHandle *domain.TrackHandle
	currentTrack  *domain.TrackData
	currentURL    string
	status        domain.PlaybackStatus

	// In-flight load bookkeeping
	loadSeq    uint64
	loadCancel context.CancelFunc
	loading    bool

	mu sync.RWMutex
}

// NewPlaybackController creates a controller with no tracks, paused.
func NewPlaybackController(
	logger *slog.Logger,
	source ports.TrackSource,
	media ports.MediaElement,
	store ports.ResourceStore,
	bridge *AnalysisBridge,
	vis Visualizer,
	bus ports.EventBus,
	opts ControllerOptions,
) *PlaybackController {
	ctx, cancel := context.WithCancel(context.Background())
	c := &PlaybackController{
		logger: logger.With(slog.String("service", "playback")),
		source: source,
		media:  media,
		store:  store,
		bridge: bridge,
		vis:    vis,
		bus:    bus,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		status: domain.StatusPaused,
	}

	c.logger.Debug("playback controller initialized",
		slog.String("load_failure", opts.LoadFailure.String()),
		slog.String("concurrent_load", opts.ConcurrentLoad.String()),
	)
	return c
}

// LoadLibrary asks the track source for a new track list.
// A non-empty list replaces the current one; an empty list or a failure
// leaves the state untouched and is returned as an error.
func (c *PlaybackController) LoadLibrary(ctx context.Context) error {
	c.media.SetOnEnded(c.onEnded)

	tracks, err := c.source.LoadLibrary(ctx)
	if err != nil {
		c.logger.Warn("library load failed", slog.Any("error", err))
		return domain.NewServiceError("PlaybackController", "LoadLibrary", "track source failed", err)
	}
	if len(tracks) == 0 {
		c.logger.Info("library is empty, keeping previous state")
		return domain.ErrLibraryEmpty
	}

	tracks = slices.Clone(tracks)

	c.mu.Lock()
	c.tracks = tracks
	c.mu.Unlock()

	c.logger.Info("library loaded", slog.Int("tracks", len(tracks)))
	c.bus.Publish(domain.NewLibraryLoadedEvent(slices.Clone(tracks)))
	return nil
}

// LoadTrack materializes handle, makes it the current track and starts playback.
// On failure the previous track stays current.
func (c *PlaybackController) LoadTrack(ctx context.Context, handle *domain.TrackHandle) error {
	if handle == nil {
		return domain.ErrInvalidTrackHandle
	}
	if err := c.ctx.Err(); err != nil {
		return err
	}

	seq, loadCtx, err := c.beginLoad(ctx)
	if err != nil {
		return err
	}
	defer c.endLoad(seq)

	c.logger.Debug("loading track", slog.String("name", handle.Name), slog.Uint64("seq", seq))

	data, err := handle.Load(loadCtx)
	if err != nil {
		if c.superseded(seq) {
			return domain.ErrLoadSuperseded
		}
		if c.ctx.Err() != nil {
			return err
		}
		return c.loadFailed(handle, err)
	}

	url, err := c.store.CreateObjectURL(data)
	if err != nil {
		return c.loadFailed(handle, err)
	}

	c.mu.Lock()
	if c.loadSeq != seq {
		c.mu.Unlock()
		c.store.RevokeObjectURL(url)
		c.logger.Debug("discarding stale load", slog.String("name", handle.Name))
		return domain.ErrLoadSuperseded
	}
	if err := c.media.SetSource(url); err != nil {
		c.mu.Unlock()
		c.store.RevokeObjectURL(url)
		return c.loadFailed(handle, err)
	}

	previousURL := c.currentURL
	c.currentHandle = handle
	c.currentTrack = data
	c.currentURL = url
	c.status = domain.StatusPaused
	index := domain.IndexOf(c.tracks, handle)
	c.mu.Unlock()

	if previousURL != "" {
		c.store.RevokeObjectURL(previousURL)
	}

	c.logger.Info("track loaded", slog.String("name", data.Name), slog.Int("index", index), slog.Int("bytes", data.Size()))
	c.bus.Publish(domain.NewTrackLoadedEvent(data, handle, index))

	return c.Play()
}

// beginLoad applies the concurrent-load policy and registers a new load.
func (c *PlaybackController) beginLoad(ctx context.Context) (uint64, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		switch c.opts.ConcurrentLoad {
		case domain.ConcurrentLoadRejectInFlight:
			c.logger.Debug("rejecting load while another is in flight")
			return 0, nil, domain.ErrLoadInFlight
		default:
			c.loadCancel()
		}
	}

	loadCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)

	c.loadSeq++
	c.loading = true
	c.loadCancel = func() {
		stop()
		cancel()
	}
	return c.loadSeq, loadCtx, nil
}

// endLoad releases the bookkeeping of load seq if it is still the latest.
func (c *PlaybackController) endLoad(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loadSeq != seq {
		return
	}
	c.loadCancel()
	c.loadCancel = nil
	c.loading = false
}

func (c *PlaybackController) superseded(seq uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadSeq != seq
}

// loadFailed applies the load-failure policy.
func (c *PlaybackController) loadFailed(handle *domain.TrackHandle, err error) error {
	wrapped := domain.NewServiceError("PlaybackController", "LoadTrack", "cannot load "+handle.Name, err)

	c.logger.Warn("track load failed, keeping previous track",
		slog.String("name", handle.Name),
		slog.Any("error", err),
	)
	if c.opts.LoadFailure == domain.LoadFailureReportError {
		c.bus.Publish(domain.NewTrackErrorEvent(handle, wrapped))
	}
	return wrapped
}

// Play starts or resumes the current track. The first call wires the
// analysis graph and starts the visualizer.
func (c *PlaybackController) Play() error {
	c.mu.Lock()

	if c.currentTrack == nil {
		c.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	if err := c.bridge.Connect(); err != nil {
		c.status = domain.StatusPaused
		c.mu.Unlock()
		c.logger.Error("cannot connect analysis graph", slog.Any("error", err))
		return err
	}

	if err := c.media.Play(); err != nil {
		c.status = domain.StatusPaused
		c.mu.Unlock()
		c.logger.Warn("media element refused to play", slog.Any("error", err))
		return domain.NewServiceError("PlaybackController", "Play", "media element failed", err)
	}

	c.status = domain.StatusPlaying
	track := c.currentTrack
	c.mu.Unlock()

	if c.vis != nil {
		if err := c.vis.Start(c.bridge); err != nil {
			c.logger.Warn("visualizer did not start", slog.Any("error", err))
		}
	}

	c.logger.Debug("playing", slog.String("name", track.Name))
	c.bus.Publish(domain.NewTrackStartedEvent(track))
	return nil
}

// Pause pauses the media element and sets the status to paused.
// The visualizer keeps running and draws the silence.
func (c *PlaybackController) Pause() error {
	c.mu.Lock()

	var err error
	if c.media.Source() != "" {
		err = c.media.Pause()
	}
	c.status = domain.StatusPaused
	track := c.currentTrack
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("media element pause failed", slog.Any("error", err))
		err = domain.NewServiceError("PlaybackController", "Pause", "media element failed", err)
	}

	c.bus.Publish(domain.NewTrackPausedEvent(track))
	return err
}

// PlayNext loads the track after the current one, found by handle identity.
// At the end of the list, or when the current track is not listed, it returns
// domain.ErrEndOfList and changes nothing.
func (c *PlaybackController) PlayNext(ctx context.Context) error {
	c.mu.RLock()
	index := domain.IndexOf(c.tracks, c.currentHandle)
	if index < 0 || index+1 >= len(c.tracks) {
		c.mu.RUnlock()
		c.logger.Debug("no next track", slog.Int("index", index))
		return domain.ErrEndOfList
	}
	next := c.tracks[index+1]
	c.mu.RUnlock()

	c.bus.Publish(domain.NewAutoNextEvent(next, index+1))
	return c.LoadTrack(ctx, next)
}

// onEnded runs when the media element played its source to the end.
// Status is left alone: the next track keeps playing, and after the last one
// playback simply stops without a pause.
func (c *PlaybackController) onEnded() {
	c.mu.RLock()
	track := c.currentTrack
	c.mu.RUnlock()

	c.bus.Publish(domain.NewTrackCompletedEvent(track))

	err := c.PlayNext(c.ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEndOfList):
		c.logger.Debug("reached end of track list")
	case errors.Is(err, context.Canceled):
	default:
		c.logger.Warn("auto-advance failed", slog.Any("error", err))
	}
}

// Tracks returns a copy of the track list.
func (c *PlaybackController) Tracks() []*domain.TrackHandle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tracks)
}

// CurrentTrack returns the loaded track, or nil.
func (c *PlaybackController) CurrentTrack() *domain.TrackData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTrack
}

// CurrentHandle returns the handle of the loaded track, or nil.
func (c *PlaybackController) CurrentHandle() *domain.TrackHandle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentHandle
}

// Status returns the playback status.
func (c *PlaybackController) Status() domain.PlaybackStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// State returns a snapshot of the controller.
func (c *PlaybackController) State() domain.PlaybackState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return domain.PlaybackState{
		Tracks:        slices.Clone(c.tracks),
		CurrentHandle: c.currentHandle,
		CurrentTrack:  c.currentTrack,
		CurrentIndex:  domain.IndexOf(c.tracks, c.currentHandle),
		Status:        c.status,
		Loading:       c.loading,
	}
}

// Shutdown cancels pending loads, stops the visualizer, pauses playback and
// releases the current resource URL.
func (c *PlaybackController) Shutdown() error {
	c.cancel()
	c.media.SetOnEnded(nil)

	c.mu.Lock()
	if c.loadCancel != nil {
		c.loadCancel()
	}
	url := c.currentURL
	c.currentURL = ""
	c.status = domain.StatusPaused
	c.mu.Unlock()

	if c.vis != nil {
		c.vis.Stop()
	}

	var err error
	if c.media.Source() != "" {
		err = c.media.Pause()
	}
	if url != "" {
		c.store.RevokeObjectURL(url)
	}

	c.logger.Debug("playback controller shut down")
	return err
}
