// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/gopxl/beep"

	"github.com/tejashwikalptaru/tunescope/internal/adapter/audio/beepaudio"
	"github.com/tejashwikalptaru/tunescope/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunescope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunescope/internal/adapter/frame"
	"github.com/tejashwikalptaru/tunescope/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/tunescope/internal/adapter/source/filesystem"
	"github.com/tejashwikalptaru/tunescope/internal/adapter/source/s3"
	fyneui "github.com/tejashwikalptaru/tunescope/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/logger"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
	"github.com/tejashwikalptaru/tunescope/internal/service"
	"github.com/tejashwikalptaru/tunescope/internal/visualizer"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for cmd/main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus  ports.EventBus
	audio     ports.AudioContext
	media     ports.MediaElement
	store     ports.ResourceStore
	source    ports.TrackSource
	scheduler *frame.Ticker

	// Repositories
	preferencesRepo ports.PreferencesRepository

	// Services
	bridge     *service.AnalysisBridge
	loop       *visualizer.Loop
	controller *service.PlaybackController

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	opts, err := config.ControllerOptions()
	if err != nil {
		return nil, err
	}

	app := &Application{}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.App.ID)
	}

	// Step 2: Create logger
	app.logger = logger.NewLogger(config.LoggerConfig())
	app.logger.Info("initializing application",
		slog.String("app_id", config.App.ID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 3: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger.With(slog.String("component", "eventbus")))

	// Step 4: Create the audio pipeline
	if err := app.openAudio(config); err != nil {
		return nil, err
	}

	// Step 5: Create the track source and repositories
	if err := app.openSource(config); err != nil {
		app.closeAudio()
		return nil, err
	}
	app.preferencesRepo = memory.NewPreferencesRepository(app.fyneApp.Preferences())

	// Step 6: Create the analysis bridge
	app.bridge, err = service.NewAnalysisBridge(app.logger, app.audio, app.media, config.Visualizer.FFTSize)
	if err != nil {
		app.closeAudio()
		return nil, fmt.Errorf("failed to create analysis bridge: %w", err)
	}
	if err := app.bridge.Configure(config.AnalyserSettings()); err != nil {
		app.closeAudio()
		return nil, fmt.Errorf("failed to configure analyser: %w", err)
	}

	// Step 7: Create the drawing surface and the window around it
	var (
		surface  ports.Surface
		renderer ports.BitmapRenderer
		visual   fyne.CanvasObject
	)
	if config.UseOffscreen() {
		view := fyneui.NewBitmapView()
		surface, renderer, visual = fyneui.NewOffscreenCanvas(), view, view.Object()
	} else {
		direct := fyneui.NewDirectCanvas()
		surface, visual = direct, direct.Object()
	}
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, visual,
		app.logger.With(slog.String("component", "window")))

	// Step 8: Create the visualizer loop, driven on the UI thread
	app.scheduler = frame.NewTicker(config.Visualizer.FrameRate, fyne.Do)
	app.loop, err = visualizer.NewLoop(visualizer.Config{
		Scheduler: app.scheduler,
		Viewport:  fyneui.NewObjectViewport(visual, app.mainWindow.GetWindow()),
		Scheme:    fyneui.NewThemeScheme(app.fyneApp),
		Surface:   surface,
		Renderer:  renderer,
		Bus:       app.eventBus,
		Logger:    app.logger,
	})
	if err != nil {
		app.scheduler.Close()
		app.closeAudio()
		return nil, fmt.Errorf("failed to create visualizer: %w", err)
	}

	// Step 9: Create the playback controller
	app.controller = service.NewPlaybackController(
		app.logger,
		app.source,
		app.media,
		app.store,
		app.bridge,
		app.loop,
		app.eventBus,
		opts,
	)

	// Step 10: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.controller,
		app.source,
		app.preferencesRepo,
		app.eventBus,
		app.mainWindow,
	)
	app.mainWindow.SetPresenter(app.presenter)

	app.eventBus.Subscribe(domain.EventAutoNext, app.logAutoNext)

	return app, nil
}

func (a *Application) openAudio(config Config) error {
	if config.Audio.Mock {
		store := mock.NewStore()
		a.store = store
		a.media = mock.NewElement(store)
		a.audio = mock.NewContext()
		a.logger.Info("using mock audio output")
		return nil
	}

	audioCtx, err := beepaudio.Open(beepaudio.Config{
		SampleRate: beep.SampleRate(config.Audio.SampleRate),
		Buffer:     config.AudioBuffer(),
	}, a.logger.With(slog.String("adapter", "beep")))
	if err != nil {
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}

	blobs := beepaudio.NewBlobStore()
	a.store = blobs
	a.media = beepaudio.NewElement(blobs, audioCtx.SampleRate(), audioCtx.Locker(),
		a.logger.With(slog.String("adapter", "beep"), slog.String("node", "element")))
	a.audio = audioCtx
	return nil
}

func (a *Application) openSource(config Config) error {
	switch config.Library.Source {
	case SourceS3:
		src, err := s3.New(s3.Config{
			Bucket:    config.Library.S3.Bucket,
			Prefix:    config.Library.S3.Prefix,
			Region:    config.Library.S3.Region,
			Endpoint:  config.Library.S3.Endpoint,
			AccessKey: config.Library.S3.AccessKey,
			SecretKey: config.Library.S3.SecretKey,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create s3 source: %w", err)
		}
		a.source = src
	default:
		a.source = filesystem.New(config.Library.Path, a.logger)
	}
	return nil
}

func (a *Application) logAutoNext(event domain.Event) {
	if e, ok := event.(domain.AutoNextEvent); ok {
		a.logger.Info("advancing to next track", slog.String("track", e.Next.Name), slog.Int("index", e.Index))
	}
}

// Run starts the application.
// The library loads once the UI is up; Run blocks until the window is closed.
func (a *Application) Run() error {
	a.logger.Info("tunescope started")

	a.fyneApp.Lifecycle().SetOnStarted(func() {
		go a.presenter.Start()
	})
	a.mainWindow.ShowAndRun()
	return nil
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		var errs []error
		if a.controller != nil {
			if err := a.controller.Shutdown(); err != nil {
				errs = append(errs, fmt.Errorf("playback controller: %w", err))
			}
		}
		if a.loop != nil {
			a.loop.Stop()
		}
		if a.scheduler != nil {
			a.scheduler.Close()
		}
		if err := a.closeAudio(); err != nil {
			errs = append(errs, err)
		}
		if a.eventBus != nil {
			if err := a.eventBus.Close(); err != nil {
				errs = append(errs, fmt.Errorf("event bus: %w", err))
			}
		}

		a.shutdownErr = errors.Join(errs...)
		a.logger.Info("application shutdown complete")
	})
	return a.shutdownErr
}

// closeAudio releases the media element and the output device.
func (a *Application) closeAudio() error {
	var errs []error
	if closer, ok := a.media.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("media element: %w", err))
		}
	}
	if a.audio != nil {
		if err := a.audio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("audio context: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Controller returns the playback controller.
func (a *Application) Controller() *service.PlaybackController {
	return a.controller
}

// Presenter returns the UI presenter.
func (a *Application) Presenter() *fyneui.Presenter {
	return a.presenter
}

// GetEventBus returns the event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// Loop returns the visualizer loop.
func (a *Application) Loop() *visualizer.Loop {
	return a.loop
}

// Source returns the configured track source.
func (a *Application) Source() ports.TrackSource {
	return a.source
}
