package fyne

import (
	"log/slog"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// Window defaults.
const (
	AppName              = "tunescope"
	WindowWidth  float32 = 720
	WindowHeight float32 = 420

	noTrackText = "No music playing"
)

const aboutContent = `A music player that paints the spectrum of what it plays.

**Formats:** mp3, wav, flac, ogg

Pick a folder with **Load Music**, click a track to play it. Playback moves
on to the next track when one ends.
`

// MainWindow is the main UI window implementing ports.View.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All decisions are made by the Presenter
// - User interactions are forwarded to the Presenter off the UI thread
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// UI components
	trackList     *widget.List
	playButton    *widget.Button
	barLoadButton *widget.Button
	emptyLoad     *widget.Button
	trackLabel    *widget.Label
	placeholder   *canvas.Image
	visual        fyneapp.CanvasObject
	libraryView   fyneapp.CanvasObject
	emptyView     fyneapp.CanvasObject

	// State, only touched on the UI thread
	names     []string
	selecting bool

	closeOnce sync.Once
	presenter *Presenter
}

// NewMainWindow creates the main window around visual, the canvas object
// the visualizer paints into.
func NewMainWindow(app fyneapp.App, visual fyneapp.CanvasObject, logger *slog.Logger) *MainWindow {
	w := &MainWindow{
		app:    app,
		logger: logger,
		visual: visual,
	}

	w.window = app.NewWindow(AppName)
	w.buildUI()

	w.window.Resize(fyneapp.Size{
		Width:  WindowWidth,
		Height: WindowHeight,
	})
	w.app.SetIcon(theme.MediaMusicIcon())

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	w.trackList = widget.NewList(
		func() int { return len(w.names) },
		func() fyneapp.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyneapp.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, item fyneapp.CanvasObject) {
			if id < len(w.names) {
				item.(*widget.Label).SetText(w.names[id])
			}
		},
	)

	// Idle graphic, hidden while playing
	w.placeholder = canvas.NewImageFromResource(theme.MediaMusicIcon())
	w.placeholder.FillMode = canvas.ImageFillContain
	w.placeholder.SetMinSize(fyneapp.NewSize(96, 96))

	stage := container.NewStack(w.visual, container.NewCenter(w.placeholder))
	split := container.NewHSplit(w.trackList, stage)
	split.Offset = 0.35
	w.libraryView = split

	// Empty library: one big centered button
	w.emptyLoad = widget.NewButtonWithIcon("Load Music", theme.FolderOpenIcon(), nil)
	w.emptyLoad.Importance = widget.HighImportance
	w.emptyView = container.NewCenter(w.emptyLoad)

	// Control bar
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.barLoadButton = widget.NewButtonWithIcon("Load Music", theme.FolderOpenIcon(), nil)
	w.trackLabel = widget.NewLabel(noTrackText)
	w.trackLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.trackLabel.TextStyle = fyneapp.TextStyle{
		Bold:   true,
		Italic: true,
	}
	controls := container.NewBorder(nil, nil, container.NewHBox(w.playButton), w.barLoadButton, w.trackLabel)

	// Main layout
	body := container.NewStack(w.libraryView, w.emptyView)
	w.window.SetContent(container.NewPadded(container.NewBorder(nil, controls, nil, nil, body)))
	w.showLibrary(false)

	// Menu
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// showLibrary switches between the track list and the "no tracks" layout.
func (w *MainWindow) showLibrary(has bool) {
	if has {
		w.emptyView.Hide()
		w.libraryView.Show()
		w.playButton.Show()
		w.barLoadButton.Show()
		return
	}
	w.libraryView.Hide()
	w.playButton.Hide()
	w.barLoadButton.Hide()
	w.emptyView.Show()
}

// wirePresenterHandlers connects UI events to presenter handlers.
// Presenter commands may block on I/O, so they run off the UI thread.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.emptyLoad.OnTapped = w.load
	w.barLoadButton.OnTapped = w.load
	w.playButton.OnTapped = w.togglePlay

	w.trackList.OnSelected = func(id widget.ListItemID) {
		if w.selecting {
			return
		}
		go func() { _ = w.presenter.OnTrackSelected(id) }()
	}
}

func (w *MainWindow) load() {
	if w.presenter != nil {
		go w.presenter.OnLoadClicked()
	}
}

func (w *MainWindow) togglePlay() {
	if w.presenter != nil {
		go func() { _ = w.presenter.OnPlayPauseClicked() }()
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	load := fyneapp.NewMenuItem("Load Music...", w.load)
	load.Shortcut = loadShortcut

	about := fyneapp.NewMenuItem("About", func() {
		content := widget.NewRichTextFromMarkdown(aboutContent)
		content.Wrapping = fyneapp.TextWrapWord
		dialog.ShowCustom("About "+AppName, "Close", content, w.window)
	})

	return []*fyneapp.Menu{
		fyneapp.NewMenu("File", load),
		fyneapp.NewMenu("Help", about),
	}
}

var loadShortcut = &desktop.CustomShortcut{
	KeyName:  fyneapp.KeyO,
	Modifier: fyneapp.KeyModifierShortcutDefault,
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	w.window.Canvas().AddShortcut(loadShortcut, func(fyneapp.Shortcut) {
		w.load()
	})

	w.window.Canvas().SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		if ev.Name == fyneapp.KeySpace && len(w.names) > 0 {
			w.togglePlay()
		}
	})
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// SetOnClosed registers fn to run when the window closes.
func (w *MainWindow) SetOnClosed(fn func()) {
	w.window.SetOnClosed(fn)
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		fyneapp.Do(w.window.Close)
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// View interface implementation

// SetTracks replaces the list content.
func (w *MainWindow) SetTracks(names []string) {
	names = append([]string(nil), names...)
	fyneapp.Do(func() {
		w.names = names
		w.selecting = true
		w.trackList.UnselectAll()
		w.selecting = false
		w.trackList.Refresh()
		w.showLibrary(len(names) > 0)
	})
}

// SelectTrack highlights index without triggering a load.
func (w *MainWindow) SelectTrack(index int) {
	fyneapp.Do(func() {
		w.selecting = true
		defer func() { w.selecting = false }()

		if index < 0 || index >= len(w.names) {
			w.trackList.UnselectAll()
			return
		}
		w.trackList.Select(index)
		w.trackList.ScrollTo(index)
	})
}

// SetTrackLabel shows the current track name.
func (w *MainWindow) SetTrackLabel(name string) {
	if name == "" {
		name = noTrackText
	}
	fyneapp.Do(func() {
		w.trackLabel.SetText(name)
	})
}

// SetPlayState updates the toggle icon and swaps the idle graphic for the visualizer.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		if playing {
			w.playButton.SetIcon(theme.MediaPauseIcon())
			w.placeholder.Hide()
			return
		}
		w.playButton.SetIcon(theme.MediaPlayIcon())
		w.placeholder.Show()
	})
}

// ShowError displays an error dialog.
func (w *MainWindow) ShowError(title, message string) {
	fyneapp.Do(func() {
		dialog.ShowInformation(title, message, w.window)
	})
}

// PickFolder opens the folder dialog. The choice is handed to onPicked off
// the UI thread.
func (w *MainWindow) PickFolder(onPicked func(path string)) {
	fyneapp.Do(func() {
		NewFolderDialog(w.window, func(path string) {
			go onPicked(path)
		}, w.logger).Show()
	})
}

// Verify View implementation
var _ ports.View = (*MainWindow)(nil)
