// Package ports define the View interface for UI abstraction.
package ports

// View is the passive UI the presenter drives.
// It lets the presenter run without a real window in tests.
//
// Implementations marshal every call onto the UI thread themselves,
// so the presenter may call them from any goroutine.
type View interface {
	// SetTracks shows the track list. An empty slice switches the view to
	// its "no tracks" presentation: list and play controls hidden, the big
	// "Load Music" button shown.
	SetTracks(names []string)

	// SelectTrack highlights the track at index (-1 clears the selection).
	SelectTrack(index int)

	// SetTrackLabel shows the current track name, or the "no track"
	// placeholder when name is empty.
	SetTrackLabel(name string)

	// SetPlayState switches the play/pause toggle and the idle graphic.
	SetPlayState(playing bool)

	// ShowError displays an error dialog.
	ShowError(title, message string)

	// PickFolder asks the user for a library folder. onPicked runs only
	// when a folder was chosen; cancelling does nothing.
	PickFolder(onPicked func(path string))
}
