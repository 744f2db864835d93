package ports

import (
	"context"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
)

// TrackSource produces the music library as a list of track handles.
// The returned order becomes the "next track" order of the player.
type TrackSource interface {
	// LoadLibrary returns the tracks currently available.
	// An empty slice with a nil error means the library has no playable tracks.
	LoadLibrary(ctx context.Context) ([]*domain.TrackHandle, error)
}

// RootedSource is a TrackSource whose library root can be chosen at runtime,
// for example from a folder picker.
type RootedSource interface {
	TrackSource

	// Root returns the configured library root ("" if none).
	Root() string

	// SetRoot changes the library root used by the next LoadLibrary.
	SetRoot(root string)
}
