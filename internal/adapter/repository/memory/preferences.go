// Package memory persists small user settings through the toolkit's preference store.
package memory

import (
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

const keyLibraryFolder = "preferences.library_folder"

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences' repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// SaveLibraryFolder persists the folder the library was last loaded from.
func (r *PreferencesRepository) SaveLibraryFolder(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyLibraryFolder, path)
	return nil
}

// LoadLibraryFolder retrieves the saved folder ("" if none).
func (r *PreferencesRepository) LoadLibraryFolder() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.StringWithFallback(keyLibraryFolder, ""), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyLibraryFolder)
	return nil
}

// Verify interface implementation at compile time.
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
