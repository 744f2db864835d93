package ports

// PreferencesRepository persists user settings between sessions.
//
// Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveLibraryFolder remembers the folder the library was loaded from.
	SaveLibraryFolder(path string) error

	// LoadLibraryFolder returns the remembered folder ("" if none).
	LoadLibraryFolder() (string, error)

	// Clear removes all saved preferences.
	Clear() error
}
