// Package domain contains core models and logic with no external dependencies.
// This package defines the fundamental entities of the tunescope player.
package domain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// MaterializeFunc turns a track handle into playable binary data.
// It may block on I/O and must honour ctx cancellation.
type MaterializeFunc func(ctx context.Context) (*TrackData, error)

// TrackHandle is a reference to a selectable audio item before its data is loaded.
// Handles are immutable once created and are compared by pointer identity,
// so the same *TrackHandle must be kept for the lifetime of a track list.
type TrackHandle struct {
	// Name is the display name shown in the track list
	Name string

	// Location is the source-specific address (file path, object key)
	Location string

	// Materialize loads the binary payload for this track
	Materialize MaterializeFunc
}

// NewTrackHandle creates a track handle.
func NewTrackHandle(name, location string, materialize MaterializeFunc) *TrackHandle {
	return &TrackHandle{
		Name:        name,
		Location:    location,
		Materialize: materialize,
	}
}

// Load materializes the handle, reporting a missing loader as ErrNotMaterializable.
func (h *TrackHandle) Load(ctx context.Context) (*TrackData, error) {
	if h == nil {
		return nil, ErrInvalidTrackHandle
	}
	if h.Materialize == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotMaterializable, h.Name)
	}

	data, err := h.Materialize(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s returned no data", ErrNotMaterializable, h.Name)
	}
	return data, nil
}

// TrackData is a materialized track: the binary payload plus its name.
type TrackData struct {
	// Name is the display name carried over from the handle
	Name string

	// Format is the lower-case file extension without the dot (mp3, flac, ...)
	Format string

	// Payload is the encoded audio file
	Payload []byte

	// Metadata holds tag information when the source could read it
	Metadata *TrackMetadata
}

// Size returns the payload length in bytes.
func (d *TrackData) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Payload)
}

// TrackMetadata contains tag information for a track.
type TrackMetadata struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   int
}

// DisplayName returns "Artist - Title", the title alone, or "" when untagged.
func (m *TrackMetadata) DisplayName() string {
	if m == nil || m.Title == "" {
		return ""
	}
	if m.Artist == "" {
		return m.Title
	}
	return m.Artist + " - " + m.Title
}

// SupportedExtensions lists the file extensions the player can decode.
var SupportedExtensions = []string{".mp3", ".wav", ".flac", ".ogg", ".oga"}

// IsSupportedFile reports whether the path has a decodable audio extension.
func IsSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// FormatFromPath returns the lower-case extension of path without the dot.
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// PlaybackStatus represents the current playback state.
type PlaybackStatus int

const (
	// StatusPaused indicates playback is paused or has not started
	StatusPaused PlaybackStatus = iota

	// StatusPlaying indicates playback is active
	StatusPlaying
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// PlaybackState is a point-in-time snapshot of the controller.
type PlaybackState struct {
	// Tracks is the current track list (nil before the first successful load)
	Tracks []*TrackHandle

	// CurrentHandle is the handle the current track was materialized from
	CurrentHandle *TrackHandle

	// CurrentTrack is the loaded track (nil if none)
	CurrentTrack *TrackData

	// CurrentIndex is the index of CurrentHandle in Tracks (-1 if none)
	CurrentIndex int

	// Status is the current playback status
	Status PlaybackStatus

	// Loading is true while a track is being materialized
	Loading bool
}

// HasTracks reports whether a non-empty library is loaded.
func (s PlaybackState) HasTracks() bool {
	return len(s.Tracks) > 0
}

// IndexOf returns the position of handle in tracks by pointer identity, or -1.
func IndexOf(tracks []*TrackHandle, handle *TrackHandle) int {
	if handle == nil {
		return -1
	}
	for i, t := range tracks {
		if t == handle {
			return i
		}
	}
	return -1
}

// LoadFailurePolicy decides what the user sees when a track fails to load.
// In both cases the previously loaded track stays current.
type LoadFailurePolicy int

const (
	// LoadFailureKeepPrevious logs the failure and keeps the old track silently
	LoadFailureKeepPrevious LoadFailurePolicy = iota

	// LoadFailureReportError keeps the old track and publishes a TrackErrorEvent
	LoadFailureReportError
)

// String returns the config spelling of the policy.
func (p LoadFailurePolicy) String() string {
	switch p {
	case LoadFailureKeepPrevious:
		return "keep-previous"
	case LoadFailureReportError:
		return "report-error"
	default:
		return "unknown"
	}
}

// ParseLoadFailurePolicy parses the config spelling of a LoadFailurePolicy.
func ParseLoadFailurePolicy(s string) (LoadFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep-previous":
		return LoadFailureKeepPrevious, nil
	case "report-error":
		return LoadFailureReportError, nil
	default:
		return LoadFailureKeepPrevious, NewValidationError("load_failure", s, "expected keep-previous or report-error")
	}
}

// ConcurrentLoadPolicy decides how overlapping LoadTrack calls are resolved.
type ConcurrentLoadPolicy int

const (
	// ConcurrentLoadLatestWins cancels the in-flight load and keeps the newest request
	ConcurrentLoadLatestWins ConcurrentLoadPolicy = iota

	// ConcurrentLoadRejectInFlight refuses new loads until the pending one finishes
	ConcurrentLoadRejectInFlight
)

// String returns the config spelling of the policy.
func (p ConcurrentLoadPolicy) String() string {
	switch p {
	case ConcurrentLoadLatestWins:
		return "latest-wins"
	case ConcurrentLoadRejectInFlight:
		return "reject-in-flight"
	default:
		return "unknown"
	}
}

// ParseConcurrentLoadPolicy parses the config spelling of a ConcurrentLoadPolicy.
func ParseConcurrentLoadPolicy(s string) (ConcurrentLoadPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest-wins":
		return ConcurrentLoadLatestWins, nil
	case "reject-in-flight":
		return ConcurrentLoadRejectInFlight, nil
	default:
		return ConcurrentLoadLatestWins, NewValidationError("concurrent_load", s, "expected latest-wins or reject-in-flight")
	}
}

// DefaultFFTSize is the analysis window in samples; it yields 1024 frequency bins.
const DefaultFFTSize = 2048

// FrequencySnapshot holds byte-scaled magnitudes (0-255), one per frequency bin.
type FrequencySnapshot []byte

// NewFrequencySnapshot allocates a snapshot with one slot per bin.
func NewFrequencySnapshot(bins int) FrequencySnapshot {
	if bins < 0 {
		bins = 0
	}
	return make(FrequencySnapshot, bins)
}
