// Package ports define interfaces for dependency inversion.
// These interfaces allow the core playback logic to remain independent of
// the audio backend, the UI toolkit and the track storage.
package ports

import (
	"github.com/tejashwikalptaru/tunescope/internal/domain"
)

// ResourceStore turns materialized track data into playable resource URLs.
// A URL stays valid until it is revoked; revoking releases the payload.
//
// Implementations must be thread-safe.
type ResourceStore interface {
	// CreateObjectURL registers the payload and returns a URL naming it.
	CreateObjectURL(data *domain.TrackData) (string, error)

	// RevokeObjectURL releases the payload behind url.
	// Revoking an unknown URL is a no-op.
	RevokeObjectURL(url string)
}

// MediaElement is the playback element the controller drives.
// It decodes the resource behind its source URL and reports natural completion.
//
// Implementations must be thread-safe; the ended callback may be invoked
// from a goroutine other than the caller's.
type MediaElement interface {
	// SetSource binds a resource URL created by the ResourceStore.
	// The element starts out paused at the beginning of the new source.
	SetSource(url string) error

	// Source returns the currently bound URL ("" if none).
	Source() string

	// Play starts or resumes playback.
	// Returns domain.ErrNoSource if no source is bound.
	Play() error

	// Pause pauses playback, keeping the position.
	Pause() error

	// Paused reports whether the element is currently paused.
	Paused() bool

	// SetOnEnded replaces the callback run when the source plays to its end.
	// Passing nil removes it.
	SetOnEnded(fn func())
}

// AudioNode is a node in the audio processing graph.
type AudioNode interface {
	// Connect routes this node's output into dst.
	// Connecting the same pair twice is harmless.
	Connect(dst AudioNode) error
}

// AnalyserNode exposes frequency-domain magnitudes of the audio passing through it.
type AnalyserNode interface {
	AudioNode

	// SetFFTSize sets the analysis window in samples (power of two, 32..32768).
	SetFFTSize(size int) error

	// FFTSize returns the analysis window in samples.
	FFTSize() int

	// FrequencyBinCount returns FFTSize()/2.
	FrequencyBinCount() int

	// SetSmoothing sets how much of the previous snapshot carries into the
	// next one, in [0, 1).
	SetSmoothing(tau float64) error

	// SetDecibelRange sets the levels mapped onto 0 and 255.
	SetDecibelRange(minDB, maxDB float64) error

	// GetByteFrequencyData fills dst with byte-scaled magnitudes (0-255).
	// Only min(len(dst), FrequencyBinCount()) entries are written.
	GetByteFrequencyData(dst []byte)
}

// AudioContext creates and owns the audio processing graph.
type AudioContext interface {
	// CreateMediaElementSource wraps a media element as a graph source node.
	// The element's output is routed through the graph from then on.
	CreateMediaElementSource(element MediaElement) (AudioNode, error)

	// CreateAnalyser creates an unconnected analyser node.
	CreateAnalyser() (AnalyserNode, error)

	// Destination returns the output node (the speakers).
	Destination() AudioNode

	// Close releases the audio output.
	Close() error
}
