// Package domain defines domain-specific errors.
// These errors represent playback failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services and adapters can return.
var (
	// ErrLibraryEmpty is returned when the track source produced no tracks.
	ErrLibraryEmpty = errors.New("library is empty")

	// ErrNoTrackLoaded is returned when playback is attempted with no track loaded.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrInvalidTrackHandle is returned when a nil or foreign track handle is used.
	ErrInvalidTrackHandle = errors.New("invalid track handle")

	// ErrNotMaterializable is returned when a handle cannot produce track data.
	ErrNotMaterializable = errors.New("track cannot be materialized")

	// ErrLoadInFlight is returned when a load is rejected because another one is pending.
	ErrLoadInFlight = errors.New("track load already in progress")

	// ErrLoadSuperseded is returned when a newer load request replaced this one.
	ErrLoadSuperseded = errors.New("track load superseded by a newer request")

	// ErrEndOfList is returned when there is no track after the current one.
	ErrEndOfList = errors.New("end of track list reached")

	// ErrNoSource is returned when the media element has no source bound.
	ErrNoSource = errors.New("media element has no source")

	// ErrUnsupportedFormat is returned when an audio payload cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrUnknownResource is returned for object URLs that were never created or already revoked.
	ErrUnknownResource = errors.New("unknown resource url")

	// ErrInvalidFFTSize is returned when the analysis window is not a power of two in [32, 32768].
	ErrInvalidFFTSize = errors.New("invalid fft size")

	// ErrAudioUnavailable is returned when the platform offers no audio output.
	ErrAudioUnavailable = errors.New("audio output unavailable")

	// ErrNotConnectable is returned when two audio nodes cannot be connected.
	ErrNotConnectable = errors.New("audio nodes cannot be connected")

	// ErrPlaybackFailed is returned when playback cannot be started.
	ErrPlaybackFailed = errors.New("playback failed")
)

// MediaError represents an error from the media element or audio graph.
// This wraps low-level decoder and output errors with additional context.
type MediaError struct {
	Op      string // Operation that failed (e.g., "set_source", "play", "decode")
	Source  string // Object URL or file name (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *MediaError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("media %s failed for '%s': %s", e.Op, e.Source, e.Message)
	}
	return fmt.Sprintf("media %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *MediaError) Unwrap() error {
	return e.Err
}

// NewMediaError creates a new MediaError.
func NewMediaError(op, source, message string, err error) *MediaError {
	return &MediaError{
		Op:      op,
		Source:  source,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "PlaybackController")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s.%s failed: %s: %v", e.Service, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
