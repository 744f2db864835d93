// Package domain defines events for the event-driven architecture.
// Events let the UI follow playback without the controller knowing about it.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Library events
	EventLibraryLoaded EventType = "library.loaded"

	// Playback events
	EventTrackLoaded    EventType = "track.loaded"
	EventTrackStarted   EventType = "track.started"
	EventTrackPaused    EventType = "track.paused"
	EventTrackCompleted EventType = "track.completed"
	EventTrackError     EventType = "track.error"
	EventAutoNext       EventType = "track.auto_next"

	// Visualizer events
	EventVisualizerStarted EventType = "visualizer.started"
	EventVisualizerStopped EventType = "visualizer.stopped"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// LibraryLoadedEvent is published when a non-empty track list replaced the old one.
type LibraryLoadedEvent struct {
	baseEvent
	Tracks []*TrackHandle
}

// Type returns the event type.
func (e LibraryLoadedEvent) Type() EventType {
	return EventLibraryLoaded
}

// Names returns the display names of the loaded tracks, in list order.
func (e LibraryLoadedEvent) Names() []string {
	names := make([]string, len(e.Tracks))
	for i, t := range e.Tracks {
		names[i] = t.Name
	}
	return names
}

// NewLibraryLoadedEvent creates a new LibraryLoadedEvent.
func NewLibraryLoadedEvent(tracks []*TrackHandle) LibraryLoadedEvent {
	return LibraryLoadedEvent{
		baseEvent: newBaseEvent(),
		Tracks:    tracks,
	}
}

// TrackLoadedEvent is published when a track became the current track.
type TrackLoadedEvent struct {
	baseEvent
	Track  *TrackData
	Handle *TrackHandle
	Index  int // Position in the track list, -1 if the handle is not listed
}

// Type returns the event type.
func (e TrackLoadedEvent) Type() EventType {
	return EventTrackLoaded
}

// NewTrackLoadedEvent creates a new TrackLoadedEvent.
func NewTrackLoadedEvent(track *TrackData, handle *TrackHandle, index int) TrackLoadedEvent {
	return TrackLoadedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Handle:    handle,
		Index:     index,
	}
}

// TrackStartedEvent is published when playback starts or resumes.
type TrackStartedEvent struct {
	baseEvent
	Track *TrackData
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType {
	return EventTrackStarted
}

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track *TrackData) TrackStartedEvent {
	return TrackStartedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackPausedEvent is published when playback is paused.
// Track is nil when pause was requested with nothing loaded.
type TrackPausedEvent struct {
	baseEvent
	Track *TrackData
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType {
	return EventTrackPaused
}

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track *TrackData) TrackPausedEvent {
	return TrackPausedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackCompletedEvent is published when the media element reports natural completion.
type TrackCompletedEvent struct {
	baseEvent
	Track *TrackData
}

// Type returns the event type.
func (e TrackCompletedEvent) Type() EventType {
	return EventTrackCompleted
}

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(track *TrackData) TrackCompletedEvent {
	return TrackCompletedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackErrorEvent is published when a track could not be loaded or played.
type TrackErrorEvent struct {
	baseEvent
	Handle *TrackHandle
	Error  error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType {
	return EventTrackError
}

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(handle *TrackHandle, err error) TrackErrorEvent {
	return TrackErrorEvent{
		baseEvent: newBaseEvent(),
		Handle:    handle,
		Error:     err,
	}
}

// AutoNextEvent is published when playback advances to the next track on completion.
type AutoNextEvent struct {
	baseEvent
	Next  *TrackHandle
	Index int
}

// Type returns the event type.
func (e AutoNextEvent) Type() EventType {
	return EventAutoNext
}

// NewAutoNextEvent creates a new AutoNextEvent.
func NewAutoNextEvent(next *TrackHandle, index int) AutoNextEvent {
	return AutoNextEvent{
		baseEvent: newBaseEvent(),
		Next:      next,
		Index:     index,
	}
}

// VisualizerStartedEvent is published when the visualizer loop begins scheduling frames.
type VisualizerStartedEvent struct {
	baseEvent
	Bins int
}

// Type returns the event type.
func (e VisualizerStartedEvent) Type() EventType {
	return EventVisualizerStarted
}

// NewVisualizerStartedEvent creates a new VisualizerStartedEvent.
func NewVisualizerStartedEvent(bins int) VisualizerStartedEvent {
	return VisualizerStartedEvent{
		baseEvent: newBaseEvent(),
		Bins:      bins,
	}
}

// VisualizerStoppedEvent is published when the visualizer loop was torn down.
type VisualizerStoppedEvent struct {
	baseEvent
	Frames uint64
}

// Type returns the event type.
func (e VisualizerStoppedEvent) Type() EventType {
	return EventVisualizerStopped
}

// NewVisualizerStoppedEvent creates a new VisualizerStoppedEvent.
func NewVisualizerStoppedEvent(frames uint64) VisualizerStoppedEvent {
	return VisualizerStoppedEvent{
		baseEvent: newBaseEvent(),
		Frames:    frames,
	}
}
