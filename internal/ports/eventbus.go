// Package ports define the EventBus interface for event-driven communication.
package ports

import (
	"github.com/tejashwikalptaru/tunescope/internal/domain"
)

// EventBus publishes domain events to subscribers.
// The playback controller publishes; the presenter and loggers subscribe,
// so neither side knows about the other.
//
// Thread-safety: implementations must allow Publish, Subscribe and
// Unsubscribe from any goroutine.
//
// Example usage:
//
//	bus.Subscribe(domain.EventTrackLoaded, func(event domain.Event) {
//	    e := event.(domain.TrackLoadedEvent)
//	    view.SetTrackLabel(e.Track.Name)
//	})
type EventBus interface {
	// Publish delivers event to every subscriber of its type, then to
	// every wildcard subscriber. It must not block for long.
	Publish(event domain.Event)

	// Subscribe registers handler for one event type and returns its ID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// SubscribeAll registers handler for every event type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown IDs are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// HasSubscribers reports whether anyone listens to eventType.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops all subscriptions; later publishes are ignored.
	Close() error
}
