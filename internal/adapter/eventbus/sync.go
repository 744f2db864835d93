// Package eventbus provides the synchronous EventBus implementation.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// ErrClosed is returned by Close on a bus that was already closed.
var ErrClosed = errors.New("event bus already closed")

// wildcard is the internal key for SubscribeAll handlers.
const wildcard domain.EventType = "*"

// SyncEventBus delivers events on the publishing goroutine.
// Type subscribers run first, in subscription order, then wildcard subscribers.
//
// Handlers may subscribe, unsubscribe or publish from inside a handler;
// delivery works on a snapshot taken when Publish starts.
type SyncEventBus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[domain.EventType][]subscription
	owner  map[domain.SubscriptionID]domain.EventType
	nextID uint64
	closed bool
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
// A nil logger disables delivery logging.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	return &SyncEventBus{
		logger: logger,
		subs:   make(map[domain.EventType][]subscription),
		owner:  make(map[domain.SubscriptionID]domain.EventType),
	}
}

// Publish delivers event to its subscribers. Panicking handlers are recovered
// and logged; the remaining handlers still run.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	targets := slices.Concat(bus.subs[event.Type()], bus.subs[wildcard])
	bus.mu.RUnlock()

	for _, sub := range targets {
		bus.deliver(sub, event)
	}
}

func (bus *SyncEventBus) deliver(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && bus.logger != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()

	if bus.logger != nil {
		bus.logger.Debug("delivering event",
			slog.String("event_type", string(event.Type())),
			slog.String("subscription", string(sub.id)))
	}
	sub.handler(event)
}

// Subscribe registers handler for eventType.
// It panics on a nil handler or a closed bus, both programming errors.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(eventType, "sub", handler)
}

// SubscribeAll registers handler for every event type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(wildcard, "sub-all", handler)
}

func (bus *SyncEventBus) add(eventType domain.EventType, prefix string, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	id := domain.SubscriptionID(fmt.Sprintf("%s-%d", prefix, bus.nextID))

	// Copy-on-write so snapshots held by in-flight Publish calls stay valid.
	current := bus.subs[eventType]
	next := make([]subscription, len(current), len(current)+1)
	copy(next, current)
	bus.subs[eventType] = append(next, subscription{id: id, handler: handler})
	bus.owner[id] = eventType

	return id
}

// Unsubscribe removes a subscription, keeping the order of the others.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	eventType, ok := bus.owner[id]
	if !ok {
		return
	}
	delete(bus.owner, id)

	bus.subs[eventType] = slices.DeleteFunc(slices.Clone(bus.subs[eventType]), func(s subscription) bool {
		return s.id == id
	})
	if len(bus.subs[eventType]) == 0 {
		delete(bus.subs, eventType)
	}
}

// HasSubscribers reports whether eventType has a type or wildcard subscriber.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return len(bus.subs[eventType]) > 0 || len(bus.subs[wildcard]) > 0
}

// SubscriberCount returns the number of live subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return len(bus.owner)
}

// Close drops every subscription. Closing twice returns ErrClosed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}

	bus.closed = true
	bus.subs = make(map[domain.EventType][]subscription)
	bus.owner = make(map[domain.SubscriptionID]domain.EventType)

	return nil
}

// Verify that SyncEventBus implements the EventBus interface
var _ ports.EventBus = (*SyncEventBus)(nil)
