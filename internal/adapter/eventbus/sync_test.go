package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/logger"
)

func newBus() *SyncEventBus {
	return NewSyncEventBus(logger.NewTestLogger())
}

func TestPublishSubscribe(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var got domain.TrackStartedEvent
	calls := 0
	id := bus.Subscribe(domain.EventTrackStarted, func(e domain.Event) {
		got = e.(domain.TrackStartedEvent)
		calls++
	})
	require.NotEmpty(t, id)

	track := &domain.TrackData{Name: "a.mp3"}
	bus.Publish(domain.NewTrackStartedEvent(track))
	bus.Publish(domain.NewTrackPausedEvent(track))

	assert.Equal(t, 1, calls)
	assert.Same(t, track, got.Track)
}

func TestDeliveryOrder_SurvivesUnsubscribe(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var order []string
	record := func(name string) domain.EventHandler {
		return func(domain.Event) { order = append(order, name) }
	}

	bus.SubscribeAll(record("all"))
	bus.Subscribe(domain.EventTrackLoaded, record("a"))
	idB := bus.Subscribe(domain.EventTrackLoaded, record("b"))
	bus.Subscribe(domain.EventTrackLoaded, record("c"))
	bus.Subscribe(domain.EventTrackLoaded, record("d"))

	bus.Unsubscribe(idB)
	bus.Publish(domain.NewTrackLoadedEvent(nil, nil, -1))

	assert.Equal(t, []string{"a", "c", "d", "all"}, order)
	assert.Equal(t, 4, bus.SubscriberCount())
}

func TestUnsubscribe_UnknownIsNoop(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	bus.Subscribe(domain.EventTrackError, func(domain.Event) {})
	bus.Unsubscribe("sub-999")
	assert.Equal(t, 1, bus.SubscriberCount())
}

func TestHasSubscribers(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	assert.False(t, bus.HasSubscribers(domain.EventAutoNext))

	id := bus.Subscribe(domain.EventAutoNext, func(domain.Event) {})
	assert.True(t, bus.HasSubscribers(domain.EventAutoNext))
	assert.False(t, bus.HasSubscribers(domain.EventTrackPaused))

	bus.Unsubscribe(id)
	assert.False(t, bus.HasSubscribers(domain.EventAutoNext))

	bus.SubscribeAll(func(domain.Event) {})
	assert.True(t, bus.HasSubscribers(domain.EventTrackPaused))
}

func TestPanickingHandler_DoesNotStopOthers(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	called := false
	bus.Subscribe(domain.EventTrackError, func(domain.Event) { panic("boom") })
	bus.Subscribe(domain.EventTrackError, func(domain.Event) { called = true })

	assert.NotPanics(t, func() {
		bus.Publish(domain.NewTrackErrorEvent(nil, domain.ErrNoSource))
	})
	assert.True(t, called)
}

func TestSubscribeFromHandler(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	late := 0
	bus.Subscribe(domain.EventLibraryLoaded, func(domain.Event) {
		bus.Subscribe(domain.EventLibraryLoaded, func(domain.Event) { late++ })
	})

	bus.Publish(domain.NewLibraryLoadedEvent(nil))
	assert.Equal(t, 0, late, "handler added during delivery must not see the same event")

	bus.Publish(domain.NewLibraryLoadedEvent(nil))
	assert.Equal(t, 1, late)
}

func TestClose(t *testing.T) {
	bus := newBus()

	calls := 0
	bus.Subscribe(domain.EventTrackPaused, func(domain.Event) { calls++ })

	require.NoError(t, bus.Close())
	assert.ErrorIs(t, bus.Close(), ErrClosed)

	bus.Publish(domain.NewTrackPausedEvent(nil))
	assert.Equal(t, 0, calls)
	assert.Panics(t, func() { bus.Subscribe(domain.EventTrackPaused, func(domain.Event) {}) })
}

func TestNilHandlerPanics(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	assert.Panics(t, func() { bus.Subscribe(domain.EventTrackPaused, nil) })
	assert.Panics(t, func() { bus.SubscribeAll(nil) })
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var delivered atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := bus.Subscribe(domain.EventTrackCompleted, func(domain.Event) { delivered.Add(1) })
			bus.Unsubscribe(id)
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Publish(domain.NewTrackCompletedEvent(nil))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.SubscriberCount())
	assert.GreaterOrEqual(t, delivered.Load(), int64(0))
}
