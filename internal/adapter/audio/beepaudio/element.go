package beepaudio

import (
	"log/slog"
	"sync"

	"github.com/gopxl/beep"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// resampleQuality is the beep resampler quality used when a track's rate
// differs from the output rate.
const resampleQuality = 4

// Element is a media element backed by beep decoders.
//
// The element is itself a beep.Streamer that never drains: while paused or
// without a source it emits silence, so it can stay attached to the output
// graph across track changes.
//
// All playback state is guarded by lock. In production lock is the speaker
// lock, which the output goroutine already holds while it calls Stream.
type Element struct {
	lock   sync.Locker
	store  *BlobStore
	rate   beep.SampleRate
	logger *slog.Logger

	source  string
	stream  beep.StreamSeekCloser
	output  beep.Streamer
	paused  bool
	ended   bool
	onEnded func()
}

// NewElement creates a paused element that resolves sources through store
// and outputs at rate.
func NewElement(store *BlobStore, rate beep.SampleRate, lock sync.Locker, logger *slog.Logger) *Element {
	return &Element{
		lock:   lock,
		store:  store,
		rate:   rate,
		logger: logger,
		paused: true,
	}
}

// SetSource decodes the payload behind url and makes it current.
func (e *Element) SetSource(url string) error {
	data, ok := e.store.Resolve(url)
	if !ok {
		return domain.NewMediaError("set_source", url, "not an object url", domain.ErrUnknownResource)
	}

	// Decoding happens outside the lock so the output keeps running.
	stream, format, err := decode(data)
	if err != nil {
		return err
	}

	var output beep.Streamer = stream
	if format.SampleRate != e.rate {
		output = beep.Resample(resampleQuality, format.SampleRate, e.rate, stream)
	}

	e.lock.Lock()
	previous := e.stream
	e.source = url
	e.stream = stream
	e.output = output
	e.paused = true
	e.ended = false
	e.lock.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			e.logger.Warn("failed to close previous stream", slog.Any("error", err))
		}
	}

	e.logger.Debug("source set",
		slog.String("url", url),
		slog.String("name", data.Name),
		slog.Int("sample_rate", int(format.SampleRate)),
		slog.Int("channels", format.NumChannels),
	)
	return nil
}

// Source returns the bound URL.
func (e *Element) Source() string {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.source
}

// Play starts or resumes playback. A finished source restarts from the beginning.
func (e *Element) Play() error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.stream == nil {
		return domain.ErrNoSource
	}
	if e.ended {
		if err := e.stream.Seek(0); err != nil {
			return domain.NewMediaError("play", e.source, "rewind failed", err)
		}
		e.ended = false
	}
	e.paused = false
	return nil
}

// Pause pauses playback, keeping the position.
func (e *Element) Pause() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.paused = true
	return nil
}

// Paused reports whether the element is paused.
func (e *Element) Paused() bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.paused
}

// SetOnEnded replaces the completion callback.
func (e *Element) SetOnEnded(fn func()) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.onEnded = fn
}

// Close releases the current stream.
func (e *Element) Close() error {
	e.lock.Lock()
	stream := e.stream
	e.stream, e.output, e.source = nil, nil, ""
	e.paused = true
	e.lock.Unlock()

	if stream != nil {
		return stream.Close()
	}
	return nil
}

// Stream implements beep.Streamer. The caller must hold lock.
func (e *Element) Stream(samples [][2]float64) (int, bool) {
	if e.paused || e.ended || e.output == nil {
		clear(samples)
		return len(samples), true
	}

	filled := 0
	for filled < len(samples) {
		n, ok := e.output.Stream(samples[filled:])
		filled += n
		if !ok {
			break
		}
		if n == 0 {
			// Underrun; the rest of this period is silent.
			clear(samples[filled:])
			return len(samples), true
		}
	}
	clear(samples[filled:])
	if filled == len(samples) {
		return len(samples), true
	}

	if err := e.output.Err(); err != nil {
		e.logger.Error("stream error", slog.String("url", e.source), slog.Any("error", err))
	}

	e.ended = true
	e.paused = true
	// The callback usually changes the source, which needs lock.
	if fn := e.onEnded; fn != nil {
		go fn()
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (e *Element) Err() error {
	return nil
}

var (
	_ ports.MediaElement = (*Element)(nil)
	_ beep.Streamer      = (*Element)(nil)
)
