package service

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/analysis"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// AnalysisBridge routes the media element through a frequency analyser.
// The graph nodes are created up front and wired on the first Connect.
//
// Thread-safety: This implementation is thread-safe.
type AnalysisBridge struct {
	logger   *slog.Logger
	audio    ports.AudioContext
	source   ports.AudioNode
	analyser ports.AnalyserNode
	fftSize  int

	mu        sync.Mutex
	connected bool
}

// NewAnalysisBridge creates the source and analyser nodes for media without
// connecting them. A zero fftSize selects domain.DefaultFFTSize.
func NewAnalysisBridge(
	logger *slog.Logger,
	audio ports.AudioContext,
	media ports.MediaElement,
	fftSize int,
) (*AnalysisBridge, error) {
	if fftSize == 0 {
		fftSize = domain.DefaultFFTSize
	}
	if !analysis.ValidFFTSize(fftSize) {
		return nil, domain.NewValidationError("visualizer.fft_size", fftSize, domain.ErrInvalidFFTSize.Error())
	}

	source, err := audio.CreateMediaElementSource(media)
	if err != nil {
		return nil, domain.NewServiceError("AnalysisBridge", "New", "cannot create media source", err)
	}
	analyser, err := audio.CreateAnalyser()
	if err != nil {
		return nil, domain.NewServiceError("AnalysisBridge", "New", "cannot create analyser", err)
	}

	return &AnalysisBridge{
		logger:   logger.With(slog.String("service", "analysis_bridge")),
		audio:    audio,
		source:   source,
		analyser: analyser,
		fftSize:  fftSize,
	}, nil
}

// AnalyserSettings tunes how magnitudes are averaged over time and scaled
// to bytes.
type AnalyserSettings struct {
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
}

// DefaultAnalyserSettings matches a freshly created analyser.
func DefaultAnalyserSettings() AnalyserSettings {
	return AnalyserSettings{
		Smoothing:   analysis.DefaultSmoothing,
		MinDecibels: analysis.DefaultMinDecibels,
		MaxDecibels: analysis.DefaultMaxDecibels,
	}
}

// Configure applies settings to the analyser node. It may be called before
// or after Connect.
func (b *AnalysisBridge) Configure(settings AnalyserSettings) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.analyser.SetSmoothing(settings.Smoothing); err != nil {
		return domain.NewServiceError("AnalysisBridge", "Configure", "cannot set smoothing", err)
	}
	if err := b.analyser.SetDecibelRange(settings.MinDecibels, settings.MaxDecibels); err != nil {
		return domain.NewServiceError("AnalysisBridge", "Configure", "cannot set decibel range", err)
	}

	b.logger.Debug("analyser configured",
		slog.Float64("smoothing", settings.Smoothing),
		slog.Float64("min_db", settings.MinDecibels),
		slog.Float64("max_db", settings.MaxDecibels))
	return nil
}

// Connect wires source -> analyser -> destination and applies the window size.
// Calls after the first successful one do nothing.
func (b *AnalysisBridge) Connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return nil
	}

	if err := b.analyser.SetFFTSize(b.fftSize); err != nil {
		return domain.NewServiceError("AnalysisBridge", "Connect", "cannot set fft size", err)
	}
	if err := b.source.Connect(b.analyser); err != nil {
		return domain.NewServiceError("AnalysisBridge", "Connect", "source -> analyser", err)
	}
	if err := b.analyser.Connect(b.audio.Destination()); err != nil {
		return domain.NewServiceError("AnalysisBridge", "Connect", "analyser -> destination", err)
	}

	b.connected = true
	b.logger.Debug("analysis graph connected", slog.Int("fft_size", b.fftSize))
	return nil
}

// Connected reports whether the graph is wired.
func (b *AnalysisBridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// FrequencyBinCount returns the snapshot length, half the window size.
func (b *AnalysisBridge) FrequencyBinCount() int {
	return b.fftSize / 2
}

// Sample fills dst with byte-scaled magnitudes. Before Connect it zeroes dst.
func (b *AnalysisBridge) Sample(dst []byte) {
	b.mu.Lock()
	connected := b.connected
	b.mu.Unlock()

	if !connected {
		clear(dst)
		return
	}
	b.analyser.GetByteFrequencyData(dst)
}
