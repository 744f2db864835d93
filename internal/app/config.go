package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"gopkg.in/yaml.v3"

	"github.com/tejashwikalptaru/tunescope/internal/adapter/frame"
	"github.com/tejashwikalptaru/tunescope/internal/analysis"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/logger"
	"github.com/tejashwikalptaru/tunescope/internal/service"
)

// DefaultConfigPath is where LoadConfig looks when no path is given.
const DefaultConfigPath = "~/.config/tunescope/config.yaml"

// Library source kinds.
const (
	SourceFilesystem = "filesystem"
	SourceS3         = "s3"
)

// Offscreen rendering modes.
const (
	OffscreenAuto = "auto"
	OffscreenOn   = "on"
	OffscreenOff  = "off"
)

// Config holds application configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Log        LogConfig        `yaml:"log"`
	Library    LibraryConfig    `yaml:"library"`
	Audio      AudioConfig      `yaml:"audio"`
	Visualizer VisualizerConfig `yaml:"visualizer"`
	Policies   PolicyConfig     `yaml:"policies"`

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App `yaml:"-"`
}

// AppConfig identifies the application to the toolkit.
type AppConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LogConfig controls logging verbosity and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LibraryConfig selects where tracks come from.
type LibraryConfig struct {
	Source string   `yaml:"source"`
	Path   string   `yaml:"path"`
	S3     S3Config `yaml:"s3"`
}

// S3Config locates an S3 (or S3-compatible) library.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// AudioConfig controls the output device.
type AudioConfig struct {
	SampleRate int  `yaml:"sample_rate"`
	BufferMS   int  `yaml:"buffer_ms"`
	Mock       bool `yaml:"mock"`
}

// VisualizerConfig controls the spectrum display.
type VisualizerConfig struct {
	FFTSize   int     `yaml:"fft_size"`
	FrameRate int     `yaml:"frame_rate"`
	Offscreen string  `yaml:"offscreen"`
	Smoothing float64 `yaml:"smoothing"`
	MinDB     float64 `yaml:"min_db"`
	MaxDB     float64 `yaml:"max_db"`
}

// PolicyConfig selects how track loads fail and overlap.
type PolicyConfig struct {
	LoadFailure    string `yaml:"load_failure"`
	ConcurrentLoad string `yaml:"concurrent_load"`
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		App: AppConfig{
			ID:   "com.tunescope.app",
			Name: "tunescope",
		},
		Log: LogConfig{
			Level:  loggerCfg.Level.String(),
			Format: loggerCfg.Format,
		},
		Library: LibraryConfig{
			Source: SourceFilesystem,
		},
		Audio: AudioConfig{
			SampleRate: 44100,
			BufferMS:   100,
		},
		Visualizer: VisualizerConfig{
			FFTSize:   domain.DefaultFFTSize,
			FrameRate: frame.DefaultRate,
			Offscreen: OffscreenAuto,
			Smoothing: analysis.DefaultSmoothing,
			MinDB:     analysis.DefaultMinDecibels,
			MaxDB:     analysis.DefaultMaxDecibels,
		},
		Policies: PolicyConfig{
			LoadFailure:    domain.LoadFailureKeepPrevious.String(),
			ConcurrentLoad: domain.ConcurrentLoadLatestWins.String(),
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
// A missing file yields the defaults; "~" expands to the home directory.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath
	}

	path, err := expandHome(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Library.Path, err = expandHome(cfg.Library.Path); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Validate checks every field and reports the first problem.
func (c Config) Validate() error {
	if _, ok := logger.ParseLevel(c.Log.Level); !ok {
		return domain.NewValidationError("log.level", c.Log.Level, "expected debug, info, warn or error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return domain.NewValidationError("log.format", c.Log.Format, "expected text or json")
	}

	switch c.Library.Source {
	case SourceFilesystem:
	case SourceS3:
		if c.Library.S3.Bucket == "" {
			return domain.NewValidationError("library.s3.bucket", "", "bucket is required for the s3 source")
		}
	default:
		return domain.NewValidationError("library.source", c.Library.Source, "expected filesystem or s3")
	}

	if c.Audio.SampleRate <= 0 {
		return domain.NewValidationError("audio.sample_rate", c.Audio.SampleRate, "must be positive")
	}
	if c.Audio.BufferMS <= 0 {
		return domain.NewValidationError("audio.buffer_ms", c.Audio.BufferMS, "must be positive")
	}

	if !analysis.ValidFFTSize(c.Visualizer.FFTSize) {
		return domain.NewValidationError("visualizer.fft_size", c.Visualizer.FFTSize, "must be a power of two between 32 and 32768")
	}
	if c.Visualizer.FrameRate <= 0 {
		return domain.NewValidationError("visualizer.frame_rate", c.Visualizer.FrameRate, "must be positive")
	}
	switch c.Visualizer.Offscreen {
	case OffscreenAuto, OffscreenOn, OffscreenOff:
	default:
		return domain.NewValidationError("visualizer.offscreen", c.Visualizer.Offscreen, "expected auto, on or off")
	}

	if !analysis.ValidSmoothing(c.Visualizer.Smoothing) {
		return domain.NewValidationError("visualizer.smoothing", c.Visualizer.Smoothing, "must be in [0, 1)")
	}
	if !analysis.ValidDecibelRange(c.Visualizer.MinDB, c.Visualizer.MaxDB) {
		return domain.NewValidationError("visualizer.min_db", c.Visualizer.MinDB, "must be below visualizer.max_db")
	}

	_, err := c.ControllerOptions()
	return err
}

// ControllerOptions parses the policy settings.
func (c Config) ControllerOptions() (service.ControllerOptions, error) {
	failure, err := domain.ParseLoadFailurePolicy(c.Policies.LoadFailure)
	if err != nil {
		return service.ControllerOptions{}, err
	}
	concurrent, err := domain.ParseConcurrentLoadPolicy(c.Policies.ConcurrentLoad)
	if err != nil {
		return service.ControllerOptions{}, err
	}
	return service.ControllerOptions{LoadFailure: failure, ConcurrentLoad: concurrent}, nil
}

// AnalyserSettings converts the visualizer's analysis fields.
func (c Config) AnalyserSettings() service.AnalyserSettings {
	return service.AnalyserSettings{
		Smoothing:   c.Visualizer.Smoothing,
		MinDecibels: c.Visualizer.MinDB,
		MaxDecibels: c.Visualizer.MaxDB,
	}
}

// LoggerConfig converts the log section; Validate must have passed.
func (c Config) LoggerConfig() logger.Config {
	level, _ := logger.ParseLevel(c.Log.Level)
	return logger.Config{Level: level, Format: c.Log.Format}
}

// UseOffscreen reports whether frames are painted offscreen and transferred.
// Both surfaces work everywhere fyne runs, so auto picks the double-buffered one.
func (c Config) UseOffscreen() bool {
	return c.Visualizer.Offscreen != OffscreenOff
}

// AudioBuffer returns the output buffer length.
func (c Config) AudioBuffer() time.Duration {
	return time.Duration(c.Audio.BufferMS) * time.Millisecond
}
