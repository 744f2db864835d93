package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/service"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "com.tunescope.app", config.App.ID)
	assert.Equal(t, SourceFilesystem, config.Library.Source)
	assert.Equal(t, 44100, config.Audio.SampleRate)
	assert.Equal(t, 2048, config.Visualizer.FFTSize)
	assert.Equal(t, 60, config.Visualizer.FrameRate)
	assert.Equal(t, OffscreenAuto, config.Visualizer.Offscreen)
	assert.Equal(t, service.DefaultAnalyserSettings(), config.AnalyserSettings())
	assert.False(t, config.Audio.Mock)
	assert.True(t, config.UseOffscreen())
	assert.NoError(t, config.Validate())
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfig_OverridesOnTopOfDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.yaml")
	data := `
library:
  path: ~/Music
visualizer:
  fft_size: 1024
  offscreen: "off"
  smoothing: 0.6
  min_db: -90
policies:
  load_failure: report-error
  concurrent_load: reject-in-flight
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	config, err := LoadConfig("~/config.yaml")
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, filepath.Join(home, "Music"), config.Library.Path)
	assert.Equal(t, 1024, config.Visualizer.FFTSize)
	assert.Equal(t, service.AnalyserSettings{Smoothing: 0.6, MinDecibels: -90, MaxDecibels: -30}, config.AnalyserSettings())
	assert.False(t, config.UseOffscreen())
	assert.Equal(t, 60, config.Visualizer.FrameRate, "unset fields keep their defaults")
	assert.Equal(t, SourceFilesystem, config.Library.Source)

	opts, err := config.ControllerOptions()
	require.NoError(t, err)
	assert.Equal(t, domain.LoadFailureReportError, opts.LoadFailure)
	assert.Equal(t, domain.ConcurrentLoadRejectInFlight, opts.ConcurrentLoad)
}

func TestLoadConfig_S3Section(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
library:
  source: s3
  s3:
    bucket: music
    prefix: albums/
    region: eu-central-1
    endpoint: http://localhost:9000
    access_key: key
    secret_key: secret
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())
	assert.Equal(t, S3Config{
		Bucket:    "music",
		Prefix:    "albums/",
		Region:    "eu-central-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
	}, config.Library.S3)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("visualizer: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		field  string
	}{
		"log level":       {func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		"log format":      {func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		"source":          {func(c *Config) { c.Library.Source = "ftp" }, "library.source"},
		"s3 bucket":       {func(c *Config) { c.Library.Source = SourceS3 }, "library.s3.bucket"},
		"sample rate":     {func(c *Config) { c.Audio.SampleRate = 0 }, "audio.sample_rate"},
		"buffer":          {func(c *Config) { c.Audio.BufferMS = -1 }, "audio.buffer_ms"},
		"fft size":        {func(c *Config) { c.Visualizer.FFTSize = 100 }, "visualizer.fft_size"},
		"frame rate":      {func(c *Config) { c.Visualizer.FrameRate = 0 }, "visualizer.frame_rate"},
		"offscreen":       {func(c *Config) { c.Visualizer.Offscreen = "maybe" }, "visualizer.offscreen"},
		"smoothing":       {func(c *Config) { c.Visualizer.Smoothing = 1 }, "visualizer.smoothing"},
		"decibel range":   {func(c *Config) { c.Visualizer.MinDB = -10 }, "visualizer.min_db"},
		"load failure":    {func(c *Config) { c.Policies.LoadFailure = "panic" }, "load_failure"},
		"concurrent load": {func(c *Config) { c.Policies.ConcurrentLoad = "queue" }, "concurrent_load"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(&config)

			var verr *domain.ValidationError
			require.ErrorAs(t, config.Validate(), &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}
