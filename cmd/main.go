// Package main is the production entry point for the tunescope music player.
//
// Build:
//
//	go build -o build/tunescope ./cmd
//
// Run:
//
//	./build/tunescope ~/Music
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunescope/internal/app"
)

// flags override the config file when set on the command line.
type flags struct {
	configPath string
	source     string
	mockAudio  bool
	logLevel   string
	offscreen  string
}

func newRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "tunescope [library-dir]",
		Short: "Play a music library with a live spectrum visualizer",
		Long: `tunescope plays the tracks of a music library in order and paints
the frequency spectrum of what is playing, once per display refresh.

The library comes from a folder (the argument or library.path in the
config file) or from an S3 bucket (library.source: s3).`,
		Args:         cobra.MaximumNArgs(1),
		Version:      app.GetVersionInfo().FullString(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, f, args)
			if err != nil {
				return err
			}
			return runApp(config)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", app.DefaultConfigPath, "config file")
	cmd.Flags().StringVar(&f.source, "source", "", "library source: filesystem or s3")
	cmd.Flags().BoolVar(&f.mockAudio, "mock-audio", false, "run without an audio device")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.Flags().StringVar(&f.offscreen, "offscreen", "", "offscreen painting: auto, on or off")

	return cmd
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command, f flags, args []string) (app.Config, error) {
	config, err := app.LoadConfig(f.configPath)
	if err != nil {
		return config, err
	}

	if len(args) == 1 {
		config.Library.Path = args[0]
	}
	if cmd.Flags().Changed("source") {
		config.Library.Source = f.source
	}
	if cmd.Flags().Changed("mock-audio") {
		config.Audio.Mock = f.mockAudio
	}
	if cmd.Flags().Changed("log-level") {
		config.Log.Level = f.logLevel
	}
	if cmd.Flags().Changed("offscreen") {
		config.Visualizer.Offscreen = f.offscreen
	}

	return config, config.Validate()
}

// runApp is replaced in tests to stop before a window opens.
var runApp = run

func run(config app.Config) error {
	application, err := app.NewApplication(config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	return application.Run()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
