package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# word-wrap at width (0 uses the terminal width)
width: 0
# mouse support (TUI-mode only)
mouse: false
# print words as they are spoken instead of running the TUI
plain: false

# Speech configuration
tts:
  # speech engine: mock or piper
  engine: "mock"
  # voice language; empty uses the system locale
  # language: "en-US"
  # pitch and rate multipliers (0 < value <= 2)
  pitch: 0.8
  rate: 0.8
  # color of the word being spoken: black, red, green, yellow, blue,
  # magenta, cyan or white
  highlight_color: "yellow"

  # Piper engine
  piper:
    binary: "piper"
    model: "en_US-lessac-medium"
    # data_dir: "/usr/share/piper"
    sample_rate: 22050
    volume: 1.0
    timeout: "30s"
    # cache synthesized audio here; empty disables the cache
    # cache_dir: "~/.cache/readaloud"
    # cache size in MB
    cache_max_size: 100
    # zstd level for cached audio, 0 disables compression
    compression_level: 3

  # Silent engine pacing words like a voice would
  mock:
    words_per_minute: 150
    init_delay: "50ms"
    # init_failure: "ERROR_NETWORK"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the readaloud config file",
	Long:    paragraph(fmt.Sprintf("\n%s the readaloud config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("readaloud config\nreadaloud config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("readaloud", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
