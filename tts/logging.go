package tts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// InitializeLogging sets the level of the default logger and returns the
// logger speech components should use.
func InitializeLogging(debugMode bool) *log.Logger {
	if debugMode {
		log.SetLevel(log.DebugLevel)
		log.Debug("Speech logging initialized", "level", "DEBUG")
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return log.Default().WithPrefix("tts")
}

// NewFileLogger opens path for appending, creating its directory, and
// returns a logger writing timestamped entries to it. The returned func
// closes the file.
func NewFileLogger(path string, level log.Level) (*log.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec
		return nil, nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	return logger, f.Close, nil
}
