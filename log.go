package main

import (
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	gap "github.com/muesli/go-app-paths"
)

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "readaloud").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "readaloud.log"), nil
}

// setupLog sends the default logger to a file. The TUI owns the terminal,
// so nothing may log to stderr while it runs.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	path, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	logger, closer, err := tts.NewFileLogger(path, log.InfoLevel)
	if err != nil {
		return nil, err
	}
	log.SetDefault(logger)
	return closer, nil
}
