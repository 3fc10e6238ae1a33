package ui

// Config contains TUI-specific configuration.
type Config struct {
	HighlightColor string `env:"READALOUD_HIGHLIGHT_COLOR" envDefault:"yellow"`
	EnableMouse    bool   `env:"READALOUD_MOUSE"`
	AutoStart      bool   `env:"READALOUD_AUTOSTART" envDefault:"true"`

	// Wrap at this width. Zero uses the terminal width.
	Width uint `env:"READALOUD_WIDTH"`

	// Watch the source file and start over when it changes.
	Watch bool
}
