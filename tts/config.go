package tts

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Config contains all speech configuration options.
type Config struct {
	Engine string `yaml:"engine" env:"READALOUD_ENGINE" envDefault:"mock"`

	// Voice settings, applied to every utterance
	Language string  `yaml:"language" env:"READALOUD_LANGUAGE"`
	Pitch    float64 `yaml:"pitch" env:"READALOUD_PITCH" envDefault:"0.8"`
	Rate     float64 `yaml:"rate" env:"READALOUD_RATE" envDefault:"0.8"`

	// Visual settings
	HighlightColor string `yaml:"highlight_color" env:"READALOUD_HIGHLIGHT_COLOR" envDefault:"yellow"`

	// Engine-specific configurations
	Piper PiperConfig `yaml:"piper"`
	Mock  MockConfig  `yaml:"mock"`
}

// PiperConfig contains Piper engine specific settings.
type PiperConfig struct {
	Binary           string        `yaml:"binary" env:"READALOUD_PIPER_BINARY" envDefault:"piper"`
	Model            string        `yaml:"model" env:"READALOUD_PIPER_MODEL" envDefault:"en_US-lessac-medium"`
	DataDir          string        `yaml:"data_dir" env:"READALOUD_PIPER_DATA_DIR"`
	SampleRate       int           `yaml:"sample_rate" env:"READALOUD_PIPER_SAMPLE_RATE" envDefault:"22050"`
	Volume           float64       `yaml:"volume" env:"READALOUD_PIPER_VOLUME" envDefault:"1.0"`
	Timeout          time.Duration `yaml:"timeout" env:"READALOUD_PIPER_TIMEOUT" envDefault:"30s"`
	CacheDir         string        `yaml:"cache_dir" env:"READALOUD_PIPER_CACHE_DIR"`
	CacheMaxSize     int           `yaml:"cache_max_size" env:"READALOUD_PIPER_CACHE_MAX_SIZE" envDefault:"100"`
	CompressionLevel int           `yaml:"compression_level" env:"READALOUD_PIPER_COMPRESSION_LEVEL" envDefault:"3"`
}

// MockConfig contains settings of the simulated engine.
type MockConfig struct {
	WordsPerMinute int           `yaml:"words_per_minute" env:"READALOUD_MOCK_WORDS_PER_MINUTE" envDefault:"150"`
	InitDelay      time.Duration `yaml:"init_delay" env:"READALOUD_MOCK_INIT_DELAY" envDefault:"50ms"`
	InitFailure    string        `yaml:"init_failure" env:"READALOUD_MOCK_INIT_FAILURE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:         "mock",
		Pitch:          DefaultPitchAndRate,
		Rate:           DefaultPitchAndRate,
		HighlightColor: "yellow",
		Piper:          DefaultPiperConfig(),
		Mock:           DefaultMockConfig(),
	}
}

// DefaultPiperConfig returns default Piper configuration.
func DefaultPiperConfig() PiperConfig {
	cfg := PiperConfig{
		Binary:           "piper",
		Model:            "en_US-lessac-medium",
		SampleRate:       22050,
		Volume:           1.0,
		Timeout:          30 * time.Second,
		CacheMaxSize:     100,
		CompressionLevel: 3,
	}

	// Try to detect common Piper installation paths
	if runtime.GOOS == "linux" {
		cfg.DataDir = filepath.Join("/usr", "share", "piper")
	} else if runtime.GOOS == "darwin" {
		cfg.DataDir = filepath.Join("/usr", "local", "share", "piper")
	}

	return cfg
}

// DefaultMockConfig returns default mock engine configuration.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		WordsPerMinute: 150,
		InitDelay:      50 * time.Millisecond,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validEngines := []string{"mock", "piper"}
	engineValid := false
	for _, e := range validEngines {
		if strings.EqualFold(c.Engine, e) {
			engineValid = true
			c.Engine = strings.ToLower(c.Engine)
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("%w: engine %q must be one of %v", ErrInvalidConfig, c.Engine, validEngines)
	}

	if _, err := c.Voice(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	validColors := []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}
	colorValid := false
	for _, color := range validColors {
		if strings.EqualFold(c.HighlightColor, color) {
			colorValid = true
			c.HighlightColor = strings.ToLower(c.HighlightColor)
			break
		}
	}
	if !colorValid {
		return fmt.Errorf("%w: highlight color %q must be one of %v", ErrInvalidConfig, c.HighlightColor, validColors)
	}

	switch c.Engine {
	case "piper":
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	case "mock":
		if err := c.Mock.Validate(); err != nil {
			return fmt.Errorf("mock config: %w", err)
		}
	}

	return nil
}

// Voice returns the voice described by the configuration.
func (c *Config) Voice() (Voice, error) {
	v := Voice{
		Pitch:    c.Pitch,
		Rate:     c.Rate,
		Language: SystemLanguage(),
	}
	if c.Language != "" {
		tag, err := ParseLanguage(c.Language)
		if err != nil {
			return v, err
		}
		v.Language = tag
	}
	return v, v.Validate()
}

// Validate checks if the Piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("%w: piper binary path cannot be empty", ErrInvalidConfig)
	}

	if c.Model == "" {
		return fmt.Errorf("%w: piper model cannot be empty", ErrInvalidConfig)
	}

	validSampleRates := []int{16000, 22050, 24000, 44100, 48000}
	sampleRateValid := false
	for _, sr := range validSampleRates {
		if c.SampleRate == sr {
			sampleRateValid = true
			break
		}
	}
	if !sampleRateValid {
		return fmt.Errorf("%w: sample rate %d must be one of %v", ErrInvalidConfig, c.SampleRate, validSampleRates)
	}

	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume must be between 0.0 and 1.0, got %f", ErrInvalidConfig, c.Volume)
	}

	if c.Timeout < time.Second {
		return fmt.Errorf("%w: timeout must be at least 1 second, got %v", ErrInvalidConfig, c.Timeout)
	}

	if c.CacheMaxSize < 0 || c.CacheMaxSize > 10000 {
		return fmt.Errorf("%w: cache_max_size must be between 0 and 10000 MB, got %d", ErrInvalidConfig, c.CacheMaxSize)
	}

	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		return fmt.Errorf("%w: compression_level must be between 0 and 22, got %d", ErrInvalidConfig, c.CompressionLevel)
	}

	return nil
}

// ModelPath resolves the configured model to an .onnx file path.
func (c *PiperConfig) ModelPath() string {
	model := c.Model
	if filepath.Ext(model) != ".onnx" {
		model += ".onnx"
	}
	if filepath.IsAbs(model) || c.DataDir == "" {
		return model
	}
	return filepath.Join(c.DataDir, model)
}

// Validate checks if the mock configuration is valid.
func (c *MockConfig) Validate() error {
	if c.WordsPerMinute < 50 || c.WordsPerMinute > 500 {
		return fmt.Errorf("%w: words_per_minute must be between 50 and 500, got %d", ErrInvalidConfig, c.WordsPerMinute)
	}

	if c.InitDelay < 0 {
		return fmt.Errorf("%w: init_delay cannot be negative, got %v", ErrInvalidConfig, c.InitDelay)
	}

	if c.InitFailure != "" {
		if _, ok := ParseErrorCode(c.InitFailure); !ok {
			return fmt.Errorf("%w: unknown init_failure %q", ErrInvalidConfig, c.InitFailure)
		}
	}

	return nil
}
