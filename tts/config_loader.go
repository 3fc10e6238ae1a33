package tts

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads speech configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.engine") {
		cfg.Engine = viper.GetString("tts.engine")
	}

	// Voice settings
	if viper.IsSet("tts.language") {
		cfg.Language = viper.GetString("tts.language")
	}
	if viper.IsSet("tts.pitch") {
		cfg.Pitch = viper.GetFloat64("tts.pitch")
	}
	if viper.IsSet("tts.rate") {
		cfg.Rate = viper.GetFloat64("tts.rate")
	}

	// Visual settings
	if viper.IsSet("tts.highlight_color") {
		cfg.HighlightColor = viper.GetString("tts.highlight_color")
	}

	cfg.Piper = loadPiperConfig()
	cfg.Mock = loadMockConfig()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid speech configuration: %w", err)
	}

	return cfg, nil
}

// loadPiperConfig loads Piper-specific configuration from Viper.
func loadPiperConfig() PiperConfig {
	cfg := DefaultPiperConfig()

	if viper.IsSet("tts.piper.binary") {
		cfg.Binary = viper.GetString("tts.piper.binary")
	}
	if viper.IsSet("tts.piper.model") {
		cfg.Model = viper.GetString("tts.piper.model")
	}
	if viper.IsSet("tts.piper.data_dir") {
		cfg.DataDir = viper.GetString("tts.piper.data_dir")
	}
	if viper.IsSet("tts.piper.sample_rate") {
		cfg.SampleRate = viper.GetInt("tts.piper.sample_rate")
	}
	if viper.IsSet("tts.piper.volume") {
		cfg.Volume = viper.GetFloat64("tts.piper.volume")
	}
	if viper.IsSet("tts.piper.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.piper.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	if viper.IsSet("tts.piper.cache_dir") {
		cfg.CacheDir = viper.GetString("tts.piper.cache_dir")
	}
	if viper.IsSet("tts.piper.cache_max_size") {
		cfg.CacheMaxSize = viper.GetInt("tts.piper.cache_max_size")
	}
	if viper.IsSet("tts.piper.compression_level") {
		cfg.CompressionLevel = viper.GetInt("tts.piper.compression_level")
	}

	return cfg
}

// loadMockConfig loads mock engine configuration from Viper.
func loadMockConfig() MockConfig {
	cfg := DefaultMockConfig()

	if viper.IsSet("tts.mock.words_per_minute") {
		cfg.WordsPerMinute = viper.GetInt("tts.mock.words_per_minute")
	}
	if viper.IsSet("tts.mock.init_delay") {
		if d, err := time.ParseDuration(viper.GetString("tts.mock.init_delay")); err == nil {
			cfg.InitDelay = d
		}
	}
	if viper.IsSet("tts.mock.init_failure") {
		cfg.InitFailure = viper.GetString("tts.mock.init_failure")
	}

	return cfg
}

// SetDefaults sets default values in Viper for speech configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("tts.engine", defaults.Engine)
	viper.SetDefault("tts.pitch", defaults.Pitch)
	viper.SetDefault("tts.rate", defaults.Rate)
	viper.SetDefault("tts.highlight_color", defaults.HighlightColor)

	// Piper defaults
	viper.SetDefault("tts.piper.binary", defaults.Piper.Binary)
	viper.SetDefault("tts.piper.model", defaults.Piper.Model)
	viper.SetDefault("tts.piper.sample_rate", defaults.Piper.SampleRate)
	viper.SetDefault("tts.piper.volume", defaults.Piper.Volume)
	viper.SetDefault("tts.piper.timeout", defaults.Piper.Timeout.String())
	viper.SetDefault("tts.piper.cache_max_size", defaults.Piper.CacheMaxSize)
	viper.SetDefault("tts.piper.compression_level", defaults.Piper.CompressionLevel)

	// Mock defaults
	viper.SetDefault("tts.mock.words_per_minute", defaults.Mock.WordsPerMinute)
	viper.SetDefault("tts.mock.init_delay", defaults.Mock.InitDelay.String())
}
