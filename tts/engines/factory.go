// Package engines builds the speech engine selected in the configuration.
package engines

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/tts/engines/piper"
)

// Supported engine names.
const (
	Mock  = "mock"
	Piper = "piper"
)

// NewFactory returns a factory creating a fresh engine of the configured
// kind on every call.
func NewFactory(cfg tts.Config, logger *log.Logger) (tts.EngineFactory, error) {
	if logger == nil {
		logger = log.Default()
	}

	switch strings.ToLower(cfg.Engine) {
	case Mock:
		opts := []mock.Option{
			mock.WithWordsPerMinute(cfg.Mock.WordsPerMinute),
			mock.WithInitDelay(cfg.Mock.InitDelay),
			mock.WithLogger(logger.WithPrefix(Mock)),
		}
		if cfg.Mock.InitFailure != "" {
			code, ok := tts.ParseErrorCode(cfg.Mock.InitFailure)
			if !ok {
				return nil, fmt.Errorf("%w: unknown init failure %q", tts.ErrInvalidConfig, cfg.Mock.InitFailure)
			}
			opts = append(opts, mock.WithInitFailure(code))
		}
		return func() (tts.Engine, error) {
			return mock.New(opts...), nil
		}, nil

	case Piper:
		pcfg := cfg.Piper
		return func() (tts.Engine, error) {
			return piper.New(pcfg, piper.WithLogger(logger.WithPrefix(Piper))), nil
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown engine %q", tts.ErrInvalidConfig, cfg.Engine)
	}
}
