package tts

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// DefaultPitchAndRate is the pitch and rate a new session speaks with.
const DefaultPitchAndRate = 0.8

// Voice holds the parameters applied when an utterance is issued.
type Voice struct {
	Pitch    float64
	Rate     float64
	Language language.Tag
}

// DefaultVoice returns the voice a new session starts with.
func DefaultVoice() Voice {
	return Voice{
		Pitch:    DefaultPitchAndRate,
		Rate:     DefaultPitchAndRate,
		Language: SystemLanguage(),
	}
}

// Validate checks pitch and rate are within (0, 2].
func (v Voice) Validate() error {
	if v.Pitch <= 0 || v.Pitch > 2 {
		return fmt.Errorf("%w, got %.2f", ErrInvalidPitch, v.Pitch)
	}
	if v.Rate <= 0 || v.Rate > 2 {
		return fmt.Errorf("%w, got %.2f", ErrInvalidRate, v.Rate)
	}
	return nil
}

// String implements fmt.Stringer.
func (v Voice) String() string {
	return fmt.Sprintf("%s pitch=%.2f rate=%.2f", v.Language, v.Pitch, v.Rate)
}

// SystemLanguage returns the language of the current locale, read from the
// POSIX locale variables. It falls back to American English.
func SystemLanguage() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if tag, ok := parseLocale(os.Getenv(key)); ok {
			return tag
		}
	}
	return language.AmericanEnglish
}

// ParseLanguage parses a BCP 47 tag or a POSIX locale such as "de_DE.UTF-8".
func ParseLanguage(s string) (language.Tag, error) {
	if tag, ok := parseLocale(s); ok {
		return tag, nil
	}
	return language.Und, fmt.Errorf("invalid language %q", s)
}

func parseLocale(s string) (language.Tag, bool) {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || s == "C" || s == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
