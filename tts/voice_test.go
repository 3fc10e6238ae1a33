package tts

import (
	"errors"
	"testing"

	"golang.org/x/text/language"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in      string
		want    language.Tag
		wantErr bool
	}{
		{"en-US", language.AmericanEnglish, false},
		{"de_DE.UTF-8", language.MustParse("de-DE"), false},
		{"fr_FR@euro", language.MustParse("fr-FR"), false},
		{"pt-BR", language.BrazilianPortuguese, false},
		{"ja", language.Japanese, false},
		{"C", language.Und, true},
		{"POSIX", language.Und, true},
		{"", language.Und, true},
		{"bogus!", language.Und, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLanguage(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLanguage(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLanguage(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSystemLanguage(t *testing.T) {
	tests := []struct {
		name                   string
		lcAll, lcMessages, lng string
		want                   language.Tag
	}{
		{"LC_ALL wins", "it_IT.UTF-8", "de_DE", "fr_FR", language.MustParse("it-IT")},
		{"LC_MESSAGES next", "", "de_DE", "fr_FR", language.MustParse("de-DE")},
		{"LANG last", "", "", "fr_FR.UTF-8", language.MustParse("fr-FR")},
		{"C locale falls back", "C", "", "", language.AmericanEnglish},
		{"nothing set", "", "", "", language.AmericanEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LC_ALL", tt.lcAll)
			t.Setenv("LC_MESSAGES", tt.lcMessages)
			t.Setenv("LANG", tt.lng)

			if got := SystemLanguage(); got != tt.want {
				t.Errorf("SystemLanguage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVoiceValidate(t *testing.T) {
	tests := []struct {
		name    string
		voice   Voice
		wantErr error
	}{
		{"default", DefaultVoice(), nil},
		{"upper bound", Voice{Pitch: 2, Rate: 2}, nil},
		{"zero pitch", Voice{Pitch: 0, Rate: 1}, ErrInvalidPitch},
		{"rate above max", Voice{Pitch: 1, Rate: 2.01}, ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.voice.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
