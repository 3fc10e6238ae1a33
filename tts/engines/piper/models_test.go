package piper

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
)

func TestModelLanguage(t *testing.T) {
	tests := []struct {
		name string
		want language.Tag
		ok   bool
	}{
		{"en_US-lessac-medium", language.AmericanEnglish, true},
		{"/voices/pt_BR-faber-medium.onnx", language.BrazilianPortuguese, true},
		{"voice", language.Und, false},
		{"1_2-bad", language.Und, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ModelLanguage(tt.name)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("ModelLanguage(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestListModels(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"en_US-lessac-medium.onnx", "de_DE-thorsten-low.onnx", "en_US-lessac-medium.onnx.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	models, err := ListModels(dir)
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("Expected 2 models, got %d", len(models))
	}
	if m := models[0]; m.Name != "de_DE-thorsten-low" || m.Speaker != "thorsten" || m.Quality != "low" || m.Language != language.MustParse("de-DE") {
		t.Errorf("Unexpected model %+v", m)
	}

	models, err = ListModels(filepath.Join(dir, "missing"))
	if err != nil || models != nil {
		t.Errorf("missing dir = %v, %v", models, err)
	}
}
