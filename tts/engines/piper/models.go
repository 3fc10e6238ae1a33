package piper

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const modelExt = ".onnx"

// Model is a voice model found on disk.
type Model struct {
	Name     string // file name without extension, e.g. en_US-lessac-medium
	Language language.Tag
	Speaker  string
	Quality  string
	Path     string
	Size     int64
	ModTime  time.Time
}

// ModelLanguage extracts the language from a model name following the
// piper convention <locale>-<speaker>-<quality>.
func ModelLanguage(name string) (language.Tag, bool) {
	name = strings.TrimSuffix(filepath.Base(name), modelExt)
	locale, _, _ := strings.Cut(name, "-")
	if !strings.Contains(locale, "_") {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

// ListModels returns the models in dir sorted by name. A missing directory
// yields no models.
func ListModels(dir string) ([]Model, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var models []Model
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != modelExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), modelExt)
		m := Model{
			Name:    name,
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		m.Language, _ = ModelLanguage(name)
		if parts := strings.SplitN(name, "-", 3); len(parts) == 3 {
			m.Speaker, m.Quality = parts[1], parts[2]
		}
		models = append(models, m)
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}
