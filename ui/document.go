package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgnsrekt/readaloud/internal/plaintext"
	"github.com/dgnsrekt/readaloud/internal/segment"
	"github.com/mitchellh/go-homedir"
)

// Document is the text being read aloud.
type Document struct {
	// Path is the source file, empty for stdin or the clipboard.
	Path string

	// Markdown sources are flattened before speaking.
	Markdown bool

	// Text is exactly what is spoken and displayed.
	Text string

	words []segment.Word
}

// NewDocument builds a document from raw source text.
func NewDocument(path, source string, markdown bool) Document {
	d := Document{Path: path, Markdown: markdown, Text: source}
	if markdown {
		d.Text = plaintext.Convert(source)
	}
	d.words = segment.Words(d.Text)
	return d
}

// LoadDocument reads path, expanding a leading ~.
func LoadDocument(path string, markdown bool) (Document, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Document{}, fmt.Errorf("unable to expand path %q: %w", path, err)
	}
	expanded, err = filepath.Abs(expanded)
	if err != nil {
		return Document{}, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return Document{}, fmt.Errorf("unable to read %s: %w", path, err)
	}
	return NewDocument(expanded, string(b), markdown), nil
}

// Name is shown in the status bar.
func (d Document) Name() string {
	if d.Path == "" {
		return "stdin"
	}
	return filepath.Base(d.Path)
}

// WordCount returns the number of spoken words.
func (d Document) WordCount() int {
	return len(d.words)
}

// WordAt returns the index of the word starting at or containing offset,
// or -1 when no word does.
func (d Document) WordAt(offset int) int {
	for i, w := range d.words {
		if offset < w.End {
			if offset >= w.Start {
				return i
			}
			return i - 1
		}
	}
	return -1
}
