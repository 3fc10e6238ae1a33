// Package plaintext flattens markdown into text suitable for speaking.
package plaintext

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const codeBlockPlaceholder = "Code block omitted."

// Converter turns markdown into speakable plain text.
type Converter struct {
	md             goldmark.Markdown
	skipCodeBlocks bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithCodeBlocks makes code blocks announce themselves instead of vanishing.
func WithCodeBlocks(include bool) Option {
	return func(c *Converter) {
		c.skipCodeBlocks = !include
	}
}

// New returns a Converter that understands GitHub flavored markdown.
func New(opts ...Option) *Converter {
	c := &Converter{
		md:             goldmark.New(goldmark.WithExtensions(extension.GFM)),
		skipCodeBlocks: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert flattens markdown. Block elements end with sentence punctuation so
// the synthesizer pauses between them.
func (c *Converter) Convert(markdown string) string {
	reader := text.NewReader([]byte(markdown))
	doc := c.md.Parser().Parse(reader)

	var buf bytes.Buffer
	c.walk(doc, reader.Source(), &buf)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// Convert flattens markdown with the default Converter.
func Convert(markdown string) string {
	return New().Convert(markdown)
}

func (c *Converter) walk(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		if !c.skipCodeBlocks {
			buf.WriteString(codeBlockPlaceholder + " ")
		}
		return

	case *ast.HTMLBlock, *ast.RawHTML:
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
		return

	case *ast.String:
		buf.Write(n.Value)
		return

	case *ast.CodeSpan:
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			if t, ok := ch.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return

	case *ast.Image:
		// Alt text is read, the URL never is.
		alt := strings.TrimSpace(string(nodeText(n, source)))
		if alt != "" {
			buf.WriteString("Image: " + alt)
			endSentence(buf)
		}
		return

	case *ast.AutoLink:
		buf.Write(n.Label(source))
		return

	case *ast.Heading, *ast.Paragraph, *ast.ListItem:
		c.walkChildren(n, source, buf)
		endSentence(buf)
		return

	case *ast.Blockquote:
		buf.WriteString("Quote: ")
		c.walkChildren(n, source, buf)
		return

	case *ast.ThematicBreak:
		endSentence(buf)
		return
	}

	c.walkChildren(node, source, buf)
}

func (c *Converter) walkChildren(node ast.Node, source []byte, buf *bytes.Buffer) {
	for ch := node.FirstChild(); ch != nil; ch = ch.NextSibling() {
		c.walk(ch, source, buf)
	}
}

// endSentence terminates the text written so far with a period unless it
// already ends in sentence punctuation.
func endSentence(buf *bytes.Buffer) {
	trimmed := bytes.TrimRight(buf.Bytes(), " ")
	if len(trimmed) == 0 {
		return
	}
	buf.Truncate(len(trimmed))
	if !bytes.ContainsAny(trimmed[len(trimmed)-1:], ".!?:;") {
		buf.WriteByte('.')
	}
	buf.WriteByte(' ')
}

func nodeText(n ast.Node, source []byte) []byte {
	var out []byte
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if t, ok := ch.(*ast.Text); ok {
			out = append(out, t.Segment.Value(source)...)
			continue
		}
		out = append(out, nodeText(ch, source)...)
	}
	return out
}
