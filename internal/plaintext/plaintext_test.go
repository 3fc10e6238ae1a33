package plaintext

import "testing"

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "heading and paragraph",
			markdown: "# Title\n\nSome *emphasized* and **strong** text.",
			want:     "Title. Some emphasized and strong text.",
		},
		{
			name:     "soft line breaks",
			markdown: "first line\nsecond line",
			want:     "first line second line.",
		},
		{
			name:     "lists",
			markdown: "- one\n- two\n- three!",
			want:     "one. two. three!",
		},
		{
			name:     "code blocks are skipped",
			markdown: "Before.\n\n```go\nfmt.Println(1)\n```\n\n    indented code\n\nAfter.",
			want:     "Before. After.",
		},
		{
			name:     "inline code is read",
			markdown: "Run `make test` now",
			want:     "Run make test now.",
		},
		{
			name:     "links keep text only",
			markdown: "See [the docs](https://example.com) or <https://go.dev>.",
			want:     "See the docs or https://go.dev.",
		},
		{
			name:     "images read alt text",
			markdown: "![a red fox](fox.png)",
			want:     "Image: a red fox.",
		},
		{
			name:     "blockquote",
			markdown: "> Be brave",
			want:     "Quote: Be brave.",
		},
		{
			name:     "html is dropped",
			markdown: "<div>hidden</div>\n\nshown",
			want:     "shown.",
		},
		{
			name:     "thematic break",
			markdown: "one\n\n---\n\ntwo",
			want:     "one. two.",
		},
		{
			name:     "non ascii",
			markdown: "## Café\n\nnaïve résumé",
			want:     "Café. naïve résumé.",
		},
		{
			name:     "empty",
			markdown: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Convert(tt.markdown); got != tt.want {
				t.Errorf("Convert(%q) = %q, want %q", tt.markdown, got, tt.want)
			}
		})
	}
}

func TestConvertWithCodeBlocks(t *testing.T) {
	c := New(WithCodeBlocks(true))

	got := c.Convert("Intro\n\n```\nx := 1\n```")
	want := "Intro. Code block omitted."
	if got != want {
		t.Errorf("Convert = %q, want %q", got, want)
	}
}
