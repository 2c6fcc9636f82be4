package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "headings get ids",
			in:       "## Getting Started\n\nText.",
			contains: []string{`<h2 id="getting-started">Getting Started</h2>`, "<p>Text.</p>"},
		},
		{
			name:     "emphasis and links",
			in:       "Read **this** and [Go](https://go.dev).",
			contains: []string{"<strong>this</strong>", `<a href="https://go.dev">Go</a>`},
		},
		{
			name:     "gfm table",
			in:       "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "raw html is not rendered",
			in:       "Hello <script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
		{
			name:     "fenced code is highlighted",
			in:       "```go\nfunc main() {}\n```",
			contains: []string{"<pre", "func"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.in)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("ToHTML(%q) = %q, missing %q", tt.in, got, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("ToHTML(%q) = %q, should not contain %q", tt.in, got, s)
				}
			}
		})
	}
}
