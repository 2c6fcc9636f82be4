package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Hello World 2026", want: "hello-world-2026"},
		{name: "punctuation", input: "Hello, World! How's it going?", want: "hello-world-hows-it-going"},
		{name: "curly apostrophe", input: "Don’t Panic", want: "dont-panic"},
		{name: "ampersand and at sign", input: "Rock & Roll @ the Arena", want: "rock-roll-the-arena"},
		{name: "version dots", input: "Version 2.0.1", want: "version-201"},
		{name: "accents folded", input: "Crème Brûlée à la carte", want: "creme-brulee-a-la-carte"},
		{name: "umlauts folded", input: "Über die Brücke", want: "uber-die-brucke"},
		{name: "tabs and newlines", input: "hello\tworld\nagain", want: "hello-world-again"},
		{name: "surrounding hyphens", input: "  --hello -- world--  ", want: "hello-world"},
		{name: "date stays", input: "2026-02-25", want: "2026-02-25"},
		{name: "parentheses", input: "Deploy Go on Kubernetes (2026 Edition)", want: "deploy-go-on-kubernetes-2026-edition"},
		{name: "colon", input: "Go: The Complete Guide", want: "go-the-complete-guide"},
		{name: "empty", input: "", want: ""},
		{name: "only symbols", input: "!@#$%^&*()", want: ""},
		{name: "single letter", input: "A", want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateIdempotent(t *testing.T) {
	for _, s := range []string{"hello-world", "go-1-25-release", "a"} {
		if got := Generate(s); got != s {
			t.Errorf("Generate(%q) = %q, want idempotent result", s, got)
		}
	}
}

func TestGenerateMaxLength(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := Generate(long)
	if len(got) > MaxLength {
		t.Fatalf("len = %d, want <= %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") || !strings.HasSuffix(got, "word") {
		t.Errorf("slug should end on a whole word, got %q", got[len(got)-10:])
	}
}
