package ai

import (
	"regexp"
	"strings"
)

var (
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_-]*\\s*")
	closingFence = regexp.MustCompile("\\s*```$")
)

// StripFences removes a leading ```lang marker and a trailing ``` marker
// from a model response and trims surrounding whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = openingFence.ReplaceAllString(s, "")
	s = closingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
