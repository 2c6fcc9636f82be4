// Package sanitize cleans generated HTML before it is stored and extracts
// plain text for word counts and excerpts.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockedElements are removed together with their contents.
const blockedElements = "script, style, iframe, frame, frameset, object, embed, applet, " +
	"form, input, button, textarea, select, option, link, meta, base, noscript, svg, math"

var (
	whitespace = regexp.MustCompile(`\s+`)
	// unsafeURL matches URL schemes that can execute code.
	unsafeURL = regexp.MustCompile(`(?i)^\s*(javascript|vbscript|data)\s*:`)
)

// urlAttrs hold links that must not carry script URLs.
var urlAttrs = map[string]bool{"href": true, "src": true, "action": true, "formaction": true, "xlink:href": true}

// PlainText returns the visible text of an HTML fragment with whitespace
// collapsed to single spaces.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(whitespace.ReplaceAllString(fragment, " "))
	}
	doc.Find("script, style").Remove()
	return strings.TrimSpace(whitespace.ReplaceAllString(doc.Text(), " "))
}

// HasMarkup reports whether s contains HTML tags, i.e. whether stripping
// the tags changes it.
func HasMarkup(s string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return false
	}
	return doc.Find("body *").Length() > 0 || doc.Find("head *").Length() > 0
}

// HTML removes active content from an HTML fragment: scripting and embedding
// elements, event handler attributes, inline styles and script URLs.
// Ordinary post markup is kept as-is.
func HTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	doc.Find(blockedElements).Remove()

	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		var drop []string
		for _, a := range node.Attr {
			key := strings.ToLower(a.Key)
			switch {
			case strings.HasPrefix(key, "on"), key == "style", key == "srcdoc":
				drop = append(drop, a.Key)
			case urlAttrs[key] && unsafeURL.MatchString(a.Val):
				drop = append(drop, a.Key)
			}
		}
		for _, k := range drop {
			s.RemoveAttr(k)
		}
		if goquery.NodeName(s) == "a" {
			if target, ok := s.Attr("target"); ok && target == "_blank" {
				s.SetAttr("rel", "noopener noreferrer")
			}
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
