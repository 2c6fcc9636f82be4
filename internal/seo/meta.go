package seo

import (
	"strings"

	"golang.org/x/net/html"
)

// Page carries what a post page exposes to search engines and social cards.
type Page struct {
	Title           string
	MetaDescription string
	FocusKeyword    string
	ImageURL        string
}

// MetaTags renders the description, keywords, Open Graph and Twitter card
// tags for a post, one per line. Empty fields produce no tag, except the
// title and card type which are always present.
func MetaTags(p Page) string {
	var b strings.Builder
	tag := func(attr, key, content string) {
		node := &html.Node{
			Type: html.ElementNode,
			Data: "meta",
			Attr: []html.Attribute{{Key: attr, Val: key}, {Key: "content", Val: content}},
		}
		_ = html.Render(&b, node)
		b.WriteByte('\n')
	}

	if p.MetaDescription != "" {
		tag("name", "description", p.MetaDescription)
	}
	if p.FocusKeyword != "" {
		tag("name", "keywords", p.FocusKeyword)
	}

	tag("property", "og:title", p.Title)
	if p.MetaDescription != "" {
		tag("property", "og:description", p.MetaDescription)
	}
	if p.ImageURL != "" {
		tag("property", "og:image", p.ImageURL)
	}

	tag("name", "twitter:card", "summary_large_image")
	tag("name", "twitter:title", p.Title)
	if p.MetaDescription != "" {
		tag("name", "twitter:description", p.MetaDescription)
	}
	if p.ImageURL != "" {
		tag("name", "twitter:image", p.ImageURL)
	}
	return b.String()
}
