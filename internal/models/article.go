// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Article is the structured result of a generation request. It only lives
// between parsing and assembly and is never stored as-is.
type Article struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	MetaDescription string   `json:"meta_description"`
	Tags            []string `json:"tags"`
	Categories      []string `json:"categories"`
	FocusKeyword    string   `json:"focus_keyword"`
}

// Complete reports whether the article carries both a title and a body.
// Incomplete articles must never reach the content store.
func (a Article) Complete() bool {
	return nonBlank(a.Title) && nonBlank(a.Content)
}

func nonBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return true
	}
	return false
}
