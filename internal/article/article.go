// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package article turns raw model output into a structured Article. Parsing
// never fails: output that cannot be decoded, or that lacks a title or body,
// is turned into a degraded article built around the topic.
package article

import (
	"bytes"
	"encoding/json"
	"strings"

	"autoblog/internal/models"
	"autoblog/internal/sanitize"
)

// Word and character bounds for derived fields.
const (
	ExcerptWords       = 55
	MetaWords          = 25
	MetaDescriptionMax = 160
)

// Kind tells callers how an article was obtained.
type Kind int

const (
	// WellFormed articles were decoded from the model's JSON object.
	WellFormed Kind = iota
	// Degraded articles were synthesized from the raw text and the topic.
	Degraded
)

func (k Kind) String() string {
	if k == Degraded {
		return "degraded"
	}
	return "well_formed"
}

// Result is the outcome of Parse.
type Result struct {
	Kind    Kind
	Article models.Article
	Raw     string
}

// payload mirrors the JSON object the model is asked to return.
type payload struct {
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Excerpt         string     `json:"excerpt"`
	MetaDescription string     `json:"meta_description"`
	Tags            stringList `json:"tags"`
	Categories      stringList `json:"categories"`
	FocusKeyword    string     `json:"focus_keyword"`
}

// Parse decodes raw into an Article. Prose around the JSON object is
// ignored. Missing optional fields are derived; a missing title or body
// degrades the whole result.
func Parse(raw, topic string) Result {
	topic = strings.TrimSpace(topic)

	obj, ok := outermostObject(raw)
	if !ok {
		return degrade(raw, topic, "")
	}

	var p payload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return degrade(raw, topic, "")
	}

	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	if p.Title == "" || p.Content == "" {
		return degrade(raw, topic, p.Content)
	}

	a := models.Article{
		Title:           p.Title,
		Content:         p.Content,
		Excerpt:         strings.TrimSpace(p.Excerpt),
		MetaDescription: TruncateChars(p.MetaDescription, MetaDescriptionMax),
		Tags:            clean(p.Tags),
		Categories:      clean(p.Categories),
		FocusKeyword:    strings.TrimSpace(p.FocusKeyword),
	}
	if a.Excerpt == "" {
		a.Excerpt = TrimWords(sanitize.PlainText(a.Content), ExcerptWords)
	}
	if a.MetaDescription == "" {
		a.MetaDescription = TruncateChars(sanitize.PlainText(a.Excerpt), MetaDescriptionMax)
	}
	if len(a.Tags) == 0 {
		a.Tags = []string{topic}
	}
	if len(a.Categories) == 0 {
		a.Categories = []string{models.UncategorizedName}
	}
	if a.FocusKeyword == "" {
		a.FocusKeyword = topic
	}

	return Result{Kind: WellFormed, Article: a, Raw: raw}
}

// degrade builds the fallback article. body replaces raw as content when
// the decoded object carried one.
func degrade(raw, topic, body string) Result {
	content := strings.TrimSpace(body)
	if content == "" {
		content = strings.TrimSpace(raw)
	}
	text := sanitize.PlainText(content)

	return Result{
		Kind: Degraded,
		Raw:  raw,
		Article: models.Article{
			Title:           topic,
			Content:         content,
			Excerpt:         TrimWords(text, ExcerptWords),
			MetaDescription: TrimWords(text, MetaWords),
			Tags:            []string{topic},
			Categories:      []string{models.UncategorizedName},
			FocusKeyword:    topic,
		},
	}
}

// outermostObject returns the text between the first '{' and the last '}'.
func outermostObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// clean trims entries and drops blanks and exact duplicates, keeping order.
func clean(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// stringList accepts either a JSON array of strings or a single
// comma-separated string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = strings.Split(s, ",")
		return nil
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}
