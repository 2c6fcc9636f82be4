// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seo scores generated posts and renders the meta tags stored
// alongside them.
package seo

import (
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"autoblog/internal/article"
	"autoblog/internal/models"
)

// Meta keys written on documents when SEO is enabled.
const (
	MetaDescriptionKey = "_meta_description"
	FocusKeywordKey    = "_focus_keyword"
	HeadTagsKey        = "_seo_head"
)

// sentenceEnd splits text into sentences on terminal punctuation.
var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// Analyze computes content statistics for an HTML body. Keyword density is
// the percentage of occurrences of keyword per word; readability is a
// Flesch reading-ease approximation from average sentence length.
func Analyze(body, keyword string) models.SEOAnalysis {
	var a models.SEOAnalysis

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return a
	}
	doc.Find("script, style").Remove()

	a.ParagraphCount = doc.Find("p").Length()
	a.HeadingCount = doc.Find("h2, h3").Length()
	a.ImageCount = doc.Find("img").Length()
	a.LinkCount = doc.Find("a").Length()

	text := strings.Join(strings.Fields(doc.Text()), " ")
	a.WordCount = article.CountWords(text)
	if a.WordCount == 0 {
		return a
	}

	if kw := strings.ToLower(strings.TrimSpace(keyword)); kw != "" {
		n := strings.Count(strings.ToLower(text), kw)
		a.KeywordDensity = round2(float64(n) / float64(a.WordCount) * 100)
	}

	sentences := 0
	for _, s := range sentenceEnd.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences > 0 {
		avg := float64(a.WordCount) / float64(sentences)
		a.ReadabilityScore = round2(206.835 - 1.015*avg)
	}
	return a
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
