// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package trends collects recent headlines from RSS/Atom feeds to give the
// topic suggestion prompt some sense of what is current.
package trends

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	// DefaultPerFeed is how many headlines are taken from each feed.
	DefaultPerFeed = 5

	// MaxHeadlines bounds the total returned across all feeds.
	MaxHeadlines = 15

	feedTimeout = 15 * time.Second
)

// Source reads headlines from a fixed list of feed URLs.
type Source struct {
	feeds   []string
	perFeed int
	parser  *gofeed.Parser
}

// New creates a Source for the given feed URLs.
func New(feeds []string) *Source {
	return &Source{
		feeds:   feeds,
		perFeed: DefaultPerFeed,
		parser:  gofeed.NewParser(),
	}
}

// Headlines returns deduplicated item titles, newest feed order preserved.
// Feeds that fail to load or parse are skipped.
func (s *Source) Headlines(ctx context.Context) []string {
	var out []string
	seen := make(map[string]bool)

	for _, url := range s.feeds {
		if len(out) >= MaxHeadlines {
			break
		}

		fctx, cancel := context.WithTimeout(ctx, feedTimeout)
		feed, err := s.parser.ParseURLWithContext(url, fctx)
		cancel()
		if err != nil {
			slog.Warn("trend feed unavailable", "url", url, "error", err)
			continue
		}

		taken := 0
		for _, item := range feed.Items {
			if taken >= s.perFeed || len(out) >= MaxHeadlines {
				break
			}
			title := strings.Join(strings.Fields(item.Title), " ")
			key := strings.ToLower(title)
			if title == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, title)
			taken++
		}
	}
	return out
}
