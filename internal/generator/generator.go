// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generator runs the post generation pipeline: topic resolution,
// content generation, parsing, image acquisition, assembly, tracking and
// stats. One run is a straight sequence of steps; only failures before
// the document exists abort it.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"autoblog/internal/article"
	"autoblog/internal/assembler"
	"autoblog/internal/config"
	"autoblog/internal/models"
	"autoblog/internal/seo"
)

const (
	// BulkDelay separates consecutive runs of a bulk request.
	BulkDelay = 2 * time.Second

	// MaxBulkCount bounds a single bulk request.
	MaxBulkCount = 20

	// MaxTopicLen bounds a caller-supplied topic, in characters. The
	// tracking record stores up to 500.
	MaxTopicLen = 300

	// RecentPostsForLinks is how many published posts are offered as
	// internal link targets.
	RecentPostsForLinks = 10

	// CounterPostsGenerated is the stats counter bumped after each run.
	CounterPostsGenerated = "posts_generated"
)

// ErrBusy is reported when another run holds the single-run lock.
var ErrBusy = errors.New("generation already in progress")

// TextGenerator produces completions for prompts.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ImageFinder finds a photo URL for a keyword. "" means no image.
type ImageFinder interface {
	FetchImage(ctx context.Context, keyword string, params map[string]string) (string, error)
}

// ImageImporter copies a photo into the media library.
type ImageImporter interface {
	Import(ctx context.Context, sourceURL, altText string) (*models.Media, error)
	URL(m *models.Media) string
}

// Assembler stores a parsed article as a document.
type Assembler interface {
	AssembleDocument(ctx context.Context, a models.Article, img *assembler.ImageHandle) (*models.Content, error)
}

// Tracker persists generation records.
type Tracker interface {
	Insert(ctx context.Context, rec *models.GenerationRecord) (int64, error)
}

// Counter increments named stats counters.
type Counter interface {
	Increment(ctx context.Context, name string) error
}

// PostLister returns recently published documents.
type PostLister interface {
	RecentPublished(ctx context.Context, limit int) ([]models.Content, error)
}

// CategoryLister returns existing category names.
type CategoryLister interface {
	Names(ctx context.Context) ([]string, error)
}

// TrendSource returns current headlines.
type TrendSource interface {
	Headlines(ctx context.Context) []string
}

// Invalidator drops cached reports after a run.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Locker is a lease shared with other processes.
type Locker interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

// Deps wires the pipeline's collaborators. Text and Assembler are
// required; the rest may be nil and their steps are skipped.
type Deps struct {
	Text        TextGenerator
	Images      ImageFinder
	Importer    ImageImporter
	Assembler   Assembler
	Tracker     Tracker
	Counter     Counter
	Posts       PostLister
	Categories  CategoryLister
	Trends      TrendSource
	Invalidator Invalidator
	Locker      Locker
}

// Settings are the generation options a run reads. They are swapped as a
// whole when the stored settings change.
type Settings struct {
	PostLength        config.PostLength
	InternalLinks     int
	ExternalLinks     int
	DefaultCategories []string
	SiteURL           string
}

// SettingsFrom builds run settings from stored generation settings.
func SettingsFrom(g config.Generation, siteURL string) Settings {
	return Settings{
		PostLength:        g.PostLength,
		InternalLinks:     g.InternalLinks,
		ExternalLinks:     g.ExternalLinks,
		DefaultCategories: g.DefaultCategories,
		SiteURL:           strings.TrimRight(siteURL, "/"),
	}
}

// Result is the outcome of one run.
type Result struct {
	Success   bool              `json:"success"`
	ContentID uuid.UUID         `json:"content_id"`
	Topic     string            `json:"topic,omitempty"`
	Status    models.PostStatus `json:"status,omitempty"`
	ImageURL  string            `json:"image_url,omitempty"`
	ParseKind string            `json:"parse_kind,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Generator orchestrates generation runs.
type Generator struct {
	deps Deps

	mu       sync.RWMutex
	settings Settings

	run       sync.Mutex
	bulkDelay time.Duration
}

// New creates a Generator.
func New(deps Deps, settings Settings) *Generator {
	return &Generator{
		deps:      deps,
		settings:  settings,
		bulkDelay: BulkDelay,
	}
}

// UpdateSettings replaces the settings used by subsequent runs.
func (g *Generator) UpdateSettings(s Settings) {
	g.mu.Lock()
	g.settings = s
	g.mu.Unlock()
}

// Settings returns the current settings.
func (g *Generator) Settings() Settings {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.settings
}

// GeneratePost runs the pipeline once. An empty topic asks the text
// service for one. Failures are reported in the Result, never as a panic
// or error return.
func (g *Generator) GeneratePost(ctx context.Context, topic string) Result {
	release, err := g.acquire(ctx)
	if err != nil {
		return Result{Topic: strings.TrimSpace(topic), Error: err.Error()}
	}
	defer release()

	return g.generate(ctx, topic)
}

// BulkGenerate runs the pipeline count times in sequence, pausing between
// runs. topics[i] is used for run i when present. Per-run failures are
// collected; cancellation stops before the next run.
func (g *Generator) BulkGenerate(ctx context.Context, count int, topics []string) []Result {
	if count > MaxBulkCount {
		count = MaxBulkCount
	}
	results := make([]Result, 0, max(count, 0))
	for i := 0; i < count; i++ {
		if i > 0 && !g.pause(ctx) {
			break
		}
		var topic string
		if i < len(topics) {
			topic = topics[i]
		}
		results = append(results, g.GeneratePost(ctx, topic))
	}
	return results
}

func (g *Generator) pause(ctx context.Context) bool {
	if g.bulkDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(g.bulkDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// acquire takes the in-process lock and, when configured, the shared
// lease. A lease backend error falls back to the in-process lock alone.
func (g *Generator) acquire(ctx context.Context) (func(), error) {
	if !g.run.TryLock() {
		return nil, ErrBusy
	}
	if g.deps.Locker == nil {
		return g.run.Unlock, nil
	}

	leaseRelease, ok, err := g.deps.Locker.Acquire(ctx)
	if err != nil {
		slog.Warn("run lease unavailable, using local lock only", "error", err)
		return g.run.Unlock, nil
	}
	if !ok {
		g.run.Unlock()
		return nil, ErrBusy
	}
	return func() {
		leaseRelease()
		g.run.Unlock()
	}, nil
}

// generate is one pipeline run. The caller holds the run lock.
func (g *Generator) generate(ctx context.Context, topic string) Result {
	start := time.Now()
	settings := g.Settings()

	topic = strings.TrimSpace(topic)
	if topic == "" {
		suggested, err := g.suggestTopic(ctx)
		if err != nil {
			return g.fail(topic, "topic", err)
		}
		topic = suggested
	}

	prompt := ContentPrompt(topic, settings, g.linkTargets(ctx, settings))
	raw, err := g.deps.Text.Generate(ctx, prompt, settings.PostLength.MaxTokens())
	if err != nil {
		return g.fail(topic, "content", err)
	}

	parsed := article.Parse(raw, topic)
	if parsed.Kind == article.Degraded {
		slog.Warn("generated content was not valid JSON, using degraded article", "topic", topic)
	}

	img := g.acquireImage(ctx, topic)

	doc, err := g.deps.Assembler.AssembleDocument(ctx, parsed.Article, img)
	if err != nil {
		return g.fail(topic, "assembly", err)
	}

	res := Result{
		Success:   true,
		ContentID: doc.ID,
		Topic:     topic,
		Status:    doc.Status,
		ParseKind: parsed.Kind.String(),
	}
	if img != nil {
		res.ImageURL = img.URL
	}

	g.track(ctx, doc, parsed, res, settings, start)

	if g.deps.Counter != nil {
		if err := g.deps.Counter.Increment(ctx, CounterPostsGenerated); err != nil {
			slog.Error("failed to update stats counter", "error", err)
		}
	}
	if g.deps.Invalidator != nil {
		g.deps.Invalidator.Invalidate(ctx)
	}

	slog.Info("post generated",
		"content_id", doc.ID,
		"topic", topic,
		"status", doc.Status,
		"parse", res.ParseKind,
		"image", res.ImageURL != "",
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return res
}

func (g *Generator) fail(topic, step string, err error) Result {
	slog.Error("post generation failed", "step", step, "topic", topic, "error", err)
	return Result{Topic: topic, Error: err.Error()}
}

// suggestTopic asks the text service for a topic based on existing
// categories and current headlines.
func (g *Generator) suggestTopic(ctx context.Context) (string, error) {
	var categories []string
	if g.deps.Categories != nil {
		names, err := g.deps.Categories.Names(ctx)
		if err != nil {
			slog.Warn("failed to list categories for topic prompt", "error", err)
		}
		categories = names
	}
	var headlines []string
	if g.deps.Trends != nil {
		headlines = g.deps.Trends.Headlines(ctx)
	}

	raw, err := g.deps.Text.Generate(ctx, TopicPrompt(categories, headlines), TopicMaxTokens)
	if err != nil {
		return "", fmt.Errorf("suggest topic: %w", err)
	}
	topic := cleanTopic(raw)
	if topic == "" {
		return "", fmt.Errorf("suggest topic: empty suggestion")
	}
	return topic, nil
}

// linkTargets lists recent published posts for internal linking.
func (g *Generator) linkTargets(ctx context.Context, s Settings) []Link {
	if s.InternalLinks <= 0 || g.deps.Posts == nil {
		return nil
	}
	posts, err := g.deps.Posts.RecentPublished(ctx, RecentPostsForLinks)
	if err != nil {
		slog.Warn("failed to list recent posts for internal links", "error", err)
		return nil
	}
	links := make([]Link, 0, len(posts))
	for _, p := range posts {
		links = append(links, Link{Title: p.Title, URL: s.SiteURL + "/" + p.Slug})
	}
	return links
}

// acquireImage finds and imports a featured image. Any failure means the
// post goes out without one.
func (g *Generator) acquireImage(ctx context.Context, topic string) *assembler.ImageHandle {
	if g.deps.Images == nil || g.deps.Importer == nil {
		return nil
	}
	url, err := g.deps.Images.FetchImage(ctx, topic, nil)
	if err != nil {
		slog.Warn("image search failed, continuing without image", "topic", topic, "error", err)
		return nil
	}
	if url == "" {
		slog.Info("no image found", "topic", topic)
		return nil
	}
	m, err := g.deps.Importer.Import(ctx, url, topic)
	if err != nil {
		slog.Warn("image import failed, continuing without image", "url", url, "error", err)
		return nil
	}
	return &assembler.ImageHandle{MediaID: m.ID, URL: g.deps.Importer.URL(m)}
}

// track writes the generation record. Failures are logged only: the
// document exists and the run counts as successful.
func (g *Generator) track(ctx context.Context, doc *models.Content, parsed article.Result, res Result, s Settings, start time.Time) {
	if g.deps.Tracker == nil {
		return
	}
	analysis := seo.Analyze(doc.Body, parsed.Article.FocusKeyword)
	rec := &models.GenerationRecord{
		ContentID:   doc.ID,
		Topic:       res.Topic,
		Status:      doc.Status,
		PublishedAt: doc.PublishedAt,
		Metadata: models.RecordMetadata{
			Tags:         parsed.Article.Tags,
			Categories:   assembler.ResolveCategoryNames(parsed.Article.Categories, s.DefaultCategories),
			FocusKeyword: parsed.Article.FocusKeyword,
			WordCount:    analysis.WordCount,
			DurationMS:   time.Since(start).Milliseconds(),
			ParseKind:    res.ParseKind,
			SEO:          &analysis,
		},
	}
	if res.ImageURL != "" {
		rec.ImageURL = &res.ImageURL
	}
	if _, err := g.deps.Tracker.Insert(ctx, rec); err != nil {
		slog.Error("failed to save generation record", "content_id", doc.ID, "error", err)
	}
}
