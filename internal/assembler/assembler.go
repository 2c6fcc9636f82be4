// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assembler turns a parsed article into a stored document: the body
// is rendered or sanitized, a unique slug is reserved, taxonomy is resolved
// and SEO metadata is attached.
package assembler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"autoblog/internal/config"
	"autoblog/internal/markdown"
	"autoblog/internal/models"
	"autoblog/internal/sanitize"
	"autoblog/internal/seo"
	"autoblog/internal/slug"
	"autoblog/internal/store"
)

// ErrIncompleteArticle is returned for articles without a title or body.
var ErrIncompleteArticle = errors.New("article is missing a title or content")

// PersistenceError reports that the content store rejected the document.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist post: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ImageHandle identifies an imported featured image.
type ImageHandle struct {
	MediaID uuid.UUID
	URL     string
}

// Options are the generation settings the assembler honours.
type Options struct {
	Policy            config.PublishPolicy
	SEOEnabled        bool
	DefaultCategories []string
}

// OptionsFrom extracts assembler options from generation settings.
func OptionsFrom(g config.Generation) Options {
	return Options{
		Policy:            g.AutoPublish,
		SEOEnabled:        g.SEOEnabled,
		DefaultCategories: g.DefaultCategories,
	}
}

// ContentStore is the document side of the content store.
type ContentStore interface {
	UniqueSlug(ctx context.Context, base string) (string, error)
	Create(ctx context.Context, c *models.Content) (*models.Content, error)
	SetMeta(ctx context.Context, id uuid.UUID, key, value string) error
	SetFeaturedImage(ctx context.Context, id, mediaID uuid.UUID) error
}

// CategoryStore resolves and assigns categories.
type CategoryStore interface {
	FindByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, name, slug string) (*models.Category, error)
	Assign(ctx context.Context, contentID uuid.UUID, categoryIDs []uuid.UUID) error
}

// TagStore attaches tags, creating them on demand.
type TagStore interface {
	Assign(ctx context.Context, contentID uuid.UUID, names []string) error
}

// Assembler creates documents from articles.
type Assembler struct {
	content    ContentStore
	categories CategoryStore
	tags       TagStore
	authorID   uuid.UUID

	mu   sync.RWMutex
	opts Options
}

// New creates an Assembler that authors documents as authorID.
func New(content ContentStore, categories CategoryStore, tags TagStore, authorID uuid.UUID, opts Options) *Assembler {
	return &Assembler{
		content:    content,
		categories: categories,
		tags:       tags,
		authorID:   authorID,
		opts:       opts,
	}
}

// SetOptions replaces the generation options used by later runs.
func (a *Assembler) SetOptions(opts Options) {
	a.mu.Lock()
	a.opts = opts
	a.mu.Unlock()
}

// Options returns the current options.
func (a *Assembler) Options() Options {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.opts
}

// Assemble stores the article and returns the new document id.
func (a *Assembler) Assemble(ctx context.Context, art models.Article, img *ImageHandle) (uuid.UUID, error) {
	doc, err := a.AssembleDocument(ctx, art, img)
	if err != nil {
		return uuid.Nil, err
	}
	return doc.ID, nil
}

// AssembleDocument stores the article and returns the created document.
// Only the document insert is fatal; taxonomy, meta and featured image
// failures are logged because the document already exists.
func (a *Assembler) AssembleDocument(ctx context.Context, art models.Article, img *ImageHandle) (*models.Content, error) {
	if !art.Complete() {
		return nil, ErrIncompleteArticle
	}
	opts := a.Options()

	body, err := RenderBody(art.Content)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	title := sanitize.PlainText(art.Title)
	if title == "" {
		return nil, ErrIncompleteArticle
	}

	base := slug.Generate(title)
	if base == "" {
		base = "post"
	}
	postSlug, err := a.content.UniqueSlug(ctx, base)
	if err != nil {
		return nil, &PersistenceError{Op: "reserve slug", Err: err}
	}

	doc := &models.Content{
		Title:    title,
		Slug:     postSlug,
		Body:     body,
		Status:   statusFor(opts.Policy),
		AuthorID: a.authorID,
	}
	if excerpt := sanitize.PlainText(art.Excerpt); excerpt != "" {
		doc.Excerpt = &excerpt
	}
	if doc.Status == models.PostStatusPublish {
		now := time.Now()
		doc.PublishedAt = &now
	}

	created, err := a.content.Create(ctx, doc)
	if err != nil {
		return nil, &PersistenceError{Op: "create document", Err: err}
	}
	id := created.ID

	if err := a.content.SetMeta(ctx, id, store.GeneratedMetaKey, "1"); err != nil {
		slog.Warn("failed to mark generated document", "id", id, "error", err)
	}

	if img != nil && img.MediaID != uuid.Nil {
		if err := a.content.SetFeaturedImage(ctx, id, img.MediaID); err != nil {
			slog.Warn("failed to set featured image", "id", id, "media_id", img.MediaID, "error", err)
		} else {
			created.FeaturedImageID = &img.MediaID
		}
	}

	names := ResolveCategoryNames(art.Categories, opts.DefaultCategories)
	if err := a.assignCategories(ctx, id, names); err != nil {
		slog.Warn("failed to assign categories", "id", id, "error", err)
	}

	if len(art.Tags) > 0 {
		if err := a.tags.Assign(ctx, id, art.Tags); err != nil {
			slog.Warn("failed to assign tags", "id", id, "error", err)
		}
	}

	if opts.SEOEnabled {
		page := seo.Page{
			Title:           title,
			MetaDescription: art.MetaDescription,
			FocusKeyword:    art.FocusKeyword,
		}
		if img != nil {
			page.ImageURL = img.URL
		}
		meta := map[string]string{
			seo.MetaDescriptionKey: art.MetaDescription,
			seo.FocusKeywordKey:    art.FocusKeyword,
			seo.HeadTagsKey:        seo.MetaTags(page),
		}
		for k, v := range meta {
			if err := a.content.SetMeta(ctx, id, k, v); err != nil {
				slog.Warn("failed to store seo meta", "id", id, "key", k, "error", err)
			}
		}
	}

	return created, nil
}

// assignCategories looks categories up by exact name, creating missing ones.
func (a *Assembler) assignCategories(ctx context.Context, contentID uuid.UUID, names []string) error {
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		cat, err := a.categories.FindByName(ctx, name)
		if err != nil {
			return fmt.Errorf("find category %q: %w", name, err)
		}
		if cat == nil {
			cat, err = a.categories.Create(ctx, name, slug.Generate(name))
			if err != nil {
				return fmt.Errorf("create category %q: %w", name, err)
			}
		}
		ids = append(ids, cat.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return a.categories.Assign(ctx, contentID, ids)
}

// ResolveCategoryNames returns the categories to attach. When the article
// only carries the fallback category, the configured defaults replace it.
func ResolveCategoryNames(categories, defaults []string) []string {
	onlySentinel := len(categories) == 0 ||
		(len(categories) == 1 && strings.EqualFold(categories[0], models.UncategorizedName))
	if onlySentinel && len(defaults) > 0 {
		return dedupe(defaults)
	}
	if len(categories) == 0 {
		return []string{models.UncategorizedName}
	}
	return dedupe(categories)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// RenderBody unwraps JSON-encoded content, then converts Markdown to HTML
// when the text carries no markup, or sanitizes it otherwise.
func RenderBody(content string) (string, error) {
	content = UnwrapContent(content)
	if !sanitize.HasMarkup(content) {
		return markdown.ToHTML(content)
	}
	return sanitize.HTML(content), nil
}

// UnwrapContent returns the inner body when content is itself JSON: an
// object with a "content" field or a JSON string. Anything else is
// returned unchanged.
func UnwrapContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return content
	}

	switch trimmed[0] {
	case '{':
		var obj struct {
			Content *string `json:"content"`
		}
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil && obj.Content != nil {
			return *obj.Content
		}
	case '"':
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return s
		}
	}
	return content
}

func statusFor(p config.PublishPolicy) models.PostStatus {
	switch p {
	case config.PublishNow:
		return models.PostStatusPublish
	case config.PublishPending:
		return models.PostStatusPending
	default:
		return models.PostStatusDraft
	}
}
