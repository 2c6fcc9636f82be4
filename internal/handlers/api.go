// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON handlers of the AutoBlog API: manual
// and bulk generation, the generated-post list, analytics, settings and
// the schedule. Handlers receive their dependencies through the API struct.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"autoblog/internal/analytics"
	"autoblog/internal/config"
	"autoblog/internal/generator"
	"autoblog/internal/models"
	"autoblog/internal/scheduler"
	"autoblog/internal/unsplash"
)

// Generator runs the pipeline.
type Generator interface {
	GeneratePost(ctx context.Context, topic string) generator.Result
	BulkGenerate(ctx context.Context, count int, topics []string) []generator.Result
}

// RecordStore is the tracking store.
type RecordStore interface {
	List(ctx context.Context, offset, limit int) ([]models.GenerationRecord, int, error)
	Untracked(ctx context.Context, limit int) ([]models.UntrackedContent, error)
	UpdateStatus(ctx context.Context, contentID uuid.UUID, status models.PostStatus, publishedAt *time.Time) error
}

// ContentStore changes stored documents.
type ContentStore interface {
	Publish(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AnalyticsService serves stats, reports and exports.
type AnalyticsService interface {
	Stats(ctx context.Context) (analytics.Stats, error)
	Analytics(ctx context.Context, days int) (analytics.Report, error)
	Export(ctx context.Context, f analytics.Format, w io.Writer) error
}

// ImageSearcher searches the photo service.
type ImageSearcher interface {
	SearchImages(ctx context.Context, keyword string, count int) []unsplash.Photo
}

// SettingsService reads and updates the generation settings.
type SettingsService interface {
	Get() config.Generation
	Update(ctx context.Context, updates map[string]string) (config.Generation, error)
}

// Schedule exposes the scheduler.
type Schedule interface {
	State() scheduler.State
	Trigger(ctx context.Context) generator.Result
}

// Pinger checks an upstream service connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Invalidator drops cached reports.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Deps are the collaborators of the API. Images, TextPing, ImagePing and
// Invalidator may be nil.
type Deps struct {
	Generator   Generator
	Records     RecordStore
	Content     ContentStore
	Analytics   AnalyticsService
	Images      ImageSearcher
	Settings    SettingsService
	Schedule    Schedule
	TextPing    Pinger
	ImagePing   Pinger
	Invalidator Invalidator
}

// API groups the HTTP handlers.
type API struct {
	deps Deps
	now  func() time.Time
}

// NewAPI creates the handler group.
func NewAPI(deps Deps) *API {
	return &API{deps: deps, now: time.Now}
}

// writeJSON sends data as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError sends {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// detach keeps a run going when the client disconnects; a half-finished
// run would leave a document without its record.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (a *API) invalidate(ctx context.Context) {
	if a.deps.Invalidator != nil {
		a.deps.Invalidator.Invalidate(ctx)
	}
}
