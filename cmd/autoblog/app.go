// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"autoblog/internal/ai"
	"autoblog/internal/analytics"
	"autoblog/internal/assembler"
	"autoblog/internal/cache"
	"autoblog/internal/config"
	"autoblog/internal/database"
	"autoblog/internal/generator"
	"autoblog/internal/handlers"
	"autoblog/internal/media"
	"autoblog/internal/scheduler"
	"autoblog/internal/settings"
	"autoblog/internal/storage"
	"autoblog/internal/store"
	"autoblog/internal/trends"
	"autoblog/internal/unsplash"
)

// leaseKey names the Valkey lease shared by every AutoBlog process.
const leaseKey = "autoblog:generation-lock"

// app holds the wired components.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	valkey *redis.Client

	text      *ai.Client
	images    *unsplash.Client
	settings  *settings.Service
	assembler *assembler.Assembler
	generator *generator.Generator
	analytics *analytics.Service
	reports   *cache.ReportCache

	content *store.ContentStore
	records *store.GenerationStore
}

// newApp connects to the services and builds the pipeline. Valkey and S3
// are optional.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, db: db}

	if err := database.Migrate(db); err != nil {
		a.close()
		return nil, err
	}
	seed, err := config.LoadSeedFile(cfg.SettingsFile)
	if err != nil {
		a.close()
		return nil, err
	}
	if err := database.Seed(db, cfg.AuthorEmail, seed); err != nil {
		a.close()
		return nil, err
	}

	if vk, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword); err != nil {
		slog.Warn("valkey unavailable, using in-process run lock and no report cache", "error", err)
	} else {
		a.valkey = vk
		a.reports = cache.NewReportCache(vk, cache.DefaultReportTTL)
	}

	s3, err := storage.New(storage.Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3BucketPublic,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	var uploader media.Uploader
	if s3 != nil {
		uploader = s3
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", s3.Bucket())
	} else {
		slog.Warn("s3 storage not configured, featured images are hotlinked")
	}

	userStore := store.NewUserStore(db)
	a.content = store.NewContentStore(db)
	a.records = store.NewGenerationStore(db)
	categories := store.NewCategoryStore(db)
	stats := store.NewStatsStore(db)

	author, err := userStore.FindByEmail(ctx, cfg.AuthorEmail)
	if err != nil {
		a.close()
		return nil, err
	}
	if author == nil {
		a.close()
		return nil, fmt.Errorf("author %s not found", cfg.AuthorEmail)
	}

	a.settings = settings.New(store.NewSiteSettingStore(db))
	g, err := a.settings.Load(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	a.text = ai.New(ai.Config{Model: cfg.DeepSeekModel, BaseURL: cfg.DeepSeekBaseURL})
	a.images = unsplash.New(unsplash.Config{BaseURL: cfg.UnsplashBaseURL})
	a.assembler = assembler.New(a.content, categories, store.NewTagStore(db), author.ID, assembler.OptionsFrom(g))

	deps := generator.Deps{
		Text:       a.text,
		Images:     a.images,
		Importer:   media.NewImporter(store.NewMediaStore(db), uploader),
		Assembler:  a.assembler,
		Tracker:    a.records,
		Counter:    stats,
		Posts:      a.content,
		Categories: categories,
	}
	if len(cfg.TopicFeeds) > 0 {
		deps.Trends = trends.New(cfg.TopicFeeds)
	}
	var reportCache analytics.Cache
	if a.valkey != nil {
		deps.Invalidator = a.reports
		deps.Locker = cache.NewLease(a.valkey, leaseKey, cache.DefaultLeaseTTL)
		reportCache = a.reports
	}
	a.generator = generator.New(deps, generator.SettingsFrom(g, cfg.SiteURL))
	a.analytics = analytics.NewService(a.records, stats, reportCache)

	a.apply(g)
	a.settings.OnChange(func(_, updated config.Generation) { a.apply(updated) })

	slog.Info("pipeline ready",
		"author", author.Email,
		"text_configured", a.text.Configured(),
		"frequency", g.PostFrequency,
		"auto_publish", g.AutoPublish,
	)
	return a, nil
}

// apply pushes the generation settings into the components. Keys saved
// through the API take precedence over the environment.
func (a *app) apply(g config.Generation) {
	a.text.SetAPIKey(cmp.Or(g.TextAPIKey, a.cfg.DeepSeekAPIKey))
	a.images.Configure(cmp.Or(g.ImageAPIKey, a.cfg.UnsplashAccessKey), g.ImageOrientation, g.ImageResolution)
	a.generator.UpdateSettings(generator.SettingsFrom(g, a.cfg.SiteURL))
	a.assembler.SetOptions(assembler.OptionsFrom(g))
}

// api builds the HTTP handler group.
func (a *app) api(sched *scheduler.Scheduler) *handlers.API {
	deps := handlers.Deps{
		Generator: a.generator,
		Records:   a.records,
		Content:   a.content,
		Analytics: a.analytics,
		Images:    a.images,
		Settings:  a.settings,
		Schedule:  sched,
		TextPing:  a.text,
		ImagePing: a.images,
	}
	if a.reports != nil {
		deps.Invalidator = a.reports
	}
	return handlers.NewAPI(deps)
}

// close waits for pending image download pings and releases connections.
func (a *app) close() {
	if a.images != nil {
		a.images.Wait()
	}
	if a.valkey != nil {
		a.valkey.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
