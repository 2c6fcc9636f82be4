// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package settings owns the active generation configuration. It loads the
// key/value rows from the site_settings table, validates operator updates
// and notifies the pipeline components when something changes.
package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"autoblog/internal/config"
	"autoblog/internal/models"
)

// Store persists settings rows.
type Store interface {
	All(ctx context.Context) (models.SiteSettings, error)
	SetMany(ctx context.Context, settings map[string]string) error
}

// ValidationError lists the rejected keys with a message for each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid settings: " + strings.Join(parts, "; ")
}

// Listener is called after a successful update with the previous and the
// new configuration.
type Listener func(old, updated config.Generation)

// Service caches the current configuration. Safe for concurrent use.
type Service struct {
	store Store

	mu        sync.RWMutex
	current   config.Generation
	listeners []Listener
}

// New creates a Service holding the defaults until Load is called.
func New(store Store) *Service {
	return &Service{store: store, current: config.DefaultGeneration()}
}

// Load reads the stored rows and replaces the cached configuration.
// Listeners are not called.
func (s *Service) Load(ctx context.Context) (config.Generation, error) {
	rows, err := s.store.All(ctx)
	if err != nil {
		return config.Generation{}, fmt.Errorf("load settings: %w", err)
	}
	g := config.GenerationFromMap(rows)

	s.mu.Lock()
	s.current = g
	s.mu.Unlock()
	return g, nil
}

// Get returns the cached configuration.
func (s *Service) Get() config.Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnChange registers fn to run after every successful Update.
func (s *Service) OnChange(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Update validates and stores the given keys, then notifies listeners.
// Secret keys submitted in their masked form are left unchanged.
func (s *Service) Update(ctx context.Context, updates map[string]string) (config.Generation, error) {
	s.mu.Lock()
	old := s.current
	updates = dropMaskedSecrets(old, updates)

	if errs := config.Validate(updates); len(errs) > 0 {
		s.mu.Unlock()
		return old, &ValidationError{Fields: errs}
	}
	updated, err := old.Merge(updates)
	if err != nil {
		s.mu.Unlock()
		return old, err
	}
	if len(updates) > 0 {
		if err := s.store.SetMany(ctx, updates); err != nil {
			s.mu.Unlock()
			return old, fmt.Errorf("save settings: %w", err)
		}
	}
	s.current = updated
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(old, updated)
	}
	return updated, nil
}

// Public returns the configuration in its stored form with API keys masked.
func Public(g config.Generation) map[string]string {
	m := g.ToMap()
	m[config.KeyTextAPIKey] = Mask(g.TextAPIKey)
	m[config.KeyImageAPIKey] = Mask(g.ImageAPIKey)
	return m
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}

func dropMaskedSecrets(g config.Generation, updates map[string]string) map[string]string {
	out := make(map[string]string, len(updates))
	for k, v := range updates {
		switch {
		case k == config.KeyTextAPIKey && g.TextAPIKey != "" && v == Mask(g.TextAPIKey):
		case k == config.KeyImageAPIKey && g.ImageAPIKey != "" && v == Mask(g.ImageAPIKey):
		default:
			out[k] = v
		}
	}
	return out
}
