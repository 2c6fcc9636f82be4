// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"autoblog/internal/ai"
	"autoblog/internal/settings"
	"autoblog/internal/unsplash"
)

// pingTimeout bounds a connection test.
const pingTimeout = 30 * time.Second

// Settings returns the generation settings with API keys masked.
func (a *API) Settings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings.Public(a.deps.Settings.Get())})
}

// UpdateSettings applies a partial settings object. Invalid keys are
// reported per field with 422.
func (a *API) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updates, err := settingValues(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := a.deps.Settings.Update(r.Context(), updates)
	if err != nil {
		var verr *settings.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "invalid settings",
				"fields": verr.Fields,
			})
			return
		}
		slog.Error("update settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	slog.Info("settings updated", "keys", len(updates))
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings.Public(g)})
}

// TestConnection checks the credentials of the "text" or "image" service.
func (a *API) TestConnection(w http.ResponseWriter, r *http.Request) {
	var p Pinger
	switch chi.URLParam(r, "service") {
	case "text":
		p = a.deps.TextPing
	case "image":
		p = a.deps.ImagePing
	default:
		writeError(w, http.StatusNotFound, "unknown service")
		return
	}
	if p == nil {
		writeError(w, http.StatusBadRequest, "service is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		if errors.Is(err, ai.ErrNotConfigured) || errors.Is(err, unsplash.ErrNotConfigured) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// SearchImages returns photos matching ?q for manual selection.
func (a *API) SearchImages(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	if len(q) > maxSearchLen {
		writeError(w, http.StatusBadRequest, "q is too long")
		return
	}
	if a.deps.Images == nil {
		writeJSON(w, http.StatusOK, map[string]any{"images": []unsplash.Photo{}})
		return
	}
	count := defaultImageNum
	if v, err := strconv.Atoi(r.URL.Query().Get("count")); err == nil && v > 0 {
		count = v
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": a.deps.Images.SearchImages(r.Context(), q, count)})
}
