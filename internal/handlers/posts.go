package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"autoblog/internal/models"
	"autoblog/internal/store"
)

// Posts lists generation records, newest first.
func (a *API) Posts(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	records, total, err := a.deps.Records.List(r.Context(), (page-1)*perPage, perPage)
	if err != nil {
		slog.Error("list generation records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	if records == nil {
		records = []models.GenerationRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records":  records,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"pages":    pageCount(total, perPage),
	})
}

// Untracked lists generated documents that have no tracking record.
func (a *API) Untracked(w http.ResponseWriter, r *http.Request) {
	items, err := a.deps.Records.Untracked(r.Context(), untrackedLimit)
	if err != nil {
		slog.Error("list untracked documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list untracked posts")
		return
	}
	if items == nil {
		items = []models.UntrackedContent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": items})
}

// Publish moves a generated document and its record to the publish state.
func (a *API) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	now := a.now()
	if err := a.deps.Content.Publish(r.Context(), id, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		slog.Error("publish post failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to publish post")
		return
	}
	if err := a.deps.Records.UpdateStatus(r.Context(), id, models.PostStatusPublish, &now); err != nil {
		slog.Warn("update generation record failed", "id", id, "error", err)
	}
	a.invalidate(r.Context())

	slog.Info("post published", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"content_id":   id,
		"published_at": now,
	})
}

// Delete removes a generated document together with its record.
func (a *API) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	if err := a.deps.Content.Delete(r.Context(), id); err != nil {
		slog.Error("delete post failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}
	a.invalidate(r.Context())

	slog.Info("post deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "content_id": id})
}
