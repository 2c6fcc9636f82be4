package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"autoblog/internal/analytics"
)

// Analytics returns lifetime stats and the report for ?days (default 30).
func (a *API) Analytics(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	stats, err := a.deps.Analytics.Stats(r.Context())
	if err != nil {
		slog.Error("load stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	report, err := a.deps.Analytics.Analytics(r.Context(), days)
	if err != nil {
		slog.Error("load analytics failed", "days", days, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load analytics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats, "analytics": report})
}

// Export downloads the analytics as CSV (default) or JSON.
func (a *API) Export(w http.ResponseWriter, r *http.Request) {
	format := analytics.ParseFormat(r.URL.Query().Get("format"))

	var buf bytes.Buffer
	if err := a.deps.Analytics.Export(r.Context(), format, &buf); err != nil {
		slog.Error("export analytics failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export analytics")
		return
	}

	w.Header().Set("Content-Type", format.ContentType()+"; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(a.now())+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
