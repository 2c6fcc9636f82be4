package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"autoblog/internal/generator"
)

// Request limits.
const (
	maxBodyBytes    = 64 << 10
	maxTopicLen     = generator.MaxTopicLen
	defaultPerPage  = 20
	maxPerPage      = 100
	untrackedLimit  = 50
	maxSearchLen    = 100
	defaultImageNum = 10
)

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// validateTopic trims a topic and checks its length.
func validateTopic(topic string) (string, string) {
	topic = strings.TrimSpace(topic)
	if utf8.RuneCountInString(topic) > maxTopicLen {
		return "", fmt.Sprintf("topic is too long (max %d characters)", maxTopicLen)
	}
	return topic, ""
}

// pageParams reads page and per_page, falling back to defaults for
// missing or invalid values.
func pageParams(r *http.Request) (page, perPage int) {
	page, perPage = 1, defaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = min(v, maxPerPage)
	}
	return page, perPage
}

// pageCount is the number of pages needed for total items.
func pageCount(total, perPage int) int {
	return (total + perPage - 1) / perPage
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// settingValues flattens a JSON settings object into stored string values.
// Lists are joined with commas; other non-string values use their JSON text.
func settingValues(in map[string]json.RawMessage) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for k, raw := range in {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out[k] = s
			continue
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			out[k] = strings.Join(list, ",")
			continue
		}
		var scalar any
		if err := json.Unmarshal(raw, &scalar); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		switch scalar.(type) {
		case bool, float64:
			out[k] = strings.TrimSpace(string(raw))
		default:
			return nil, fmt.Errorf("%s: unsupported value", k)
		}
	}
	return out, nil
}
