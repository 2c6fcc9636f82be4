// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package unsplash searches the Unsplash photo API for featured images.
package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FallbackKeyword is searched once when the requested keyword finds nothing.
const FallbackKeyword = "blog"

// MaxSearchResults caps SearchImages.
const MaxSearchResults = 30

// ErrNotConfigured is returned when no access key has been set.
var ErrNotConfigured = errors.New("unsplash API key is not configured")

// UpstreamError reports a transport failure, a non-2xx status or an
// errors payload from the photo API.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unsplash API error (status %d): %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("unsplash: %s: %v", e.Message, e.Err)
	}
	return "unsplash: " + e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Photo is one search result.
type Photo struct {
	ID               string `json:"id"`
	URL              string `json:"url"`
	Thumb            string `json:"thumb"`
	Description      string `json:"description"`
	Photographer     string `json:"photographer"`
	DownloadLocation string `json:"download_location"`
}

// Config holds the credentials and defaults of the client.
type Config struct {
	AccessKey   string
	BaseURL     string
	Orientation string // landscape, portrait or squarish
	Resolution  string // raw, full, regular, small or thumb
}

// Client is an Unsplash API client. Safe for concurrent use.
type Client struct {
	mu     sync.RWMutex
	config Config
	http   *http.Client
	pings  sync.WaitGroup
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.unsplash.com"
	}
	if cfg.Orientation == "" {
		cfg.Orientation = "landscape"
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Configure replaces the access key and image preferences.
func (c *Client) Configure(accessKey, orientation, resolution string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.AccessKey = accessKey
	if orientation != "" {
		c.config.Orientation = orientation
	}
	c.config.Resolution = resolution
}

func (c *Client) snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// FetchImage returns the URL of the best photo for keyword at the configured
// resolution. When nothing matches it searches FallbackKeyword once; if that
// is empty too it returns "" and a nil error. params override the default
// query parameters.
func (c *Client) FetchImage(ctx context.Context, keyword string, params map[string]string) (string, error) {
	cfg := c.snapshot()
	if cfg.AccessKey == "" {
		return "", ErrNotConfigured
	}

	q := url.Values{}
	q.Set("query", strings.TrimSpace(keyword))
	q.Set("orientation", cfg.Orientation)
	q.Set("per_page", "1")
	for k, v := range params {
		q.Set(k, v)
	}

	results, err := c.search(ctx, cfg, q)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		q.Set("query", FallbackKeyword)
		results, err = c.search(ctx, cfg, q)
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			return "", nil
		}
	}

	photo := results[0]
	if photo.Links.DownloadLocation != "" {
		c.trackDownload(cfg, photo.Links.DownloadLocation)
	}
	return photo.URLs.pick(cfg.Resolution), nil
}

// SearchImages returns up to count photos for keyword. Any failure yields an
// empty slice.
func (c *Client) SearchImages(ctx context.Context, keyword string, count int) []Photo {
	cfg := c.snapshot()
	if cfg.AccessKey == "" {
		return []Photo{}
	}
	if count <= 0 {
		count = 10
	}
	if count > MaxSearchResults {
		count = MaxSearchResults
	}

	q := url.Values{}
	q.Set("query", strings.TrimSpace(keyword))
	q.Set("per_page", strconv.Itoa(count))

	results, err := c.search(ctx, cfg, q)
	if err != nil {
		slog.Warn("unsplash search failed", "keyword", keyword, "error", err)
		return []Photo{}
	}

	photos := make([]Photo, 0, len(results))
	for _, r := range results {
		photos = append(photos, Photo{
			ID:               r.ID,
			URL:              r.URLs.Regular,
			Thumb:            r.URLs.Thumb,
			Description:      r.Description,
			Photographer:     r.User.Name,
			DownloadLocation: r.Links.DownloadLocation,
		})
	}
	return photos
}

// Ping runs a real search to verify the access key.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.FetchImage(ctx, "test", nil)
	return err
}

// Wait blocks until outstanding download pings have finished.
func (c *Client) Wait() {
	c.pings.Wait()
}

func (c *Client) search(ctx context.Context, cfg Config, q url.Values) ([]result, error) {
	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/search/photos?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("unsplash request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+cfg.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Message: "read body", Err: err}
	}

	var sr searchResponse
	decodeErr := json.Unmarshal(body, &sr)
	if decodeErr == nil && len(sr.Errors) > 0 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: strings.Join(sr.Errors, ", ")}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if decodeErr != nil {
		return nil, &UpstreamError{Message: "invalid response", Err: decodeErr}
	}
	return sr.Results, nil
}

// trackDownload notifies the API that a photo was used. Failures are logged
// and never reach the caller.
func (c *Client) trackDownload(cfg Config, location string) {
	c.pings.Add(1)
	go func() {
		defer c.pings.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			slog.Warn("unsplash download ping", "error", err)
			return
		}
		req.Header.Set("Authorization", "Client-ID "+cfg.AccessKey)

		resp, err := c.http.Do(req)
		if err != nil {
			slog.Warn("unsplash download ping", "error", err)
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
}

type searchResponse struct {
	Total   int      `json:"total"`
	Results []result `json:"results"`
	Errors  []string `json:"errors"`
}

type result struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	URLs        urls   `json:"urls"`
	Links       struct {
		DownloadLocation string `json:"download_location"`
	} `json:"links"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

type urls struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// pick returns the URL for a resolution tier; unknown tiers get regular.
func (u urls) pick(resolution string) string {
	switch resolution {
	case "raw":
		return u.Raw
	case "full":
		return u.Full
	case "small":
		return u.Small
	case "thumb":
		return u.Thumb
	default:
		return u.Regular
	}
}
