// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai talks to a DeepSeek-compatible chat completions API. It sends a
// single prompt with a fixed system message and returns the cleaned
// completion text. Requests are never retried.
package ai

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// SystemPrompt is sent with every request.
const SystemPrompt = "You are an expert content writer who creates engaging, SEO-optimized blog posts."

// Temperature is the sampling temperature of every request.
const Temperature = 0.7

// DefaultTimeout bounds a single completion. Long posts can take minutes.
const DefaultTimeout = 10 * time.Minute

// Config holds the credentials and endpoint of the text generation service.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client is a text generation client. All methods are safe for concurrent
// use; the API key can be replaced at runtime when settings change.
type Client struct {
	mu     sync.RWMutex
	config Config
	http   *http.Client
}

// New creates a client. An empty API key is allowed; Generate then fails
// with ErrNotConfigured until SetAPIKey is called.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: DefaultTimeout},
	}
}

// SetAPIKey replaces the credential used by subsequent requests.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.APIKey = key
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.APIKey != ""
}

// Generate sends prompt with a completion budget of maxTokens and returns
// the assistant text with any surrounding code fence removed.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	c.mu.RLock()
	cfg := c.config
	c.mu.RUnlock()

	if cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	body := chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: Temperature,
	}

	text, err := c.doChat(ctx, cfg, body)
	if err != nil {
		return "", err
	}
	return StripFences(text), nil
}

// Ping issues a minimal completion to verify the key and endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Generate(ctx, `Say "Hello"`, 10)
	return err
}
