// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv sets every variable Load reads to empty so envOrDefault falls
// through to the defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_HOST", "APP_PORT", "APP_ENV", "SITE_URL",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
		"DEEPSEEK_API_KEY", "DEEPSEEK_MODEL", "DEEPSEEK_BASE_URL",
		"UNSPLASH_ACCESS_KEY", "UNSPLASH_BASE_URL",
		"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_BUCKET_PUBLIC", "S3_PUBLIC_URL",
		"API_TOKEN_HASH", "TOPIC_FEEDS", "SETTINGS_FILE", "AUTHOR_EMAIL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	check("Addr", cfg.Addr(), "0.0.0.0:8080")
	check("Env", cfg.Env, "development")
	check("SiteURL", cfg.SiteURL, "http://localhost:8080")
	check("DBUser", cfg.DBUser, "autoblog")
	check("DBName", cfg.DBName, "autoblog")
	check("DeepSeekModel", cfg.DeepSeekModel, "deepseek-chat")
	check("DeepSeekBaseURL", cfg.DeepSeekBaseURL, "https://api.deepseek.com")
	check("UnsplashBaseURL", cfg.UnsplashBaseURL, "https://api.unsplash.com")
	check("S3BucketPublic", cfg.S3BucketPublic, "autoblog-public")

	if cfg.TopicFeeds != nil {
		t.Errorf("TopicFeeds = %v, want nil", cfg.TopicFeeds)
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false, want true")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SITE_URL", "https://blog.example.com/")
	t.Setenv("TOPIC_FEEDS", " https://a.example/rss , ,https://b.example/atom")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SiteURL != "https://blog.example.com" {
		t.Errorf("SiteURL = %q, want trailing slash trimmed", cfg.SiteURL)
	}
	want := []string{"https://a.example/rss", "https://b.example/atom"}
	if !reflect.DeepEqual(cfg.TopicFeeds, want) {
		t.Errorf("TopicFeeds = %v, want %v", cfg.TopicFeeds, want)
	}
	if cfg.DeepSeekAPIKey != "sk-test" {
		t.Errorf("DeepSeekAPIKey = %q", cfg.DeepSeekAPIKey)
	}
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
		t.Fatalf("expected POSTGRES_PASSWORD error, got %v", err)
	}

	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "API_TOKEN_HASH") {
		t.Fatalf("expected API_TOKEN_HASH error, got %v", err)
	}

	t.Setenv("API_TOKEN_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secrets set: %v", err)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "blog"}
	want := "postgres://u:p@db:5433/blog?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestFrequencyInterval(t *testing.T) {
	tests := []struct {
		freq Frequency
		want time.Duration
	}{
		{FrequencyHourly, time.Hour},
		{FrequencyTwiceDaily, 12 * time.Hour},
		{FrequencyDaily, 24 * time.Hour},
		{FrequencyWeekly, 168 * time.Hour},
		{Frequency("monthly"), 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			if got := tt.freq.Interval(); got != tt.want {
				t.Errorf("Interval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostLengthMaxTokens(t *testing.T) {
	tests := map[PostLength]int{
		LengthShort:  800,
		LengthMedium: 1500,
		LengthLong:   2500,
		"":           1500,
	}
	for length, want := range tests {
		if got := length.MaxTokens(); got != want {
			t.Errorf("PostLength(%q).MaxTokens() = %d, want %d", length, got, want)
		}
	}
}

func TestGenerationFromMap(t *testing.T) {
	g := GenerationFromMap(map[string]string{
		KeyTextAPIKey:        "  sk-1 ",
		KeyAutoPublish:       "publish",
		KeyPostFrequency:     "hourly",
		KeySEOEnabled:        "false",
		KeyInternalLinks:     "5",
		KeyExternalLinks:     "3",
		KeyPostLength:        "bogus",
		KeyDefaultCategories: "Go, Backend,",
		KeyImageResolution:   "huge",
	})

	if g.TextAPIKey != "sk-1" {
		t.Errorf("TextAPIKey = %q", g.TextAPIKey)
	}
	if g.AutoPublish != PublishNow {
		t.Errorf("AutoPublish = %q", g.AutoPublish)
	}
	if g.PostFrequency != FrequencyHourly {
		t.Errorf("PostFrequency = %q", g.PostFrequency)
	}
	if g.SEOEnabled {
		t.Error("SEOEnabled = true, want false")
	}
	if g.InternalLinks != 5 {
		t.Errorf("InternalLinks = %d", g.InternalLinks)
	}
	if g.ExternalLinks != 3 {
		t.Errorf("ExternalLinks = %d", g.ExternalLinks)
	}
	if g.PostLength != LengthMedium {
		t.Errorf("PostLength = %q, want default medium for invalid value", g.PostLength)
	}
	if !reflect.DeepEqual(g.DefaultCategories, []string{"Go", "Backend"}) {
		t.Errorf("DefaultCategories = %v", g.DefaultCategories)
	}
	if g.ImageResolution != "regular" {
		t.Errorf("ImageResolution = %q, want default regular", g.ImageResolution)
	}
}

func TestGenerationMapRoundTrip(t *testing.T) {
	g := DefaultGeneration()
	g.DefaultCategories = []string{"Go", "Cloud"}
	g.AutoPublish = PublishPending

	if got := GenerationFromMap(g.ToMap()); !reflect.DeepEqual(got, g) {
		t.Errorf("round trip = %+v, want %+v", got, g)
	}
}

func TestValidate(t *testing.T) {
	errs := Validate(map[string]string{
		KeyAutoPublish:   "later",
		KeyPostFrequency: "daily",
		KeyExternalLinks: "11",
		"color":          "blue",
	})

	for _, key := range []string{KeyAutoPublish, KeyExternalLinks, "color"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("expected error for %q", key)
		}
	}
	if _, ok := errs[KeyPostFrequency]; ok {
		t.Error("daily should be a valid frequency")
	}
}

func TestValidateLinkCounts(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"0", true},
		{"5", true},
		{"10", true},
		{"11", false},
		{"-1", false},
		{"true", false},
	}
	for _, tt := range tests {
		for _, key := range []string{KeyInternalLinks, KeyExternalLinks} {
			t.Run(key+"="+tt.value, func(t *testing.T) {
				_, failed := Validate(map[string]string{key: tt.value})[key]
				if failed == tt.ok {
					t.Errorf("Validate(%s=%q) ok = %v, want %v", key, tt.value, !failed, tt.ok)
				}
			})
		}
	}
}

func TestMerge(t *testing.T) {
	g := DefaultGeneration()

	updated, err := g.Merge(map[string]string{KeyPostFrequency: "weekly"})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if updated.PostFrequency != FrequencyWeekly {
		t.Errorf("PostFrequency = %q, want weekly", updated.PostFrequency)
	}
	if updated.PostLength != g.PostLength {
		t.Errorf("untouched PostLength changed to %q", updated.PostLength)
	}

	if _, err := g.Merge(map[string]string{KeyPostLength: "epic"}); err == nil {
		t.Error("expected error for invalid post_length")
	}
}

func TestParseSeed(t *testing.T) {
	doc := []byte(`
auto_publish: pending
post_frequency: twicedaily
seo_enabled: false
external_links: 4
default_categories: [Go, Databases]
`)
	got, err := ParseSeed(doc)
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	want := map[string]string{
		KeyAutoPublish:       "pending",
		KeyPostFrequency:     "twicedaily",
		KeySEOEnabled:        "false",
		KeyExternalLinks:     "4",
		KeyDefaultCategories: "Go,Databases",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSeed = %v, want %v", got, want)
	}
}

func TestParseSeed_Invalid(t *testing.T) {
	if _, err := ParseSeed([]byte("post_frequency: monthly\n")); err == nil {
		t.Error("expected validation error")
	}
	if _, err := ParseSeed([]byte("not: [valid")); err == nil {
		t.Error("expected YAML error")
	}
}

func TestLoadSeedFile(t *testing.T) {
	if m, err := LoadSeedFile(""); err != nil || len(m) != 0 {
		t.Fatalf("LoadSeedFile(\"\") = %v, %v", m, err)
	}

	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("post_length: short\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	if m[KeyPostLength] != "short" {
		t.Errorf("post_length = %q", m[KeyPostLength])
	}

	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
