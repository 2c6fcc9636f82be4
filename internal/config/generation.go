// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Setting keys persisted in the site_settings table.
const (
	KeyTextAPIKey        = "text_api_key"
	KeyImageAPIKey       = "image_api_key"
	KeyAutoPublish       = "auto_publish"
	KeyPostFrequency     = "post_frequency"
	KeySEOEnabled        = "seo_enabled"
	KeyInternalLinks     = "internal_links"
	KeyExternalLinks     = "external_links"
	KeyPostLength        = "post_length"
	KeyDefaultCategories = "default_categories"
	KeyImageOrientation  = "image_orientation"
	KeyImageResolution   = "image_resolution"
)

// Keys lists every generation setting key in display order.
var Keys = []string{
	KeyTextAPIKey, KeyImageAPIKey, KeyAutoPublish, KeyPostFrequency,
	KeySEOEnabled, KeyInternalLinks, KeyExternalLinks, KeyPostLength,
	KeyDefaultCategories, KeyImageOrientation, KeyImageResolution,
}

// PublishPolicy decides the status assigned to newly assembled posts.
type PublishPolicy string

const (
	PublishDraft   PublishPolicy = "draft"
	PublishNow     PublishPolicy = "publish"
	PublishPending PublishPolicy = "pending"
)

// Frequency is how often the scheduler triggers a generation run.
type Frequency string

const (
	FrequencyHourly     Frequency = "hourly"
	FrequencyTwiceDaily Frequency = "twicedaily"
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
)

// Interval returns the wall-clock period for the frequency. Unknown values
// fall back to daily.
func (f Frequency) Interval() time.Duration {
	switch f {
	case FrequencyHourly:
		return time.Hour
	case FrequencyTwiceDaily:
		return 12 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// PostLength selects the token budget of a generation request.
type PostLength string

const (
	LengthShort  PostLength = "short"
	LengthMedium PostLength = "medium"
	LengthLong   PostLength = "long"
)

// MaxTokens maps the length tier to a completion budget.
func (l PostLength) MaxTokens() int {
	switch l {
	case LengthShort:
		return 800
	case LengthLong:
		return 2500
	default:
		return 1500
	}
}

// Generation is the single active configuration of the pipeline. It is
// stored as key/value rows and passed explicitly to the components.
type Generation struct {
	TextAPIKey        string
	ImageAPIKey       string
	AutoPublish       PublishPolicy
	PostFrequency     Frequency
	SEOEnabled        bool
	InternalLinks     int
	ExternalLinks     int
	PostLength        PostLength
	DefaultCategories []string
	ImageOrientation  string
	ImageResolution   string
}

// DefaultGeneration returns the settings used before anything is saved.
func DefaultGeneration() Generation {
	return Generation{
		AutoPublish:      PublishDraft,
		PostFrequency:    FrequencyDaily,
		SEOEnabled:       true,
		InternalLinks:    3,
		ExternalLinks:    2,
		PostLength:       LengthMedium,
		ImageOrientation: "landscape",
		ImageResolution:  "regular",
	}
}

// GenerationFromMap builds settings from stored key/value pairs. Missing or
// unparsable values keep their defaults.
func GenerationFromMap(m map[string]string) Generation {
	g := DefaultGeneration()
	if v, ok := m[KeyTextAPIKey]; ok {
		g.TextAPIKey = strings.TrimSpace(v)
	}
	if v, ok := m[KeyImageAPIKey]; ok {
		g.ImageAPIKey = strings.TrimSpace(v)
	}
	if v := PublishPolicy(m[KeyAutoPublish]); v.valid() {
		g.AutoPublish = v
	}
	if v := Frequency(m[KeyPostFrequency]); v.valid() {
		g.PostFrequency = v
	}
	if v, err := strconv.ParseBool(m[KeySEOEnabled]); err == nil {
		g.SEOEnabled = v
	}
	if v, err := strconv.Atoi(m[KeyInternalLinks]); err == nil && v >= 0 {
		g.InternalLinks = v
	}
	if v, err := strconv.Atoi(m[KeyExternalLinks]); err == nil && v >= 0 {
		g.ExternalLinks = v
	}
	if v := PostLength(m[KeyPostLength]); v.valid() {
		g.PostLength = v
	}
	if v, ok := m[KeyDefaultCategories]; ok {
		g.DefaultCategories = splitList(v)
	}
	if v := m[KeyImageOrientation]; validOrientation(v) {
		g.ImageOrientation = v
	}
	if v := m[KeyImageResolution]; validResolution(v) {
		g.ImageResolution = v
	}
	return g
}

// ToMap flattens the settings into their stored representation.
func (g Generation) ToMap() map[string]string {
	return map[string]string{
		KeyTextAPIKey:        g.TextAPIKey,
		KeyImageAPIKey:       g.ImageAPIKey,
		KeyAutoPublish:       string(g.AutoPublish),
		KeyPostFrequency:     string(g.PostFrequency),
		KeySEOEnabled:        strconv.FormatBool(g.SEOEnabled),
		KeyInternalLinks:     strconv.Itoa(g.InternalLinks),
		KeyExternalLinks:     strconv.Itoa(g.ExternalLinks),
		KeyPostLength:        string(g.PostLength),
		KeyDefaultCategories: strings.Join(g.DefaultCategories, ","),
		KeyImageOrientation:  g.ImageOrientation,
		KeyImageResolution:   g.ImageResolution,
	}
}

// Validate checks a set of updates submitted by an operator. Only the keys
// present in the map are checked.
func Validate(updates map[string]string) map[string]string {
	errs := make(map[string]string)
	known := make(map[string]bool, len(Keys))
	for _, k := range Keys {
		known[k] = true
	}

	for k, v := range updates {
		if !known[k] {
			errs[k] = "unknown setting"
			continue
		}
		switch k {
		case KeyAutoPublish:
			if !PublishPolicy(v).valid() {
				errs[k] = "must be one of draft, publish, pending"
			}
		case KeyPostFrequency:
			if !Frequency(v).valid() {
				errs[k] = "must be one of hourly, twicedaily, daily, weekly"
			}
		case KeySEOEnabled:
			if _, err := strconv.ParseBool(v); err != nil {
				errs[k] = "must be true or false"
			}
		case KeyInternalLinks, KeyExternalLinks:
			if n, err := strconv.Atoi(v); err != nil || n < 0 || n > 10 {
				errs[k] = "must be a number between 0 and 10"
			}
		case KeyPostLength:
			if !PostLength(v).valid() {
				errs[k] = "must be one of short, medium, long"
			}
		case KeyImageOrientation:
			if !validOrientation(v) {
				errs[k] = "must be one of landscape, portrait, squarish"
			}
		case KeyImageResolution:
			if !validResolution(v) {
				errs[k] = "must be one of raw, full, regular, small, thumb"
			}
		}
	}
	return errs
}

// Merge returns the key/value form of g with updates applied on top.
func (g Generation) Merge(updates map[string]string) (Generation, error) {
	if errs := Validate(updates); len(errs) > 0 {
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return g, fmt.Errorf("invalid setting %s: %s", keys[0], errs[keys[0]])
	}
	m := g.ToMap()
	for k, v := range updates {
		m[k] = v
	}
	return GenerationFromMap(m), nil
}

func (p PublishPolicy) valid() bool {
	return p == PublishDraft || p == PublishNow || p == PublishPending
}

func (f Frequency) valid() bool {
	switch f {
	case FrequencyHourly, FrequencyTwiceDaily, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

func (l PostLength) valid() bool {
	return l == LengthShort || l == LengthMedium || l == LengthLong
}

func validOrientation(v string) bool {
	return v == "landscape" || v == "portrait" || v == "squarish"
}

func validResolution(v string) bool {
	switch v {
	case "raw", "full", "regular", "small", "thumb":
		return true
	}
	return false
}
