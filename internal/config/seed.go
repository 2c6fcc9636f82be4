// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSeedFile reads generation settings from a YAML document such as:
//
//	auto_publish: draft
//	post_frequency: daily
//	post_length: long
//	default_categories: [Go, Backend]
//
// Scalars and lists are flattened to the stored string form. The result is
// validated; an empty path returns an empty map.
func LoadSeedFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML settings document.
func ParseSeed(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, strings.TrimSpace(fmt.Sprint(item)))
			}
			out[k] = strings.Join(parts, ",")
		default:
			out[k] = fmt.Sprint(val)
		}
	}

	if errs := Validate(out); len(errs) > 0 {
		for _, k := range Keys {
			if msg, ok := errs[k]; ok {
				return nil, fmt.Errorf("settings file: %s: %s", k, msg)
			}
		}
		return nil, fmt.Errorf("settings file: %d unknown keys", len(errs))
	}
	return out, nil
}
