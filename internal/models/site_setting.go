// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// SiteSettings holds the stored generation settings as raw key/value text,
// keyed by setting name (auto_publish, post_frequency, ...). Typed access
// goes through config.GenerationFromMap.
type SiteSettings map[string]string
