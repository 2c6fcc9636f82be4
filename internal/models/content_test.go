package models

import "testing"

// TestContentIsPublished verifies that IsPublished returns true only for
// the "publish" status.
func TestContentIsPublished(t *testing.T) {
	tests := []struct {
		name   string
		status PostStatus
		want   bool
	}{
		{name: "publish", status: PostStatusPublish, want: true},
		{name: "draft", status: PostStatusDraft, want: false},
		{name: "pending", status: PostStatusPending, want: false},
		{name: "future", status: PostStatusFuture, want: false},
		{name: "empty status", status: PostStatus(""), want: false},
		{name: "uppercase PUBLISH", status: PostStatus("PUBLISH"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Content{Status: tt.status}
			if got := c.IsPublished(); got != tt.want {
				t.Errorf("Content{Status: %q}.IsPublished() = %v, want %v",
					tt.status, got, tt.want)
			}
		})
	}
}

func TestPostStatusValid(t *testing.T) {
	tests := []struct {
		status PostStatus
		want   bool
	}{
		{PostStatusDraft, true},
		{PostStatusPending, true},
		{PostStatusPublish, true},
		{PostStatusFuture, true},
		{"published", false},
		{"archived", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("PostStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
