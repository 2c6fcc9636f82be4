package models

import "testing"

func TestArticleComplete(t *testing.T) {
	tests := []struct {
		name    string
		article Article
		want    bool
	}{
		{name: "title and content", article: Article{Title: "Go", Content: "<p>body</p>"}, want: true},
		{name: "missing title", article: Article{Content: "<p>body</p>"}, want: false},
		{name: "missing content", article: Article{Title: "Go"}, want: false},
		{name: "whitespace title", article: Article{Title: " \t\n", Content: "body"}, want: false},
		{name: "whitespace content", article: Article{Title: "Go", Content: "\r\n  "}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.article.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerationRecordHasImage(t *testing.T) {
	url := "https://images.example.com/photo.jpg"
	empty := ""

	if (&GenerationRecord{}).HasImage() {
		t.Error("record without image URL should report no image")
	}
	if (&GenerationRecord{ImageURL: &empty}).HasImage() {
		t.Error("record with empty image URL should report no image")
	}
	if !(&GenerationRecord{ImageURL: &url}).HasImage() {
		t.Error("record with image URL should report an image")
	}
}
