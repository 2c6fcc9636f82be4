package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"autoblog/internal/models"
)

type fakeUploader struct {
	keys  []string
	types []string
	fail  bool
}

func (f *fakeUploader) Bucket() string { return "autoblog-public" }

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.fail {
		return errors.New("bucket unavailable")
	}
	data, _ := io.ReadAll(body)
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	f.keys = append(f.keys, key)
	f.types = append(f.types, contentType)
	return nil
}

func (f *fakeUploader) FileURL(key string) string { return "https://cdn.test/" + key }

type fakeCreator struct {
	got *models.Media
	err error
}

func (f *fakeCreator) Create(_ context.Context, m *models.Media) (*models.Media, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *m
	cp.ID = uuid.New()
	f.got = &cp
	return &cp, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func imageServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImportWithoutStorage(t *testing.T) {
	creator := &fakeCreator{}
	imp := NewImporter(creator, nil)

	m, err := imp.Import(context.Background(), "https://images.unsplash.com/photo-123?w=1080", "a cup of coffee")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if m.IsStored() {
		t.Error("expected hotlinked media")
	}
	if m.SourceURL != "https://images.unsplash.com/photo-123?w=1080" {
		t.Errorf("SourceURL = %q", m.SourceURL)
	}
	if m.OriginalName != "photo-123" {
		t.Errorf("OriginalName = %q", m.OriginalName)
	}
	if m.AltText == nil || *m.AltText != "a cup of coffee" {
		t.Errorf("AltText = %v", m.AltText)
	}
	if imp.URL(m) != m.SourceURL {
		t.Errorf("URL = %q, want source url", imp.URL(m))
	}
}

func TestImportUploadsOriginalAndThumbnail(t *testing.T) {
	srv := imageServer(t, http.StatusOK, pngBytes(t, 800, 600))
	up := &fakeUploader{}
	creator := &fakeCreator{}
	imp := NewImporter(creator, up)

	m, err := imp.Import(context.Background(), srv.URL+"/photo.png", "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(up.keys) != 2 {
		t.Fatalf("uploads = %v, want original + thumbnail", up.keys)
	}
	if up.types[0] != "image/png" || up.types[1] != "image/jpeg" {
		t.Errorf("content types = %v", up.types)
	}
	if !strings.HasSuffix(up.keys[1], "_thumb.jpg") {
		t.Errorf("thumbnail key = %q", up.keys[1])
	}
	if !m.IsStored() || *m.S3Key != up.keys[0] {
		t.Errorf("S3Key = %v, want %q", m.S3Key, up.keys[0])
	}
	if m.ThumbS3Key == nil || *m.ThumbS3Key != up.keys[1] {
		t.Errorf("ThumbS3Key = %v", m.ThumbS3Key)
	}
	if m.Bucket == nil || *m.Bucket != "autoblog-public" {
		t.Errorf("Bucket = %v", m.Bucket)
	}
	if m.ContentType != "image/png" {
		t.Errorf("ContentType = %q", m.ContentType)
	}
	if got := imp.URL(m); got != "https://cdn.test/"+up.keys[0] {
		t.Errorf("URL = %q", got)
	}
}

func TestImportSmallImageSkipsThumbnail(t *testing.T) {
	srv := imageServer(t, http.StatusOK, pngBytes(t, 200, 100))
	up := &fakeUploader{}
	imp := NewImporter(&fakeCreator{}, up)

	m, err := imp.Import(context.Background(), srv.URL+"/small.png", "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(up.keys) != 1 {
		t.Errorf("uploads = %v, want original only", up.keys)
	}
	if m.ThumbS3Key != nil {
		t.Errorf("ThumbS3Key = %v, want nil", *m.ThumbS3Key)
	}
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    []byte
		upFail  bool
		dbError error
	}{
		{name: "download status", status: http.StatusNotFound, body: []byte("nope")},
		{name: "not an image", status: http.StatusOK, body: []byte("<html>hello</html>")},
		{name: "upload failure", status: http.StatusOK, body: pngBytes(t, 10, 10), upFail: true},
		{name: "db failure", status: http.StatusOK, body: pngBytes(t, 10, 10), dbError: errors.New("db down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := imageServer(t, tt.status, tt.body)
			imp := NewImporter(&fakeCreator{err: tt.dbError}, &fakeUploader{fail: tt.upFail})
			if _, err := imp.Import(context.Background(), srv.URL+"/x", ""); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestImportEmptyURL(t *testing.T) {
	imp := NewImporter(&fakeCreator{}, nil)
	if _, err := imp.Import(context.Background(), "", ""); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestThumbnail(t *testing.T) {
	data, err := Thumbnail(bytes.NewReader(pngBytes(t, 1000, 500)), 400)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Errorf("thumbnail size = %dx%d, want 400x200", b.Dx(), b.Dy())
	}

	if _, err := Thumbnail(bytes.NewReader([]byte("junk")), 400); err == nil {
		t.Error("expected error for undecodable input")
	}
}

func TestOriginalName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://images.unsplash.com/photo-1?ixid=abc", "photo-1"},
		{"https://example.com/a/b/pic.jpg#frag", "pic.jpg"},
		{"https://example.com", "photo"},
		{"https://example.com/", "photo"},
		{"not a url", "photo"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := originalName(tt.in); got != tt.want {
				t.Errorf("originalName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
