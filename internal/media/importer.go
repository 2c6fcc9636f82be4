// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media imports photos found by the image search into the media
// library. With object storage configured the original and a JPEG
// thumbnail are uploaded; without it only the source URL is recorded.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"autoblog/internal/models"
)

const (
	// maxDownloadSize caps the bytes read from the photo service (20 MB).
	maxDownloadSize = 20 << 20

	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps decoded size to prevent memory bombs.
	maxImagePixels = 100_000_000
)

// allowedTypes are the sniffed content types accepted for import.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploader writes objects to public storage.
type Uploader interface {
	Bucket() string
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}

// Creator persists media rows.
type Creator interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
}

// Importer downloads photos and records them in the media library.
type Importer struct {
	media    Creator
	uploader Uploader
	http     *http.Client
}

// NewImporter creates an importer. uploader may be nil, in which case
// imported images are hotlinked from their source URL.
func NewImporter(media Creator, uploader Uploader) *Importer {
	return &Importer{
		media:    media,
		uploader: uploader,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Import records the image at sourceURL as a media item and returns it.
func (i *Importer) Import(ctx context.Context, sourceURL, altText string) (*models.Media, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("import media: empty url")
	}

	m := &models.Media{
		OriginalName: originalName(sourceURL),
		ContentType:  "image/jpeg",
		SourceURL:    sourceURL,
	}
	if altText != "" {
		m.AltText = &altText
	}

	if i.uploader == nil {
		m.Filename = uuid.New().String() + ".jpg"
		return i.create(ctx, m)
	}

	data, err := i.download(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("import media: unsupported content type %q", contentType)
	}

	now := time.Now()
	fileID := uuid.New().String()
	key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)
	if err := i.uploader.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("import media: %w", err)
	}

	bucket := i.uploader.Bucket()
	m.Filename = fileID + ext
	m.ContentType = contentType
	m.SizeBytes = int64(len(data))
	m.Bucket = &bucket
	m.S3Key = &key

	// GIF is left alone to preserve animation.
	if contentType != "image/gif" {
		thumb, err := Thumbnail(bytes.NewReader(data), thumbMaxWidth)
		if err != nil {
			slog.Warn("thumbnail generation failed", "error", err, "key", key)
		} else if thumb != nil {
			tk := fmt.Sprintf("media/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
			if err := i.uploader.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
				slog.Warn("thumbnail upload failed", "error", err, "key", tk)
			} else {
				m.ThumbS3Key = &tk
			}
		}
	}

	return i.create(ctx, m)
}

// URL returns the address the media item is served from.
func (i *Importer) URL(m *models.Media) string {
	if m.IsStored() && i.uploader != nil {
		return i.uploader.FileURL(*m.S3Key)
	}
	return m.SourceURL
}

func (i *Importer) create(ctx context.Context, m *models.Media) (*models.Media, error) {
	created, err := i.media.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("import media: %w", err)
	}
	return created, nil
}

func (i *Importer) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("import media: build request: %w", err)
	}
	resp, err := i.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("import media: download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("import media: download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("import media: read body: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("import media: image exceeds %d bytes", maxDownloadSize)
	}
	return data, nil
}

// Thumbnail creates a JPEG thumbnail constrained to maxWidth while
// preserving aspect ratio. Returns nil if the image is already narrower.
func Thumbnail(src io.ReadSeeker, maxWidth int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}
	if cfg.Width <= maxWidth {
		return nil, nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	height := max(int(float64(bounds.Dy())*ratio), 1)

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// originalName derives a display file name from the photo URL path.
func originalName(rawURL string) string {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	_, rest, ok := strings.Cut(p, "://")
	if !ok {
		return "photo"
	}
	_, urlPath, _ := strings.Cut(rest, "/")
	if strings.Trim(urlPath, "/") == "" {
		return "photo"
	}
	return path.Base(urlPath)
}
