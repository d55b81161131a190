// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging generates responsive image variants using libvips.
// Every raster under the site's asset directories is re-encoded at a
// ladder of target widths, in WebP plus the image's native fallback
// format. Widths larger than the source are skipped to avoid upscaling.
package imaging

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/davidbyttow/govips/v2/vips"
)

// DefaultWidths is the standard breakpoint ladder for the public site.
// The original width is always generated in addition, so art direction
// can pick the full-size rendition.
var DefaultWidths = []int{480, 768, 1200}

// Fallback is the raster format used for browsers without WebP support.
type Fallback string

const (
	FallbackJPEG Fallback = "jpeg"
	FallbackPNG  Fallback = "png"
)

const (
	webpQuality = 80
	jpegQuality = 82
)

// Variant holds one generated rendition ready to write out.
type Variant struct {
	Width  int
	Format string // "webp", "jpeg", or "png"
	Data   []byte
}

// Startup initialises the libvips library. Call once at application start.
// concurrency controls the number of libvips worker threads (0 = auto).
func Startup(concurrency int) {
	cfg := &vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024, // 50 MB
	}
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(cfg)
	slog.Info("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources. Call at application shutdown.
func Shutdown() {
	vips.Shutdown()
}

// Ladder filters the requested widths to those not exceeding origWidth
// and appends origWidth itself, deduplicated and ascending.
func Ladder(origWidth int, widths []int) []int {
	if len(widths) == 0 {
		widths = DefaultWidths
	}

	seen := make(map[int]bool)
	var out []int
	for _, w := range widths {
		if w > 0 && w <= origWidth && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	if origWidth > 0 && !seen[origWidth] {
		out = append(out, origWidth)
	}
	sort.Ints(out)
	return out
}

// GenerateVariants renders the width ladder in WebP plus the fallback
// format. A failed width/format is logged and skipped; it never aborts
// the remaining variants — one bad rendition must not block the rest.
func GenerateVariants(original []byte, fallback Fallback, widths []int) ([]Variant, error) {
	// Probe original dimensions without keeping the decode around.
	probe, err := vips.NewImageFromBuffer(original)
	if err != nil {
		return nil, fmt.Errorf("imaging: probe failed: %w", err)
	}
	origWidth := probe.Width()
	probe.Close()

	var results []Variant

	for _, width := range Ladder(origWidth, widths) {
		for _, format := range []string{"webp", string(fallback)} {
			v, err := renderVariant(original, width, format)
			if err != nil {
				slog.Warn("image variant failed",
					"width", width,
					"format", format,
					"error", err,
				)
				continue
			}
			results = append(results, *v)
		}
	}

	return results, nil
}

// renderVariant resizes to the target width and encodes in one format.
func renderVariant(original []byte, width int, format string) (*Variant, error) {
	img, err := vips.NewThumbnailFromBuffer(original, width, 0, vips.InterestingNone)
	if err != nil {
		return nil, fmt.Errorf("thumbnail %dpx: %w", width, err)
	}
	defer img.Close()

	// Auto-rotate based on EXIF orientation, then strip metadata.
	if err := img.AutoRotate(); err != nil {
		return nil, fmt.Errorf("autorotate %dpx: %w", width, err)
	}

	var buf []byte
	switch format {
	case "webp":
		params := vips.NewWebpExportParams()
		params.Quality = webpQuality
		params.Lossless = false
		params.StripMetadata = true
		buf, _, err = img.ExportWebp(params)
	case "png":
		params := vips.NewPngExportParams()
		params.StripMetadata = true
		buf, _, err = img.ExportPng(params)
	default:
		params := vips.NewJpegExportParams()
		params.Quality = jpegQuality
		params.StripMetadata = true
		buf, _, err = img.ExportJpeg(params)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s %dpx: %w", format, width, err)
	}

	return &Variant{Width: width, Format: format, Data: buf}, nil
}
