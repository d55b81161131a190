// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"ganbara/internal/imaging"
)

// ManifestName is the responsive-image manifest filename. The front end
// loads it to build srcset attributes without probing for variants.
const ManifestName = "image-manifest.json"

// ManifestEntry describes the variants available for one source image.
type ManifestEntry struct {
	Widths      []int  `json:"widths"`
	SourceWidth int    `json:"sourceWidth"`
	Fallback    string `json:"fallback"`
	HasWebp     bool   `json:"hasWebp"`
}

// Manifest maps slash-separated source paths (relative to the site root)
// to their generated variants.
type Manifest map[string]ManifestEntry

// fallbackFor maps a source extension to its no-WebP encode format.
// Unknown extensions return empty, meaning the file is not a raster we
// generate variants for (SVG and such are mirrored untouched).
func fallbackFor(ext string) imaging.Fallback {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".webp":
		return imaging.FallbackJPEG
	case ".png":
		return imaging.FallbackPNG
	default:
		return ""
	}
}

// variantExt is the file extension for an encoded variant format.
func variantExt(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

// generateImages walks the mirrored asset directories and renders the
// responsive ladder for every raster. Variants are written next to the
// mirrored copy in the bundle as <base>-<width>.<ext>. Failures are
// per-image warnings; the walk always completes.
func (p *Pipeline) generateImages(report *Report) Manifest {
	manifest := Manifest{}

	for _, dir := range p.assetDirs {
		root := filepath.Join(p.SiteDir, dir)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}

			fallback := fallbackFor(filepath.Ext(path))
			if fallback == "" {
				return nil
			}

			rel, err := filepath.Rel(p.SiteDir, path)
			if err != nil {
				return err
			}

			entry, count, perr := p.processImage(path, rel, fallback)
			if perr != nil {
				slog.Warn("image variants skipped", "image", rel, "error", perr)
				report.Warnings++
				return nil
			}

			manifest[filepath.ToSlash(rel)] = entry
			report.ImagesProcessed++
			report.VariantsGenerated += count
			return nil
		})
		if err != nil {
			slog.Warn("image walk aborted", "dir", dir, "error", err)
			report.Warnings++
		}
	}

	return manifest
}

// probeWidth reads just the image header and returns the pixel width.
// Decoding the header in pure Go filters out corrupt or mislabeled
// files cheaply, before libvips is handed the full image.
func probeWidth(data []byte) (int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode header: %w", err)
	}
	return cfg.Width, nil
}

// processImage renders and writes all variants for one source raster.
func (p *Pipeline) processImage(path, rel string, fallback imaging.Fallback) (ManifestEntry, int, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return ManifestEntry{}, 0, err
	}

	sourceWidth, err := probeWidth(original)
	if err != nil {
		return ManifestEntry{}, 0, err
	}

	variants, err := imaging.GenerateVariants(original, fallback, p.widths)
	if err != nil {
		return ManifestEntry{}, 0, err
	}
	if len(variants) == 0 {
		return ManifestEntry{}, 0, fmt.Errorf("no variants produced")
	}

	destDir := filepath.Join(p.PublicDir, filepath.Dir(rel))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return ManifestEntry{}, 0, err
	}

	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	entry := ManifestEntry{
		SourceWidth: sourceWidth,
		Fallback:    variantExt(string(fallback)),
	}
	seen := make(map[int]bool)
	written := 0

	for _, v := range variants {
		name := fmt.Sprintf("%s-%d.%s", base, v.Width, variantExt(v.Format))
		if err := os.WriteFile(filepath.Join(destDir, name), v.Data, 0o644); err != nil {
			slog.Warn("variant write failed", "image", rel, "variant", name, "error", err)
			continue
		}
		written++
		if v.Format == "webp" {
			entry.HasWebp = true
		}
		if !seen[v.Width] {
			seen[v.Width] = true
			entry.Widths = append(entry.Widths, v.Width)
		}
	}

	if written == 0 {
		return ManifestEntry{}, 0, fmt.Errorf("all variant writes failed")
	}
	return entry, written, nil
}

// writeManifest persists the manifest into the bundle and back into the
// site tree, so local development sees the same srcset data as the
// published site.
func (p *Pipeline) writeManifest(manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("assets: encode manifest: %w", err)
	}
	data = append(data, '\n')

	for _, dir := range []string{p.PublicDir, p.SiteDir} {
		if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644); err != nil {
			return fmt.Errorf("assets: write manifest: %w", err)
		}
	}
	return nil
}
