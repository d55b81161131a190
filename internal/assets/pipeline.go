// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assets builds the deployable bundle for the public site: it
// copies pass-through files, minifies scripts and stylesheets, mirrors
// the asset directories, and generates responsive image variants with a
// manifest. Individual file failures degrade to warnings — a single bad
// source must never block deployment of the rest of the site.
package assets

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// StaticFiles are copied into the bundle verbatim.
var StaticFiles = []string{
	"index.html",
	"menu-data.json",
	"hero-carousel.json",
}

// ScriptFiles are minified as JavaScript, falling back to a verbatim copy.
var ScriptFiles = []string{
	"script.js",
	"translations.js",
	"analytics.js",
}

// StyleFiles are minified as CSS, falling back to a verbatim copy.
var StyleFiles = []string{
	"styles.css",
}

// AssetDirs are mirrored recursively into the bundle; rasters underneath
// them get responsive variants.
var AssetDirs = []string{
	"assets",
	"images",
}

// FileSaving records the size effect of minifying one file. Informational
// only; the build never fails over a poor ratio.
type FileSaving struct {
	Path   string `json:"path"`
	Before int64  `json:"before"`
	After  int64  `json:"after"`
}

// Report summarizes one bundle build.
type Report struct {
	FilesCopied       int          `json:"filesCopied"`
	FilesMinified     int          `json:"filesMinified"`
	ImagesProcessed   int          `json:"imagesProcessed"`
	VariantsGenerated int          `json:"variantsGenerated"`
	Warnings          int          `json:"warnings"`
	Savings           []FileSaving `json:"savings"`
}

// Pipeline builds the deployable bundle from SiteDir into PublicDir.
type Pipeline struct {
	SiteDir   string
	PublicDir string

	staticFiles []string
	scriptFiles []string
	styleFiles  []string
	assetDirs   []string
	widths      []int
}

// New creates a Pipeline with the site's standard file lists.
func New(siteDir, publicDir string) *Pipeline {
	return &Pipeline{
		SiteDir:     siteDir,
		PublicDir:   publicDir,
		staticFiles: StaticFiles,
		scriptFiles: ScriptFiles,
		styleFiles:  StyleFiles,
		assetDirs:   AssetDirs,
	}
}

// Build runs all pipeline steps in order. Only structural failures
// (unwritable output directory, unwritable manifest) abort the build;
// per-file problems are logged as warnings and counted in the report.
func (p *Pipeline) Build() (*Report, error) {
	report := &Report{}

	if err := os.MkdirAll(p.PublicDir, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create output dir: %w", err)
	}

	// 1. Pass-through files. A missing source is a warning, not fatal:
	// menu-data.json may simply not have been exported yet on a fresh tree.
	for _, name := range p.staticFiles {
		if err := p.copyFile(name); err != nil {
			slog.Warn("static file skipped", "file", name, "error", err)
			report.Warnings++
			continue
		}
		report.FilesCopied++
	}

	// 2. Minification, with verbatim-copy fallback per file.
	p.minifyAll(report)

	// 3. Mirror asset directories.
	for _, dir := range p.assetDirs {
		copied, err := p.mirrorDir(dir)
		if err != nil {
			slog.Warn("asset directory skipped", "dir", dir, "error", err)
			report.Warnings++
			continue
		}
		report.FilesCopied += copied
	}

	// 4 + 5. Responsive variants and their manifest.
	manifest := p.generateImages(report)
	if err := p.writeManifest(manifest); err != nil {
		return nil, err
	}

	slog.Info("bundle built",
		"copied", report.FilesCopied,
		"minified", report.FilesMinified,
		"images", report.ImagesProcessed,
		"variants", report.VariantsGenerated,
		"warnings", report.Warnings,
	)
	return report, nil
}

// copyFile copies one pass-through file, creating parent directories.
func (p *Pipeline) copyFile(name string) error {
	src := filepath.Join(p.SiteDir, name)
	dest := filepath.Join(p.PublicDir, name)

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// mirrorDir recursively copies a directory tree, preserving structure.
// A missing source directory is not an error; the site may not use it.
func (p *Pipeline) mirrorDir(dir string) (int, error) {
	src := filepath.Join(p.SiteDir, dir)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return 0, nil
	}

	copied := 0
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(p.SiteDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(p.PublicDir, rel)

		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		if err := p.copyFile(rel); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}
