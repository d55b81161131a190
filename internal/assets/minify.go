// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assets

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	return m
}

// minifyAll minifies every script and stylesheet into the bundle. When a
// file fails to minify it is copied verbatim instead, so the published
// site always carries a working copy.
func (p *Pipeline) minifyAll(report *Report) {
	m := newMinifier()

	minifyList := func(names []string, mediatype string) {
		for _, name := range names {
			src := filepath.Join(p.SiteDir, name)
			raw, err := os.ReadFile(src)
			if err != nil {
				slog.Warn("minify source missing", "file", name, "error", err)
				report.Warnings++
				continue
			}

			out, err := m.Bytes(mediatype, raw)
			if err != nil {
				slog.Warn("minify failed, copying verbatim", "file", name, "error", err)
				report.Warnings++
				out = raw
			}

			dest := filepath.Join(p.PublicDir, name)
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				slog.Warn("minify output dir", "file", name, "error", err)
				report.Warnings++
				continue
			}
			if err := os.WriteFile(dest, out, 0o644); err != nil {
				slog.Warn("minify write failed", "file", name, "error", err)
				report.Warnings++
				continue
			}

			report.FilesMinified++
			report.Savings = append(report.Savings, FileSaving{
				Path:   name,
				Before: int64(len(raw)),
				After:  int64(len(out)),
			})
		}
	}

	minifyList(p.scriptFiles, "application/javascript")
	minifyList(p.styleFiles, "text/css")
}
