// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assets

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSite lays out a minimal site tree. No rasters, so builds stay off
// the libvips path and run anywhere.
func writeSite(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	siteDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(siteDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return siteDir, filepath.Join(siteDir, "public")
}

func TestBuildCopiesAndMinifies(t *testing.T) {
	siteDir, publicDir := writeSite(t, map[string]string{
		"index.html":         "<html><body>hola</body></html>",
		"menu-data.json":     `{"parrilla":[]}`,
		"hero-carousel.json": `{"slides":[]}`,
		"script.js":          "const saludo = \"kaixo\";\nconsole.log( saludo );\n",
		"translations.js":    "var i18n = { es: {}, eu: {} };\n",
		"analytics.js":       "function track(id) { return id; }\n",
		"styles.css":         "body {\n  color: #aabbcc;\n}\n",
		"assets/fonts/x.woff2": "binary-ish",
	})

	report, err := New(siteDir, publicDir).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if report.FilesCopied != 4 { // 3 pass-through + 1 mirrored asset
		t.Errorf("FilesCopied = %d, want 4", report.FilesCopied)
	}
	if report.FilesMinified != 4 {
		t.Errorf("FilesMinified = %d, want 4", report.FilesMinified)
	}
	if report.Warnings != 0 {
		t.Errorf("Warnings = %d, want 0", report.Warnings)
	}

	// Pass-through files are byte-identical.
	got, err := os.ReadFile(filepath.Join(publicDir, "menu-data.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"parrilla":[]}` {
		t.Errorf("menu-data.json altered: %q", got)
	}

	// Minified output is smaller and still carries the payload.
	css, err := os.ReadFile(filepath.Join(publicDir, "styles.css"))
	if err != nil {
		t.Fatal(err)
	}
	if len(css) >= len("body {\n  color: #aabbcc;\n}\n") {
		t.Errorf("styles.css not minified: %q", css)
	}
	if !strings.Contains(string(css), "body") {
		t.Errorf("styles.css lost content: %q", css)
	}

	// Mirrored directory structure is preserved.
	if _, err := os.Stat(filepath.Join(publicDir, "assets", "fonts", "x.woff2")); err != nil {
		t.Errorf("mirrored asset missing: %v", err)
	}
}

func TestBuildMissingFilesWarnNotFail(t *testing.T) {
	siteDir, publicDir := writeSite(t, map[string]string{
		"index.html": "<html></html>",
	})

	report, err := New(siteDir, publicDir).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.FilesCopied != 1 {
		t.Errorf("FilesCopied = %d, want 1", report.FilesCopied)
	}
	// 2 missing pass-through + 4 missing minify sources.
	if report.Warnings != 6 {
		t.Errorf("Warnings = %d, want 6", report.Warnings)
	}
}

func TestBuildInvalidScriptCopiedVerbatim(t *testing.T) {
	broken := "function ( { this is not javascript"
	siteDir, publicDir := writeSite(t, map[string]string{
		"index.html":         "<html></html>",
		"menu-data.json":     "{}",
		"hero-carousel.json": "{}",
		"script.js":          broken,
		"translations.js":    "var ok = 1;",
		"analytics.js":       "var ok = 2;",
		"styles.css":         "body{}",
	})

	report, err := New(siteDir, publicDir).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", report.Warnings)
	}

	got, err := os.ReadFile(filepath.Join(publicDir, "script.js"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != broken {
		t.Errorf("broken script not copied verbatim: %q", got)
	}
}

func TestBuildWritesManifestBothLocations(t *testing.T) {
	siteDir, publicDir := writeSite(t, map[string]string{
		"index.html":         "<html></html>",
		"menu-data.json":     "{}",
		"hero-carousel.json": "{}",
		"script.js":          "var a=1;",
		"translations.js":    "var b=2;",
		"analytics.js":       "var c=3;",
		"styles.css":         "body{}",
	})

	if _, err := New(siteDir, publicDir).Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, dir := range []string{publicDir, siteDir} {
		raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
		if err != nil {
			t.Fatalf("manifest missing in %s: %v", dir, err)
		}
		var m Manifest
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("manifest not valid JSON: %v", err)
		}
		if len(m) != 0 {
			t.Errorf("manifest entries = %d, want 0 for raster-free site", len(m))
		}
	}
}

func TestBuildCorruptImageWarnsAndContinues(t *testing.T) {
	siteDir, publicDir := writeSite(t, map[string]string{
		"index.html":           "<html><body>hola</body></html>",
		"menu-data.json":       `{"parrilla":[]}`,
		"hero-carousel.json":   `{"slides":[]}`,
		"script.js":            "var a = 1;\n",
		"translations.js":      "var b = 2;\n",
		"analytics.js":         "var c = 3;\n",
		"styles.css":           "body {\n  color: red;\n}\n",
		"assets/fonts/x.woff2": "binary-ish",
		"images/broken.png":    "this is not a png",
	})

	report, err := New(siteDir, publicDir).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// The bad raster is a single warning; nothing else went wrong.
	if report.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", report.Warnings)
	}
	if report.ImagesProcessed != 0 || report.VariantsGenerated != 0 {
		t.Errorf("processed/variants = %d/%d, want 0/0",
			report.ImagesProcessed, report.VariantsGenerated)
	}

	// The rest of the bundle is intact: mirrored copies, minified
	// scripts, pass-through files and the manifest all land.
	for _, name := range []string{
		"index.html", "script.js", "styles.css",
		"assets/fonts/x.woff2", "images/broken.png", ManifestName,
	} {
		if _, err := os.Stat(filepath.Join(publicDir, name)); err != nil {
			t.Errorf("bundle missing %s: %v", name, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(publicDir, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("manifest not valid JSON: %v", err)
	}
	if _, ok := m[filepath.ToSlash(filepath.Join("images", "broken.png"))]; ok {
		t.Error("corrupt image must not appear in the manifest")
	}
}

func TestProbeWidth(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 640, 360))); err != nil {
		t.Fatal(err)
	}

	width, err := probeWidth(buf.Bytes())
	if err != nil {
		t.Fatalf("probeWidth: %v", err)
	}
	if width != 640 {
		t.Errorf("width = %d, want 640", width)
	}

	if _, err := probeWidth([]byte("definitely not an image")); err == nil {
		t.Error("probeWidth accepted garbage input")
	}
}

func TestFallbackFor(t *testing.T) {
	cases := []struct {
		ext  string
		want string
	}{
		{".jpg", "jpeg"},
		{".JPEG", "jpeg"},
		{".png", "png"},
		{".webp", "jpeg"},
		{".svg", ""},
		{".woff2", ""},
	}
	for _, tc := range cases {
		if got := string(fallbackFor(tc.ext)); got != tc.want {
			t.Errorf("fallbackFor(%q) = %q, want %q", tc.ext, got, tc.want)
		}
	}
}

func TestVariantExt(t *testing.T) {
	if got := variantExt("jpeg"); got != "jpg" {
		t.Errorf("variantExt(jpeg) = %q", got)
	}
	if got := variantExt("webp"); got != "webp" {
		t.Errorf("variantExt(webp) = %q", got)
	}
}
