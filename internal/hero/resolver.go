// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package hero resolves authored carousel slide descriptors against the
// menu catalog. A descriptor either carries its own content or
// references a catalog item by category plus id or name; referenced
// fields can be partially overridden. Resolution is all-or-nothing with
// respect to the catalog: if any descriptor needs a lookup before the
// catalog has loaded, the whole pass reports pending so the carousel
// never flashes half-resolved content.
package hero

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sort"
	"strings"

	"ganbara/internal/models"
)

// FileName is the authored carousel content file at the site root.
const FileName = "hero-carousel.json"

// ErrCatalogPending means at least one descriptor references the catalog
// and the catalog has not been loaded yet. Retry once it is available.
var ErrCatalogPending = errors.New("hero: catalog not loaded yet")

// Text is a bilingual value that authors may write either as a plain
// string (applied to both languages) or as an {es, eu} object.
type Text struct {
	ES string
	EU string
}

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t.ES, t.EU = s, s
		return nil
	}
	var obj struct {
		ES string `json:"es"`
		EU string `json:"eu"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.ES, t.EU = obj.ES, obj.EU
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(models.Localized{ES: t.ES, EU: t.EU})
}

// Target points a slide at a menu entry for scroll-and-highlight.
type Target struct {
	Category string `json:"category,omitempty"`
	ItemID   string `json:"itemId,omitempty"`
}

func (tg *Target) UnmarshalJSON(data []byte) error {
	// itemId appears both as string and number in authored content.
	var obj struct {
		Category string          `json:"category"`
		ItemID   json.RawMessage `json:"itemId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	tg.Category = obj.Category
	tg.ItemID = flexString(obj.ItemID)
	return nil
}

func flexString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// Overrides layers authored fields on top of a resolved catalog item.
type Overrides struct {
	Image    string  `json:"image,omitempty"`
	Title    *Text   `json:"title,omitempty"`
	Subtitle *Text   `json:"subtitle,omitempty"`
	Alt      *Text   `json:"alt,omitempty"`
	Target   *Target `json:"target,omitempty"`
}

// Descriptor is one authored slide entry. Shorthand top-level fields
// (image, title, ...) are folded into Overrides during resolution.
type Descriptor struct {
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category,omitempty"`
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name,omitempty"`
	Title    *Text   `json:"title,omitempty"`
	Subtitle *Text   `json:"subtitle,omitempty"`
	Alt      *Text   `json:"alt,omitempty"`
	Target   *Target `json:"target,omitempty"`

	Overrides Overrides `json:"overrides,omitempty"`
}

func (d *Descriptor) UnmarshalJSON(data []byte) error {
	type alias Descriptor
	var a struct {
		alias
		RawID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Descriptor(a.alias)
	d.ID = flexString(a.RawID)
	return nil
}

// Slide is a fully-populated, render-ready carousel entry. Rebuilt from
// scratch on every resolution pass, never patched.
type Slide struct {
	Image    string           `json:"image"`
	Title    models.Localized `json:"title"`
	Subtitle models.Localized `json:"subtitle"`
	Alt      models.Localized `json:"alt"`
	Target   *Target          `json:"target,omitempty"`
}

// Defaults are the site-wide hero texts used when neither the catalog
// nor an override supplies a field.
type Defaults struct {
	Title    models.Localized
	Subtitle models.Localized
}

// Resolver turns descriptors into slides against a catalog snapshot.
type Resolver struct {
	defaults Defaults
}

func New(defaults Defaults) *Resolver {
	return &Resolver{defaults: defaults}
}

// LoadDescriptors reads the authored slide list from the site directory.
// A missing or malformed file yields an empty list, not an error; the
// carousel simply renders nothing.
func LoadDescriptors(path string) []Descriptor {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("carousel content unavailable", "path", path, "error", err)
		return nil
	}
	var doc struct {
		Slides []Descriptor `json:"slides"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.Warn("carousel content malformed", "path", path, "error", err)
		return nil
	}
	return doc.Slides
}

// Resolve builds the renderable slide list in descriptor order.
// Descriptors that cannot be resolved are dropped with a diagnostic and
// leave no gap. If any descriptor needs the catalog and catalog is nil,
// Resolve returns ErrCatalogPending and no partial result.
func (r *Resolver) Resolve(descriptors []Descriptor, catalog models.Catalog) ([]Slide, error) {
	slides := make([]Slide, 0, len(descriptors))

	for i := range descriptors {
		slide, err := r.build(&descriptors[i], catalog)
		if err != nil {
			return nil, err
		}
		if slide != nil {
			slides = append(slides, *slide)
		}
	}
	return slides, nil
}

// build resolves one descriptor. Returns (nil, nil) when the descriptor
// is dropped.
func (r *Resolver) build(d *Descriptor, catalog models.Catalog) (*Slide, error) {
	ov := d.Overrides
	if d.Image != "" {
		ov.Image = d.Image
	}
	if d.Title != nil {
		ov.Title = d.Title
	}
	if d.Subtitle != nil {
		ov.Subtitle = d.Subtitle
	}
	if d.Alt != nil {
		ov.Alt = d.Alt
	}
	if d.Target != nil {
		ov.Target = d.Target
	}

	refCategory := d.Category
	refID := d.ID
	if d.Target != nil {
		if refCategory == "" {
			refCategory = d.Target.Category
		}
		if refID == "" {
			refID = d.Target.ItemID
		}
	}

	needsCatalog := refCategory != "" || refID != "" || d.Name != ""
	if needsCatalog && catalog == nil {
		return nil, ErrCatalogPending
	}

	var item *models.ExportedItem
	resolvedCategory := refCategory

	if needsCatalog {
		found, cat := lookup(catalog, refCategory, refID, d.Name)
		if found == nil {
			slog.Warn("carousel reference not found in catalog",
				"category", refCategory, "id", refID, "name", d.Name)
			return nil, nil
		}
		item = found
		resolvedCategory = cat

		if !item.Disponible {
			slog.Warn("carousel references an unavailable item",
				"category", cat, "id", item.ID)
		}
	}

	image := ov.Image
	if image == "" && item != nil {
		image = item.Imagen
	}
	if image == "" {
		slog.Warn("carousel slide has no image", "category", refCategory, "id", refID)
		return nil, nil
	}

	var baseTitle, baseSubtitle models.Localized
	if item != nil {
		baseTitle = item.Nombre
		baseSubtitle = item.Descripcion
	}

	title := mergeLocalized(baseTitle, ov.Title, r.defaults.Title)
	subtitle := mergeLocalized(baseSubtitle, ov.Subtitle, r.defaults.Subtitle)
	alt := mergeLocalized(title, ov.Alt, title)

	target := ov.Target
	if target == nil && item != nil {
		target = &Target{Category: resolvedCategory, ItemID: item.ID}
	}

	return &Slide{
		Image:    image,
		Title:    title,
		Subtitle: subtitle,
		Alt:      alt,
		Target:   target,
	}, nil
}

// lookup searches the catalog for a referenced item. The referenced
// category is scanned first, then the remaining categories in
// lexicographic order. With an id the match is a case-insensitive id
// compare; without one, a case-insensitive match of either language's
// display name.
func lookup(catalog models.Catalog, category, id, name string) (*models.ExportedItem, string) {
	order := make([]string, 0, len(catalog))
	if _, ok := catalog[category]; ok {
		order = append(order, category)
	}
	var rest []string
	for cat := range catalog {
		if cat != category {
			rest = append(rest, cat)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	name = strings.ToLower(strings.TrimSpace(name))

	for _, cat := range order {
		items := catalog[cat]
		for i := range items {
			if id != "" {
				if strings.EqualFold(items[i].ID, id) {
					return &items[i], cat
				}
				continue
			}
			if name == "" {
				continue
			}
			if strings.ToLower(items[i].Nombre.ES) == name ||
				strings.ToLower(items[i].Nombre.EU) == name {
				return &items[i], cat
			}
		}
	}
	return nil, ""
}

// normalizeLocalized fills gaps in v from the fallback, with eu falling
// back to es at each level.
func normalizeLocalized(v, fallback models.Localized) models.Localized {
	return models.Localized{
		ES: firstNonEmpty(v.ES, fallback.ES),
		EU: firstNonEmpty(v.EU, v.ES, fallback.EU, fallback.ES),
	}
}

// mergeLocalized resolves one bilingual field: override wins over the
// catalog base, which wins over the site default. An override governs
// both languages — its es value backs a missing eu override before the
// catalog base is consulted.
func mergeLocalized(base models.Localized, override *Text, fallback models.Localized) models.Localized {
	b := normalizeLocalized(base, fallback)
	if override == nil {
		return b
	}
	return models.Localized{
		ES: firstNonEmpty(override.ES, b.ES),
		EU: firstNonEmpty(override.EU, override.ES, b.EU, b.ES),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
