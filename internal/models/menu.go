// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is the sentinel category assigned to items whose
// category is blank after normalization.
const DefaultCategory = "sin-categoria"

// Localized holds a bilingual (Spanish/Basque) text value. The Basque
// variant falls back to Spanish when missing.
type Localized struct {
	ES string `json:"es"`
	EU string `json:"eu"`
}

// Value returns the text for the requested language, with eu falling
// back to es.
func (l Localized) Value(lang string) string {
	if lang == "eu" && l.EU != "" {
		return l.EU
	}
	return l.ES
}

// IsZero reports whether both variants are empty.
func (l Localized) IsZero() bool {
	return l.ES == "" && l.EU == ""
}

// Normalized returns a copy with the eu fallback applied.
func (l Localized) Normalized() Localized {
	if l.EU == "" {
		l.EU = l.ES
	}
	return l
}

// ImageRef references the desktop and mobile renditions of an item image.
// Mobile falls back to desktop when absent.
type ImageRef struct {
	Desktop string `json:"desktop"`
	Mobile  string `json:"mobile"`
}

// Normalized returns a copy with the mobile fallback applied.
func (i ImageRef) Normalized() ImageRef {
	if i.Mobile == "" {
		i.Mobile = i.Desktop
	}
	return i
}

// MenuItem is a dish on the restaurant menu. Items are grouped by
// category and ordered within a category by DisplayOrder, which is
// assigned at creation time from the current unix-milli clock so new
// items sort last by default.
type MenuItem struct {
	ID           uuid.UUID `json:"id"`
	Title        Localized `json:"title"`
	Description  Localized `json:"description"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	MediaPrice   *float64  `json:"media_price,omitempty"`
	IsAvailable  bool      `json:"is_available"`
	DisplayOrder int64     `json:"display_order"`
	Tags         []string  `json:"tags"`
	Image        ImageRef  `json:"image"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CleanTags trims each tag and drops empty entries.
func CleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ExportedItem is the public JSON shape of a menu item as written to
// menu-data.json. Field names follow the site's established export
// schema; DisplayOrder is stripped because the array order encodes it.
type ExportedItem struct {
	ID          string    `json:"id"`
	Nombre      Localized `json:"nombre"`
	Descripcion Localized `json:"descripcion"`
	Precio      float64   `json:"precio"`
	MediaRacion *float64  `json:"mediaRacion"`
	Imagen      string    `json:"imagen"`
	Categoria   string    `json:"categoria"`
	Disponible  bool      `json:"disponible"`
}

// Catalog maps a category name to its ordered items. It is a derived,
// disposable artifact — fully regenerated on every publish.
type Catalog map[string][]ExportedItem

// Find looks up an item by id across all categories. Returns the item
// and its category, or nil.
func (c Catalog) Find(id string) (*ExportedItem, string) {
	for cat, items := range c {
		for i := range items {
			if items[i].ID == id {
				return &items[i], cat
			}
		}
	}
	return nil, ""
}
