// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package exporter turns the live menu collection into the canonical
// menu-data.json consumed by the public site and the hero-slide resolver.
// The export is a derived, disposable artifact: fully regenerated on every
// publish, never patched in place.
package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"ganbara/internal/models"
)

// FileName is the canonical export file written into the site tree.
const FileName = "menu-data.json"

var (
	// ErrUnavailable signals that the menu collection could not be read.
	// This is a configuration or connection failure, fatal to the
	// enclosing publish run.
	ErrUnavailable = errors.New("menu export: store unavailable")

	// ErrWriteFailed signals that the catalog could not be serialized or
	// written to disk.
	ErrWriteFailed = errors.New("menu export: write failed")
)

// Source is the slice of the menu store the exporter needs. The store is
// trusted to order by (category, display_order); the exporter still
// re-sorts within each group in case a source only guarantees partial
// ordering.
type Source interface {
	ListAll() ([]models.MenuItem, error)
}

// Exporter reads the full menu collection and writes the canonical JSON.
type Exporter struct {
	source Source
	dir    string // site directory the export file lands in
}

// New creates an Exporter writing into the given site directory.
func New(source Source, dir string) *Exporter {
	return &Exporter{source: source, dir: dir}
}

// Export builds the catalog and writes it atomically. Returns the
// catalog and the number of exported records.
func (e *Exporter) Export() (models.Catalog, int, error) {
	items, err := e.source.ListAll()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	catalog := BuildCatalog(items)

	data, err := marshalCatalog(catalog)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if err := writeAtomic(filepath.Join(e.dir, FileName), data); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	slog.Info("menu catalog exported",
		"items", len(items),
		"categories", len(catalog),
		"path", filepath.Join(e.dir, FileName),
	)
	return catalog, len(items), nil
}

// BuildCatalog groups items by category and orders each group by
// display order ascending. The internal ordering key is stripped from
// the output; the array order encodes it.
func BuildCatalog(items []models.MenuItem) models.Catalog {
	grouped := make(map[string][]models.MenuItem)
	for _, item := range items {
		cat := item.Category
		if cat == "" {
			cat = models.DefaultCategory
		}
		grouped[cat] = append(grouped[cat], item)
	}

	catalog := make(models.Catalog, len(grouped))
	for cat, group := range grouped {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].DisplayOrder < group[j].DisplayOrder
		})

		exported := make([]models.ExportedItem, 0, len(group))
		for _, item := range group {
			exported = append(exported, models.ExportedItem{
				ID:          item.ID.String(),
				Nombre:      item.Title.Normalized(),
				Descripcion: item.Description.Normalized(),
				Precio:      item.Price,
				MediaRacion: item.MediaPrice,
				Imagen:      item.Image.Desktop,
				Categoria:   cat,
				Disponible:  item.IsAvailable,
			})
		}
		catalog[cat] = exported
	}
	return catalog
}

// marshalCatalog serializes deterministically: encoding/json sorts map
// keys, so categories come out lexicographically and repeated exports of
// the same data are byte-identical. That stability is what makes the
// export diffable.
func marshalCatalog(catalog models.Catalog) ([]byte, error) {
	return json.MarshalIndent(catalog, "", "    ")
}

// writeAtomic writes to a temp file in the target directory and renames
// it over the destination, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".menu-data-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
