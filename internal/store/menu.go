// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all Ganbara
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ganbara/internal/models"
	"ganbara/internal/slug"
)

// ErrInvalidItem is returned when a menu item fails validation before a write.
var ErrInvalidItem = errors.New("menu item missing required fields")

// MenuStore handles all menu-item database operations.
type MenuStore struct {
	db *sql.DB
}

// NewMenuStore creates a new MenuStore with the given database connection.
func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{db: db}
}

const menuColumns = `id, title_es, title_eu, description_es, description_eu, category,
	price, media_price, is_available, display_order, tags, image_desktop, image_mobile, updated_at`

func scanMenuItem(scanner interface{ Scan(...any) error }) (*models.MenuItem, error) {
	var m models.MenuItem
	var tags []byte
	err := scanner.Scan(
		&m.ID, &m.Title.ES, &m.Title.EU, &m.Description.ES, &m.Description.EU, &m.Category,
		&m.Price, &m.MediaPrice, &m.IsAvailable, &m.DisplayOrder, &tags,
		&m.Image.Desktop, &m.Image.Mobile, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &m.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &m, nil
}

// normalize applies the create/update invariants in one place so the form
// path and the import path cannot diverge: title.es required, eu fallback,
// category slug with sentinel, trimmed tags, mobile image fallback.
func normalize(m *models.MenuItem) error {
	if m.Title.ES == "" {
		return ErrInvalidItem
	}
	m.Title = m.Title.Normalized()
	m.Description = m.Description.Normalized()
	m.Category = slug.Category(m.Category)
	m.Tags = models.CleanTags(m.Tags)
	m.Image = m.Image.Normalized()
	if m.Price < 0 {
		return ErrInvalidItem
	}
	return nil
}

// Create inserts a new menu item. DisplayOrder, when zero, is assigned
// from the current unix-milli clock so new items sort last within their
// category. UpdatedAt is server-assigned.
func (s *MenuStore) Create(item *models.MenuItem) (*models.MenuItem, error) {
	if err := normalize(item); err != nil {
		return nil, err
	}
	if item.DisplayOrder == 0 {
		item.DisplayOrder = time.Now().UnixMilli()
	}

	tags, err := json.Marshal(models.CleanTags(item.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO menu_items (title_es, title_eu, description_es, description_eu, category,
			price, media_price, is_available, display_order, tags, image_desktop, image_mobile)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+menuColumns,
		item.Title.ES, item.Title.EU, item.Description.ES, item.Description.EU, item.Category,
		item.Price, item.MediaPrice, item.IsAvailable, item.DisplayOrder, tags,
		item.Image.Desktop, item.Image.Mobile,
	)

	created, err := scanMenuItem(row)
	if err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	return created, nil
}

// Update replaces the editable fields of an item. The caller is expected
// to have merged the incoming payload over the stored row so availability,
// order, tags and image survive unless explicitly changed.
func (s *MenuStore) Update(item *models.MenuItem) (*models.MenuItem, error) {
	if err := normalize(item); err != nil {
		return nil, err
	}

	tags, err := json.Marshal(models.CleanTags(item.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	row := s.db.QueryRow(`
		UPDATE menu_items SET title_es = $1, title_eu = $2, description_es = $3, description_eu = $4,
			category = $5, price = $6, media_price = $7, is_available = $8, display_order = $9,
			tags = $10, image_desktop = $11, image_mobile = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING `+menuColumns,
		item.Title.ES, item.Title.EU, item.Description.ES, item.Description.EU, item.Category,
		item.Price, item.MediaPrice, item.IsAvailable, item.DisplayOrder, tags,
		item.Image.Desktop, item.Image.Mobile, item.ID,
	)

	updated, err := scanMenuItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	return updated, nil
}

// FindByID retrieves a menu item by its UUID. Returns nil if not found.
func (s *MenuStore) FindByID(id uuid.UUID) (*models.MenuItem, error) {
	row := s.db.QueryRow(`SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id)
	item, err := scanMenuItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find menu item: %w", err)
	}
	return item, nil
}

// ListAll returns every menu item ordered by (category, display_order).
// The exporter re-sorts within categories anyway, but asking the database
// for the order keeps listings stable for the admin view too.
func (s *MenuStore) ListAll() ([]models.MenuItem, error) {
	rows, err := s.db.Query(`
		SELECT ` + menuColumns + `
		FROM menu_items
		ORDER BY category ASC, display_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Delete removes a menu item by ID. Returns the deleted row, or nil if
// nothing matched.
func (s *MenuStore) Delete(id uuid.UUID) (*models.MenuItem, error) {
	row := s.db.QueryRow(`DELETE FROM menu_items WHERE id = $1 RETURNING `+menuColumns, id)
	item, err := scanMenuItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete menu item: %w", err)
	}
	return item, nil
}

// ImportBatch inserts multiple items in a single transaction. Display
// orders are assigned as baseTime+index so imported items keep their
// file order and sort after existing ones.
func (s *MenuStore) ImportBatch(items []models.MenuItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO menu_items (title_es, title_eu, description_es, description_eu, category,
			price, media_price, is_available, display_order, tags, image_desktop, image_mobile)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare import insert: %w", err)
	}
	defer stmt.Close()

	baseTime := time.Now().UnixMilli()
	count := 0
	for i := range items {
		item := items[i]
		if err := normalize(&item); err != nil {
			return 0, fmt.Errorf("import item %d: %w", i, err)
		}

		tags, err := json.Marshal(models.CleanTags(item.Tags))
		if err != nil {
			return 0, fmt.Errorf("encode tags: %w", err)
		}

		if _, err := stmt.Exec(
			item.Title.ES, item.Title.EU, item.Description.ES, item.Description.EU, item.Category,
			item.Price, item.MediaPrice, item.IsAvailable, baseTime+int64(i), tags,
			item.Image.Desktop, item.Image.Mobile,
		); err != nil {
			return 0, fmt.Errorf("insert import item %q: %w", item.Title.ES, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return count, nil
}
