// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"ganbara/internal/models"
)

// ClickStore records public menu-item clicks. It replaces the old
// spreadsheet append: same columns, same best-effort semantics at the
// handler level.
type ClickStore struct {
	db *sql.DB
}

// NewClickStore creates a new ClickStore with the given database connection.
func NewClickStore(db *sql.DB) *ClickStore {
	return &ClickStore{db: db}
}

// Record inserts one click. A zero timestamp defaults to now.
func (s *ClickStore) Record(itemID, itemName, category string, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO menu_clicks (item_id, item_name, category, clicked_at)
		VALUES ($1, $2, $3, $4)
	`, itemID, itemName, category, at)
	if err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	return nil
}

// Stats aggregates clicks per (category, item) pair, most clicked first.
func (s *ClickStore) Stats() ([]models.ClickStat, int, error) {
	rows, err := s.db.Query(`
		SELECT category, item_id, MAX(item_name), COUNT(*)
		FROM menu_clicks
		GROUP BY category, item_id
		ORDER BY COUNT(*) DESC, category ASC, item_id ASC
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("click stats: %w", err)
	}
	defer rows.Close()

	var stats []models.ClickStat
	total := 0
	for rows.Next() {
		var st models.ClickStat
		if err := rows.Scan(&st.Category, &st.ItemID, &st.ItemName, &st.Clicks); err != nil {
			return nil, 0, fmt.Errorf("scan click stat: %w", err)
		}
		stats = append(stats, st)
		total += st.Clicks
	}
	return stats, total, rows.Err()
}
