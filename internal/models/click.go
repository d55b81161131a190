// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuClick records one public click on a menu item, mirroring the
// columns of the old spreadsheet log (timestamp, category, item, name).
type MenuClick struct {
	ID        uuid.UUID `json:"id"`
	ItemID    string    `json:"itemId"`
	ItemName  string    `json:"itemName"`
	Category  string    `json:"category"`
	ClickedAt time.Time `json:"timestamp"`
}

// ClickStat aggregates clicks per (category, item) pair.
type ClickStat struct {
	Category string `json:"category"`
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	Clicks   int    `json:"clicks"`
}
