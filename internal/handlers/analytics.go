// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ganbara/internal/store"
)

// Analytics records and reports menu item clicks. Tracking is
// best-effort: a failed write never surfaces to the visitor.
type Analytics struct {
	clicks *store.ClickStore
}

// NewAnalytics creates the analytics handler group.
func NewAnalytics(clicks *store.ClickStore) *Analytics {
	return &Analytics{clicks: clicks}
}

// trackRequest tolerates everything the site's tracker actually sends:
// numeric ids, a bilingual itemName object, and extra fields such as
// the client-side timestamp (ignored; the server clock is recorded).
type trackRequest struct {
	ItemID   flexID        `json:"itemId"`
	ItemName flexLocalized `json:"itemName"`
	Category string        `json:"category"`
}

// flexID accepts a JSON string or number and keeps its text form.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

// TrackClick records one menu item click from the public site.
func (h *Analytics) TrackClick(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSONLenient(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := strings.TrimSpace(string(req.ItemID))
	name := strings.TrimSpace(req.ItemName.ES)
	if name == "" {
		name = strings.TrimSpace(req.ItemName.EU)
	}
	category := strings.TrimSpace(req.Category)
	if id == "" || name == "" || category == "" {
		writeError(w, http.StatusBadRequest, "itemId, itemName and category required")
		return
	}

	if err := h.clicks.Record(id, name, category, time.Now()); err != nil {
		// Analytics must never break the public site.
		slog.Warn("click record failed", "error", err)
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

// Stats returns aggregated click counts for the admin dashboard.
func (h *Analytics) Stats(w http.ResponseWriter, r *http.Request) {
	stats, total, err := h.clicks.Stats()
	if err != nil {
		slog.Error("click stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "No se pudieron cargar las estadísticas.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"items": stats,
	})
}
