// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ganbara/internal/cache"
	"ganbara/internal/models"
	"ganbara/internal/store"
)

// ErrInvalidImportFormat means the uploaded import file is not a JSON
// array of entries. The whole import is rejected; nothing is written.
var ErrInvalidImportFormat = errors.New("import file is not a JSON array of menu entries")

// Admin groups the menu CRUD and import handlers. Every successful
// write invalidates the cached catalog and publishes a change event so
// live menu watchers re-read.
type Admin struct {
	menu    *store.MenuStore
	catalog *cache.CatalogCache
}

// NewAdmin creates the admin menu handler group.
func NewAdmin(menu *store.MenuStore, catalog *cache.CatalogCache) *Admin {
	return &Admin{menu: menu, catalog: catalog}
}

// menuPayload is the editable subset of a menu item as submitted by the
// admin form. Optional fields are pointers so an update can distinguish
// "leave unchanged" from "set to zero value".
type menuPayload struct {
	Title       models.Localized `json:"title"`
	Description models.Localized `json:"description"`
	Category    string           `json:"category"`
	Price       float64          `json:"price"`
	MediaPrice  *float64         `json:"media_price"`
	IsAvailable *bool            `json:"is_available"`
	Tags        *[]string        `json:"tags"`
	Image       *models.ImageRef `json:"image"`
}

func (p *menuPayload) validate() string {
	return validateMenuPayload(p.Title.ES, p.Description.ES, p.Category, p.Price, p.MediaPrice, derefTags(p.Tags))
}

func derefTags(tags *[]string) []string {
	if tags == nil {
		return nil
	}
	return *tags
}

// List returns every menu item ordered by (category, display order).
func (h *Admin) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.ListAll()
	if err != nil {
		slog.Error("menu list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "No se pudo cargar la carta.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Create inserts a new menu item from the admin form payload.
func (h *Admin) Create(w http.ResponseWriter, r *http.Request) {
	var payload menuPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	item := models.MenuItem{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Price:       payload.Price,
		MediaPrice:  payload.MediaPrice,
		IsAvailable: true,
	}
	if payload.IsAvailable != nil {
		item.IsAvailable = *payload.IsAvailable
	}
	if payload.Tags != nil {
		item.Tags = *payload.Tags
	}
	if payload.Image != nil {
		item.Image = *payload.Image
	}

	created, err := h.menu.Create(&item)
	if err != nil {
		if errors.Is(err, store.ErrInvalidItem) {
			writeError(w, http.StatusUnprocessableEntity, "Faltan campos obligatorios.")
			return
		}
		slog.Error("menu create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "No se pudo crear el plato.")
		return
	}

	h.catalog.NotifyChanged(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces the editable fields of an item. Fields absent from the
// payload keep their stored values, so availability, tags and images
// survive an edit that does not touch them.
func (h *Admin) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador no válido.")
		return
	}

	var payload menuPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	existing, err := h.menu.FindByID(id)
	if err != nil {
		slog.Error("menu lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "No se pudo cargar el plato.")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "El plato no existe.")
		return
	}

	existing.Title = payload.Title
	existing.Description = payload.Description
	existing.Category = payload.Category
	existing.Price = payload.Price
	existing.MediaPrice = payload.MediaPrice
	if payload.IsAvailable != nil {
		existing.IsAvailable = *payload.IsAvailable
	}
	if payload.Tags != nil {
		existing.Tags = *payload.Tags
	}
	if payload.Image != nil {
		existing.Image = *payload.Image
	}

	updated, err := h.menu.Update(existing)
	if err != nil {
		if errors.Is(err, store.ErrInvalidItem) {
			writeError(w, http.StatusUnprocessableEntity, "Faltan campos obligatorios.")
			return
		}
		slog.Error("menu update failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "No se pudo actualizar el plato.")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "El plato no existe.")
		return
	}

	h.catalog.NotifyChanged(r.Context())
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an item.
func (h *Admin) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Identificador no válido.")
		return
	}

	deleted, err := h.menu.Delete(id)
	if err != nil {
		slog.Error("menu delete failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "No se pudo eliminar el plato.")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "El plato no existe.")
		return
	}

	h.catalog.NotifyChanged(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted.ID})
}

// importEntry matches the flat import file format: Spanish field names,
// bilingual values written either as strings or {es, eu} objects.
type importEntry struct {
	Nombre      flexLocalized   `json:"nombre"`
	Descripcion flexLocalized   `json:"descripcion"`
	Categoria   string          `json:"categoria"`
	Precio      float64         `json:"precio"`
	MediaRacion *float64        `json:"mediaRacion"`
	Disponible  *bool           `json:"disponible"`
	Tags        []string        `json:"tags"`
	Imagen      json.RawMessage `json:"imagen"`
}

// flexLocalized accepts a plain string or an {es, eu} object.
type flexLocalized models.Localized

func (l *flexLocalized) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		l.ES = s
		return nil
	}
	var obj models.Localized
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*l = flexLocalized(obj)
	return nil
}

func (e *importEntry) toItem() models.MenuItem {
	item := models.MenuItem{
		Title:       models.Localized(e.Nombre),
		Description: models.Localized(e.Descripcion),
		Category:    e.Categoria,
		Price:       e.Precio,
		MediaPrice:  e.MediaRacion,
		IsAvailable: true,
		Tags:        e.Tags,
	}
	if e.Disponible != nil {
		item.IsAvailable = *e.Disponible
	}
	if len(e.Imagen) > 0 {
		var s string
		if json.Unmarshal(e.Imagen, &s) == nil {
			item.Image.Desktop = s
		} else {
			json.Unmarshal(e.Imagen, &item.Image)
		}
	}
	return item
}

// Import bulk-creates items from an uploaded JSON array. An unparseable
// file aborts the whole import; a valid file with some bad entries
// imports the good ones, logs every skip, and reports the final count.
func (h *Admin) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "No se pudo leer el archivo.")
		return
	}

	var entries []importEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		slog.Warn("import rejected", "error", err)
		writeError(w, http.StatusBadRequest, ErrInvalidImportFormat.Error())
		return
	}

	var valid []models.MenuItem
	skipped := 0
	for i := range entries {
		item := entries[i].toItem()
		if msg := validateMenuPayload(item.Title.ES, item.Description.ES, item.Category, item.Price, item.MediaPrice, item.Tags); msg != "" {
			slog.Warn("import entry skipped", "index", i, "reason", msg)
			skipped++
			continue
		}
		valid = append(valid, item)
	}

	imported, err := h.menu.ImportBatch(valid)
	if err != nil {
		slog.Error("import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "La importación ha fallado.")
		return
	}

	if imported > 0 {
		h.catalog.NotifyChanged(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"imported": imported,
		"skipped":  skipped,
	})
}
