// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for menu item fields.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 2_000
	maxCategoryLen    = 100
	maxTagLen         = 50
	maxTags           = 20
	maxPrice          = 10_000
)

// validateMenuPayload checks admin menu inputs and returns the first
// error found, or "" when the payload is acceptable.
func validateMenuPayload(titleES, descriptionES, category string, price float64, mediaPrice *float64, tags []string) string {
	if strings.TrimSpace(titleES) == "" {
		return "El título en castellano es obligatorio."
	}
	if utf8.RuneCountInString(titleES) > maxTitleLen {
		return "El título es demasiado largo (máx. 200 caracteres)."
	}
	if utf8.RuneCountInString(descriptionES) > maxDescriptionLen {
		return "La descripción es demasiado larga (máx. 2.000 caracteres)."
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return "La categoría es demasiado larga (máx. 100 caracteres)."
	}
	if price < 0 || price > maxPrice {
		return "El precio debe estar entre 0 y 10.000."
	}
	if mediaPrice != nil && (*mediaPrice < 0 || *mediaPrice > maxPrice) {
		return "El precio de media ración debe estar entre 0 y 10.000."
	}
	if len(tags) > maxTags {
		return "Demasiadas etiquetas (máx. 20)."
	}
	for _, t := range tags {
		if utf8.RuneCountInString(t) > maxTagLen {
			return "Etiqueta demasiado larga (máx. 50 caracteres)."
		}
	}
	return ""
}
