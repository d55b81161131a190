// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"ganbara/internal/publish"
)

// Publish exposes the pipeline trigger and status endpoints.
type Publish struct {
	orchestrator *publish.Orchestrator
}

// NewPublish creates the publish handler group.
func NewPublish(orchestrator *publish.Orchestrator) *Publish {
	return &Publish{orchestrator: orchestrator}
}

// Trigger starts a publish run. A run already in flight yields 409 with
// the current state so the admin UI can keep polling the same shape.
func (h *Publish) Trigger(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.Trigger(r.Context()); err != nil {
		if errors.Is(err, publish.ErrAlreadyRunning) {
			writeJSON(w, http.StatusConflict, h.orchestrator.Status())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.orchestrator.Status())
}

// Status reports the last (or current) publish run.
func (h *Publish) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orchestrator.Status())
}

// Health is the liveness endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
