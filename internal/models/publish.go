// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// PublishStatus is the lifecycle state of a publish run.
type PublishStatus string

const (
	PublishIdle    PublishStatus = "idle"
	PublishRunning PublishStatus = "running"
	PublishSuccess PublishStatus = "success"
	PublishError   PublishStatus = "error"
)

// PublishRun tracks one end-to-end export+build execution. Exactly one
// run may be active at a time; the orchestrator owns the singleton.
type PublishRun struct {
	Status        PublishStatus `json:"status"`
	StartedAt     *time.Time    `json:"startedAt"`
	FinishedAt    *time.Time    `json:"finishedAt"`
	Error         string        `json:"error,omitempty"`
	ExportedCount int           `json:"exportedCount"`
}

// IsRunning reports whether the run is currently in progress.
func (r PublishRun) IsRunning() bool {
	return r.Status == PublishRunning
}
