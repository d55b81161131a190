// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish coordinates the export-then-build deployment flow.
// At most one run is in flight at a time; a second trigger is rejected
// rather than queued, because a run always publishes the latest catalog
// state anyway.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ganbara/internal/assets"
	"ganbara/internal/models"
)

// ErrAlreadyRunning is returned when a publish is triggered while a
// previous run has not reached a terminal state yet.
var ErrAlreadyRunning = errors.New("publish: run already in progress")

// Exporter produces the canonical menu file. Returns the item count.
type Exporter interface {
	Export() (models.Catalog, int, error)
}

// Builder assembles the deployable bundle.
type Builder interface {
	Build() (*assets.Report, error)
}

// Deployer pushes the built bundle to remote storage. Optional.
type Deployer interface {
	Deploy(ctx context.Context) error
}

// Orchestrator serializes publish runs and tracks the last run's state.
type Orchestrator struct {
	exporter Exporter
	builder  Builder
	deployer Deployer // nil when remote deployment is not configured

	mu  sync.Mutex
	run models.PublishRun
}

// New creates an Orchestrator in the idle state. deployer may be nil.
func New(exporter Exporter, builder Builder, deployer Deployer) *Orchestrator {
	return &Orchestrator{
		exporter: exporter,
		builder:  builder,
		deployer: deployer,
		run:      models.PublishRun{Status: models.PublishIdle},
	}
}

// Status returns a copy of the current run state.
func (o *Orchestrator) Status() models.PublishRun {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.run
}

// Trigger starts a publish run in the background. It returns
// ErrAlreadyRunning without touching any run state when a run is in
// flight, so concurrent triggers cannot corrupt the visible timeline.
func (o *Orchestrator) Trigger(ctx context.Context) error {
	o.mu.Lock()
	if o.run.IsRunning() {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	now := time.Now().UTC()
	o.run = models.PublishRun{
		Status:    models.PublishRunning,
		StartedAt: &now,
	}
	o.mu.Unlock()

	// The run outlives the triggering request: detach from its
	// cancellation so a client disconnect cannot abort the deploy.
	go o.execute(context.WithoutCancel(ctx))
	return nil
}

// execute runs the pipeline steps in order and records the terminal state.
func (o *Orchestrator) execute(ctx context.Context) {
	started := time.Now()

	_, count, err := o.exporter.Export()
	if err != nil {
		o.finish(0, err)
		return
	}
	slog.Info("menu exported", "items", count)

	if _, err := o.builder.Build(); err != nil {
		o.finish(count, err)
		return
	}

	if o.deployer != nil {
		if err := o.deployer.Deploy(ctx); err != nil {
			o.finish(count, err)
			return
		}
	}

	o.finish(count, nil)
	slog.Info("publish finished", "items", count, "duration", time.Since(started))
}

// finish moves the run to its terminal state.
func (o *Orchestrator) finish(count int, err error) {
	now := time.Now().UTC()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.run.FinishedAt = &now
	o.run.ExportedCount = count
	if err != nil {
		o.run.Status = models.PublishError
		o.run.Error = err.Error()
		slog.Error("publish failed", "error", err)
		return
	}
	o.run.Status = models.PublishSuccess
	o.run.Error = ""
}
