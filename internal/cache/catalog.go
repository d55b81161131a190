// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache for the exported menu catalog
// plus a pub/sub change feed. Admin writes publish on the feed; the live
// menu watcher and the hero-slide endpoint subscribe to it so they can
// drop their cached snapshot and re-read.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// catalogKey holds the serialized exported catalog.
	catalogKey = "catalog:json"

	// changeChannel is the pub/sub channel notified on every menu write.
	changeChannel = "catalog:changed"

	// DefaultCatalogTTL is how long the serialized catalog stays cached.
	DefaultCatalogTTL = 5 * time.Minute
)

// CatalogCache manages the exported-catalog snapshot in Valkey.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a catalog cache backed by the given Valkey client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Get retrieves the cached catalog JSON. Returns false on miss.
func (c *CatalogCache) Get(ctx context.Context) ([]byte, bool) {
	val, err := c.client.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "error", err)
		return nil, false
	}
	return val, true
}

// Set stores the serialized catalog with the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, data []byte) {
	if err := c.client.Set(ctx, catalogKey, data, c.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "error", err)
	}
}

// Invalidate drops the cached catalog.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		slog.Warn("catalog cache invalidate error", "error", err)
	}
	slog.Debug("catalog cache invalidated")
}

// NotifyChanged invalidates the cached catalog and publishes a change
// event. Called after every successful menu write.
func (c *CatalogCache) NotifyChanged(ctx context.Context) {
	c.Invalidate(ctx)
	if err := c.client.Publish(ctx, changeChannel, "changed").Err(); err != nil {
		slog.Warn("catalog change publish error", "error", err)
	}
}

// Changes subscribes to the catalog change feed. The returned channel
// receives one value per change event and closes when ctx is cancelled.
// Cancelling ctx is the only teardown path; there is no partial unsubscribe.
func (c *CatalogCache) Changes(ctx context.Context) <-chan struct{} {
	sub := c.client.Subscribe(ctx, changeChannel)
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				// Coalesce bursts: a pending notification is enough.
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out
}
