// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"log/slog"

	"ganbara/internal/cache"
	"ganbara/internal/models"
)

// Watch streams full menu snapshots. The channel receives the current
// snapshot immediately, then a fresh one after every catalog change
// event. Each delivery fully replaces the previous state — consumers
// must not patch incrementally. Cancelling ctx tears the watch down;
// the channel is closed afterwards.
func Watch(ctx context.Context, menu *MenuStore, feed *cache.CatalogCache) <-chan []models.MenuItem {
	out := make(chan []models.MenuItem, 1)
	changes := feed.Changes(ctx)

	go func() {
		defer close(out)

		send := func() {
			items, err := menu.ListAll()
			if err != nil {
				slog.Warn("menu watch snapshot failed", "error", err)
				return
			}
			// Replace a stale undelivered snapshot instead of blocking.
			select {
			case <-out:
			default:
			}
			select {
			case out <- items:
			case <-ctx.Done():
			}
		}

		send()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				send()
			}
		}
	}()

	return out
}
