// Package redis provides the Redis-backed incident deduplication store.
package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Deduper implements ports.IncidentDeduper using Redis SET NX PX: the first
// escalation signal for a key claims the incident ID for the TTL window;
// later signals read the claimed ID back.
type Deduper struct {
	client *backend.Client
	prefix string
}

// NewDeduper creates a Redis deduper.
func NewDeduper(client *backend.Client, prefix string) *Deduper {
	return &Deduper{client: client, prefix: prefix}
}

// Reserve claims incidentID for key, or returns the existing claim.
func (d *Deduper) Reserve(ctx context.Context, key, incidentID string, ttl time.Duration) (string, bool, error) {
	dedupKey := d.prefix + "incident:" + key

	created, err := d.client.SetNX(ctx, dedupKey, incidentID, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis error reserving incident: %w", err)
	}
	if created {
		return incidentID, true, nil
	}

	owner, err := d.client.Get(ctx, dedupKey).Result()
	if err == backend.Nil {
		// The claim expired between SetNX and Get; claim it now.
		if _, err := d.client.SetNX(ctx, dedupKey, incidentID, ttl).Result(); err != nil {
			return "", false, fmt.Errorf("redis error re-reserving incident: %w", err)
		}
		return incidentID, true, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis error reading incident owner: %w", err)
	}
	return owner, false, nil
}
