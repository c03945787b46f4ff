// Package redisclaims implements first-occurrence claims with Redis SETNX.
package redisclaims

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter reports how many log entries exist for a (lead, event type) pair.
type Counter interface {
	CountInteractions(ctx context.Context, requestID, eventType string) (int, error)
}

// Claimer claims (request ID, event type) pairs in Redis. The interaction
// log is consulted first so entries written before claims existed still
// count as prior occurrences.
type Claimer struct {
	client *redis.Client
	log    Counter
	ttl    time.Duration
}

// New creates a Claimer. A zero ttl keeps claims forever.
func New(client *redis.Client, log Counter, ttl time.Duration) *Claimer {
	return &Claimer{client: client, log: log, ttl: ttl}
}

// Key returns the claim key for a pair.
func Key(requestID, eventType string) string {
	return fmt.Sprintf("lead:first:%s:%s", requestID, eventType)
}

// ClaimFirstOccurrence reports true only to the caller whose SETNX created
// the key. An existing key answers without touching the log.
func (c *Claimer) ClaimFirstOccurrence(ctx context.Context, requestID, eventType string) (bool, error) {
	key := Key(requestID, eventType)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check claim %s: %w", key, err)
	}
	if exists > 0 {
		return false, nil
	}

	n, err := c.log.CountInteractions(ctx, requestID, eventType)
	if err != nil {
		return false, err
	}
	stamp := time.Now().UTC().Format(time.RFC3339)
	if n > 0 {
		// Backfill so the next event stops at the Exists check.
		if err := c.client.SetNX(ctx, key, stamp, c.ttl).Err(); err != nil {
			return false, fmt.Errorf("backfill claim %s: %w", key, err)
		}
		return false, nil
	}

	won, err := c.client.SetNX(ctx, key, stamp, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return won, nil
}
