// Package resultscache caches results projections in Redis for the live
// polling endpoint. The cache is strictly an optimization: every failure
// path degrades to a miss and the projector recomputes from the tally store.
package resultscache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"ballotbox/internal/voting/models"
	id "ballotbox/pkg/domain"
)

// Redis is a read-through cache keyed by election.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func key(electionID id.ElectionID) string {
	return "results:" + electionID.String()
}

func (c *Redis) Get(ctx context.Context, electionID id.ElectionID) (*models.Results, bool) {
	raw, err := c.client.Get(ctx, key(electionID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "results cache read failed", "error", err)
		}
		return nil, false
	}

	var results models.Results
	if err := json.Unmarshal(raw, &results); err != nil {
		c.logger.WarnContext(ctx, "results cache entry corrupt, dropping", "error", err)
		c.client.Del(ctx, key(electionID))
		return nil, false
	}
	return &results, true
}

func (c *Redis) Set(ctx context.Context, results *models.Results) {
	raw, err := json.Marshal(results)
	if err != nil {
		c.logger.WarnContext(ctx, "results cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key(results.ElectionID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "results cache write failed", "error", err)
	}
}

// Invalidate drops the cached projection, used when an election is deleted.
func (c *Redis) Invalidate(ctx context.Context, electionID id.ElectionID) {
	if err := c.client.Del(ctx, key(electionID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "results cache invalidate failed", "error", err)
	}
}
