package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skilltrack/rubric-api/internal/dto"
)

// RosterCache keeps the staff submission roster in Redis with a short TTL.
// Every workflow mutation invalidates the affected assignment's entry, so
// stale reads are bounded by the TTL only when invalidation itself fails.
type RosterCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRosterCache builds the cache. A nil client disables caching entirely.
func NewRosterCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RosterCache {
	return &RosterCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "roster_cache").Logger(),
	}
}

func rosterKey(assignmentID uint) string {
	return fmt.Sprintf("roster:assignment:%d", assignmentID)
}

// Get returns the cached roster for an assignment, or false on a miss.
func (c *RosterCache) Get(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	cached, err := c.client.Get(ctx, rosterKey(assignmentID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("failed to read roster cache")
		}
		return nil, false
	}

	var roster []dto.SubmissionResponse
	if err := json.Unmarshal([]byte(cached), &roster); err != nil {
		c.logger.Warn().Err(err).Msg("failed to decode roster cache entry")
		return nil, false
	}

	return roster, true
}

// Set stores the roster for an assignment.
func (c *RosterCache) Set(ctx context.Context, assignmentID uint, roster []dto.SubmissionResponse) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(roster)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, rosterKey(assignmentID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store roster cache entry")
	}
}

// Invalidate drops the cached roster for an assignment.
func (c *RosterCache) Invalidate(ctx context.Context, assignmentID uint) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, rosterKey(assignmentID)).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate roster cache entry")
	}
}
