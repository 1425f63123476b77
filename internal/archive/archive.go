// Package archive persists the final filtered match list for later reads by
// other services. Archival sits past the match boundary: failures here are
// logged and never propagated as match failures.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/match-service/internal/model"
)

// Sink accepts the final match list for a resume.
type Sink interface {
	Archive(ctx context.Context, resumeID string, matches []model.JobMatch) error
}

// latestKey holds the most recent match payload per resume.
const latestKey = "app:match:latest:%s"

// RedisSink stores the payload as JSON under a TTL'd key.
type RedisSink struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSink returns a RedisSink retaining payloads for ttl.
func NewRedisSink(rdb *redis.Client, ttl time.Duration) *RedisSink {
	return &RedisSink{rdb: rdb, ttl: ttl}
}

// Archive serialises matches and writes them under the resume's key.
func (s *RedisSink) Archive(ctx context.Context, resumeID string, matches []model.JobMatch) error {
	payload, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("marshal matches: %w", err)
	}

	key := fmt.Sprintf(latestKey, resumeID)
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
