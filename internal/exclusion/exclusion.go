// Package exclusion gathers the job ids a caller must never be shown again:
// jobs already applied to and jobs inside a cooling period. Provider
// failures degrade to "proceed without that exclusion" and are never fatal
// to matching.
package exclusion

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobmate/match-service/internal/model"
)

// Provider supplies one category of excluded job ids for a user.
type Provider interface {
	Name() string
	List(ctx context.Context, userID string) ([]string, error)
}

// Collect unions all provider results. A failing provider is logged and
// skipped; the remaining exclusions still apply.
func Collect(ctx context.Context, providers []Provider, userID string, logger *zap.Logger) map[string]struct{} {
	excluded := make(map[string]struct{})
	for _, p := range providers {
		ids, err := p.List(ctx, userID)
		if err != nil {
			logger.Warn("exclusion provider failed, proceeding without it",
				zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		for _, id := range ids {
			excluded[id] = struct{}{}
		}
	}
	return excluded
}

// Filter removes excluded jobs from matches, preserving order. It is
// idempotent and re-appliable: cached payloads may predate a newly applied
// or newly cooled job, so the orchestrator filters on cache hits too.
func Filter(matches []model.JobMatch, excluded map[string]struct{}) []model.JobMatch {
	if len(excluded) == 0 {
		return matches
	}
	kept := make([]model.JobMatch, 0, len(matches))
	for _, m := range matches {
		if _, drop := excluded[m.ID]; drop {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// ─── Applied jobs (PostgreSQL) ───────────────────────────────────────────────

// AppliedJobs lists jobs the user already has an application for.
type AppliedJobs struct {
	pool *pgxpool.Pool
}

// NewAppliedJobs returns the applied-jobs provider.
func NewAppliedJobs(pool *pgxpool.Pool) *AppliedJobs {
	return &AppliedJobs{pool: pool}
}

func (a *AppliedJobs) Name() string { return "applied_jobs" }

// List returns the job ids from the user's applications. An empty userID
// yields no exclusions (anonymous matching has no application history).
func (a *AppliedJobs) List(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, nil
	}

	rows, err := a.pool.Query(ctx,
		`SELECT job_id::text FROM applications WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan application job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ─── Cooled jobs (Redis) ─────────────────────────────────────────────────────

// cooldownKey holds the global set of job ids inside a cooling period.
// Cooldown applies to every caller, so the key is not user-scoped.
const cooldownKey = "app:match:cooldown:jobs"

// CooledJobs lists jobs currently withheld from all recommendations.
type CooledJobs struct {
	rdb *redis.Client
}

// NewCooledJobs returns the cooling-period provider.
func NewCooledJobs(rdb *redis.Client) *CooledJobs {
	return &CooledJobs{rdb: rdb}
}

func (c *CooledJobs) Name() string { return "cooled_jobs" }

// List returns the members of the cooldown set.
func (c *CooledJobs) List(ctx context.Context, _ string) ([]string, error) {
	ids, err := c.rdb.SMembers(ctx, cooldownKey).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", cooldownKey, err)
	}
	return ids, nil
}
