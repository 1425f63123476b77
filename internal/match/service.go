package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobmate/match-service/internal/archive"
	"jobmate/match-service/internal/cache"
	"jobmate/match-service/internal/exclusion"
	"jobmate/match-service/internal/model"
)

// matchesReadyChannel carries the non-fatal post-match event, mirroring the
// other jobmate services' Redis pub/sub wiring.
const matchesReadyChannel = "EVENT_MATCHES_READY"

// pipeline is the matcher surface the orchestrator drives. Satisfied by
// *VectorMatcher; test doubles implement it directly.
type pipeline interface {
	Match(ctx context.Context, req model.MatchRequest) ([]model.JobMatch, int, Stage, error)
}

// ServiceConfig carries the orchestrator's tunables.
type ServiceConfig struct {
	// EmbeddingDim is the required embedding length; mismatches are rejected
	// before any query is built.
	EmbeddingDim int
	// Timeout bounds total backing-store time per request.
	Timeout time.Duration
	// DefaultLimit is applied when the request carries no page size.
	DefaultLimit int
	// MaxLimit caps the page size a caller may request.
	MaxLimit int
	// DefaultRadiusKM replaces a non-positive radius in an otherwise complete
	// geo triple. A partial triple is still a validation error downstream.
	DefaultRadiusKM float64
}

// ServiceDeps aggregates the orchestrator's collaborators.
type ServiceDeps struct {
	Matcher   pipeline
	Cache     *cache.Cache
	Providers []exclusion.Provider
	// Sink receives the final filtered matches; nil disables archival.
	Sink archive.Sink
	// Events publishes the matches-ready event; nil disables publishing.
	Events *redis.Client
	Logger *zap.Logger
}

// Service is the match orchestrator: the sole entry point this core exposes.
// It owns the cache instance and the per-request exclusion handling.
type Service struct {
	cfg  ServiceConfig
	deps ServiceDeps
}

// NewService returns a configured Service.
func NewService(cfg ServiceConfig, deps ServiceDeps) *Service {
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 50
	}
	return &Service{cfg: cfg, deps: deps}
}

// Match turns a request into a ranked, filtered, paginated match list.
//
// Cached payloads are re-filtered against the current exclusion set, since an
// entry may predate a newly applied or newly cooled job. Only filtered
// results are ever cached, so an excluded job cannot leak to a future
// request that happens to share the fingerprint.
func (s *Service) Match(ctx context.Context, req model.MatchRequest) (*model.MatchResult, error) {
	if len(req.Embedding) == 0 {
		return nil, &ValidationError{Msg: "embedding is required"}
	}
	if len(req.Embedding) != s.cfg.EmbeddingDim {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("embedding dimension %d does not match corpus dimension %d",
				len(req.Embedding), s.cfg.EmbeddingDim),
		}
	}

	if req.Limit <= 0 {
		req.Limit = s.cfg.DefaultLimit
	}
	if req.Limit > s.cfg.MaxLimit {
		req.Limit = s.cfg.MaxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	if req.Location.HasGeo() && *req.Location.RadiusKM <= 0 && s.cfg.DefaultRadiusKM > 0 {
		// Copy before defaulting; the caller owns the original filter.
		loc := *req.Location
		radius := s.cfg.DefaultRadiusKM
		loc.RadiusKM = &radius
		req.Location = &loc
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req.Excluded = exclusion.Collect(ctx, s.deps.Providers, req.UserID, s.deps.Logger)
	fingerprint := cache.Fingerprint(req)

	if req.UseCache {
		if cached, ok := s.deps.Cache.Get(fingerprint); ok {
			s.deps.Logger.Debug("cache hit", zap.String("fingerprint", fingerprint))
			return &model.MatchResult{
				Matches:  exclusion.Filter(cached, req.Excluded),
				CacheHit: true,
			}, nil
		}
	}

	matches, rejected, stage, err := s.deps.Matcher.Match(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrSearchTimeout, err)
		}
		return nil, err
	}

	filtered := exclusion.Filter(matches, req.Excluded)

	if req.UseCache {
		s.deps.Cache.Set(fingerprint, filtered)
	}

	s.archive(ctx, req, filtered)
	s.publish(ctx, req, len(filtered))

	return &model.MatchResult{
		Matches:  filtered,
		Rejected: rejected,
		Strategy: string(stage),
	}, nil
}

// PurgeCache drops expired cache entries, returning the count. Exposed for
// the scheduler.
func (s *Service) PurgeCache() int {
	return s.deps.Cache.PurgeExpired()
}

// archive hands the final list to the persistence sink (non-fatal).
func (s *Service) archive(ctx context.Context, req model.MatchRequest, matches []model.JobMatch) {
	if s.deps.Sink == nil {
		return
	}
	if err := s.deps.Sink.Archive(ctx, req.ResumeID, matches); err != nil {
		s.deps.Logger.Warn("archive matches failed",
			zap.String("resume_id", req.ResumeID), zap.Error(err))
	}
}

// publish emits the matches-ready event (non-fatal).
func (s *Service) publish(ctx context.Context, req model.MatchRequest, count int) {
	if s.deps.Events == nil {
		return
	}
	event, _ := json.Marshal(map[string]any{
		"type":     matchesReadyChannel,
		"resumeId": req.ResumeID,
		"userId":   req.UserID,
		"matches":  count,
	})
	if err := s.deps.Events.Publish(ctx, matchesReadyChannel, event).Err(); err != nil {
		s.deps.Logger.Warn("publish EVENT_MATCHES_READY failed", zap.Error(err))
	}
}
