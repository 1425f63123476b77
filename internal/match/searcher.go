package match

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// JobRow is the backing store's native row shape. Rows are ephemeral: they
// exist only between query execution and validation.
type JobRow = map[string]any

// Store is the query surface the vector matcher runs against. All three
// operations are idempotent reads.
type Store interface {
	// ProbeCount returns min(actual count, limit). It exists only to pick a
	// strategy and must never be reported as a true total.
	ProbeCount(ctx context.Context, preds *PredicateSet, limit int) (int, error)

	// Fallback returns up to limit rows with no similarity ranking.
	Fallback(ctx context.Context, preds *PredicateSet, limit int) ([]JobRow, error)

	// VectorSearch returns up to limit rows offset by offset, ordered by
	// similarity descending (1 minus cosine distance).
	VectorSearch(ctx context.Context, preds *PredicateSet, embedding []float32, limit, offset int) ([]JobRow, error)
}

const jobColumns = `id, title, description, short_description, workplace_type,
	       field, experience_level, required_skills, country, city,
	       company_name, company_logo_url, source_portal, posted_date,
	       job_state, apply_link`

// Searcher executes match queries against PostgreSQL (pgvector + PostGIS).
// Transient failures are retried with exponential backoff; exhausted retries
// surface as ErrSearchUnavailable.
type Searcher struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	retry  RetryConfig
}

// NewSearcher returns a configured Searcher.
func NewSearcher(pool *pgxpool.Pool, logger *zap.Logger, retry RetryConfig) *Searcher {
	return &Searcher{pool: pool, logger: logger, retry: retry}
}

// ProbeCount counts matching rows, capped at limit so the probe stays cheap
// regardless of how broad the predicates are.
func (s *Searcher) ProbeCount(ctx context.Context, preds *PredicateSet, limit int) (int, error) {
	n := len(preds.Args())
	sql := fmt.Sprintf(
		`SELECT COUNT(*) FROM (SELECT 1 FROM jobs WHERE %s LIMIT $%d) AS probe`,
		preds.Where(), n+1,
	)
	args := appendArgs(preds.Args(), limit)

	return retryWithBackoff(ctx, s.retry, func() (int, error) {
		var count int
		if err := s.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
			s.logger.Warn("probe count failed", zap.Error(err))
			return 0, fmt.Errorf("%w: probe count: %v", ErrSearchUnavailable, err)
		}
		return count, nil
	})
}

// Fallback fetches rows without vector math. Ordered by posted_date so the
// unranked path stays deterministic. Offset is intentionally not honoured:
// it has no meaning for the small unranked pools this path serves.
func (s *Searcher) Fallback(ctx context.Context, preds *PredicateSet, limit int) ([]JobRow, error) {
	n := len(preds.Args())
	sql := fmt.Sprintf(
		`SELECT %s, 0.0::float8 AS similarity
		 FROM jobs WHERE %s
		 ORDER BY posted_date DESC NULLS LAST
		 LIMIT $%d`,
		jobColumns, preds.Where(), n+1,
	)
	args := appendArgs(preds.Args(), limit)

	return s.queryRows(ctx, "fallback", sql, args)
}

// VectorSearch runs the full similarity query. Rows without an embedding are
// excluded here so the distance operator never sees NULL.
func (s *Searcher) VectorSearch(ctx context.Context, preds *PredicateSet, embedding []float32, limit, offset int) ([]JobRow, error) {
	n := len(preds.Args())
	sql := fmt.Sprintf(
		`SELECT %s, 1 - (embedding <=> $%d) AS similarity
		 FROM jobs
		 WHERE %s AND embedding IS NOT NULL
		 ORDER BY embedding <=> $%d
		 LIMIT $%d OFFSET $%d`,
		jobColumns, n+1, preds.Where(), n+1, n+2, n+3,
	)
	args := appendArgs(preds.Args(), pgvector.NewVector(embedding), limit, offset)

	return s.queryRows(ctx, "vector search", sql, args)
}

// queryRows executes sql under the retry budget and collects rows into the
// raw column→value shape consumed by the validator.
func (s *Searcher) queryRows(ctx context.Context, op, sql string, args []any) ([]JobRow, error) {
	return retryWithBackoff(ctx, s.retry, func() ([]JobRow, error) {
		rows, err := s.pool.Query(ctx, sql, args...)
		if err != nil {
			s.logger.Warn("query failed", zap.String("op", op), zap.Error(err))
			return nil, fmt.Errorf("%w: %s: %v", ErrSearchUnavailable, op, err)
		}

		collected, err := pgx.CollectRows(rows, pgx.RowToMap)
		if err != nil {
			s.logger.Warn("row collection failed", zap.String("op", op), zap.Error(err))
			return nil, fmt.Errorf("%w: %s: %v", ErrSearchUnavailable, op, err)
		}
		return collected, nil
	})
}

// appendArgs copies the predicate arguments before appending query-local
// parameters, so one PredicateSet can back the probe and the main query.
func appendArgs(predArgs []any, extra ...any) []any {
	args := make([]any, 0, len(predArgs)+len(extra))
	args = append(args, predArgs...)
	return append(args, extra...)
}
