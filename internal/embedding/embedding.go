// Package embedding exposes resume embeddings to the matcher. Embedding
// generation itself happens elsewhere; this service only reads vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ErrNoEmbedding is returned when a resume has no stored vector yet.
var ErrNoEmbedding = errors.New("resume has no embedding")

// Source supplies the embedding for a resume.
type Source interface {
	ResumeEmbedding(ctx context.Context, resumeID string) ([]float32, error)
}

// PostgresSource reads embeddings from the resumes table.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource returns a PostgresSource.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// ResumeEmbedding fetches the vector for resumeID.
func (s *PostgresSource) ResumeEmbedding(ctx context.Context, resumeID string) ([]float32, error) {
	var vec pgvector.Vector
	err := s.pool.QueryRow(ctx,
		`SELECT embedding FROM resumes WHERE id = $1 AND embedding IS NOT NULL`,
		resumeID,
	).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoEmbedding
	}
	if err != nil {
		return nil, fmt.Errorf("query resume embedding: %w", err)
	}
	return vec.Slice(), nil
}
