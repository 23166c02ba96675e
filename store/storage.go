package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for lookups against an unknown session id,
// so callers can tell a bad id apart from an internal failure.
var ErrSessionNotFound = errors.New("session not found")

type PostgresStore struct {
	pool      *pgxpool.Pool
	metaCache *cache.Cache
	logger    *zap.Logger
}

func NewPostgresStore(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
		// Session role and filenames are immutable after creation, so a
		// plain TTL cache in front of the ledger is safe.
		metaCache: cache.New(10*time.Minute, 30*time.Minute),
		logger:    logger,
	}, nil
}

func (s *PostgresStore) Init(ctx context.Context) error {
	query := `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		role TEXT NOT NULL,
		filenames JSONB NOT NULL,
		history JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS session_chunks (
		session_id UUID NOT NULL,
		chunk_id TEXT NOT NULL,
		content TEXT NOT NULL,
		source_file TEXT NOT NULL,
		doc_type TEXT NOT NULL,
		doc_type_score DOUBLE PRECISION,
		embedding vector(768),
		PRIMARY KEY (session_id, chunk_id)
	);

	CREATE INDEX IF NOT EXISTS idx_session_chunks_embedding
		ON session_chunks USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_session_chunks_session
		ON session_chunks(session_id);
	`
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("postgres connection pool closed")
	}
}
