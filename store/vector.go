package store

import (
	"context"
	"fmt"

	"rolerag/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// VectorStorer is the per-session collection abstraction: a collection is
// fully replaced at ingestion time and queried by vector similarity at
// question time. It is never partially patched.
type VectorStorer interface {
	ReplaceCollection(ctx context.Context, sessionID uuid.UUID, chunks []types.Chunk) error
	Search(ctx context.Context, sessionID uuid.UUID, queryVec []float32, limit int) ([]types.Chunk, error)
}

var _ VectorStorer = (*PostgresStore)(nil)

// ReplaceCollection clears any existing chunks for the session and writes
// the new set in one transaction. Re-ingestion therefore never merges: the
// collection either holds exactly the new chunk set or is untouched.
func (s *PostgresStore) ReplaceCollection(ctx context.Context, sessionID uuid.UUID, chunks []types.Chunk) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin collection rewrite: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM session_chunks WHERE session_id = $1", sessionID); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(`
			INSERT INTO session_chunks (session_id, chunk_id, content, source_file, doc_type, doc_type_score, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sessionID, c.ID, c.Content, c.Meta.SourceFile, c.Meta.DocType, c.Meta.DocTypeScore,
			pgvector.NewVector(c.Embedding),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit collection rewrite: %w", err)
	}

	s.logger.Info("collection rebuilt",
		zap.String("session_id", sessionID.String()),
		zap.Int("chunks", len(chunks)))
	return nil
}

// Search returns the limit nearest chunks of the session's collection by
// cosine distance, closest first, with their metadata.
func (s *PostgresStore) Search(ctx context.Context, sessionID uuid.UUID, queryVec []float32, limit int) ([]types.Chunk, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	query := `
		SELECT chunk_id, content, source_file, doc_type, doc_type_score,
		       1 - (embedding <=> $2) AS distance
		FROM session_chunks
		WHERE session_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := s.pool.Query(ctx, query, sessionID, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		chunk := types.Chunk{SessionID: sessionID}
		if err := rows.Scan(
			&chunk.ID,
			&chunk.Content,
			&chunk.Meta.SourceFile,
			&chunk.Meta.DocType,
			&chunk.Meta.DocTypeScore,
			&chunk.Distance,
		); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}
