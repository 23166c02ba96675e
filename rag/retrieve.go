package rag

import (
	"context"
	"fmt"
	"sort"

	"rolerag/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// retrieve fetches an over-large candidate set by vector similarity, then
// reranks by pairwise relevance to the query and keeps the top few. Equal
// scores keep their original retrieval order (stable sort). An empty
// candidate set comes back as an empty slice, never an error.
func (p *Pipeline) retrieve(ctx context.Context, sessionID uuid.UUID, query string) ([]types.Chunk, error) {
	queryVec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := p.vectors.Search(ctx, sessionID, queryVec, p.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	passages := make([]string, len(candidates))
	for i, chunk := range candidates {
		passages[i] = chunk.Content
	}
	scores, err := p.reranker.Score(ctx, query, passages)
	if err != nil {
		return nil, fmt.Errorf("reranking: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("reranker returned %d scores for %d passages", len(scores), len(candidates))
	}

	type scored struct {
		chunk types.Chunk
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i := range candidates {
		ranked[i] = scored{chunk: candidates[i], score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > p.keepN {
		ranked = ranked[:p.keepN]
	}
	kept := make([]types.Chunk, len(ranked))
	for i := range ranked {
		kept[i] = ranked[i].chunk
	}

	p.logger.Info("retrieval complete",
		zap.String("session_id", sessionID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("kept", len(kept)))
	return kept, nil
}
