package rag

import (
	"context"
	"testing"

	"rolerag/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetrieve_ReranksAndKeepsTopN(t *testing.T) {
	vectors := &fakeVectors{chunks: []types.Chunk{
		chunkFixture("doc1_chunk1", "a.txt", "A"),
		chunkFixture("doc1_chunk2", "a.txt", "B"),
		chunkFixture("doc1_chunk3", "a.txt", "C"),
		chunkFixture("doc2_chunk1", "b.txt", "D"),
		chunkFixture("doc2_chunk2", "b.txt", "E"),
	}}
	reranker := &fixedReranker{scores: []float64{1.0, 3.0, 2.0, 3.0, 0.5}}
	p := New(&scriptedLLM{}, fixedEmbedder{}, reranker, vectors, zap.NewNop(), 10, 3)

	kept, err := p.retrieve(context.Background(), uuid.New(), "query")

	require.NoError(t, err)
	require.Len(t, kept, 3)
	// B and D tie at 3.0: retrieval order breaks the tie, so B stays first.
	assert.Equal(t, "doc1_chunk2", kept[0].ID)
	assert.Equal(t, "doc2_chunk1", kept[1].ID)
	assert.Equal(t, "doc1_chunk3", kept[2].ID)
}

func TestRetrieve_EmptyCollection(t *testing.T) {
	vectors := &fakeVectors{}
	reranker := &fixedReranker{}
	p := New(&scriptedLLM{}, fixedEmbedder{}, reranker, vectors, zap.NewNop(), 10, 4)

	kept, err := p.retrieve(context.Background(), uuid.New(), "query")

	require.NoError(t, err)
	assert.Empty(t, kept)
	assert.Zero(t, reranker.calls, "nothing to rerank on an empty candidate set")
}

func TestRetrieve_FewerCandidatesThanKeepN(t *testing.T) {
	vectors := &fakeVectors{chunks: []types.Chunk{
		chunkFixture("doc1_chunk1", "a.txt", "only one"),
	}}
	p := New(&scriptedLLM{}, fixedEmbedder{}, &fixedReranker{scores: []float64{0.2}}, vectors, zap.NewNop(), 10, 4)

	kept, err := p.retrieve(context.Background(), uuid.New(), "query")

	require.NoError(t, err)
	require.Len(t, kept, 1)
}
