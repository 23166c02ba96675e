package rag

import (
	"context"
	"fmt"
	"testing"

	"rolerag/model"
	"rolerag/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedLLM pops one canned response per Chat call.
type scriptedLLM struct {
	responses []string
	calls     int
	histories [][]model.Message
}

func (s *scriptedLLM) Chat(_ context.Context, history []model.Message, _ ...model.Option) (string, error) {
	s.histories = append(s.histories, history)
	if s.calls >= len(s.responses) {
		return "", fmt.Errorf("unexpected llm call %d", s.calls+1)
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type fixedReranker struct {
	scores []float64
	calls  int
}

func (r *fixedReranker) Score(_ context.Context, _ string, passages []string) ([]float64, error) {
	r.calls++
	if len(r.scores) != len(passages) {
		return nil, fmt.Errorf("fixture has %d scores for %d passages", len(r.scores), len(passages))
	}
	return r.scores, nil
}

type fakeVectors struct {
	chunks   []types.Chunk
	searches int
}

func (f *fakeVectors) ReplaceCollection(context.Context, uuid.UUID, []types.Chunk) error {
	return nil
}

func (f *fakeVectors) Search(_ context.Context, _ uuid.UUID, _ []float32, limit int) ([]types.Chunk, error) {
	f.searches++
	chunks := f.chunks
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

func chunkFixture(id, file, content string) types.Chunk {
	score := 0.9
	return types.Chunk{
		ID:      id,
		Content: content,
		Meta: types.ChunkMeta{
			SourceFile:   file,
			DocType:      "neutral",
			DocTypeScore: &score,
		},
	}
}

func newTestRAG(llm *scriptedLLM, reranker *fixedReranker, vectors *fakeVectors) *Pipeline {
	return New(llm, fixedEmbedder{}, reranker, vectors, zap.NewNop(), 10, 4)
}

func TestAnswer_RoleGateShortCircuits(t *testing.T) {
	llm := &scriptedLLM{responses: []string{types.RoleProductLead}}
	vectors := &fakeVectors{chunks: []types.Chunk{chunkFixture("doc1_chunk1", "sla.pdf", "SLA terms")}}
	p := newTestRAG(llm, &fixedReranker{}, vectors)

	resp, err := p.Answer(context.Background(), uuid.New(),
		"What transfer limits should we offer?", types.RoleComplianceLead)

	require.NoError(t, err)
	assert.Contains(t, resp.Answer, "outside the scope of a Compliance Lead")
	assert.Contains(t, resp.Answer, "**Product Lead**")
	assert.Empty(t, resp.Sources)
	assert.Equal(t, 1, llm.calls, "a gated question costs exactly one model call")
	assert.Zero(t, vectors.searches, "no retrieval after the role gate")
}

func TestAnswer_RedirectOmitsUnknownPredictedRole(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"Chief Vibes Officer"}}
	p := newTestRAG(llm, &fixedReranker{}, &fakeVectors{})

	resp, err := p.Answer(context.Background(), uuid.New(), "anything", types.RoleTechLead)

	require.NoError(t, err)
	assert.Contains(t, resp.Answer, "outside the scope of a Tech Lead")
	assert.NotContains(t, resp.Answer, "better suited")
}

func TestAnswer_UnknownAskerRoleIsAlwaysRelevant(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"rewritten query", "Here is the answer."}}
	vectors := &fakeVectors{chunks: []types.Chunk{chunkFixture("doc1_chunk1", "a.txt", "content")}}
	p := newTestRAG(llm, &fixedReranker{scores: []float64{1.0}}, vectors)

	resp, err := p.Answer(context.Background(), uuid.New(), "a question", "Intern")

	require.NoError(t, err)
	assert.Equal(t, "Here is the answer.", resp.Answer)
	assert.Equal(t, 2, llm.calls, "the router is skipped for an unknown role")
}

func TestAnswer_EmptyRetrievalNeverGenerates(t *testing.T) {
	llm := &scriptedLLM{responses: []string{types.RoleProductLead, "rewritten query"}}
	vectors := &fakeVectors{}
	p := newTestRAG(llm, &fixedReranker{}, vectors)

	resp, err := p.Answer(context.Background(), uuid.New(),
		"What is the daily transfer limit?", types.RoleProductLead)

	require.NoError(t, err)
	assert.Equal(t, notFoundAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, 2, llm.calls, "router and rewriter only, no answer generation")
	assert.Equal(t, 1, vectors.searches)
}

func TestAnswer_EndToEnd(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		types.RoleProductLead,
		"daily transfer limit for retail users",
		"The daily transfer limit is **$500** per user.",
	}}
	vectors := &fakeVectors{chunks: []types.Chunk{
		chunkFixture("doc1_chunk1", "limits.txt", "Users may transfer up to $500/day."),
	}}
	p := newTestRAG(llm, &fixedReranker{scores: []float64{2.4}}, vectors)

	resp, err := p.Answer(context.Background(), uuid.New(),
		"What is the daily transfer limit?", types.RoleProductLead)

	require.NoError(t, err)
	assert.Contains(t, resp.Answer, "$500")
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "limits.txt", resp.Sources[0].SourceFile)

	// The synthesizer prompt carries the original question, not the
	// rewritten retrieval query.
	final := llm.histories[len(llm.histories)-1]
	require.Len(t, final, 2)
	assert.Contains(t, final[1].Content, "What is the daily transfer limit?")
	assert.Contains(t, final[1].Content, "Source Document: 'limits.txt'")
}
