// Package rag runs the per-question pipeline: role gating, query rewriting,
// retrieval with reranking, and grounded answer synthesis.
package rag

import (
	"context"

	"rolerag/model"
	"rolerag/store"
	"rolerag/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notFoundAnswer is the fixed reply for questions with no retrievable
// context. The generative model is never called in that case.
const notFoundAnswer = "I could not find relevant information in the uploaded documents to answer your question."

// Pipeline holds the process-wide model singletons and the vector store.
// Constructed once at startup and shared read-only across requests.
type Pipeline struct {
	llm      model.LLMProvider
	embedder model.Embedder
	reranker model.Reranker
	vectors  store.VectorStorer
	logger   *zap.Logger

	topK  int // candidates fetched from the vector store
	keepN int // chunks kept after reranking
}

func New(
	llm model.LLMProvider,
	embedder model.Embedder,
	reranker model.Reranker,
	vectors store.VectorStorer,
	logger *zap.Logger,
	topK, keepN int,
) *Pipeline {
	if topK <= 0 {
		topK = 10
	}
	if keepN <= 0 {
		keepN = 4
	}
	return &Pipeline{
		llm:      llm,
		embedder: embedder,
		reranker: reranker,
		vectors:  vectors,
		logger:   logger,
		topK:     topK,
		keepN:    keepN,
	}
}

// Answer runs the full pipeline for one question against one session. Both
// short-circuits (out-of-role question, empty retrieval) come back as
// ordinary answers with empty sources, not as errors.
func (p *Pipeline) Answer(ctx context.Context, sessionID uuid.UUID, question, role string) (*types.ChatResponse, error) {
	verdict, err := p.routeQuestion(ctx, question, role)
	if err != nil {
		return nil, err
	}
	if !verdict.Relevant {
		p.logger.Info("question gated by role router",
			zap.String("session_id", sessionID.String()),
			zap.String("role", role))
		return &types.ChatResponse{Answer: verdict.Reason, Sources: []types.Source{}}, nil
	}

	query, err := p.rewriteQuery(ctx, question, role)
	if err != nil {
		return nil, err
	}

	chunks, err := p.retrieve(ctx, sessionID, query)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &types.ChatResponse{Answer: notFoundAnswer, Sources: []types.Source{}}, nil
	}

	answer, err := p.synthesize(ctx, question, role, chunks)
	if err != nil {
		return nil, err
	}

	return &types.ChatResponse{
		Answer:  answer,
		Sources: collectSources(chunks),
	}, nil
}
