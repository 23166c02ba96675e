package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rolerag/model"
	"rolerag/types"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

const (
	// contextDelimiter separates the retained chunks in the grounding
	// context block.
	contextDelimiter = "\n---\n"

	// maxContextTokens caps the assembled context so the full prompt plus
	// a 512-token answer stays inside the model's window.
	maxContextTokens = 6000

	answerMaxTokens   = 512
	answerTemperature = 0.1
)

const answerSystemPromptFormat = `You are a precise, factual assistant acting as a %s. Your task is to answer the user's question based *only* on the provided context. Follow these rules strictly:
1.  **Reasoning for 'What If':** If the user asks a hypothetical 'what if' question, use the facts from the context to reason about the scenario and provide a step-by-step explanation for your conclusion.
2.  **Be Direct:** For factual questions, directly answer the question. Do not provide long explanations or summarize the entire source document.
3.  **Use Formatting:** Structure your answer with bullet points (*) and bold text (**) to highlight key information.
4.  **Stay in Context:** If the answer is not in the provided context, you must respond with "Based on the provided documents, I cannot answer that question."
`

// synthesize builds the grounding context from the retained chunks and asks
// the model for a role-voiced, context-constrained answer. The prompt uses
// the ORIGINAL question; the rewritten query served retrieval only.
func (p *Pipeline) synthesize(ctx context.Context, question, role string, chunks []types.Chunk) (string, error) {
	contextBlock := buildContext(chunks)

	// Drop the lowest-ranked chunks first if the context outgrows the
	// token budget. At least one chunk always remains.
	for len(chunks) > 1 && countTokens(contextBlock) > maxContextTokens {
		chunks = chunks[:len(chunks)-1]
		contextBlock = buildContext(chunks)
	}
	p.logger.Info("context assembled",
		zap.Int("chunks", len(chunks)),
		zap.Int("tokens", countTokens(contextBlock)))

	messages := []model.Message{
		{Role: "system", Content: fmt.Sprintf(answerSystemPromptFormat, role)},
		{Role: "user", Content: fmt.Sprintf("CONTEXT SNIPPETS:\n---\n%s\n---\n\nQUESTION: %q\n\nANSWER:", contextBlock, question)},
	}

	answer, err := p.llm.Chat(ctx, messages,
		model.WithTemperature(answerTemperature),
		model.WithMaxTokens(answerMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("answer generation: %w", err)
	}
	return answer, nil
}

// buildContext labels each retained chunk with its source filename, in
// reranked order.
func buildContext(chunks []types.Chunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = fmt.Sprintf("Source Document: '%s'\nContent Snippet: %s", chunk.Meta.SourceFile, chunk.Content)
	}
	return strings.Join(parts, contextDelimiter)
}

// collectSources lists the retained chunks' source documents, deduplicated
// by filename in first-occurrence order.
func collectSources(chunks []types.Chunk) []types.Source {
	sources := make([]types.Source, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		if _, ok := seen[chunk.Meta.SourceFile]; ok {
			continue
		}
		seen[chunk.Meta.SourceFile] = struct{}{}
		sources = append(sources, types.Source{
			SourceFile:   chunk.Meta.SourceFile,
			DocType:      chunk.Meta.DocType,
			DocTypeScore: chunk.Meta.DocTypeScore,
		})
	}
	return sources
}

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// countTokens measures text with the cl100k_base encoding. If the encoding
// cannot be loaded a rough bytes-per-token estimate keeps the budget check
// working.
func countTokens(text string) int {
	encoderOnce.Do(func() {
		encoder, _ = tiktoken.GetEncoding("cl100k_base")
	})
	if encoder == nil {
		return len(text) / 4
	}
	return len(encoder.Encode(text, nil, nil))
}
