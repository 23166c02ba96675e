package rag

import (
	"context"
	"fmt"
	"strings"

	"rolerag/model"

	"go.uber.org/zap"
)

const rewriterSystemPrompt = "You are an expert query rewriter. Your task is to rewrite the user's query to be specific to their professional role, making it ideal for a semantic database search. Respond with ONLY the rewritten query text and nothing else."

// rewriteQuery reformulates the question in the role's domain vocabulary to
// improve vector retrieval. Retrieval never runs on an empty query: if the
// model returns nothing usable, the original question is used as-is.
func (p *Pipeline) rewriteQuery(ctx context.Context, question, role string) (string, error) {
	messages := []model.Message{
		{Role: "system", Content: rewriterSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("User's Role: %s\nOriginal Question: %q\n\nRewritten Query:", role, question)},
	}

	rewritten, err := p.llm.Chat(ctx, messages,
		model.WithTemperature(0),
		model.WithMaxTokens(100),
	)
	if err != nil {
		return "", fmt.Errorf("query rewriting: %w", err)
	}

	rewritten = strings.TrimSpace(strings.ReplaceAll(rewritten, `"`, ""))
	if rewritten == "" {
		return question, nil
	}

	p.logger.Info("query rewritten for retrieval", zap.String("query", rewritten))
	return rewritten, nil
}
