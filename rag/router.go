package rag

import (
	"context"
	"fmt"
	"strings"

	"rolerag/model"
	"rolerag/types"

	"go.uber.org/zap"
)

// Verdict is the role router's decision. When not relevant, Reason carries
// the user-visible redirect message.
type Verdict struct {
	Relevant bool
	Reason   string
}

const routerSystemPrompt = "You are an expert dispatcher. Your task is to identify the SINGLE most relevant role for the user's question from the list. Respond with only the role title."

// routeQuestion asks the model which role the question best fits and gates
// the pipeline on a mismatch. An unknown asker role is treated as always
// relevant, the conservative default. One gated question costs exactly one
// model call, no retrieval or generation.
func (p *Pipeline) routeQuestion(ctx context.Context, question, role string) (Verdict, error) {
	if !types.KnownRole(role) {
		return Verdict{Relevant: true}, nil
	}

	var sb strings.Builder
	sb.WriteString("Role Descriptions:\n")
	for _, name := range types.Roles {
		fmt.Fprintf(&sb, "- %s: %s\n", name, types.RoleDescriptions[name])
	}
	fmt.Fprintf(&sb, "\nUser's Question: %q\n\nBased on the question, which role is most relevant?", question)

	messages := []model.Message{
		{Role: "system", Content: routerSystemPrompt},
		{Role: "user", Content: sb.String()},
	}

	predicted, err := p.llm.Chat(ctx, messages,
		model.WithTemperature(0),
		model.WithMaxTokens(20),
	)
	if err != nil {
		return Verdict{}, fmt.Errorf("role routing: %w", err)
	}
	predicted = strings.TrimSpace(predicted)

	p.logger.Info("router classified question", zap.String("predicted_role", predicted))

	if predicted == role {
		return Verdict{Relevant: true}, nil
	}

	reason := fmt.Sprintf("This question seems outside the scope of a %s.", role)
	if types.KnownRole(predicted) {
		reason += fmt.Sprintf(" It seems better suited for a **%s**.", predicted)
	}
	return Verdict{Relevant: false, Reason: reason}, nil
}
