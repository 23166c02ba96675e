package rag

import (
	"context"
	"testing"

	"rolerag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouterRAG(llm *scriptedLLM) *Pipeline {
	return New(llm, fixedEmbedder{}, &fixedReranker{}, &fakeVectors{}, zap.NewNop(), 10, 4)
}

func TestRouteQuestion_MatchingRoleIsRelevant(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"  Tech Lead \n"}}
	p := newRouterRAG(llm)

	verdict, err := p.routeQuestion(context.Background(), "Why is the API slow?", types.RoleTechLead)

	require.NoError(t, err)
	assert.True(t, verdict.Relevant)
}

func TestRouteQuestion_PromptListsAllRoles(t *testing.T) {
	llm := &scriptedLLM{responses: []string{types.RoleTechLead}}
	p := newRouterRAG(llm)

	_, err := p.routeQuestion(context.Background(), "Why is the API slow?", types.RoleTechLead)

	require.NoError(t, err)
	require.Len(t, llm.histories, 1)
	prompt := llm.histories[0][1].Content
	for _, role := range types.Roles {
		assert.Contains(t, prompt, role)
		assert.Contains(t, prompt, types.RoleDescriptions[role])
	}
}

func TestRouteQuestion_MismatchRedirectsToKnownRole(t *testing.T) {
	llm := &scriptedLLM{responses: []string{types.RoleBankAllianceLead}}
	p := newRouterRAG(llm)

	verdict, err := p.routeQuestion(context.Background(),
		"What does the partner SLA say about settlement windows?", types.RoleProductLead)

	require.NoError(t, err)
	assert.False(t, verdict.Relevant)
	assert.Contains(t, verdict.Reason, "outside the scope of a Product Lead")
	assert.Contains(t, verdict.Reason, "**Bank Alliance Lead**")
}

func TestRouteQuestion_UnknownPredictionOmitsRedirect(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"General Counsel"}}
	p := newRouterRAG(llm)

	verdict, err := p.routeQuestion(context.Background(), "anything", types.RoleProductLead)

	require.NoError(t, err)
	assert.False(t, verdict.Relevant)
	assert.NotContains(t, verdict.Reason, "better suited")
}

func TestRouteQuestion_UnknownAskerRoleSkipsModel(t *testing.T) {
	llm := &scriptedLLM{}
	p := newRouterRAG(llm)

	verdict, err := p.routeQuestion(context.Background(), "anything", "Astronaut")

	require.NoError(t, err)
	assert.True(t, verdict.Relevant)
	assert.Zero(t, llm.calls)
}
