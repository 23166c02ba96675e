package rag

import (
	"testing"

	"rolerag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSources_DedupByFilenameFirstOccurrence(t *testing.T) {
	chunks := []types.Chunk{
		chunkFixture("doc1_chunk1", "policy.pdf", "x"),
		chunkFixture("doc2_chunk1", "sla.pdf", "y"),
		chunkFixture("doc1_chunk4", "policy.pdf", "z"),
	}

	sources := collectSources(chunks)

	require.Len(t, sources, 2)
	assert.Equal(t, "policy.pdf", sources[0].SourceFile)
	assert.Equal(t, "sla.pdf", sources[1].SourceFile)
}

func TestCollectSources_CarriesClassification(t *testing.T) {
	chunks := []types.Chunk{chunkFixture("doc1_chunk1", "policy.pdf", "x")}

	sources := collectSources(chunks)

	require.Len(t, sources, 1)
	assert.Equal(t, "neutral", sources[0].DocType)
	require.NotNil(t, sources[0].DocTypeScore)
	assert.InDelta(t, 0.9, *sources[0].DocTypeScore, 1e-9)
}

func TestBuildContext_LabelsAndDelimits(t *testing.T) {
	chunks := []types.Chunk{
		chunkFixture("doc1_chunk1", "limits.txt", "Users may transfer up to $500/day."),
		chunkFixture("doc2_chunk1", "sla.pdf", "Uptime commitment is 99.9%."),
	}

	got := buildContext(chunks)

	want := "Source Document: 'limits.txt'\nContent Snippet: Users may transfer up to $500/day." +
		"\n---\n" +
		"Source Document: 'sla.pdf'\nContent Snippet: Uptime commitment is 99.9%."
	assert.Equal(t, want, got)
}

func TestCountTokens_Positive(t *testing.T) {
	assert.Greater(t, countTokens("Users may transfer up to five hundred dollars per day according to policy."), 0)
}
