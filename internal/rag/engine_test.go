package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chacha-backend/internal/config"
)

func testEngine(t *testing.T, chunks []string) *Engine {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, SaveArtifacts(dir, chunks, EmbedAll(chunks, 64)))

	eng, err := NewEngine(config.RAGConfig{
		EmbedDim:             64,
		DataDir:              dir,
		ContextChars:         1000,
		TopK:                 3,
		ReliabilityThreshold: 0.70,
	})
	require.NoError(t, err)
	return eng
}

func TestEngineRetrieveReliableOnLiteralOverlap(t *testing.T) {
	eng := testEngine(t, []string{
		"the ganga river supports millions of people",
		"plastic waste and sewage pollute the water",
		"dolphins are an indicator of river health",
	})
	require.True(t, eng.Ready())

	result := eng.Retrieve("the ganga river supports millions of people", 3)
	require.NotEmpty(t, result.Chunks)
	assert.Equal(t, "the ganga river supports millions of people", result.Chunks[0])
	assert.True(t, result.Reliable)
	assert.Greater(t, result.Score, 0.9)
}

func TestEngineRetrieveUnreliableOnNoOverlap(t *testing.T) {
	eng := testEngine(t, []string{"plastic waste and sewage pollute the water"})

	result := eng.Retrieve("quantum chromodynamics lattice simulation", 1)
	assert.False(t, result.Reliable)
	assert.LessOrEqual(t, result.Score, 0.70)
}

func TestEngineEmptyCorpusNotReady(t *testing.T) {
	dir := t.TempDir()
	eng, err := NewEngine(config.RAGConfig{
		EmbedDim: 64,
		DataDir:  dir,
		TopK:     3,
	})
	require.NoError(t, err)
	assert.False(t, eng.Ready())

	result := eng.Retrieve("anything", 3)
	assert.Empty(t, result.Chunks)
	assert.False(t, result.Reliable)
}

func TestEngineStatus(t *testing.T) {
	eng := testEngine(t, []string{"a", "b"})
	status := eng.Status()
	assert.Equal(t, 2, status["chunks"])
	assert.Equal(t, 64, status["embed_dim"])
}
