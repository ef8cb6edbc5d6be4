package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService()
	ctx := context.Background()

	first, err := svc.Embed(ctx, "O gato preto pulou sobre o muro alto.")
	require.NoError(t, err)
	second, err := svc.Embed(ctx, "O gato preto pulou sobre o muro alto.")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, Dimensions)
	assert.Equal(t, Dimensions, svc.Dimensions())
}

func TestEmbed_Normalized(t *testing.T) {
	svc := NewEmbeddingService()

	vector, err := svc.Embed(context.Background(), "uma frase qualquer para teste")
	require.NoError(t, err)

	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestEmbed_SimilarityOrdering(t *testing.T) {
	svc := NewEmbeddingService()
	ctx := context.Background()

	a, err := svc.Embed(ctx, "o gato preto pulou sobre o muro")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "o gato preto pulou sobre a cerca")
	require.NoError(t, err)
	c, err := svc.Embed(ctx, "política monetária internacional contemporânea")
	require.NoError(t, err)

	assert.Greater(t, cosine(a, b), cosine(a, c),
		"near-duplicate sentences must score above unrelated ones")
}

func TestEmbed_EmptyText(t *testing.T) {
	svc := NewEmbeddingService()

	vector, err := svc.Embed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vector, Dimensions)
	for _, v := range vector {
		assert.Zero(t, v)
	}
}

func TestEmbedBatch_MatchesSingleEmbeds(t *testing.T) {
	svc := NewEmbeddingService()
	ctx := context.Background()

	texts := []string{"primeira frase", "segunda frase", "terceira frase"}
	batch, err := svc.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, text := range texts {
		single, err := svc.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

func TestPing_AlwaysHealthy(t *testing.T) {
	svc := NewEmbeddingService()

	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
	assert.Equal(t, "feature-hashing", svc.ModelName())
}
