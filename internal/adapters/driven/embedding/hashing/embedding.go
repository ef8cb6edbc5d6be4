// Package hashing provides a deterministic, offline embedding service.
// Token counts are hashed into a fixed-size vector, which gives stable
// sentence similarity without any external model. Quality is well below a
// real embedding model, but the pipeline stays usable and testable when no
// provider is configured.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Dimensions of the hashed feature space.
const Dimensions = 256

// EmbeddingService embeds text by feature hashing of its tokens.
type EmbeddingService struct{}

// NewEmbeddingService creates a hashing embedding service.
func NewEmbeddingService() *EmbeddingService {
	return &EmbeddingService{}
}

// Embed maps the text's tokens into a fixed vector. The second hash bit
// decides the sign, which keeps colliding tokens from always reinforcing
// each other. The result is L2-normalized.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, Dimensions)

	for _, token := range hashTokens(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum32()

		idx := sum % Dimensions
		if (sum>>16)&1 == 1 {
			vector[idx]++
		} else {
			vector[idx]--
		}
	}

	normalize(vector)
	return vector, nil
}

// EmbedBatch embeds each text independently.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return Dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return "feature-hashing"
}

// Ping always succeeds; there is no remote service.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// hashTokens lowercases and splits on anything that is not a letter or digit.
func hashTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(vector []float32) {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vector {
		vector[i] /= norm
	}
}
