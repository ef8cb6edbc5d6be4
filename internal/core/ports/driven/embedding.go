package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil or unreachable, the aligner
// degrades to lexical similarity and results are flagged degraded.
//
// Implementations must be deterministic for identical input within one
// session: the aligner's greedy assignment relies on stable scores.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - The built-in hashing embedder (offline, fully deterministic)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// Segment lists are always embedded through this method.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 256, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
