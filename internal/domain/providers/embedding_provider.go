package providers

import "context"

// EmbeddingProvider produces dense vectors for index documents and
// search queries. The two methods exist because embedding backends
// encode documents and queries differently; mixing them degrades
// similarity quality silently.
type EmbeddingProvider interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
