package similarity

import (
	"context"

	"github.com/mathdex/mathdex/internal/domain"
)

// Embedder vectorizes text into embeddings. The engine type-asserts
// domain.BatchEmbedder at initialization to amortize corpus embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
