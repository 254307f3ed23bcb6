package embedding

import "context"

// Embedder converts free text into a numeric vector representation.
// Calls are slow, billed, external requests; callers bound them with the
// context deadline.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
