// Package embeddings abstracts the text-embedding backend behind the
// semantic question lookup.
//
// The session pipeline embeds each detected question and searches the user's
// saved answer library by vector distance, so a paraphrased question still
// finds the answer the fuzzy matcher missed. The vectors are stored and
// queried in Postgres; the provider only maps text to a vector.
package embeddings

import "context"

// Provider maps text to dense vectors.
//
// Every vector a Provider instance returns has length Dimensions(), and
// vectors are only comparable within one instance: different models embed
// into different spaces. Implementations must be safe for concurrent use.
type Provider interface {
	// Embed returns the vector for one text, verbatim; any model-specific
	// preprocessing is the caller's job.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the fixed length of every vector this instance produces.
	Dimensions() int
}
