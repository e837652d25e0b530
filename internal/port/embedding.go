package port

import "context"

// EmbeddingProvider turns normalized text into a fixed-length vector.
// Implementations never return an error: any failure degrades to the zero
// vector so an embedding outage can lower result quality but never abort
// an analysis. All vectors from one provider instance share Dimension().
type EmbeddingProvider interface {
	// ProviderID identifies the provider configuration. Indexed documents are
	// stamped with it so vectors from different providers are never compared.
	ProviderID() string

	// Dimension returns the fixed vector length D.
	Dimension() int

	// Embed returns a vector of length Dimension() for the given text.
	// Empty text and failed remote calls yield the zero vector.
	Embed(ctx context.Context, text string) []float32
}
