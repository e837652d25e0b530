package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// HashProvider is a deterministic, dependency-free embedding provider.
// Each whitespace token is hashed with FNV-1a into one of D buckets, bucket
// counts are accumulated, and the resulting vector is L2-normalized. Useful
// for development and as a fallback when no semantic endpoint is deployed.
type HashProvider struct {
	dim int
}

// NewHashProvider creates a hash embedder producing vectors of the given dimension.
func NewHashProvider(dim int) *HashProvider {
	return &HashProvider{dim: dim}
}

// ProviderID identifies this provider configuration.
func (p *HashProvider) ProviderID() string {
	return fmt.Sprintf("hash-%d", p.dim)
}

// Dimension returns the fixed vector length.
func (p *HashProvider) Dimension() int {
	return p.dim
}

// Embed maps text to a normalized bucket-count vector.
// Empty text yields the zero vector.
func (p *HashProvider) Embed(_ context.Context, text string) []float32 {
	vec := make([]float32, p.dim)
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return vec
	}

	for _, token := range tokens {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(p.dim)]++
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}
