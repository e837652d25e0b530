package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProviderDeterministic(t *testing.T) {
	p := NewHashProvider(256)
	ctx := context.Background()

	a := p.Embed(ctx, "smart attendance system face recognition")
	b := p.Embed(ctx, "smart attendance system face recognition")
	assert.Equal(t, a, b, "identical text must yield bit-identical vectors")
}

func TestHashProviderDimension(t *testing.T) {
	for _, dim := range []int{16, 256, 1024} {
		p := NewHashProvider(dim)
		assert.Equal(t, dim, p.Dimension())
		assert.Len(t, p.Embed(context.Background(), "some text here"), dim)
	}
}

func TestHashProviderEmptyTextIsZeroVector(t *testing.T) {
	p := NewHashProvider(64)
	vec := p.Embed(context.Background(), "")
	require.Len(t, vec, 64)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestHashProviderL2Normalized(t *testing.T) {
	p := NewHashProvider(256)
	vec := p.Embed(context.Background(), "blockchain voting platform for student elections")

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
}

func TestHashProviderDistinctTextsDiffer(t *testing.T) {
	p := NewHashProvider(256)
	ctx := context.Background()
	assert.NotEqual(t,
		p.Embed(ctx, "smart parking system"),
		p.Embed(ctx, "hospital appointment scheduler"))
}

func TestHashProviderID(t *testing.T) {
	assert.Equal(t, "hash-256", NewHashProvider(256).ProviderID())
	assert.Equal(t, "hash-64", NewHashProvider(64).ProviderID())
}
