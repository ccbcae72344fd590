package rag

import (
	"crypto/sha1"
	"math"
	"strings"
)

// DefaultEmbedDim is the embedding width used when none is configured.
const DefaultEmbedDim = 384

// HashEmbed creates a deterministic pseudo-embedding by hashing tokens.
// Each whitespace token is SHA-1 hashed to a bucket in [0, dim) and counted,
// then the vector is L2-normalized. Not semantic: texts only correlate when
// they share literal tokens. The empty string yields the zero vector.
func HashEmbed(text string, dim int) []float32 {
	if dim <= 0 {
		dim = DefaultEmbedDim
	}
	vec := make([]float32, dim)
	for _, token := range strings.Fields(text) {
		sum := sha1.Sum([]byte(token))
		// Big-endian byte fold, equivalent to the full digest value mod dim.
		idx := 0
		for _, b := range sum {
			idx = (idx*256 + int(b)) % dim
		}
		vec[idx]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// EmbedAll embeds every text into a (len(texts), dim) matrix.
func EmbedAll(texts []string, dim int) [][]float32 {
	if dim <= 0 {
		dim = DefaultEmbedDim
	}
	mat := make([][]float32, len(texts))
	for i, t := range texts {
		mat[i] = HashEmbed(t, dim)
	}
	return mat
}
