package rag

import (
	"math"
	"sort"
)

// VectorIndex is the search contract shared by index implementations. A
// drop-in approximate-nearest-neighbor backend must behave identically:
// given query rows, return pseudo-distances sorted ascending and the matching
// chunk indices, with zero-column results (not an error) on an empty index.
type VectorIndex interface {
	Search(queries [][]float32, k int) (distances [][]float32, indices [][]int)
	Len() int
}

// SimpleIndex is a linear-scan cosine index over L2-normalized embeddings.
// Distance is 1 - cosine similarity, so ordering matches an L2 index on
// unit vectors. Built once from a fixed corpus; no inserts afterwards.
type SimpleIndex struct {
	embeddings [][]float32
	dim        int
}

// NewSimpleIndex wraps an embedding matrix. Rows are assumed L2-normalized
// (HashEmbed output); rows of a wrong width are treated as absent matches.
func NewSimpleIndex(embeddings [][]float32, dim int) *SimpleIndex {
	if dim <= 0 {
		dim = DefaultEmbedDim
	}
	return &SimpleIndex{embeddings: embeddings, dim: dim}
}

func (idx *SimpleIndex) Len() int { return len(idx.embeddings) }

// Search returns the top-k (distance, index) pairs per query row, distances
// ascending. Zero-norm queries are left as-is and match everything at
// distance 1. An empty index returns one empty row per query.
func (idx *SimpleIndex) Search(queries [][]float32, k int) ([][]float32, [][]int) {
	distances := make([][]float32, len(queries))
	indices := make([][]int, len(queries))
	if len(idx.embeddings) == 0 || k <= 0 {
		for i := range queries {
			distances[i] = []float32{}
			indices[i] = []int{}
		}
		return distances, indices
	}

	for qi, q := range queries {
		qn := normalizeRow(q)
		type hit struct {
			sim float32
			idx int
		}
		hits := make([]hit, 0, len(idx.embeddings))
		for ei, e := range idx.embeddings {
			hits = append(hits, hit{sim: dot(qn, e), idx: ei})
		}
		sort.SliceStable(hits, func(a, b int) bool { return hits[a].sim > hits[b].sim })
		n := k
		if n > len(hits) {
			n = len(hits)
		}
		d := make([]float32, n)
		ix := make([]int, n)
		for i := 0; i < n; i++ {
			d[i] = 1 - hits[i].sim
			ix[i] = hits[i].idx
		}
		distances[qi] = d
		indices[qi] = ix
	}
	return distances, indices
}

// normalizeRow returns an L2-normalized copy; a zero-norm row is returned
// unchanged so searching never divides by zero.
func normalizeRow(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(norm))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
