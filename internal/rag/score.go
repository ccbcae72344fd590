package rag

// DefaultReliabilityThreshold is the score above which retrieved context is
// trusted as a primary source for generation. Below it the prompt tells the
// model to treat the context as weak and answer from general knowledge,
// which avoids the model insisting "the context doesn't mention this" when
// the non-semantic index returned irrelevant chunks.
const DefaultReliabilityThreshold = 0.70

// ReliabilityScore maps a top-1 retrieval distance to a confidence in [0, 1],
// where 1 means "very likely relevant". Two distance regimes are supported:
// cosine pseudo-distances in [0,1] map as 1-d, L2-style distances in (1,2]
// map as 1-d/2. Either way the result is clamped to [0, 1].
func ReliabilityScore(topDistance float64) float64 {
	var score float64
	if topDistance <= 1.0 {
		score = 1 - topDistance
	} else {
		score = 1 - topDistance/2
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Reliable classifies retrieval: trusted only when at least one chunk came
// back and the score meets the threshold.
func Reliable(retrievedCount int, score, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultReliabilityThreshold
	}
	return retrievedCount > 0 && score >= threshold
}
