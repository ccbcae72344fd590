package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReliabilityScoreRegimes(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"perfect match", 0.0, 1.0},
		{"cosine regime", 0.25, 0.75},
		{"cosine boundary", 1.0, 0.0},
		{"l2 regime", 1.2, 0.4},
		{"l2 boundary", 2.0, 0.0},
		{"beyond range clamps", 3.0, 0.0},
		{"negative clamps", -0.5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ReliabilityScore(tt.distance), 1e-9)
		})
	}
}

func TestReliabilityScoreAlwaysInRange(t *testing.T) {
	for d := -1.0; d <= 4.0; d += 0.1 {
		score := ReliabilityScore(d)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestReliable(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		score     float64
		threshold float64
		want      bool
	}{
		{"above threshold", 3, 0.85, 0.70, true},
		{"at threshold", 1, 0.70, 0.70, true},
		{"below threshold", 3, 0.69, 0.70, false},
		{"no chunks", 0, 0.99, 0.70, false},
		{"zero threshold uses default", 1, 0.75, 0, true},
		{"zero threshold uses default below", 1, 0.65, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reliable(tt.count, tt.score, tt.threshold))
		})
	}
}
