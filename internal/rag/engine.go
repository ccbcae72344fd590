package rag

import (
	"fmt"
	"log"
	"strings"

	"chacha-backend/internal/config"
	"chacha-backend/internal/pkg/pdfextract"
)

const defaultChunkWords = 500

// RetrievalResult holds the chunks matched for one query plus the derived
// confidence that they are actually relevant.
type RetrievalResult struct {
	Chunks    []string
	Distances []float32
	Score     float64
	Reliable  bool
}

// Engine owns the chunk store and vector index for the document corpus.
// Built once at startup from persisted artifacts or the PDF corpus; read-only
// afterwards, so concurrent request access needs no locking.
type Engine struct {
	chunks    []string
	index     VectorIndex
	dim       int
	topK      int
	threshold float64
	dataDir   string
}

// NewEngine loads persisted artifacts if they are consistent, otherwise
// rebuilds chunks and embeddings from the configured PDF directories and
// persists the result.
func NewEngine(cfg config.RAGConfig) (*Engine, error) {
	dim := cfg.EmbedDim
	if dim <= 0 {
		dim = DefaultEmbedDim
	}

	chunks, embeddings, err := LoadArtifacts(cfg.DataDir, dim)
	if err != nil {
		return nil, fmt.Errorf("load rag artifacts failed: %w", err)
	}
	if chunks == nil {
		var texts []string
		for _, dir := range cfg.PDFDirs {
			texts = append(texts, pdfextract.ExtractDir(dir)...)
		}
		chunks = ChunkWords(strings.Join(texts, "\n\n"), defaultChunkWords)
		embeddings = EmbedAll(chunks, dim)
		if err := SaveArtifacts(cfg.DataDir, chunks, embeddings); err != nil {
			// Persistence is best effort; the in-memory index still works.
			log.Printf("persist rag artifacts failed: %v", err)
		}
	}

	return &Engine{
		chunks:    chunks,
		index:     NewSimpleIndex(embeddings, dim),
		dim:       dim,
		topK:      cfg.TopK,
		threshold: cfg.ReliabilityThreshold,
		dataDir:   cfg.DataDir,
	}, nil
}

// Ready reports whether the engine holds any retrievable chunks.
func (e *Engine) Ready() bool {
	return e != nil && e.index != nil && len(e.chunks) > 0
}

// Retrieve embeds the query, searches the index, and scores confidence.
// Safe on an empty corpus: returns an empty result with Reliable=false.
func (e *Engine) Retrieve(query string, k int) RetrievalResult {
	if e == nil || e.index == nil {
		return RetrievalResult{}
	}
	if k <= 0 {
		k = e.topK
	}
	if k <= 0 {
		k = 3
	}

	q := HashEmbed(query, e.dim)
	distances, indices := e.index.Search([][]float32{q}, k)

	var result RetrievalResult
	for i, idx := range indices[0] {
		if idx < 0 || idx >= len(e.chunks) {
			continue
		}
		result.Chunks = append(result.Chunks, e.chunks[idx])
		result.Distances = append(result.Distances, distances[0][i])
	}
	if len(result.Distances) > 0 {
		result.Score = ReliabilityScore(float64(result.Distances[0]))
	}
	result.Reliable = Reliable(len(result.Chunks), result.Score, e.threshold)
	return result
}

// Status returns a diagnostic snapshot for the introspection endpoints.
func (e *Engine) Status() map[string]any {
	if e == nil {
		return map[string]any{"chunks": 0, "index": nil}
	}
	return map[string]any{
		"chunks":    len(e.chunks),
		"embed_dim": e.dim,
		"index":     fmt.Sprintf("%T", e.index),
		"top_k":     e.topK,
		"threshold": e.threshold,
		"data_dir":  e.dataDir,
		"artifacts": ArtifactsPresent(e.dataDir),
	}
}

// ChunkWords splits text into fixed-size word windows (no overlap), the same
// retrieval unit the artifacts were originally built with.
func ChunkWords(text string, size int) []string {
	if size <= 0 {
		size = defaultChunkWords
	}
	words := strings.Fields(text)
	var chunks []string
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
