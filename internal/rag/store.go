package rag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	chunksFileName     = "rag_chunks.json"
	embeddingsFileName = "rag_embeddings.json"
)

// SaveArtifacts persists the chunk list and embedding matrix under dataDir so
// the index can be reloaded without re-reading the PDF corpus.
func SaveArtifacts(dataDir string, chunks []string, embeddings [][]float32) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create rag data dir failed: %w", err)
	}

	chunkBytes, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("marshal chunks failed: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, chunksFileName), chunkBytes, 0o644); err != nil {
		return fmt.Errorf("write chunks artifact failed: %w", err)
	}

	embBytes, err := json.Marshal(embeddings)
	if err != nil {
		return fmt.Errorf("marshal embeddings failed: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, embeddingsFileName), embBytes, 0o644); err != nil {
		return fmt.Errorf("write embeddings artifact failed: %w", err)
	}
	return nil
}

// LoadArtifacts reads persisted chunks and embeddings back. Returns
// (nil, nil, nil) when artifacts are missing or inconsistent so the caller
// falls back to a rebuild instead of failing startup.
func LoadArtifacts(dataDir string, dim int) ([]string, [][]float32, error) {
	if dim <= 0 {
		dim = DefaultEmbedDim
	}

	chunkBytes, err := os.ReadFile(filepath.Join(dataDir, chunksFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read chunks artifact failed: %w", err)
	}
	var chunks []string
	if err := json.Unmarshal(chunkBytes, &chunks); err != nil {
		return nil, nil, nil
	}

	embBytes, err := os.ReadFile(filepath.Join(dataDir, embeddingsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read embeddings artifact failed: %w", err)
	}
	var embeddings [][]float32
	if err := json.Unmarshal(embBytes, &embeddings); err != nil {
		return nil, nil, nil
	}

	// Shape check: one row per chunk, every row the configured width.
	if len(embeddings) != len(chunks) {
		return nil, nil, nil
	}
	for _, row := range embeddings {
		if len(row) != dim {
			return nil, nil, nil
		}
	}
	return chunks, embeddings, nil
}

// ArtifactsPresent reports which artifacts exist on disk, for diagnostics.
func ArtifactsPresent(dataDir string) map[string]bool {
	present := func(name string) bool {
		_, err := os.Stat(filepath.Join(dataDir, name))
		return err == nil
	}
	return map[string]bool{
		"chunks":     present(chunksFileName),
		"embeddings": present(embeddingsFileName),
	}
}
