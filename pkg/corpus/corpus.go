package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"shate-rag-be/pkg/embedding"
)

var ErrCorpusMissing = errors.New("document corpus not found and no documents supplied")

// Record is one precomputed chunk of the support knowledge base.
type Record struct {
	PageContent string                 `json:"page_content"`
	Metadata    map[string]interface{} `json:"metadata"`
	Embedding   []float32              `json:"embedding,omitempty"`
}

func (r Record) MetaString(key string) string {
	if v, ok := r.Metadata[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func (r Record) MetaInt(key string) int {
	switch v := r.Metadata[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Load reads the artifact at path. When the file does not exist the supplied records are used
// instead; with neither available it fails with ErrCorpusMissing.
func Load(path string, supplied []Record) ([]Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(supplied) == 0 {
				return nil, fmt.Errorf("%w: %s", ErrCorpusMissing, path)
			}
			return supplied, nil
		}
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file %s: %w", path, err)
	}
	if len(records) == 0 && len(supplied) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrCorpusMissing, path)
	}
	return append(records, supplied...), nil
}

// EnsureEmbeddings embeds records that were shipped without a vector. It returns how many were embedded.
func EnsureEmbeddings(ctx context.Context, records []Record, provider embedding.EmbeddingProvider) (int, error) {
	embedded := 0
	for i := range records {
		if len(records[i].Embedding) > 0 {
			continue
		}
		if provider == nil {
			return embedded, fmt.Errorf("record %d has no embedding and no embedding provider is configured", i)
		}
		resp, err := provider.Generate(ctx, records[i].PageContent, embedding.TaskRetrievalDocument)
		if err != nil {
			return embedded, fmt.Errorf("embed record %d: %w", i, err)
		}
		records[i].Embedding = resp.Embedding.Values
		embedded++
	}
	return embedded, nil
}

// Save writes records (with their vectors) back to disk so the next start skips embedding.
func Save(path string, records []Record) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}
