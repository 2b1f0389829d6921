package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

const defaultLogitScale = 100.0

// LabelEmbeddings Text embeddings of the candidate labels, computed once with
// the text tower of the same CLIP checkpoint as the vision model.
type LabelEmbeddings struct {
	LogitScale float32              `json:"logit_scale"`
	Labels     map[string][]float32 `json:"labels"`
}

// LoadLabelEmbeddings Read the embeddings file
func LoadLabelEmbeddings(path string) (*LabelEmbeddings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label embeddings: %w", err)
	}
	var embeddings LabelEmbeddings
	if err := json.Unmarshal(data, &embeddings); err != nil {
		return nil, fmt.Errorf("failed to parse label embeddings %s: %w", path, err)
	}
	if embeddings.LogitScale == 0 {
		embeddings.LogitScale = defaultLogitScale
	}
	return &embeddings, nil
}

// forLabels Unit length embeddings of labels, in the same order. Every label
// must be present and have the given dimension.
func (e *LabelEmbeddings) forLabels(labels []string, dimension int) ([][]float32, error) {
	out := make([][]float32, len(labels))
	for i, label := range labels {
		embedding, ok := e.Labels[label]
		if !ok {
			return nil, fmt.Errorf("no embedding for label %q", label)
		}
		if len(embedding) != dimension {
			return nil, fmt.Errorf("embedding for label %q has dimension %d, expected %d", label, len(embedding), dimension)
		}
		out[i] = normalize(embedding)
	}
	return out, nil
}
