package classifier

import (
	"fmt"
	"math"
)

// normalize Scale v to unit length. A zero vector is returned unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}

// softmax Numerically stable softmax
func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	highest := logits[0]
	for _, l := range logits[1:] {
		if l > highest {
			highest = l
		}
	}
	var sum float64
	exps := make([]float64, len(logits))
	for i, l := range logits {
		exps[i] = math.Exp(float64(l - highest))
		sum += exps[i]
	}
	probs := make([]float32, len(logits))
	for i := range exps {
		probs[i] = float32(exps[i] / sum)
	}
	return probs
}

// argmax Index of the largest value, the first one on ties
func argmax(values []float32) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// rankLabels Score an image embedding against unit length label embeddings the
// way CLIP does: cosine similarity times the logit scale, softmax over labels.
func rankLabels(imageEmbedding []float32, labels []string, labelEmbeddings [][]float32, logitScale float32) (*Prediction, error) {
	if len(labels) == 0 || len(labels) != len(labelEmbeddings) {
		return nil, fmt.Errorf("got %d labels and %d label embeddings", len(labels), len(labelEmbeddings))
	}
	imageEmbedding = normalize(imageEmbedding)

	logits := make([]float32, len(labels))
	for i, embedding := range labelEmbeddings {
		if len(embedding) != len(imageEmbedding) {
			return nil, fmt.Errorf("embedding of label %q has dimension %d, image embedding has %d",
				labels[i], len(embedding), len(imageEmbedding))
		}
		logits[i] = logitScale * dot(imageEmbedding, embedding)
	}

	probs := softmax(logits)
	probabilities := make(map[string]float32, len(labels))
	for i, label := range labels {
		probabilities[label] = probs[i]
	}
	return &Prediction{
		Label:         labels[argmax(probs)],
		Probabilities: probabilities,
	}, nil
}
