package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"snapsort/models"
	"snapsort/utils"
)

var (
	ErrUndecodableImage = errors.New("cannot decode image")
)

// Upload An uploaded file as received by the server
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Prediction The chosen label and the probability of every candidate label
type Prediction struct {
	Label         string             `json:"label"`
	Probabilities map[string]float32 `json:"probabilities,omitempty"`
}

// Classifier Assigns one of the category labels to an upload.
// Implementations are safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, upload Upload) (*Prediction, error)
	Close()
}

// NewFromConfig Build the classifier selected in the configuration. The model
// is loaded once here and owned by the returned value until Close.
func NewFromConfig(config *utils.Config) (Classifier, error) {
	switch config.Classifier.Backend {
	case "filename":
		log.Info("Classifying uploads by filename prefix")
		return NewFilenameClassifier(), nil
	case "clip":
		clip, err := NewCLIPClassifier(CLIPOptions{
			ModelPath:      config.Classifier.ModelPath,
			EmbeddingsPath: config.Classifier.EmbeddingsPath,
			SharedLibrary:  config.Classifier.SharedLibrary,
			InputName:      config.Classifier.InputName,
			OutputName:     config.Classifier.OutputName,
			EmbeddingDim:   config.Classifier.EmbeddingDim,
		}, models.Labels())
		if err != nil {
			return nil, err
		}
		if config.Classifier.CacheTTL <= 0 {
			return clip, nil
		}
		cleanup := config.Classifier.CleanupInterval
		if cleanup <= 0 {
			cleanup = time.Minute
		}
		return NewCachedClassifier(clip, config.Classifier.CacheTTL, cleanup), nil
	default:
		return nil, fmt.Errorf("unsupported classifier backend: %s", config.Classifier.Backend)
	}
}
