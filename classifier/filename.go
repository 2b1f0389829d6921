package classifier

import (
	"context"
	"strings"

	"snapsort/models"
)

// FilenameClassifier Derives the category from the part of the filename before
// the first comma, e.g. "food,dog.jpg" is food. Names that do not start with a
// known label or slug are filed under the fallback label.
type FilenameClassifier struct{}

func NewFilenameClassifier() *FilenameClassifier {
	return &FilenameClassifier{}
}

func (f *FilenameClassifier) Classify(_ context.Context, upload Upload) (*Prediction, error) {
	prefix, _, _ := strings.Cut(upload.Filename, ",")
	category, ok := models.LookupCategory(prefix)
	if !ok {
		return &Prediction{Label: models.FallbackLabel}, nil
	}
	return &Prediction{Label: category.Label}, nil
}

func (f *FilenameClassifier) Close() {}
