package classifier

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

// CLIPOptions Location and tensor names of the exported CLIP vision tower
type CLIPOptions struct {
	ModelPath      string
	EmbeddingsPath string
	// SharedLibrary Path to libonnxruntime, the platform default when empty
	SharedLibrary string
	InputName     string
	OutputName    string
	// EmbeddingDim Dimension of the projected image embedding, 512 for ViT-B/32
	EmbeddingDim int
}

// CLIPClassifier Zero-shot classifier. Images go through the ONNX export of
// the CLIP vision tower; the label text embeddings are precomputed.
type CLIPClassifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]

	labels          []string
	labelEmbeddings [][]float32
	logitScale      float32
	imageSize       int
}

// NewCLIPClassifier Load the model and the embeddings of labels
func NewCLIPClassifier(options CLIPOptions, labels []string) (*CLIPClassifier, error) {
	if options.InputName == "" {
		options.InputName = "pixel_values"
	}
	if options.OutputName == "" {
		options.OutputName = "image_embeds"
	}
	if options.EmbeddingDim == 0 {
		options.EmbeddingDim = 512
	}

	embeddings, err := LoadLabelEmbeddings(options.EmbeddingsPath)
	if err != nil {
		return nil, err
	}
	labelEmbeddings, err := embeddings.forLabels(labels, options.EmbeddingDim)
	if err != nil {
		return nil, err
	}

	if options.SharedLibrary != "" {
		ort.SetSharedLibraryPath(options.SharedLibrary)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, clipImageSize, clipImageSize))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(options.EmbeddingDim)))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(options.ModelPath,
		[]string{options.InputName}, []string{options.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session for %s: %w", options.ModelPath, err)
	}

	log.Info(fmt.Sprintf("Loaded CLIP model %s with labels %v", options.ModelPath, labels))
	return &CLIPClassifier{
		session:         session,
		inputTensor:     inputTensor,
		outputTensor:    outputTensor,
		labels:          labels,
		labelEmbeddings: labelEmbeddings,
		logitScale:      embeddings.LogitScale,
		imageSize:       clipImageSize,
	}, nil
}

// Classify Pick the label whose text embedding is closest to the image
func (c *CLIPClassifier) Classify(ctx context.Context, upload Upload) (*Prediction, error) {
	img, format, err := decodeImage(upload.Data)
	if err != nil {
		return nil, err
	}
	log.Debug(fmt.Sprintf("Classifying %s (%s, %dx%d)", upload.Filename, format, img.Bounds().Dx(), img.Bounds().Dy()))

	pixels := pixelValues(img, c.imageSize)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embedding, err := c.embed(pixels)
	if err != nil {
		return nil, err
	}
	return rankLabels(embedding, c.labels, c.labelEmbeddings, c.logitScale)
}

// embed Run the vision tower. The tensors are shared, so one run at a time.
func (c *CLIPClassifier) embed(pixels []float32) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.inputTensor.GetData(), pixels)
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	output := c.outputTensor.GetData()
	embedding := make([]float32, len(output))
	copy(embedding, output)
	return embedding, nil
}

// Close Release the session, the tensors and the ONNX environment
func (c *CLIPClassifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
		c.inputTensor = nil
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
		c.outputTensor = nil
	}
	ort.DestroyEnvironment()
}
