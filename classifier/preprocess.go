package classifier

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const clipImageSize = 224

// Per channel mean and standard deviation of the CLIP training images
var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

// decodeImage Decode any of the registered formats
func decodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUndecodableImage, err.Error())
	}
	return img, format, nil
}

// pixelValues Resize the shorter side to size, crop the center square and
// return the normalized RGB planes in CHW order. Alpha is dropped.
func pixelValues(img image.Image, size int) []float32 {
	fitted := imaging.Fill(img, size, size, imaging.Center, imaging.CatmullRom)

	plane := size * size
	values := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			offset := fitted.PixOffset(x, y)
			pixel := y*size + x
			for c := 0; c < 3; c++ {
				v := float32(fitted.Pix[offset+c]) / 255.0
				values[c*plane+pixel] = (v - clipMean[c]) / clipStd[c]
			}
		}
	}
	return values
}
