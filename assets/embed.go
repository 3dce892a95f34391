package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	"image/png"
)

// TestPatternPNG contains the raw PNG bytes of the capture test fixture: a
// horizontally asymmetric gradient, so mirror handling shows up in pixel
// comparisons.
//
//go:embed test_pattern.png
var TestPatternPNG []byte

// TestPatternImage decodes the embedded PNG into an image.Image.
func TestPatternImage() (image.Image, error) {
	if len(TestPatternPNG) == 0 {
		return nil, fmt.Errorf("embedded test_pattern.png is empty")
	}
	img, err := png.Decode(bytes.NewReader(TestPatternPNG))
	if err != nil {
		return nil, err
	}
	return img, nil
}
