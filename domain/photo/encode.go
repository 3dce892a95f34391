package photo

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
)

// EncodePNG encodes an image to PNG bytes. Errors are swallowed and may
// yield an empty slice; callers treat that as "nothing to show".
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// EncodeJPEG encodes an image to JPEG bytes at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) []byte {
	if img == nil {
		return nil
	}
	if quality < 1 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	return buf.Bytes()
}
