// Package photo transforms raw captured or picked frames into stored-ready
// square images: center crop, orientation normalization, front-camera mirror
// correction, and a memory-bounded downscale.
package photo

import (
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Options direct a single processing pass.
type Options struct {
	Orientation Orientation

	// Mirror applies horizontal mirror correction. Used for front-camera
	// captures: the preview is mirrored but the sensor output is not.
	Mirror bool
}

// Processor runs the capture post-processing pipeline. The zero value is
// usable and applies no downscale bound.
type Processor struct {
	logger *slog.Logger

	// maxDimension bounds the longest edge of processed output; zero means
	// unbounded.
	maxDimension int
}

// NewProcessor returns a processor bounding output to maxDimension pixels on
// the longest edge.
func NewProcessor(logger *slog.Logger, maxDimension int) *Processor {
	return &Processor{logger: logger, maxDimension: maxDimension}
}

// Process runs crop → orientation → mirror → optimize. It never fails: any
// step that cannot run leaves the image from the previous step in place.
func (p *Processor) Process(img image.Image, opts Options) image.Image {
	if img == nil {
		return nil
	}
	out := CropToSquare(img)
	out = Normalize(out, opts.Orientation)
	if opts.Mirror {
		out = Mirror(out)
	}
	return p.Optimize(out)
}

// CropToSquare returns the centered square of side min(width,height),
// computed on the raw pixel bounds. Already-square input is returned
// unchanged; degenerate input falls back to the original rather than failing
// the capture.
func CropToSquare(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return img
	}
	if w == h {
		return img
	}
	side := min(w, h)
	return imaging.CropCenter(img, side, side)
}

// Mirror flips the image horizontally.
func Mirror(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	return imaging.FlipH(img)
}

// Optimize downscales so the longest edge fits the configured bound,
// preserving aspect ratio. Images already within the bound pass through.
func (p *Processor) Optimize(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	if p == nil || p.maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= p.maxDimension && b.Dy() <= p.maxDimension {
		return img
	}
	out := imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
	if p.logger != nil {
		p.logger.Debug("downscaled capture",
			"from_w", b.Dx(), "from_h", b.Dy(),
			"to_w", out.Bounds().Dx(), "to_h", out.Bounds().Dy(),
		)
	}
	return out
}

// Thumbnail scales the image down to fit within maxW x maxH, preserving
// aspect ratio. Images already within bounds are returned as-is.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	return imaging.Fit(img, maxW, maxH, imaging.Box)
}
