package photo

import (
	"image"

	"github.com/disintegration/imaging"
)

// Orientation enumerates the eight EXIF-style orientations a frame can carry.
type Orientation int

const (
	OrientationUp Orientation = iota
	OrientationDown
	OrientationLeft
	OrientationRight
	OrientationUpMirrored
	OrientationDownMirrored
	OrientationLeftMirrored
	OrientationRightMirrored
)

func (o Orientation) String() string {
	switch o {
	case OrientationUp:
		return "up"
	case OrientationDown:
		return "down"
	case OrientationLeft:
		return "left"
	case OrientationRight:
		return "right"
	case OrientationUpMirrored:
		return "up-mirrored"
	case OrientationDownMirrored:
		return "down-mirrored"
	case OrientationLeftMirrored:
		return "left-mirrored"
	case OrientationRightMirrored:
		return "right-mirrored"
	default:
		return "unknown"
	}
}

// Normalize rewrites the pixels so the image reads as OrientationUp. Frames
// that already are up pass through untouched.
func Normalize(img image.Image, o Orientation) image.Image {
	if img == nil {
		return nil
	}
	switch o {
	case OrientationDown:
		return imaging.Rotate180(img)
	case OrientationLeft:
		return imaging.Rotate270(img)
	case OrientationRight:
		return imaging.Rotate90(img)
	case OrientationUpMirrored:
		return imaging.FlipH(img)
	case OrientationDownMirrored:
		return imaging.FlipV(img)
	case OrientationLeftMirrored:
		return imaging.FlipH(imaging.Rotate270(img))
	case OrientationRightMirrored:
		return imaging.FlipH(imaging.Rotate90(img))
	default:
		return img
	}
}
