package model

import (
	"image"

	"github.com/stashlens/capturekit/domain/capture"
	"github.com/stashlens/capturekit/domain/photo"
)

// Thumbnail is one gallery entry: a downscaled copy of a captured image.
type Thumbnail struct {
	ID       string
	Image    image.Image
	Sequence int
}

// GalleryModel mirrors the controller's captured list as thumbnails for the
// UI strip. It is decoupled from the UI; presenters push updates and views
// read Thumbnails(). The zero value is empty and usable.
type GalleryModel struct {
	thumbs []Thumbnail
	lastID string
	maxW   int
	maxH   int
}

// NewGalleryModel returns a gallery producing thumbnails bounded by
// maxW x maxH.
func NewGalleryModel(maxW, maxH int) *GalleryModel {
	if maxW < 1 {
		maxW = 160
	}
	if maxH < 1 {
		maxH = 160
	}
	return &GalleryModel{maxW: maxW, maxH: maxH}
}

// Update rebuilds thumbnails from the captured list. Rebuilding is skipped
// when the list is unchanged (same length and same tail id), since thumbnail
// scaling is the expensive part.
func (m *GalleryModel) Update(images []capture.CapturedImage) bool {
	if m == nil {
		return false
	}
	tail := ""
	if len(images) > 0 {
		tail = images[len(images)-1].ID
	}
	if len(images) == len(m.thumbs) && tail == m.lastID {
		return false
	}
	thumbs := make([]Thumbnail, 0, len(images))
	for _, img := range images {
		thumbs = append(thumbs, Thumbnail{
			ID:       img.ID,
			Image:    photo.Thumbnail(img.Image, m.maxW, m.maxH),
			Sequence: img.Sequence,
		})
	}
	m.thumbs = thumbs
	m.lastID = tail
	return true
}

// Thumbnails returns the current gallery entries in capture order.
func (m *GalleryModel) Thumbnails() []Thumbnail {
	if m == nil {
		return nil
	}
	return m.thumbs
}

// Count returns the number of entries.
func (m *GalleryModel) Count() int {
	if m == nil {
		return 0
	}
	return len(m.thumbs)
}
