package presenter

import (
	"github.com/stashlens/capturekit/domain/capture"
	"github.com/stashlens/capturekit/ui/model"
)

// GalleryView displays the captured-photo thumbnail strip.
type GalleryView interface {
	SetThumbnails([]model.Thumbnail)
}

// GalleryPresenter mirrors the controller's captured list into the gallery
// model and pushes rebuilt thumbnails to the view.
type GalleryPresenter struct {
	src   capture.GallerySource
	model *model.GalleryModel
	view  GalleryView
}

func NewGalleryPresenter(src capture.GallerySource, m *model.GalleryModel, view GalleryView) *GalleryPresenter {
	return &GalleryPresenter{src: src, model: m, view: view}
}

// Tick refreshes thumbnails when the captured list changed.
func (p *GalleryPresenter) Tick() {
	if p == nil || p.src == nil || p.model == nil || p.view == nil {
		return
	}
	if p.model.Update(p.src.Images()) {
		p.view.SetThumbnails(p.model.Thumbnails())
	}
}
