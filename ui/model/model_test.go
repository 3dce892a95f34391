package model

import (
	"testing"
	"time"

	"github.com/stashlens/capturekit/domain/capture"
	"github.com/stashlens/capturekit/platform"
	"github.com/stashlens/capturekit/platform/sim"
)

func TestHUDModelUpdateDetectsChange(t *testing.T) {
	m := NewHUDModel()

	if !m.Update("1x", "flash-auto", "0 of 1", capture.ModeSingleItem) {
		t.Fatal("first update must report change")
	}
	if m.Update("1x", "flash-auto", "0 of 1", capture.ModeSingleItem) {
		t.Fatal("identical update must report no change")
	}
	if !m.Update("2x", "flash-auto", "0 of 1", capture.ModeSingleItem) {
		t.Fatal("zoom change must be detected")
	}

	zoom, flash, counter, mode := m.Values()
	if zoom != "2x" || flash != "flash-auto" || counter != "0 of 1" || mode != capture.ModeSingleItem {
		t.Fatalf("unexpected values: %q %q %q %v", zoom, flash, counter, mode)
	}
}

func TestHUDModelNilSafe(t *testing.T) {
	var m *HUDModel
	if m.Update("1x", "", "", capture.ModeSingleItem) {
		t.Fatal("nil model must report no change")
	}
	m.Values()
}

func galleryImages(ids ...string) []capture.CapturedImage {
	out := make([]capture.CapturedImage, 0, len(ids))
	for i, id := range ids {
		out = append(out, capture.CapturedImage{
			ID:       id,
			Image:    sim.TestPattern(300, 300, platform.LensWide),
			Sequence: i + 1,
		})
	}
	return out
}

func TestGalleryModelRebuildsOnChange(t *testing.T) {
	m := NewGalleryModel(120, 120)

	if !m.Update(galleryImages("a")) {
		t.Fatal("first update must rebuild")
	}
	if m.Update(galleryImages("a")) {
		t.Fatal("unchanged list must not rebuild")
	}
	if !m.Update(galleryImages("a", "b")) {
		t.Fatal("appended photo must rebuild")
	}

	thumbs := m.Thumbnails()
	if len(thumbs) != 2 || m.Count() != 2 {
		t.Fatalf("expected 2 thumbnails, got %d", len(thumbs))
	}
	b := thumbs[0].Image.Bounds()
	if b.Dx() != 120 || b.Dy() != 120 {
		t.Fatalf("expected 120x120 thumbnail, got %dx%d", b.Dx(), b.Dy())
	}
	if thumbs[1].ID != "b" || thumbs[1].Sequence != 2 {
		t.Fatalf("unexpected tail thumbnail: %+v", thumbs[1])
	}
}

func TestGalleryModelDetectsReplacement(t *testing.T) {
	m := NewGalleryModel(120, 120)
	m.Update(galleryImages("a", "b"))

	// Same length, different tail: last photo deleted and another captured.
	if !m.Update(galleryImages("a", "c")) {
		t.Fatal("tail replacement must rebuild")
	}

	if !m.Update(nil) {
		t.Fatal("clearing must rebuild")
	}
	if m.Count() != 0 {
		t.Fatalf("expected empty gallery, got %d", m.Count())
	}
}

func TestSessionModelAccumulatesLiveTime(t *testing.T) {
	m := NewSessionModel()
	base := time.Now()

	m.OnTick(true, base)
	m.OnTick(true, base.Add(2*time.Second))
	live, total := m.Values()
	if live != 2*time.Second || total != 2*time.Second {
		t.Fatalf("expected 2s live, got live=%v total=%v", live, total)
	}

	m.OnTick(false, base.Add(3*time.Second))
	live, total = m.Values()
	if live != 3*time.Second || total != 3*time.Second {
		t.Fatalf("expected 3s after stop, got live=%v total=%v", live, total)
	}

	// Restart adds to the accumulated total.
	m.OnTick(true, base.Add(10*time.Second))
	m.OnTick(true, base.Add(11*time.Second))
	live, total = m.Values()
	if live != time.Second || total != 4*time.Second {
		t.Fatalf("expected 1s live 4s total, got live=%v total=%v", live, total)
	}
}
