package system

import (
	"image"
	"image/color"
	"testing"
)

func TestImagePoolReturnsClearedBuffers(t *testing.T) {
	p := NewImagePool()
	rect := image.Rect(0, 0, 4, 4)
	img := p.Get(rect)
	img.Set(1, 1, color.White)
	p.Put(img)

	again := p.Get(rect)
	if again.Bounds() != rect {
		t.Fatalf("Expected bounds %v, got %v", rect, again.Bounds())
	}
	if c := again.RGBAAt(1, 1); c.A != 0 {
		t.Errorf("Expected a cleared buffer, got %v", c)
	}
}

func TestImagePoolIgnoresForeignSizes(t *testing.T) {
	p := NewImagePool()
	p.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))
	p.Put(nil)
	if len(p.pools) != 0 {
		t.Errorf("Put must not create pools, have %d", len(p.pools))
	}
}
