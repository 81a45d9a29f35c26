package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует *image.RGBA одного размера между кадрами, чтобы
// рендер десятков сэмплов не нагружал GC.
type ImagePool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// GetImage returns a cleared RGBA buffer of the given bounds.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage hands img back for reuse. The caller must not touch it afterwards.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) pool(rect image.Rectangle, create bool) *sync.Pool {
	p.mu.RLock()
	pool, ok := p.pools[rect]
	p.mu.RUnlock()
	if ok || !create {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok = p.pools[rect]; ok {
		return pool
	}
	pool = &sync.Pool{New: func() any { return image.NewRGBA(rect) }}
	p.pools[rect] = pool
	return pool
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	img := p.pool(rect, true).Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	if pool := p.pool(img.Rect, false); pool != nil {
		pool.Put(img)
	}
}
