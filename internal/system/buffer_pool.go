package system

import (
	"image"
	"sync"
)

// FramePool переиспользует кадры одного размера между итерациями рендера,
// чтобы не нагружать GC буферами по W*H*4 байт на каждый кадр.
type FramePool struct {
	rect image.Rectangle
	pool sync.Pool
}

func NewFramePool(width, height int) *FramePool {
	rect := image.Rect(0, 0, width, height)
	p := &FramePool{rect: rect}
	p.pool.New = func() any {
		return image.NewRGBA(rect)
	}
	return p
}

// Get возвращает кадр нужного размера. Содержимое не очищается.
func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put возвращает кадр в пул. Кадры чужого размера отбрасываются.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || img.Rect != p.rect {
		return
	}
	p.pool.Put(img)
}

func (p *FramePool) Bounds() image.Rectangle {
	return p.rect
}
