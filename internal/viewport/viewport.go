// Package viewport holds the view state read by the render stage each frame.
package viewport

const (
	// DefaultZoomStep multiplies the scale on ZoomIn and divides it on ZoomOut
	DefaultZoomStep = 0.95
	// DefaultShiftStep is the pan distance as a fraction of the current scale
	DefaultShiftStep = 0.05
)

// Viewport is the (center, scale) of the fractal view. Smaller scale means
// deeper zoom; the vertical half-extent of the frame equals Scale.
type Viewport struct {
	CenterX float64
	CenterY float64
	Scale   float64
}

func New(centerX, centerY, scale float64) *Viewport {
	return &Viewport{CenterX: centerX, CenterY: centerY, Scale: scale}
}

func (v *Viewport) SetCenter(x, y float64) *Viewport {
	v.CenterX = x
	v.CenterY = y
	return v
}

func (v *Viewport) SetScale(scale float64) *Viewport {
	v.Scale = scale
	return v
}

// ZoomIn multiplies the scale by step, or DefaultZoomStep when step <= 0
func (v *Viewport) ZoomIn(step float64) {
	v.Scale *= orDefault(step, DefaultZoomStep)
}

func (v *Viewport) ZoomOut(step float64) {
	v.Scale /= orDefault(step, DefaultZoomStep)
}

func (v *Viewport) ShiftLeft(step float64) {
	v.CenterX -= v.Scale * orDefault(step, DefaultShiftStep)
}

func (v *Viewport) ShiftRight(step float64) {
	v.CenterX += v.Scale * orDefault(step, DefaultShiftStep)
}

func (v *Viewport) ShiftUp(step float64) {
	v.CenterY += v.Scale * orDefault(step, DefaultShiftStep)
}

func (v *Viewport) ShiftDown(step float64) {
	v.CenterY -= v.Scale * orDefault(step, DefaultShiftStep)
}

func (v *Viewport) ZoomReset() {
	v.Scale = 1.0
}

// PixelToPlane maps pixel (px, py) of a w×h frame, rows top to bottom, to
// the fractal plane. x is stretched by the aspect ratio, y points up.
func (v Viewport) PixelToPlane(px, py float64, w, h int) (float64, float64) {
	ar := float64(w) / float64(h)
	nx := (px+0.5)/float64(w)*2 - 1
	ny := 1 - (py+0.5)/float64(h)*2
	return nx*ar*v.Scale + v.CenterX, ny*v.Scale + v.CenterY
}

func orDefault(step, def float64) float64 {
	if step <= 0 {
		return def
	}
	return step
}
