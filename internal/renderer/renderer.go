package renderer

import (
	"context"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/fractal2video/internal/system"
	"github.com/ivlev/fractal2video/internal/viewport"
)

// Renderer produces one RGBA8 frame, rows top to bottom, for a view
type Renderer interface {
	Render(ctx context.Context, v viewport.Viewport) (*image.RGBA, error)
	// Release hands a frame back once the caller is done with it
	Release(img *image.RGBA)
	Size() (width, height int)
}

// MandelbrotRenderer evaluates the escape-time Mandelbrot set on the CPU
type MandelbrotRenderer struct {
	Width      int
	Height     int
	Iterations int     // Escape-time iteration limit
	Escape     float64 // |z| above which a point has escaped
	Workers    int     // Row bands rendered in parallel
	BandHeight int     // Rows per band

	pool *system.FramePool
}

// NewMandelbrotRenderer creates a renderer with the default colouring settings
func NewMandelbrotRenderer(width, height, workers int) *MandelbrotRenderer {
	if workers < 1 {
		workers = 1
	}
	return &MandelbrotRenderer{
		Width:      width,
		Height:     height,
		Iterations: 200,
		Escape:     3.0,
		Workers:    workers,
		BandHeight: 16,
		pool:       system.NewFramePool(width, height),
	}
}

func (r *MandelbrotRenderer) Size() (int, int) {
	return r.Width, r.Height
}

// Render fills a pooled frame. Bands are independent, so they run under an
// errgroup limited to Workers goroutines; cancellation stops between bands.
func (r *MandelbrotRenderer) Render(ctx context.Context, v viewport.Viewport) (*image.RGBA, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", r.Width, r.Height)
	}
	if !(v.Scale > 0) {
		return nil, fmt.Errorf("invalid scale %v", v.Scale)
	}

	img := r.pool.Get()

	band := r.BandHeight
	if band <= 0 {
		band = 16
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for y0 := 0; y0 < r.Height; y0 += band {
		y0 := y0
		y1 := min(y0+band, r.Height)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.renderRows(img, v, y0, y1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.pool.Put(img)
		return nil, err
	}
	return img, nil
}

func (r *MandelbrotRenderer) Release(img *image.RGBA) {
	r.pool.Put(img)
}

func (r *MandelbrotRenderer) renderRows(img *image.RGBA, v viewport.Viewport, y0, y1 int) {
	for y := y0; y < y1; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+r.Width*4]
		for x := 0; x < r.Width; x++ {
			cx, cy := v.PixelToPlane(float64(x), float64(y), r.Width, r.Height)
			c := r.colorAt(escapeTime(cx, cy, r.Escape, r.Iterations))
			row[x*4+0] = c[0]
			row[x*4+1] = c[1]
			row[x*4+2] = c[2]
			row[x*4+3] = 255
		}
	}
}

// escapeTime returns the iteration at which z left the escape radius,
// or -1 if it stayed bounded for every iteration
func escapeTime(cx, cy, escape float64, iterations int) int {
	var zx, zy float64
	limit := escape * escape
	for i := 0; i < iterations; i++ {
		zx, zy = zx*zx-zy*zy+cx, 2*zx*zy+cy
		if zx*zx+zy*zy > limit {
			return i
		}
	}
	return -1
}

var palette = [8][3]float64{
	{0.0, 0.0, 0.0},
	{0.0, 0.0, 0.5},
	{0.0, 0.0, 1.0},
	{0.0, 1.0, 1.0},
	{0.0, 1.0, 0.0},
	{1.0, 0.0, 0.0},
	{1.0, 1.0, 0.0},
	{1.0, 1.0, 1.0},
}

func (r *MandelbrotRenderer) colorAt(s int) [3]uint8 {
	if s < 0 {
		return [3]uint8{0, 0, 0}
	}
	return gradient(float64(s) / 100.0)
}

// gradient blends the palette; t beyond 7/8 saturates to white
func gradient(t float64) [3]uint8 {
	t *= 8.0
	a := int(math.Floor(t))
	b := int(math.Ceil(t))
	a = min(a, len(palette)-1)
	b = min(b, len(palette)-1)
	f := t - math.Floor(t)
	if a == len(palette)-1 {
		f = 0
	}

	var out [3]uint8
	for i := range out {
		c := palette[a][i] + (palette[b][i]-palette[a][i])*f
		out[i] = uint8(math.Round(c * 255))
	}
	return out
}
