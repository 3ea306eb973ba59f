package effects

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/fractal2video/internal/config"
)

// HUDEffect prints the frame counter and camera position in the top-left corner
type HUDEffect struct {
	Face       font.Face
	Color      color.Color
	Background color.Color
	Padding    int
}

func NewHUDEffect() *HUDEffect {
	return &HUDEffect{
		Face:       basicfont.Face7x13,
		Color:      color.RGBA{R: 255, G: 255, B: 0, A: 255},
		Background: color.RGBA{A: 128},
		Padding:    6,
	}
}

func (e *HUDEffect) Apply(frame *image.RGBA, p config.FrameParams) error {
	text := HUDText(p)

	d := &font.Drawer{
		Dst:  frame,
		Src:  image.NewUniform(e.Color),
		Face: e.Face,
	}

	metrics := e.Face.Metrics()
	width := d.MeasureString(text).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	box := image.Rect(0, 0, width+2*e.Padding, height+2*e.Padding).Intersect(frame.Bounds())
	draw.Draw(frame, box, image.NewUniform(e.Background), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I(e.Padding),
		Y: fixed.I(e.Padding) + metrics.Ascent,
	}
	d.DrawString(text)
	return nil
}

// HUDText is the overlay line for a frame
func HUDText(p config.FrameParams) string {
	return fmt.Sprintf("frame %d/%d | x=%.10f y=%.10f | scale=%.3e", p.Index+1, p.Total, p.CenterX, p.CenterY, p.Scale)
}
