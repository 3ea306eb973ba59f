package effects

import (
	"image"

	"github.com/ivlev/fractal2video/internal/config"
)

// Effect draws on a rendered frame before it is handed to the sink
type Effect interface {
	Apply(frame *image.RGBA, p config.FrameParams) error
}

// Chain applies effects in order and stops at the first error
type Chain []Effect

func (c Chain) Apply(frame *image.RGBA, p config.FrameParams) error {
	for _, e := range c {
		if err := e.Apply(frame, p); err != nil {
			return err
		}
	}
	return nil
}

// None leaves frames untouched
type None struct{}

func (None) Apply(*image.RGBA, config.FrameParams) error { return nil }
