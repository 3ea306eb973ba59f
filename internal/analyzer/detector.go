package analyzer

import "image"

// Block is a frame region ranked by how much visual detail it holds
type Block struct {
	Rect  image.Rectangle
	Score float64 // Edge density, 0.0-1.0
}

// Center returns the middle of the block in pixel coordinates
func (b Block) Center() (float64, float64) {
	return float64(b.Rect.Min.X+b.Rect.Max.X) / 2, float64(b.Rect.Min.Y+b.Rect.Max.Y) / 2
}

// Detector finds regions worth flying towards
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}
