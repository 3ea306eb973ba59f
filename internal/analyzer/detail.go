package analyzer

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// DetailDetector scores square tiles by the share of Sobel edge pixels.
// In an escape-time render flat areas are either the set interior or far
// outside it; the interesting boundary shows up as dense colour bands.
type DetailDetector struct {
	TileSize      int     // Tile edge in pixels
	EdgeThreshold float64 // Gradient magnitude threshold
	MinDensity    float64 // Tiles below are too flat to be worth a visit
	MaxDensity    float64 // Tiles above are noise (aliasing at deep zoom)
}

// NewDetailDetector creates a detector with default settings
func NewDetailDetector() *DetailDetector {
	return &DetailDetector{
		TileSize:      32,
		EdgeThreshold: 40.0,
		MinDensity:    0.05,
		MaxDensity:    0.85,
	}
}

// Detect returns the qualifying tiles, best first
func (d *DetailDetector) Detect(img image.Image) ([]Block, error) {
	gray := toGrayscale(img)
	edges := sobelEdges(gray, d.EdgeThreshold)

	tile := d.TileSize
	if tile <= 0 {
		tile = 32
	}

	bounds := edges.Bounds()
	blocks := []Block{}
	for ty := bounds.Min.Y; ty < bounds.Max.Y; ty += tile {
		for tx := bounds.Min.X; tx < bounds.Max.X; tx += tile {
			rect := image.Rect(tx, ty, tx+tile, ty+tile).Intersect(bounds)
			density := edgeDensity(edges, rect)
			if density >= d.MinDensity && density <= d.MaxDensity {
				blocks = append(blocks, Block{Rect: rect, Score: density})
			}
		}
	}

	// Stable so that equal scores keep reading order
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Score > blocks[j].Score
	})

	return blocks, nil
}

func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return gray
}

// sobelEdges marks pixels whose gradient magnitude exceeds threshold
func sobelEdges(gray *image.Gray, threshold float64) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	gx := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	gy := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * gx[ky+1][kx+1]
					sumY += pixel * gy[ky+1][kx+1]
				}
			}

			if math.Hypot(sumX, sumY) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return edges
}

func edgeDensity(edges *image.Gray, rect image.Rectangle) float64 {
	area := rect.Dx() * rect.Dy()
	if area == 0 {
		return 0
	}

	count := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if edges.GrayAt(x, y).Y > 128 {
				count++
			}
		}
	}
	return float64(count) / float64(area)
}
