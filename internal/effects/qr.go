package effects

import (
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"github.com/ivlev/fractal2video/internal/config"
)

// QREffect stamps a QR code with the camera coordinates into the
// bottom-right corner, so any paused frame can be revisited
type QREffect struct {
	Size     int // Side of the stamp in pixels
	Margin   int
	Recovery qrcode.RecoveryLevel
}

func NewQREffect() *QREffect {
	return &QREffect{
		Size:     96,
		Margin:   8,
		Recovery: qrcode.Medium,
	}
}

func (e *QREffect) Apply(frame *image.RGBA, p config.FrameParams) error {
	code, err := qrcode.New(QRPayload(p), e.Recovery)
	if err != nil {
		return fmt.Errorf("qr encode: %w", err)
	}

	bounds := frame.Bounds()
	size := min(e.Size, bounds.Dx()-2*e.Margin, bounds.Dy()-2*e.Margin)
	if size <= 0 {
		return nil
	}

	src := code.Image(0)
	dst := image.Rect(bounds.Max.X-e.Margin-size, bounds.Max.Y-e.Margin-size, bounds.Max.X-e.Margin, bounds.Max.Y-e.Margin)
	draw.NearestNeighbor.Scale(frame, dst, src, src.Bounds(), draw.Src, nil)
	return nil
}

// QRPayload is the text encoded in the stamp
func QRPayload(p config.FrameParams) string {
	return fmt.Sprintf("x=%.17g;y=%.17g;scale=%.17g;frame=%d", p.CenterX, p.CenterY, p.Scale, p.Index)
}
