package plotline

import (
	"errors"
	"image"
)

// ErrShortTargetData reports a RenderTarget whose Data slice cannot hold
// Width*Height pixels at 4 bytes each.
var ErrShortTargetData = errors.New("plotline: render target data too small")

// RenderTarget receives the RGBA pixels of an offscreen render. Data holds
// tightly packed rows of 4 bytes per pixel with no padding between rows.
type RenderTarget struct {
	Data   []uint8
	Width  int
	Height int
	Stride int
}

// NewRenderTarget allocates a target for the given dimensions.
func NewRenderTarget(width, height int) *RenderTarget {
	return &RenderTarget{
		Data:   make([]uint8, width*height*4),
		Width:  width,
		Height: height,
		Stride: width * 4,
	}
}

// Image wraps the target pixels in an *image.RGBA without copying.
func (t *RenderTarget) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    t.Data,
		Stride: t.Stride,
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}
}
