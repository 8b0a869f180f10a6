package renderer

import (
	"image"

	"golang.org/x/image/draw"
)

// EffectiveResolution returns the grid actually evaluated for a display
// resolution and quality factor: floor(size / quality), at least 1x1.
func EffectiveResolution(width, height int, quality float64) (int, int) {
	if !(quality >= 1) {
		quality = 1
	}
	w := max(int(float64(width)/quality), 1)
	h := max(int(float64(height)/quality), 1)
	return w, h
}

// Upscale stretches a reduced-resolution frame to the display resolution
// with bilinear filtering. An image already at the target size is returned as is.
func Upscale(src *image.RGBA, width, height int) *image.RGBA {
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
