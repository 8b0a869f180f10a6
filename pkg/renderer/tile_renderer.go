package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/lensing"
)

// Grid maps the reduced render grid onto display fragment coordinates.
// The grid is the display resolution divided by the quality factor; each
// cell is shaded once at the display fragment under its center.
type Grid struct {
	Width, Height               int // Cells actually evaluated
	DisplayWidth, DisplayHeight int // Output resolution
}

// NewGrid sizes the render grid for a display resolution and quality factor
func NewGrid(displayWidth, displayHeight int, quality float64) Grid {
	w, h := EffectiveResolution(displayWidth, displayHeight, quality)
	return Grid{
		Width:         w,
		Height:        h,
		DisplayWidth:  max(displayWidth, 1),
		DisplayHeight: max(displayHeight, 1),
	}
}

// Fragment returns the display fragment coordinate for a grid cell. Rows are
// counted from the top of the image; fragment y grows upward.
func (g Grid) Fragment(col, row int) (float64, float64) {
	fx := (float64(col) + 0.5) * float64(g.DisplayWidth) / float64(g.Width)
	fy := (float64(g.Height-row) - 0.5) * float64(g.DisplayHeight) / float64(g.Height)
	return fx, fy
}

// Bounds returns the grid rectangle
func (g Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// TileRenderer shades the cells of one tile with the lensing kernel
type TileRenderer struct {
	kernel *lensing.Kernel
	grid   Grid
}

// NewTileRenderer creates a tile renderer for one frame
func NewTileRenderer(kernel *lensing.Kernel, grid Grid) *TileRenderer {
	return &TileRenderer{
		kernel: kernel,
		grid:   grid,
	}
}

// RenderTileBounds shades every cell within bounds into img. Tiles have
// non-overlapping bounds, so concurrent calls on one image are safe.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, img *image.RGBA) TileStats {
	stats := TileStats{Pixels: bounds.Dx() * bounds.Dy()}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			fx, fy := tr.grid.Fragment(i, j)
			sample := tr.kernel.Trace(fx, fy)
			img.SetRGBA(i, j, vec3ToColor(sample.Color))
			tr.updateStats(&stats, sample)
		}
	}

	return stats
}

// updateStats accumulates a single shaded cell
func (tr *TileRenderer) updateStats(stats *TileStats, sample lensing.Sample) {
	stats.LuminanceSum += sample.Color.Luminance()
	switch sample.Disk.Result {
	case lensing.DiskEmission:
		stats.DiskPixels++
	case lensing.DiskSwallowed:
		stats.SwallowedPixels++
	}
	stats.MaxDeflection = max(stats.MaxDeflection, sample.Deflection.Alpha)
}

// vec3ToColor converts a display-space color to RGBA with clamping.
// Gamma is already applied by the kernel.
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255*colorVec.X + 0.5),
		G: uint8(255*colorVec.Y + 0.5),
		B: uint8(255*colorVec.Z + 0.5),
		A: 255,
	}
}
