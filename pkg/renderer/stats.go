package renderer

import (
	"image"
	"time"
)

// TileStats contains statistics for a single rendered tile
type TileStats struct {
	Pixels          int     // Cells shaded in this tile
	LuminanceSum    float64 // Sum of display luminance
	DiskPixels      int     // Cells that hit the disk outside the horizon
	SwallowedPixels int     // Cells whose ray fell inside the horizon threshold
	MaxDeflection   float64 // Largest deflection angle applied, in radians
}

// add merges another tile's statistics
func (ts *TileStats) add(other TileStats) {
	ts.Pixels += other.Pixels
	ts.LuminanceSum += other.LuminanceSum
	ts.DiskPixels += other.DiskPixels
	ts.SwallowedPixels += other.SwallowedPixels
	ts.MaxDeflection = max(ts.MaxDeflection, other.MaxDeflection)
}

// FrameStats contains statistics about one rendered frame
type FrameStats struct {
	Width            int           `json:"width"`      // Display resolution
	Height           int           `json:"height"`     // Display resolution
	GridWidth        int           `json:"gridWidth"`  // Cells evaluated horizontally
	GridHeight       int           `json:"gridHeight"` // Cells evaluated vertically
	Quality          float64       `json:"quality"`
	TotalPixels      int           `json:"totalPixels"` // Cells evaluated
	TotalTiles       int           `json:"totalTiles"`
	NumWorkers       int           `json:"numWorkers"`
	DiskPixels       int           `json:"diskPixels"`
	SwallowedPixels  int           `json:"swallowedPixels"`
	MaxDeflection    float64       `json:"maxDeflection"`
	AverageLuminance float64       `json:"averageLuminance"`
	Duration         time.Duration `json:"duration"`
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image,
// with channels normalized to [0, 1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			total += 0.2126*float64(r)/0xffff + 0.7152*float64(g)/0xffff + 0.0722*float64(b)/0xffff
		}
	}

	return total / float64(pixels)
}
