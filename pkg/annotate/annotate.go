// Package annotate draws the heads-up overlay onto finished frames: the
// control readouts, the frame rate and a dashed guide ring around the lens.
package annotate

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/df07/go-lensing-renderer/pkg/controls"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// GuideRadius is the guide ring radius as a fraction of the image height
const GuideRadius = 0.45

// Overlay is the information drawn on top of a frame
type Overlay struct {
	Settings controls.Settings
	Scene    string  // Optional scene name shown on the first line
	FPS      float64 // Frames per second; zero hides the line
	Frame    int     // 1-based frame number; zero hides the line
	Guide    bool    // Draw the dashed guide ring
}

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// Lines returns the text rows of the overlay, top to bottom
func (o Overlay) Lines() []string {
	r := o.Settings.Readout()

	var lines []string
	if o.Scene != "" {
		lines = append(lines, o.Scene)
	}
	lines = append(lines,
		fmt.Sprintf("Mass: %s M☉", r.Mass),
		fmt.Sprintf("Rs: %s", r.Radius),
		fmt.Sprintf("Exposure: %s", r.Exposure),
		fmt.Sprintf("Quality: %s", r.Quality),
	)
	if o.Frame > 0 {
		lines = append(lines, fmt.Sprintf("Frame: %d", o.Frame))
	}
	if o.FPS > 0 {
		lines = append(lines, fmt.Sprintf("FPS: %.1f", o.FPS))
	}
	return lines
}

// Annotate returns a copy of img with the overlay drawn on it. img is not modified.
func Annotate(img image.Image, o Overlay) (*image.RGBA, error) {
	source, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load overlay font: %w", err)
	}

	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())

	dc := gg.NewContextForImage(img)
	defer dc.Close()

	// Scale text with the frame, but keep it legible on thumbnails
	size := max(10, h/36)
	dc.SetFont(source.Face(size))

	if o.Guide {
		dc.SetRGBA(1, 1, 1, 0.35)
		dc.SetLineWidth(max(1, h/400))
		dc.SetDash(6, 6)
		dc.DrawCircle(w/2, h/2, GuideRadius*h)
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("failed to draw guide: %w", err)
		}
		dc.ClearDash()
	}

	lines := o.Lines()
	lineHeight := size * 1.4
	padding := size * 0.6

	var boxWidth float64
	for _, line := range lines {
		lw, _ := dc.MeasureString(line)
		boxWidth = max(boxWidth, lw)
	}

	dc.SetRGBA(0, 0, 0, 0.55)
	dc.DrawRectangle(padding/2, padding/2, boxWidth+2*padding, float64(len(lines))*lineHeight+padding)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("failed to draw panel: %w", err)
	}

	dc.SetRGBA(0.92, 0.95, 1, 1)
	for i, line := range lines {
		dc.DrawString(line, padding*1.5, padding+size+float64(i)*lineHeight)
	}

	return toRGBA(dc.Image()), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}
