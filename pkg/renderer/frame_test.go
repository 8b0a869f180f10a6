package renderer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/df07/go-lensing-renderer/pkg/core"
)

// testLogger implements core.Logger for testing by discarding all output
type testLogger struct{}

// Ensure testLogger implements core.Logger
var _ core.Logger = (*testLogger)(nil)

func (tl *testLogger) Printf(format string, args ...interface{}) {
	// Discard log output during tests
}

func TestDefaultRenderConfig(t *testing.T) {
	config := DefaultRenderConfig()

	if config.TileSize != DefaultTileSize {
		t.Errorf("Expected default tile size %d, got %d", DefaultTileSize, config.TileSize)
	}
	if config.NumWorkers != 0 {
		t.Errorf("Expected auto-detected workers, got %d", config.NumWorkers)
	}
}

func TestEffectiveResolution(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		quality        float64
		expectedWidth  int
		expectedHeight int
	}{
		{"full quality", 800, 600, 1, 800, 600},
		{"half", 800, 600, 2, 400, 300},
		{"fractional", 801, 601, 1.5, 534, 400},
		{"below one clamps", 800, 600, 0.5, 800, 600},
		{"tiny display", 3, 2, 4, 1, 1},
		{"zero display", 0, 0, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := EffectiveResolution(tt.width, tt.height, tt.quality)
			if w != tt.expectedWidth || h != tt.expectedHeight {
				t.Errorf("EffectiveResolution(%d, %d, %g) = %dx%d, want %dx%d",
					tt.width, tt.height, tt.quality, w, h, tt.expectedWidth, tt.expectedHeight)
			}
		})
	}
}

func TestFrameRendererRender(t *testing.T) {
	fr := NewFrameRenderer(RenderConfig{TileSize: 8, NumWorkers: 2}, &testLogger{})
	u := testUniforms(40, 30)

	img, stats, err := fr.Render(context.Background(), u)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if img.Bounds() != image.Rect(0, 0, 40, 30) {
		t.Errorf("Expected 40x30 image, got %v", img.Bounds())
	}
	if stats.TotalPixels != 40*30 {
		t.Errorf("Expected %d pixels, got %d", 40*30, stats.TotalPixels)
	}
	if stats.TotalTiles != 5*4 {
		t.Errorf("Expected 20 tiles, got %d", stats.TotalTiles)
	}
	if stats.NumWorkers != 2 {
		t.Errorf("Expected 2 workers, got %d", stats.NumWorkers)
	}
	if stats.AverageLuminance < 0 || stats.AverageLuminance > 1 {
		t.Errorf("Expected average luminance in [0, 1], got %f", stats.AverageLuminance)
	}

	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			if img.RGBAAt(x, y).A != 255 {
				t.Fatalf("Expected every pixel to be written, (%d,%d) is empty", x, y)
			}
		}
	}
}

func TestFrameRendererQualityReducesGrid(t *testing.T) {
	fr := NewFrameRenderer(RenderConfig{TileSize: 16, NumWorkers: 2}, &testLogger{})
	u := testUniforms(64, 48)
	u.Quality = 4

	img, stats, err := fr.Render(context.Background(), u)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if stats.GridWidth != 16 || stats.GridHeight != 12 {
		t.Errorf("Expected 16x12 grid, got %dx%d", stats.GridWidth, stats.GridHeight)
	}
	if stats.TotalPixels != 16*12 {
		t.Errorf("Expected %d evaluated cells, got %d", 16*12, stats.TotalPixels)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("Expected output upscaled to 64x48, got %v", img.Bounds())
	}

	grid, _, err := fr.RenderGrid(context.Background(), u)
	if err != nil {
		t.Fatalf("RenderGrid failed: %v", err)
	}
	if grid.Bounds().Dx() != 16 || grid.Bounds().Dy() != 12 {
		t.Errorf("Expected 16x12 grid image, got %v", grid.Bounds())
	}
}

// TestFrameRendererDeterministic tests that tiling and worker count never change the image
func TestFrameRendererDeterministic(t *testing.T) {
	u := testUniforms(37, 23)

	configs := []RenderConfig{
		{TileSize: 1, NumWorkers: 1},
		{TileSize: 5, NumWorkers: 3},
		{TileSize: 64, NumWorkers: 8},
	}

	var reference *image.RGBA
	for _, config := range configs {
		img, _, err := NewFrameRenderer(config, &testLogger{}).Render(context.Background(), u)
		if err != nil {
			t.Fatalf("Render with %+v failed: %v", config, err)
		}
		if reference == nil {
			reference = img
			continue
		}
		for i := range img.Pix {
			if img.Pix[i] != reference.Pix[i] {
				t.Fatalf("Config %+v differs from reference at byte %d", config, i)
			}
		}
	}
}

func TestFrameRendererCancelled(t *testing.T) {
	fr := NewFrameRenderer(RenderConfig{TileSize: 4, NumWorkers: 2}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img, _, err := fr.Render(ctx, testUniforms(32, 32))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if img != nil {
		t.Error("Expected no image from a cancelled render")
	}
}

// countingLogger records how many lines were logged
type countingLogger struct{ lines int }

func (cl *countingLogger) Printf(format string, args ...interface{}) {
	cl.lines++
}

func TestFrameRendererWithLogger(t *testing.T) {
	base := NewFrameRenderer(RenderConfig{TileSize: 8, NumWorkers: 2}, &testLogger{})
	logger := &countingLogger{}
	fr := base.WithLogger(logger)

	if fr.workerPool != base.workerPool {
		t.Error("Expected WithLogger to share the worker pool")
	}
	if fr.Config() != base.Config() {
		t.Errorf("Expected config %+v, got %+v", base.Config(), fr.Config())
	}

	if _, _, err := fr.Render(context.Background(), testUniforms(16, 16)); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if logger.lines == 0 {
		t.Error("Expected the new logger to receive render output")
	}
}

func TestUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	fill := color.RGBA{40, 80, 120, 255}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			src.SetRGBA(x, y, fill)
		}
	}

	if same := Upscale(src, 4, 3); same != src {
		t.Error("Expected same-size upscale to return the source image")
	}

	dst := Upscale(src, 16, 12)
	if dst.Bounds() != image.Rect(0, 0, 16, 12) {
		t.Fatalf("Expected 16x12 image, got %v", dst.Bounds())
	}
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			if got := dst.RGBAAt(x, y); got != fill {
				t.Fatalf("Expected uniform color %v at (%d,%d), got %v", fill, x, y, got)
			}
		}
	}
}
