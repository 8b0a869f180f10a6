package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/lensing"
)

// DefaultTileSize is the edge length of a render tile in grid cells
const DefaultTileSize = 32

// RenderConfig contains configuration for frame rendering
type RenderConfig struct {
	TileSize   int // Size of each tile in grid cells
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		TileSize:   DefaultTileSize,
		NumWorkers: 0, // Auto-detect CPU count
	}
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX       int             // Tile column (not pixel coordinates)
	TileY       int             // Tile row
	Bounds      image.Rectangle // Grid bounds of the tile
	TileImage   *image.RGBA     // Image data for just this tile, at grid resolution
	FrameNumber int             // Which frame this tile belongs to

	// Progress information
	TileNumber int // Current tile number in this frame (1-based)
	TotalTiles int // Total number of tiles in the frame
	GridWidth  int // Grid size, for scaling tiles to the display
	GridHeight int
}

// FrameRenderer renders whole frames by splitting the grid into tiles and
// shading them on a worker pool
type FrameRenderer struct {
	config     RenderConfig
	workerPool *WorkerPool
	logger     core.Logger
}

// NewFrameRenderer creates a frame renderer. A nil logger discards output.
func NewFrameRenderer(config RenderConfig, logger core.Logger) *FrameRenderer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultTileSize
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	return &FrameRenderer{
		config:     config,
		workerPool: NewWorkerPool(config.NumWorkers),
		logger:     logger,
	}
}

// WithLogger returns a renderer that shares this one's worker pool but logs
// to logger
func (fr *FrameRenderer) WithLogger(logger core.Logger) *FrameRenderer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	clone := *fr
	clone.logger = logger
	return &clone
}

// Config returns the renderer configuration
func (fr *FrameRenderer) Config() RenderConfig {
	return fr.config
}

// Render shades one frame and returns it at display resolution
func (fr *FrameRenderer) Render(ctx context.Context, u lensing.Uniforms) (*image.RGBA, FrameStats, error) {
	img, stats, err := fr.renderFrame(ctx, u, 0, nil)
	if err != nil {
		return nil, stats, err
	}

	fr.logger.Printf("Rendered %dx%d frame (grid %dx%d, %d tiles, %d workers) in %v\n",
		stats.Width, stats.Height, stats.GridWidth, stats.GridHeight, stats.TotalTiles, stats.NumWorkers, stats.Duration)
	return img, stats, nil
}

// RenderGrid shades one frame at grid resolution without upscaling
func (fr *FrameRenderer) RenderGrid(ctx context.Context, u lensing.Uniforms) (*image.RGBA, FrameStats, error) {
	kernel := lensing.NewKernel(u)
	return fr.renderGrid(ctx, kernel, 0, nil)
}

// renderFrame renders the grid then stretches it to the display resolution
func (fr *FrameRenderer) renderFrame(ctx context.Context, u lensing.Uniforms, frameNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, FrameStats, error) {
	kernel := lensing.NewKernel(u)
	img, stats, err := fr.renderGrid(ctx, kernel, frameNumber, tileCallback)
	if err != nil {
		return nil, stats, err
	}
	return Upscale(img, stats.Width, stats.Height), stats, nil
}

// renderGrid renders every tile of the reduced grid in parallel
func (fr *FrameRenderer) renderGrid(ctx context.Context, kernel *lensing.Kernel, frameNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, FrameStats, error) {
	startTime := time.Now()
	u := kernel.Uniforms()

	grid := NewGrid(u.Width, u.Height, u.Quality)
	img := image.NewRGBA(grid.Bounds())
	tiles := NewTileGrid(grid.Width, grid.Height, fr.config.TileSize)
	tileRenderer := NewTileRenderer(kernel, grid)

	stats := FrameStats{
		Width:      grid.DisplayWidth,
		Height:     grid.DisplayHeight,
		GridWidth:  grid.Width,
		GridHeight: grid.Height,
		Quality:    u.Quality,
		TotalTiles: len(tiles),
		NumWorkers: fr.workerPool.GetNumWorkers(),
	}

	// Sized for every tile so workers never block on delivery
	results := make(chan TileResult, len(tiles))
	for taskID, tile := range tiles {
		fr.workerPool.Submit(ctx, TileTask{
			Tile:     tile,
			TaskID:   taskID,
			Renderer: tileRenderer,
			Target:   img,
		}, results)
	}

	// Wait for all tiles to complete and dispatch tile callbacks from this goroutine
	var totals TileStats
	var firstErr error
	for i := 0; i < len(tiles); i++ {
		result := <-results
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		totals.add(result.Stats)

		if tileCallback != nil && firstErr == nil {
			tile := tiles[result.TaskID]
			tileCallback(TileCompletionResult{
				TileX:       tile.Bounds.Min.X / fr.config.TileSize,
				TileY:       tile.Bounds.Min.Y / fr.config.TileSize,
				Bounds:      tile.Bounds,
				TileImage:   extractTileImage(img, tile.Bounds),
				FrameNumber: frameNumber,
				TileNumber:  i + 1,
				TotalTiles:  len(tiles),
				GridWidth:   grid.Width,
				GridHeight:  grid.Height,
			})
		}
	}
	if firstErr != nil {
		return nil, stats, fmt.Errorf("render frame %d: %w", frameNumber, firstErr)
	}

	stats.TotalPixels = totals.Pixels
	stats.DiskPixels = totals.DiskPixels
	stats.SwallowedPixels = totals.SwallowedPixels
	stats.MaxDeflection = totals.MaxDeflection
	if totals.Pixels > 0 {
		stats.AverageLuminance = totals.LuminanceSum / float64(totals.Pixels)
	}
	stats.Duration = time.Since(startTime)

	return img, stats, nil
}

// extractTileImage copies a tile out of the shared frame image
func extractTileImage(img *image.RGBA, bounds image.Rectangle) *image.RGBA {
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			tileImage.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, img.RGBAAt(x, y))
		}
	}
	return tileImage
}
