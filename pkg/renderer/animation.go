package renderer

import (
	"context"
	"image"
	"time"

	"github.com/df07/go-lensing-renderer/pkg/lensing"
)

// AnimationOptions configures a sequence of frames rendered from one base snapshot
type AnimationOptions struct {
	Frames        int     // Number of frames to render (minimum 1)
	FrameInterval float64 // Seconds of scene time between frames
	YawStep       float64 // Camera yaw added per frame, in radians
	TileUpdates   bool    // Whether to generate tile completion events
}

// DefaultAnimationOptions returns a short 30 fps turntable
func DefaultAnimationOptions() AnimationOptions {
	return AnimationOptions{
		Frames:        1,
		FrameInterval: 1.0 / 30.0,
		YawStep:       0,
		TileUpdates:   false,
	}
}

// FrameResult contains one finished frame of an animation
type FrameResult struct {
	FrameNumber int // 1-based
	Time        float64
	Uniforms    lensing.Uniforms
	Image       *image.RGBA
	Stats       FrameStats
	IsLast      bool
}

// FrameUniforms returns the snapshot for a 1-based frame number
func (o AnimationOptions) FrameUniforms(base lensing.Uniforms, frameNumber int) lensing.Uniforms {
	step := float64(frameNumber - 1)
	u := base
	u.Time = base.Time + step*o.FrameInterval
	u.Camera.Yaw = base.Camera.Yaw + step*o.YawStep
	return u
}

// RenderAnimation renders with channel-based communication.
// Returns channels for events. The caller should read from these channels in separate goroutines.
// If options.TileUpdates is false, the tile channel is closed immediately and no tile events are generated.
func (fr *FrameRenderer) RenderAnimation(ctx context.Context, base lensing.Uniforms, options AnimationOptions) (<-chan FrameResult, <-chan TileCompletionResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	tileChan := make(chan TileCompletionResult, 100) // Buffer for tiles
	errChan := make(chan error, 1)

	if options.Frames < 1 {
		options.Frames = 1
	}

	// If tile updates are disabled, close the channel immediately
	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(frameChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)

		fr.logger.Printf("Starting animation with %d frames...\n", options.Frames)

		for frame := 1; frame <= options.Frames; frame++ {
			// Check if client disconnected before starting this frame
			select {
			case <-ctx.Done():
				fr.logger.Printf("Rendering cancelled before frame %d\n", frame)
				errChan <- ctx.Err()
				return
			default:
			}

			// Create tile callback only if tile updates are enabled
			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Channel full, the frame event still carries every pixel
					}
				}
			}

			startTime := time.Now()
			u := options.FrameUniforms(base, frame)
			img, stats, err := fr.renderFrame(ctx, u, frame, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			fr.logger.Printf("Frame %d/%d completed in %v (grid %dx%d)\n",
				frame, options.Frames, time.Since(startTime), stats.GridWidth, stats.GridHeight)

			result := FrameResult{
				FrameNumber: frame,
				Time:        u.Time,
				Uniforms:    u,
				Image:       img,
				Stats:       stats,
				IsLast:      frame == options.Frames,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frameChan, tileChan, errChan
}
