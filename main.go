package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/df07/go-lensing-renderer/pkg/annotate"
	"github.com/df07/go-lensing-renderer/pkg/config"
	"github.com/df07/go-lensing-renderer/pkg/controls"
	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/output"
	"github.com/df07/go-lensing-renderer/pkg/renderer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run renders the configured frames and saves them. Settings come from
// defaults, the selected scene, .env, LENS_* variables and flags.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load("lensing", args, ".env")
	if err != nil {
		return err
	}

	logger := core.NewDefaultLogger()
	sink, err := createSink(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Starting Lensing Renderer...")
	fmt.Fprintf(stdout, "Scene: %s, %dx%d, quality %.2fx, mass %g M☉ (Rs %s)\n",
		sceneLabel(cfg), cfg.Width, cfg.Height, cfg.Quality, cfg.MassSolar, cfg.Parameters().RadiusLabel())

	fr := renderer.NewFrameRenderer(cfg.RenderConfig(), logger)
	options := cfg.AnimationOptions()
	frameChan, _, errChan := fr.RenderAnimation(ctx, cfg.Uniforms(), options)

	fps := renderer.NewFPSCounter(renderer.DefaultFPSWindow)
	startTime := time.Now()
	for result := range frameChan {
		rate, _ := fps.Tick()

		frameNumber := 0
		if options.Frames > 1 {
			frameNumber = result.FrameNumber
		}

		location, err := saveFrame(ctx, cfg, sink, result, frameNumber, rate)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Frame %d/%d: avg luminance %.3f, %d disk pixels, saved as %s\n",
			result.FrameNumber, options.Frames, result.Stats.AverageLuminance, result.Stats.DiskPixels, location)
	}
	if err := <-errChan; err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Render completed in %v\n", time.Since(startTime))
	return nil
}

// createSink returns the file sink, plus an S3 sink when a bucket is configured
func createSink(cfg config.Config, logger core.Logger) (output.Sink, error) {
	fileSink, err := output.NewFileSink(cfg.OutputDir, cfg.Format)
	if err != nil {
		return nil, err
	}
	if !cfg.S3.Enabled() {
		return fileSink, nil
	}

	s3Sink, err := output.NewS3Sink(cfg.S3, cfg.Format, logger)
	if err != nil {
		return nil, err
	}
	return output.MultiSink{fileSink, s3Sink}, nil
}

// saveFrame annotates a finished frame if requested, then stores it and its thumbnail
func saveFrame(ctx context.Context, cfg config.Config, sink output.Sink, result renderer.FrameResult, frameNumber int, fps float64) (string, error) {
	var img image.Image = result.Image
	if cfg.Annotate {
		settings := controls.Settings{Parameters: cfg.Parameters(), Quality: cfg.Quality}
		annotated, err := annotate.Annotate(img, annotate.Overlay{
			Settings: settings,
			Scene:    sceneLabel(cfg),
			FPS:      fps,
			Frame:    frameNumber,
			Guide:    true,
		})
		if err != nil {
			return "", err
		}
		img = annotated
	}

	key := output.FrameKey(sceneLabel(cfg), time.Now(), frameNumber)
	location, err := sink.Save(ctx, key, img)
	if err != nil {
		return "", err
	}

	if cfg.Thumbnail > 0 {
		if _, err := sink.Save(ctx, output.ThumbnailKey(key), output.Thumbnail(img, cfg.Thumbnail)); err != nil {
			return "", err
		}
	}
	return location, nil
}

func sceneLabel(cfg config.Config) string {
	if cfg.Scene == "" {
		return "default"
	}
	return cfg.Scene
}
