// Package config assembles render settings. Later sources override earlier
// ones: built-in defaults, a named scene, a .env file, environment variables,
// then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/df07/go-lensing-renderer/pkg/camera"
	"github.com/df07/go-lensing-renderer/pkg/lensing"
	"github.com/df07/go-lensing-renderer/pkg/physics"
	"github.com/df07/go-lensing-renderer/pkg/renderer"
	"github.com/df07/go-lensing-renderer/pkg/scene"
	"github.com/joho/godotenv"
)

var (
	ErrInvalidMass       = errors.New("mass must be positive")
	ErrInvalidExposure   = errors.New("exposure must be non-negative")
	ErrInvalidQuality    = errors.New("quality must be at least 1")
	ErrInvalidResolution = errors.New("resolution must be positive")
	ErrInvalidAnimation  = errors.New("invalid animation settings")
)

// S3Config holds object storage settings. Uploads are enabled when Bucket is set.
type S3Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string // Key prefix for uploaded frames
}

// Enabled reports whether frames should be uploaded
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Config is the full set of settings shared by the CLI, web server and viewer
type Config struct {
	Scene string // Built-in scene name or scene file, applied before flags

	Width   int
	Height  int
	Quality float64

	MassSolar float64
	Exposure  float64
	ShowDisk  bool

	Yaw   float64
	Pitch float64
	Zoom  float64

	Time          float64 // Scene time of the first frame
	Frames        int
	FrameInterval float64
	YawStep       float64

	TileSize int
	Workers  int

	OutputDir string
	Format    string // Output file extension: png, jpg, gif, tif or bmp
	Thumbnail int    // Max thumbnail edge in pixels, 0 disables
	Annotate  bool

	Port int

	S3 S3Config
}

// Default returns the built-in defaults
func Default() Config {
	params := physics.DefaultParameters()
	cam := camera.DefaultState()
	rc := renderer.DefaultRenderConfig()
	anim := renderer.DefaultAnimationOptions()

	return Config{
		Width:         800,
		Height:        450,
		Quality:       1,
		MassSolar:     params.MassSolar,
		Exposure:      params.Exposure,
		ShowDisk:      params.ShowDisk,
		Yaw:           cam.Yaw,
		Pitch:         cam.Pitch,
		Zoom:          cam.Zoom,
		Frames:        anim.Frames,
		FrameInterval: anim.FrameInterval,
		YawStep:       anim.YawStep,
		TileSize:      rc.TileSize,
		Workers:       rc.NumWorkers,
		OutputDir:     "output",
		Format:        "png",
		Port:          8080,
	}
}

// Load builds a Config from all sources. args are the command-line arguments
// without the program name; envFile may be empty or missing.
func Load(name string, args []string, envFile string) (Config, error) {
	c, err := parse(name, args, envFile, nil)
	if err != nil {
		return c, err
	}

	// A scene replaces the defaults; environment and flags still win
	if c.Scene != "" {
		s, err := scene.NewScene(c.Scene)
		if err != nil {
			return c, err
		}
		if c, err = parse(name, args, envFile, s); err != nil {
			return c, err
		}
	}

	return c, c.Validate()
}

func parse(name string, args []string, envFile string, s *scene.Scene) (Config, error) {
	c := Default()
	if s != nil {
		c.ApplyScene(s)
	}
	if err := c.LoadEnv(envFile); err != nil {
		return c, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	c.RegisterFlags(fs)
	err := fs.Parse(args)
	return c, err
}

// ApplyScene copies a scene's parameters, camera and resolution
func (c *Config) ApplyScene(s *scene.Scene) {
	c.Scene = s.Name
	c.Width = s.Width
	c.Height = s.Height
	c.Quality = s.Quality
	c.MassSolar = s.Parameters.MassSolar
	c.Exposure = s.Parameters.Exposure
	c.ShowDisk = s.Parameters.ShowDisk
	c.Yaw = s.Camera.Yaw
	c.Pitch = s.Camera.Pitch
	c.Zoom = s.Camera.Zoom
}

// LoadEnv loads envFile into the process environment (if it exists) and then
// applies LENS_* and S3_* variables. Variables already set in the environment
// take precedence over the file.
func (c *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	strs := map[string]*string{
		"LENS_SCENE":      &c.Scene,
		"LENS_OUTPUT_DIR": &c.OutputDir,
		"LENS_FORMAT":     &c.Format,
		"S3_ACCESS_KEY":   &c.S3.AccessKey,
		"S3_SECRET_KEY":   &c.S3.SecretKey,
		"S3_ENDPOINT":     &c.S3.Endpoint,
		"S3_REGION":       &c.S3.Region,
		"S3_BUCKET":       &c.S3.Bucket,
		"S3_PREFIX":       &c.S3.Prefix,
	}
	floats := map[string]*float64{
		"LENS_QUALITY":        &c.Quality,
		"LENS_MASS_SOLAR":     &c.MassSolar,
		"LENS_EXPOSURE":       &c.Exposure,
		"LENS_YAW":            &c.Yaw,
		"LENS_PITCH":          &c.Pitch,
		"LENS_ZOOM":           &c.Zoom,
		"LENS_TIME":           &c.Time,
		"LENS_FRAME_INTERVAL": &c.FrameInterval,
		"LENS_YAW_STEP":       &c.YawStep,
	}
	ints := map[string]*int{
		"LENS_WIDTH":     &c.Width,
		"LENS_HEIGHT":    &c.Height,
		"LENS_FRAMES":    &c.Frames,
		"LENS_TILE_SIZE": &c.TileSize,
		"LENS_WORKERS":   &c.Workers,
		"LENS_THUMBNAIL": &c.Thumbnail,
		"LENS_PORT":      &c.Port,
	}
	bools := map[string]*bool{
		"LENS_SHOW_DISK": &c.ShowDisk,
		"LENS_ANNOTATE":  &c.Annotate,
	}

	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	for key, dst := range floats {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = f
		}
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
	}
	for key, dst := range bools {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = b
		}
	}

	return nil
}

// RegisterFlags binds every setting to a command-line flag
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Scene, "scene", c.Scene, "Built-in scene (default, sgr-a, m87, stellar, edge-on) or .scene file")
	fs.IntVar(&c.Width, "width", c.Width, "Image width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "Image height in pixels")
	fs.Float64Var(&c.Quality, "quality", c.Quality, "Supersampling divisor (>= 1); renders at width/quality then upscales")
	fs.Float64Var(&c.MassSolar, "mass", c.MassSolar, "Black hole mass in solar masses")
	fs.Float64Var(&c.Exposure, "exposure", c.Exposure, "Tone-mapping exposure")
	fs.BoolVar(&c.ShowDisk, "disk", c.ShowDisk, "Show the accretion disk")
	fs.Float64Var(&c.Yaw, "yaw", c.Yaw, "Camera yaw in radians")
	fs.Float64Var(&c.Pitch, "pitch", c.Pitch, "Camera pitch in radians (clamped to ±1.2)")
	fs.Float64Var(&c.Zoom, "zoom", c.Zoom, "Camera distance (clamped to 1.2..8)")
	fs.Float64Var(&c.Time, "time", c.Time, "Scene time of the first frame in seconds")
	fs.IntVar(&c.Frames, "frames", c.Frames, "Number of frames to render")
	fs.Float64Var(&c.FrameInterval, "interval", c.FrameInterval, "Scene seconds between frames")
	fs.Float64Var(&c.YawStep, "orbit", c.YawStep, "Camera yaw added per frame in radians")
	fs.IntVar(&c.TileSize, "tile", c.TileSize, "Tile size in grid cells")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Number of parallel workers (0 = CPU count)")
	fs.StringVar(&c.OutputDir, "output", c.OutputDir, "Output directory")
	fs.StringVar(&c.Format, "format", c.Format, "Output format: png, jpg, gif, tif or bmp")
	fs.IntVar(&c.Thumbnail, "thumbnail", c.Thumbnail, "Also save a thumbnail with this max edge (0 = off)")
	fs.BoolVar(&c.Annotate, "annotate", c.Annotate, "Draw the HUD and horizon guide on saved frames")
	fs.IntVar(&c.Port, "port", c.Port, "Web server port")
}

// Validate checks the settings the renderer would otherwise silently clamp
func (c Config) Validate() error {
	if !(c.MassSolar > 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidMass, c.MassSolar)
	}
	if !(c.Exposure >= 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidExposure, c.Exposure)
	}
	if !(c.Quality >= 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidQuality, c.Quality)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidResolution, c.Width, c.Height)
	}
	if c.Frames < 1 || c.FrameInterval < 0 || c.TileSize < 1 || c.Workers < 0 {
		return fmt.Errorf("%w: frames=%d interval=%g tile=%d workers=%d",
			ErrInvalidAnimation, c.Frames, c.FrameInterval, c.TileSize, c.Workers)
	}
	return nil
}

// Parameters returns the physical parameters
func (c Config) Parameters() physics.Parameters {
	return physics.Parameters{
		MassSolar: c.MassSolar,
		Exposure:  c.Exposure,
		ShowDisk:  c.ShowDisk,
	}
}

// Camera returns the camera state, clamped to its limits
func (c Config) Camera() camera.State {
	return camera.State{Yaw: c.Yaw, Pitch: c.Pitch, Zoom: c.Zoom}.Clamped()
}

// Uniforms returns the frame snapshot at the configured start time
func (c Config) Uniforms() lensing.Uniforms {
	return lensing.NewUniforms(c.Width, c.Height, c.Time, c.Parameters(), c.Quality, c.Camera())
}

// RenderConfig returns the frame renderer settings
func (c Config) RenderConfig() renderer.RenderConfig {
	return renderer.RenderConfig{
		TileSize:   c.TileSize,
		NumWorkers: c.Workers,
	}
}

// AnimationOptions returns the frame sequence settings
func (c Config) AnimationOptions() renderer.AnimationOptions {
	return renderer.AnimationOptions{
		Frames:        c.Frames,
		FrameInterval: c.FrameInterval,
		YawStep:       c.YawStep,
	}
}
