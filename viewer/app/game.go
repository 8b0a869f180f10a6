// Package app is the interactive lensing viewer: it renders frames in the
// background while the window shows the latest one, and maps mouse, wheel,
// touch and keyboard input onto the camera and controls.
package app

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/df07/go-lensing-renderer/pkg/camera"
	"github.com/df07/go-lensing-renderer/pkg/config"
	"github.com/df07/go-lensing-renderer/pkg/controls"
	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/lensing"
	"github.com/df07/go-lensing-renderer/pkg/renderer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a discrete control change triggered by a key
type Action int

const (
	ActionNone Action = iota
	ActionMassUp
	ActionMassDown
	ActionExposureUp
	ActionExposureDown
	ActionQualityUp
	ActionQualityDown
	ActionToggleDisk
	ActionResetCamera
	ActionToggleHUD
)

var keyBindings = map[ebiten.Key]Action{
	ebiten.KeyEqual:        ActionMassUp,
	ebiten.KeyMinus:        ActionMassDown,
	ebiten.KeyPeriod:       ActionExposureUp,
	ebiten.KeyComma:        ActionExposureDown,
	ebiten.KeyBracketRight: ActionQualityUp,
	ebiten.KeyBracketLeft:  ActionQualityDown,
	ebiten.KeyD:            ActionToggleDisk,
	ebiten.KeyR:            ActionResetCamera,
	ebiten.KeyH:            ActionToggleHUD,
}

const helpText = "Drag: orbit  Wheel/pinch: zoom  +/-: mass  ,/.: exposure  [/]: quality  D: disk  R: reset  H: HUD"

type frameResult struct {
	image *image.RGBA
	stats renderer.FrameStats
	err   error
}

// Game implements ebiten.Game
type Game struct {
	controller *camera.Controller
	settings   controls.Settings
	renderer   *renderer.FrameRenderer
	fps        *renderer.FPSCounter
	logger     core.Logger

	ctx    context.Context
	cancel context.CancelFunc
	start  time.Time

	width, height int

	// Background rendering; results are consumed on the game goroutine
	results   chan frameResult
	rendering bool
	latest    *image.RGBA
	stats     renderer.FrameStats
	dirty     bool
	frame     *ebiten.Image

	showHUD bool

	// Input state
	dragging     bool
	lastX, lastY int
	touchIDs     []ebiten.TouchID
	pinching     bool
	lastPinch    float64
}

// NewGame creates a viewer starting from cfg's parameters and camera
func NewGame(cfg config.Config, logger core.Logger) *Game {
	if logger == nil {
		logger = core.NopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Game{
		controller: camera.NewController(camera.WithInitialState(cfg.Camera())),
		settings:   controls.Settings{Parameters: cfg.Parameters(), Quality: controls.QualityFromSlider(cfg.Quality)},
		// Per-frame render logs would flood the console at interactive rates
		renderer: renderer.NewFrameRenderer(cfg.RenderConfig(), core.NopLogger{}),
		fps:      renderer.NewFPSCounter(renderer.DefaultFPSWindow),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		start:    time.Now(),
		width:    max(cfg.Width, 1),
		height:   max(cfg.Height, 1),
		results:  make(chan frameResult, 1),
		showHUD:  true,
	}
}

// Close stops any in-flight render
func (g *Game) Close() {
	g.cancel()
}

// Settings returns the current control settings
func (g *Game) Settings() controls.Settings {
	return g.settings
}

// Camera returns the current camera state
func (g *Game) Camera() camera.State {
	return g.controller.State()
}

// Apply performs a key action
func (g *Game) Apply(a Action) {
	switch a {
	case ActionMassUp:
		g.settings = g.settings.StepMass(1)
	case ActionMassDown:
		g.settings = g.settings.StepMass(-1)
	case ActionExposureUp:
		g.settings = g.settings.StepExposure(1)
	case ActionExposureDown:
		g.settings = g.settings.StepExposure(-1)
	case ActionQualityUp:
		g.settings = g.settings.StepQuality(1)
	case ActionQualityDown:
		g.settings = g.settings.StepQuality(-1)
	case ActionToggleDisk:
		g.settings = g.settings.ToggleDisk()
	case ActionResetCamera:
		g.controller.Reset()
	case ActionToggleHUD:
		g.showHUD = !g.showHUD
		return
	default:
		return
	}

	r := g.settings.Readout()
	g.logger.Printf("mass=%s exposure=%s quality=%s disk=%t Rs=%s\n",
		r.Mass, r.Exposure, r.Quality, g.settings.ShowDisk, r.Radius)
}

// Uniforms snapshots the current state for a frame at scene time t
func (g *Game) Uniforms(t float64) lensing.Uniforms {
	return lensing.NewUniforms(g.width, g.height, t, g.settings.Parameters, g.settings.Quality, g.controller.State())
}

// startRender renders the next frame in the background
func (g *Game) startRender() {
	g.rendering = true
	u := g.Uniforms(time.Since(g.start).Seconds())
	go func() {
		img, stats, err := g.renderer.Render(g.ctx, u)
		g.results <- frameResult{image: img, stats: stats, err: err}
	}()
}

// pollFrame collects a finished background render, if any
func (g *Game) pollFrame() (bool, error) {
	select {
	case result := <-g.results:
		g.rendering = false
		if result.err != nil {
			return true, result.err
		}
		g.latest = result.image
		g.stats = result.stats
		g.dirty = true
		g.fps.Tick()
		return true, nil
	default:
		return false, nil
	}
}

// Update handles input and keeps one render in flight
func (g *Game) Update() error {
	g.handleKeys()
	g.handleMouse()
	g.handleTouches()

	if _, err := g.pollFrame(); err != nil {
		if g.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("render failed: %w", err)
	}
	if !g.rendering {
		g.startRender()
	}
	return nil
}

func (g *Game) handleKeys() {
	for key, action := range keyBindings {
		if inpututil.IsKeyJustPressed(key) {
			g.Apply(action)
		}
	}
}

func (g *Game) handleMouse() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		// Scrolling down (negative dy) moves the camera away
		g.controller.Wheel(-dy)
	}

	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = false
		return
	}
	x, y := ebiten.CursorPosition()
	if g.dragging {
		g.controller.Drag(float64(x-g.lastX), float64(y-g.lastY))
	}
	g.lastX, g.lastY = x, y
	g.dragging = true
}

func (g *Game) handleTouches() {
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	if len(g.touchIDs) != 2 {
		g.pinching = false
		return
	}

	x0, y0 := ebiten.TouchPosition(g.touchIDs[0])
	x1, y1 := ebiten.TouchPosition(g.touchIDs[1])
	d := pinchDistance(x0, y0, x1, y1)
	if g.pinching {
		g.controller.Pinch(d - g.lastPinch)
	}
	g.lastPinch = d
	g.pinching = true
}

func pinchDistance(x0, y0, x1, y1 int) float64 {
	return math.Hypot(float64(x1-x0), float64(y1-y0))
}

// Draw shows the latest frame and the HUD
func (g *Game) Draw(screen *ebiten.Image) {
	if g.latest != nil {
		b := g.latest.Bounds()
		if g.frame == nil || g.frame.Bounds().Dx() != b.Dx() || g.frame.Bounds().Dy() != b.Dy() {
			if g.frame != nil {
				g.frame.Deallocate()
			}
			g.frame = ebiten.NewImage(b.Dx(), b.Dy())
			g.dirty = true
		}
		if g.dirty {
			g.frame.WritePixels(g.latest.Pix)
			g.dirty = false
		}
		screen.DrawImage(g.frame, &ebiten.DrawImageOptions{})
	}

	if g.showHUD {
		ebitenutil.DebugPrint(screen, g.HUDText())
	}
}

// HUDText returns the overlay lines
func (g *Game) HUDText() string {
	r := g.settings.Readout()
	disk := "off"
	if g.settings.ShowDisk {
		disk = "on"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "FPS: %.1f  Rs: %s\n", g.fps.FPS(), r.Radius)
	fmt.Fprintf(&sb, "Mass: %s Msun  Exposure: %s  Quality: %s  Disk: %s\n", r.Mass, r.Exposure, r.Quality, disk)
	if g.stats.GridWidth > 0 {
		fmt.Fprintf(&sb, "Grid: %dx%d in %v\n", g.stats.GridWidth, g.stats.GridHeight, g.stats.Duration.Round(time.Millisecond))
	}
	sb.WriteString(helpText)
	return sb.String()
}

// Layout renders at the window's size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width = max(outsideWidth, 1)
	g.height = max(outsideHeight, 1)
	return g.width, g.height
}
