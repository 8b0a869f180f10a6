package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-lensing-renderer/pkg/annotate"
	"github.com/df07/go-lensing-renderer/pkg/camera"
	"github.com/df07/go-lensing-renderer/pkg/config"
	"github.com/df07/go-lensing-renderer/pkg/controls"
	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/lensing"
	"github.com/df07/go-lensing-renderer/pkg/physics"
	"github.com/df07/go-lensing-renderer/pkg/renderer"
	"github.com/df07/go-lensing-renderer/pkg/scene"
	"github.com/disintegration/imaging"
)

// Request limits
const (
	MinDimension = 16
	MaxDimension = 2000
	MaxFrames    = 600
)

// Server handles web requests for the lensing renderer
type Server struct {
	config   config.Config
	renderer *renderer.FrameRenderer
	mux      *http.ServeMux
}

// NewServer creates a new web server. Request parameters default to the
// values in cfg.
func NewServer(cfg config.Config) *Server {
	s := &Server{
		config:   cfg,
		renderer: renderer.NewFrameRenderer(cfg.RenderConfig(), core.NewDefaultLogger()),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/frame", s.handleFrame)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/api/schwarzschild", s.handleSchwarzschild)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	return s
}

// Handler returns the HTTP handler serving every endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// FrameRequest describes a single frame. Unset parameters come from the
// selected scene, then from the server configuration.
type FrameRequest struct {
	Scene     string  `json:"scene"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Quality   float64 `json:"quality"`
	MassSolar float64 `json:"massSolar"`
	Exposure  float64 `json:"exposure"`
	ShowDisk  bool    `json:"showDisk"`
	Yaw       float64 `json:"yaw"`
	Pitch     float64 `json:"pitch"`
	Zoom      float64 `json:"zoom"`
	Time      float64 `json:"time"`
	Annotate  bool    `json:"annotate"`
}

// Parameters returns the physical parameters of the request
func (req *FrameRequest) Parameters() physics.Parameters {
	return physics.Parameters{MassSolar: req.MassSolar, Exposure: req.Exposure, ShowDisk: req.ShowDisk}
}

// Settings returns the control settings shown by the overlay
func (req *FrameRequest) Settings() controls.Settings {
	return controls.Settings{Parameters: req.Parameters(), Quality: req.Quality}
}

// Uniforms returns the kernel snapshot for the request
func (req *FrameRequest) Uniforms() lensing.Uniforms {
	cam := camera.State{Yaw: req.Yaw, Pitch: req.Pitch, Zoom: req.Zoom}.Clamped()
	return lensing.NewUniforms(req.Width, req.Height, req.Time, req.Parameters(), req.Quality, cam)
}

// parseCommonSceneParams fills req from the scene and the query string
func (s *Server) parseCommonSceneParams(r *http.Request, req *FrameRequest) error {
	values := r.URL.Query()

	base := s.config
	if name := values.Get("scene"); name != "" {
		sceneObj, err := scene.NewScene(name)
		if err != nil {
			return err
		}
		base.ApplyScene(sceneObj)
	}
	req.Scene = base.Scene

	var err error
	if req.Width, err = parseIntParam(values, "width", clampInt(base.Width, MinDimension, MaxDimension), MinDimension, MaxDimension); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(values, "height", clampInt(base.Height, MinDimension, MaxDimension), MinDimension, MaxDimension); err != nil {
		return err
	}
	if req.Quality, err = parseFloatParam(values, "quality", base.Quality, controls.MinQuality, 8); err != nil {
		return err
	}
	if req.MassSolar, err = parseFloatParam(values, "mass", base.MassSolar, controls.MinMassSolar, 1e12); err != nil {
		return err
	}
	if req.Exposure, err = parseFloatParam(values, "exposure", base.Exposure, 0, 10); err != nil {
		return err
	}
	if req.ShowDisk, err = parseBoolParam(values, "disk", base.ShowDisk); err != nil {
		return err
	}
	if req.Yaw, err = parseFloatParam(values, "yaw", base.Yaw, -1000, 1000); err != nil {
		return err
	}
	if req.Pitch, err = parseFloatParam(values, "pitch", base.Pitch, camera.MinPitch, camera.MaxPitch); err != nil {
		return err
	}
	if req.Zoom, err = parseFloatParam(values, "zoom", base.Zoom, camera.MinZoom, camera.MaxZoom); err != nil {
		return err
	}
	if req.Time, err = parseFloatParam(values, "time", base.Time, 0, 1e6); err != nil {
		return err
	}
	if req.Annotate, err = parseBoolParam(values, "annotate", base.Annotate); err != nil {
		return err
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and file scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// SchwarzschildResponse is the derived horizon size for a mass
type SchwarzschildResponse struct {
	MassSolar   float64 `json:"massSolar"`
	MassKg      float64 `json:"massKg"`
	RadiusM     float64 `json:"radiusMeters"`
	RadiusScene float64 `json:"radiusSceneUnits"`
	Label       string  `json:"label"`
}

// handleSchwarzschild returns the horizon radius the controls display for a mass
func (s *Server) handleSchwarzschild(w http.ResponseWriter, r *http.Request) {
	mass, err := parseFloatParam(r.URL.Query(), "mass", s.config.MassSolar, controls.MinMassSolar, 1e12)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	params := physics.Parameters{MassSolar: mass}
	writeJSON(w, http.StatusOK, SchwarzschildResponse{
		MassSolar:   mass,
		MassKg:      params.MassKg(),
		RadiusM:     params.SchwarzschildRadius(),
		RadiusScene: physics.SchwarzschildRadiusScene(params.MassKg()),
		Label:       params.RadiusLabel(),
	})
}

// handleFrame renders one frame and responds with a PNG
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	req := &FrameRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	img, stats, err := s.renderer.Render(r.Context(), req.Uniforms())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("Rendering failed: %v", err)})
		return
	}

	var out image.Image = img
	if req.Annotate {
		if out, err = annotate.Annotate(img, annotate.Overlay{Settings: req.Settings(), Scene: req.Scene, Guide: true}); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	var buf bytes.Buffer
	if err := encodePNG(&buf, out); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Duration", stats.Duration.Round(time.Microsecond).String())
	w.Header().Set("X-Grid-Size", fmt.Sprintf("%dx%d", stats.GridWidth, stats.GridHeight))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if !(parsed >= min && parsed <= max) {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func encodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := encodePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
