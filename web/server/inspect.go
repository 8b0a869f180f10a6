package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/lensing"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	X        int        `json:"x"`
	Y        int        `json:"y"`
	Fragment [2]float64 `json:"fragment"` // Fragment coordinate, y up
	UV       [2]float64 `json:"uv"`

	Origin    [3]float64 `json:"origin"`
	Direction [3]float64 `json:"direction"`

	ImpactParameter float64    `json:"impactParameter"` // Scene units
	ImpactMeters    float64    `json:"impactMeters"`
	Deflection      float64    `json:"deflection"` // Radians
	Bent            [3]float64 `json:"bent"`

	Disk       string     `json:"disk"` // "miss", "emission" or "swallowed"
	DiskRadius float64    `json:"diskRadius,omitempty"`
	DiskPoint  [3]float64 `json:"diskPoint"`

	Background [3]float64 `json:"background"`
	Linear     [3]float64 `json:"linear"`
	Color      [3]float64 `json:"color"`
	Hex        string     `json:"hex"`
}

// inspectPixel traces the center of display pixel (x, y), y growing downward
func inspectPixel(u lensing.Uniforms, x, y int) InspectResponse {
	kernel := lensing.NewKernel(u)
	u = kernel.Uniforms()

	fragX := float64(x) + 0.5
	fragY := float64(u.Height-y) - 0.5
	sample := kernel.Trace(fragX, fragY)

	resp := InspectResponse{
		X:               x,
		Y:               y,
		Fragment:        [2]float64{fragX, fragY},
		UV:              [2]float64{sample.UV.X, sample.UV.Y},
		Origin:          vecArray(sample.Ray.Origin),
		Direction:       vecArray(sample.Ray.Direction),
		ImpactParameter: sample.Deflection.ImpactParameter,
		ImpactMeters:    sample.Deflection.ImpactMeters,
		Deflection:      sample.Deflection.Alpha,
		Bent:            vecArray(sample.Deflection.Bent),
		Disk:            sample.Disk.Result.String(),
		Background:      vecArray(sample.Background),
		Linear:          vecArray(sample.Linear),
		Color:           vecArray(sample.Color),
		Hex: fmt.Sprintf("#%02x%02x%02x",
			toByte(sample.Color.X), toByte(sample.Color.Y), toByte(sample.Color.Z)),
	}
	if sample.Disk.Result != lensing.DiskMiss {
		resp.DiskRadius = sample.Disk.Radius
		resp.DiskPoint = vecArray(sample.Disk.Point)
	}
	return resp
}

// handleInspect traces a single pixel and reports every intermediate value
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req := &FrameRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	values := r.URL.Query()
	if values.Get("x") == "" || values.Get("y") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y are required"})
		return
	}
	x, err := parseIntParam(values, "x", 0, 0, req.Width-1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	y, err := parseIntParam(values, "y", 0, 0, req.Height-1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(req.Uniforms(), x, y))
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func toByte(c float64) uint8 {
	return uint8(core.Clamp(c, 0, 1)*255 + 0.5)
}
