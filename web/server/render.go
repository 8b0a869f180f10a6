package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-lensing-renderer/pkg/controls"
	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/renderer"
)

// RenderRequest is a FrameRequest extended with animation settings
type RenderRequest struct {
	FrameRequest
	Frames        int     `json:"frames"`
	FrameInterval float64 `json:"frameInterval"`
	YawStep       float64 `json:"yawStep"`
	Tiles         bool    `json:"tiles"` // Stream tile events while each frame renders
}

// AnimationOptions returns the frame sequence settings of the request
func (req *RenderRequest) AnimationOptions() renderer.AnimationOptions {
	return renderer.AnimationOptions{
		Frames:        req.Frames,
		FrameInterval: req.FrameInterval,
		YawStep:       req.YawStep,
		TileUpdates:   req.Tiles,
	}
}

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	FrameNumber int    `json:"frameNumber"`
	TileNumber  int    `json:"tileNumber"` // Current tile number in this frame (1-based)
	TotalTiles  int    `json:"totalTiles"` // Total number of tiles in the frame
	GridWidth   int    `json:"gridWidth"`  // Tiles are in grid cells; the client scales by width/gridWidth
	GridHeight  int    `json:"gridHeight"`
}

// FrameUpdate represents a finished frame sent via SSE
type FrameUpdate struct {
	FrameNumber int                 `json:"frameNumber"`
	TotalFrames int                 `json:"totalFrames"`
	Time        float64             `json:"time"`
	ImageData   string              `json:"imageData"` // Base64 encoded PNG at display resolution
	Stats       renderer.FrameStats `json:"stats"`
	Readout     controls.Readout    `json:"readout"`
	FPS         float64             `json:"fps"`
	IsComplete  bool                `json:"isComplete"`
	ElapsedMs   int64               `json:"elapsedMs"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender streams an animation with real-time tile updates via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Single writer goroutine; the handler waits for it so every queued event is flushed
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Console forwarding stops before the event channel closes
	consoleChan, webLogger := s.setupConsoleLogging()
	consoleCtx, stopConsole := context.WithCancel(ctx)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
	}()
	defer func() {
		stopConsole()
		<-consoleDone
	}()

	fr := s.renderer.WithLogger(webLogger)

	startTime := time.Now()
	frameChan, tileChan, errChan := fr.RenderAnimation(ctx, req.Uniforms(), req.AnimationOptions())

	s.handleRenderingEvents(ctx, sseEventChan, frameChan, tileChan, errChan, req, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				// Channel closed
				return
			}

			// Check if client is still connected before writing
			select {
			case <-ctx.Done():
				return
			default:
			}

			_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			if err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages forwards console messages until ctx is done, then
// forwards whatever is still buffered
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			s.forwardConsoleMessage(sseEventChan, consoleMsg)

		case <-ctx.Done():
			for {
				select {
				case consoleMsg := <-consoleChan:
					s.forwardConsoleMessage(sseEventChan, consoleMsg)
				default:
					return
				}
			}
		}
	}
}

func (s *Server) forwardConsoleMessage(sseEventChan chan SSEEvent, consoleMsg ConsoleMessage) {
	data, err := json.Marshal(consoleMsg)
	if err != nil {
		log.Printf("Error marshaling console message: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
	default:
		// Channel full, skip message to avoid blocking
	}
}

// handleRenderingEvents processes the main rendering event loop
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan SSEEvent,
	frameChan <-chan renderer.FrameResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	req *RenderRequest, startTime time.Time) {

	fps := renderer.NewFPSCounter(renderer.DefaultFPSWindow)

	// errChan closes before the last buffered frame is read, so drain all three
	for frameChan != nil || tileChan != nil || errChan != nil {
		select {
		case frameResult, ok := <-frameChan:
			if !ok {
				frameChan = nil
				continue
			}
			fps.Tick()
			s.handleFrameComplete(ctx, sseEventChan, frameResult, req, fps.FPS(), startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult)

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if err != nil {
				s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
				return
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// handleFrameComplete encodes and sends a finished frame
func (s *Server) handleFrameComplete(ctx context.Context, sseEventChan chan SSEEvent, frameResult renderer.FrameResult, req *RenderRequest, fps float64, startTime time.Time) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	imageData, err := imageToBase64PNG(frameResult.Image)
	if err != nil {
		log.Printf("Error encoding frame %d: %v", frameResult.FrameNumber, err)
		return
	}

	update := FrameUpdate{
		FrameNumber: frameResult.FrameNumber,
		TotalFrames: req.Frames,
		Time:        frameResult.Time,
		ImageData:   imageData,
		Stats:       frameResult.Stats,
		Readout:     req.Settings().Readout(),
		FPS:         fps,
		IsComplete:  frameResult.IsLast,
		ElapsedMs:   time.Since(startTime).Milliseconds(),
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling frame update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "frame", Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan SSEEvent, tileResult renderer.TileCompletionResult) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	tileData, err := imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		log.Printf("Error encoding tile image (%d, %d): %v", tileResult.TileX, tileResult.TileY, err)
		return
	}

	update := TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		FrameNumber: tileResult.FrameNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		GridWidth:   tileResult.GridWidth,
		GridHeight:  tileResult.GridHeight,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling tile update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "tile", Data: string(data)}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	if err := s.parseCommonSceneParams(r, &req.FrameRequest); err != nil {
		return nil, err
	}

	values := r.URL.Query()
	var err error
	if req.Frames, err = parseIntParam(values, "frames", clampInt(s.config.Frames, 1, MaxFrames), 1, MaxFrames); err != nil {
		return nil, err
	}
	if req.FrameInterval, err = parseFloatParam(values, "interval", s.config.FrameInterval, 0, 10); err != nil {
		return nil, err
	}
	if req.YawStep, err = parseFloatParam(values, "orbit", s.config.YawStep, -1, 1); err != nil {
		return nil, err
	}
	if req.Tiles, err = parseBoolParam(values, "tiles", true); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 1920*1080 && req.Frames > 60 {
		log.Printf("Render warning: Long animation at high resolution may render slowly")
	}

	return req, nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
