package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// RenderRequest selects a scene and session settings. Zero values fall back to the scene's defaults.
type RenderRequest struct {
	Scene    string `json:"scene"`    // Built-in scene name or path to a .json scene
	Width    int    `json:"width"`    // Image width
	Height   int    `json:"height"`   // Image height
	Passes   int    `json:"passes"`   // Total full-frame passes
	Workers  int    `json:"workers"`  // 0 = CPU count
	MaxDepth int    `json:"maxDepth"` // 0 = integrator default
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "hello", "console", "passComplete", "renderError", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// ProgressUpdate is sent to event stream clients after every merged pass
type ProgressUpdate struct {
	RenderID         string  `json:"renderId"`
	PassNumber       int     `json:"passNumber"`
	Samples          int     `json:"samples"`
	TotalPasses      int     `json:"totalPasses"`
	ElapsedMs        int64   `json:"elapsedMs"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	ImageData        string  `json:"imageData,omitempty"` // Base64 encoded PNG
	IsComplete       bool    `json:"isComplete"`
}

// Session is one progressive render owned by the server
type Session struct {
	ID        string
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
	Width     int
	Height    int
	StartTime time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	complete bool
	err      error
}

// Cancel stops the session after the passes in flight
func (sess *Session) Cancel() {
	sess.cancel()
}

// Done is closed once the session has stopped
func (sess *Session) Done() <-chan struct{} {
	return sess.done
}

// Status reports whether the pass budget was reached and any error that stopped the render
func (sess *Session) Status() (bool, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.complete, sess.err
}

func (sess *Session) finish(err error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.complete = err == nil
	sess.err = err
}

// StartRender builds the requested scene and replaces the current session with a new one
func (s *Server) StartRender(req RenderRequest) (*Session, error) {
	sceneObj, err := scene.Create(req.Scene)
	if err != nil {
		return nil, err
	}

	width, height := req.Width, req.Height
	if width <= 0 {
		width = sceneObj.RenderConfig.Width
	}
	if height <= 0 {
		height = sceneObj.RenderConfig.Height
	}
	sceneObj.SetImageSize(width, height)

	config := renderer.DefaultProgressiveConfig()
	config.TotalPasses = sceneObj.RenderConfig.Samples
	if req.Passes > 0 {
		config.TotalPasses = req.Passes
	}
	config.NumWorkers = req.Workers
	if req.MaxDepth > 0 {
		config.MaxDepth = req.MaxDepth
	}

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	logger := NewWebLogger(renderID, s.consoleChan)

	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		ID:        renderID,
		Scene:     sceneObj,
		Raytracer: renderer.NewProgressiveRaytracer(sceneObj, width, height, config, logger),
		Width:     width,
		Height:    height,
		StartTime: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	previous := s.session
	s.session = sess
	s.mu.Unlock()

	if previous != nil {
		previous.Cancel()
		<-previous.Done()
	}

	passChan, errChan := sess.Raytracer.RenderProgressive(ctx)
	go s.runSession(sess, passChan, errChan)

	return sess, nil
}

// runSession forwards pass results to event stream clients until the render stops
func (s *Server) runSession(sess *Session, passChan <-chan renderer.PassResult, errChan <-chan error) {
	defer close(sess.done)
	defer sess.cancel()

	for passResult := range passChan {
		s.handlePassComplete(sess, passResult)
	}

	err := <-errChan
	sess.finish(err)

	if event, ok := sessionEndEvent(sess, err); ok {
		s.events.publish(event)
	}
}

// sessionEndEvent picks the event announcing how a session ended.
// Failures use "renderError" since EventSource reserves "error" for connection problems.
func sessionEndEvent(sess *Session, err error) (SSEEvent, bool) {
	switch {
	case err == nil:
		return SSEEvent{Type: "complete", Data: sess.ID}, true
	case errors.Is(err, context.Canceled):
		// Replaced by a newer session or server shutdown
		return SSEEvent{}, false
	default:
		return SSEEvent{Type: "renderError", Data: fmt.Sprintf("Rendering failed: %v", err)}, true
	}
}

// handlePassComplete publishes a progress event. The image is only encoded when someone is listening.
func (s *Server) handlePassComplete(sess *Session, passResult renderer.PassResult) {
	if s.events.count() == 0 {
		return
	}

	update := ProgressUpdate{
		RenderID:         sess.ID,
		PassNumber:       passResult.PassNumber,
		Samples:          passResult.Stats.Passes,
		TotalPasses:      passResult.Stats.TotalPasses,
		ElapsedMs:        passResult.Stats.Elapsed.Milliseconds(),
		SamplesPerSecond: passResult.Stats.SamplesPerSecond,
		IsComplete:       passResult.IsLast,
	}

	imageData, err := imageToBase64PNG(passResult.Image)
	if err != nil {
		log.Printf("Error encoding pass image: %v", err)
	} else {
		update.ImageData = imageData
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling pass update: %v", err)
		return
	}
	s.events.publish(SSEEvent{Type: "passComplete", Data: string(data)})
}

// handleRender starts a new render session from query parameters
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use GET or POST")
		return
	}

	req, err := parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	if err := s.checkSceneName(req.Scene); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.StartRender(*req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"renderId":    sess.ID,
		"scene":       sess.Scene.Name,
		"width":       sess.Width,
		"height":      sess.Height,
		"totalPasses": sess.Raytracer.Config().TotalPasses,
	})
}

// checkSceneName only lets web clients load scene files from the scene directory
func (s *Server) checkSceneName(name string) error {
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		return nil
	}
	dir, err := filepath.Abs(s.sceneDir)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if filepath.Dir(path) != dir {
		return fmt.Errorf("scene files must live in %s", s.sceneDir)
	}
	return nil
}

// parseRenderRequest parses request parameters
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, MinImageSize, MaxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, MinImageSize, MaxImageSize); err != nil {
		return nil, err
	}
	if req.Passes, err = parseIntParam(query, "passes", 0, 1, MaxPasses); err != nil {
		return nil, err
	}
	if req.Workers, err = parseIntParam(query, "workers", 0, 0, MaxWorkers); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 1, MaxDepth); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Passes > 100 {
		log.Printf("Render warning: Large image with many passes may render slowly")
	}

	return req, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// eventHub fans SSE events out to every connected event stream
type eventHub struct {
	mu          sync.Mutex
	subscribers map[chan SSEEvent]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subscribers: make(map[chan SSEEvent]struct{})}
}

func (h *eventHub) subscribe() chan SSEEvent {
	ch := make(chan SSEEvent, 100)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *eventHub) unsubscribe(ch chan SSEEvent) {
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()
}

// publish never blocks; slow clients miss events
func (h *eventHub) publish(event SSEEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *eventHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// handleEvents streams progress, console and completion events until the client disconnects
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	setSSEHeaders(w)

	events := s.events.subscribe()
	defer s.events.unsubscribe(events)

	// Tell the client where the current session stands
	hello := "{}"
	if sess := s.currentSession(); sess != nil {
		hello = fmt.Sprintf(`{"renderId":%q}`, sess.ID)
	}
	writeSSEEvent(w, SSEEvent{Type: "hello", Data: hello})

	ctx := r.Context()
	for {
		select {
		case event := <-events:
			if err := writeSSEEvent(w, event); err != nil {
				// Client disconnected during write
				return
			}
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// writeSSEEvent writes and flushes one event
func writeSSEEvent(w http.ResponseWriter, event SSEEvent) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
