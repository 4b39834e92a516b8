package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

//go:embed static/index.html
var indexHTML []byte

// Limits for render request parameters
const (
	MinImageSize = 16
	MaxImageSize = 2000
	MaxPasses    = 100000
	MaxWorkers   = 256
	MaxDepth     = 1000
)

// Server serves a live view of the current render session
type Server struct {
	port     int
	sceneDir string
	mux      *http.ServeMux

	mu      sync.Mutex
	session *Session

	connections atomic.Int64 // Index page loads
	events      *eventHub
	console     *ConsoleHistory
	consoleChan chan ConsoleMessage
	done        chan struct{}
	closeOnce   sync.Once
}

// NewServer creates a new web server. sceneDir is scanned for *.json scene files.
func NewServer(port int, sceneDir string) *Server {
	s := &Server{
		port:        port,
		sceneDir:    sceneDir,
		mux:         http.NewServeMux(),
		events:      newEventHub(),
		console:     NewConsoleHistory(500),
		consoleChan: make(chan ConsoleMessage, 100),
		done:        make(chan struct{}),
	}

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/image", s.handleImage)
	s.mux.HandleFunc("/api/image.png", s.handleImagePNG)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/console", s.handleConsole)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)

	go s.pumpConsole()
	return s
}

// Handler returns the HTTP handler with all routes registered
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Close cancels the current render and stops background goroutines
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if sess := s.currentSession(); sess != nil {
			sess.Cancel()
			<-sess.Done()
		}
	})
}

// pumpConsole moves render log lines into the history and out to SSE clients
func (s *Server) pumpConsole() {
	for {
		select {
		case msg := <-s.consoleChan:
			s.console.Add(msg)
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}
			s.events.publish(SSEEvent{Type: "console", Data: string(data)})
		case <-s.done:
			return
		}
	}
}

// currentSession returns the active or most recent render session, or nil
func (s *Server) currentSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requireSession writes 503 and returns nil when nothing has been rendered yet
func (s *Server) requireSession(w http.ResponseWriter) *Session {
	sess := s.currentSession()
	if sess == nil {
		writeError(w, http.StatusServiceUnavailable, "no render session")
	}
	return sess
}

// handleIndex serves the viewer page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.connections.Add(1)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and file scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.sceneDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scenes": scenes})
}

// ImageResponse is the raw 8-bit image: RGB triples, row-major, top row first
type ImageResponse struct {
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Samples int   `json:"samples"`
	Pixels  []int `json:"pixels"`
}

// handleImage returns the current snapshot as JSON
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	rgb, samples := sess.Raytracer.Shared().SnapshotRGB8()
	pixels := make([]int, len(rgb))
	for i, v := range rgb {
		pixels[i] = int(v)
	}

	writeJSON(w, http.StatusOK, ImageResponse{
		Width:   sess.Width,
		Height:  sess.Height,
		Samples: samples,
		Pixels:  pixels,
	})
}

// handleImagePNG returns the current snapshot as a PNG
func (s *Server) handleImagePNG(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sess.Raytracer.Shared().Snapshot().Image()); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode image: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

// StatsResponse describes the current session and viewer counts
type StatsResponse struct {
	RenderID         string  `json:"renderId"`
	Scene            string  `json:"scene"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Samples          int     `json:"samples"`
	TotalPasses      int     `json:"totalPasses"`
	Progress         float64 `json:"progress"`
	ElapsedMs        int64   `json:"elapsedMs"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	WorkerPasses     []int   `json:"workerPasses"`
	PrimitiveCount   int     `json:"primitiveCount"`
	Complete         bool    `json:"complete"`
	Error            string  `json:"error,omitempty"`
	Connections      int64   `json:"connections"`
	Viewers          int     `json:"viewers"` // Open event streams
}

// handleStats returns render statistics plus the connection counter
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	stats := sess.Raytracer.Stats()
	complete, err := sess.Status()
	response := StatsResponse{
		RenderID:         sess.ID,
		Scene:            sess.Scene.Name,
		Width:            sess.Width,
		Height:           sess.Height,
		Samples:          sess.Raytracer.Shared().Samples(),
		TotalPasses:      stats.TotalPasses,
		Progress:         stats.Progress(),
		ElapsedMs:        stats.Elapsed.Milliseconds(),
		SamplesPerSecond: stats.SamplesPerSecond,
		WorkerPasses:     stats.WorkerPasses,
		PrimitiveCount:   sess.Scene.GetPrimitiveCount(),
		Complete:         complete,
		Connections:      s.connections.Load(),
		Viewers:          s.events.count(),
	}
	if err != nil {
		response.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, response)
}

// handleConsole returns the retained console history
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": s.console.Messages()})
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
