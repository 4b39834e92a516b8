package renderer

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TotalPasses int // Full-frame passes to merge across all workers
	NumWorkers  int // Number of parallel workers (0 = use CPU count)
	MaxDepth    int // Maximum bounces per path (0 = integrator default)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TotalPasses: 100,
		NumWorkers:  0, // Auto-detect CPU count
		MaxDepth:    integrator.DefaultMaxDepth,
	}
}

// ProgressiveRaytracer runs one render session: workers keep merging full passes
// into a shared buffer until the pass budget is used up.
type ProgressiveRaytracer struct {
	scene      *scene.Scene
	width      int
	height     int
	config     ProgressiveConfig
	shared     *SharedBuffer
	integrator integrator.Integrator
	logger     core.Logger

	statsMu sync.Mutex
	stats   RenderStats
}

// NewProgressiveRaytracer creates a new progressive raytracer.
// The scene camera should already match width/height (see scene.SetImageSize).
func NewProgressiveRaytracer(s *scene.Scene, width, height int, config ProgressiveConfig, logger core.Logger) *ProgressiveRaytracer {
	if config.TotalPasses <= 0 {
		config.TotalPasses = DefaultProgressiveConfig().TotalPasses
	}

	return &ProgressiveRaytracer{
		scene:      s,
		width:      width,
		height:     height,
		config:     config,
		shared:     NewSharedBuffer(width, height),
		integrator: integrator.NewPathTracingIntegrator(config.MaxDepth),
		logger:     logger,
		stats:      NewRenderStats(width, height, config.TotalPasses, 0),
	}
}

// PassResult reports one pass merged into the shared buffer
type PassResult struct {
	PassNumber int         // Results delivered so far, including this one
	Image      *image.RGBA // Snapshot taken right after the merge
	Stats      RenderStats
	IsLast     bool
}

// Shared returns the accumulation buffer; viewers may snapshot it at any time
func (pr *ProgressiveRaytracer) Shared() *SharedBuffer {
	return pr.shared
}

// Stats returns a copy of the current statistics
func (pr *ProgressiveRaytracer) Stats() RenderStats {
	pr.statsMu.Lock()
	defer pr.statsMu.Unlock()
	return pr.stats.Clone()
}

// Config returns the effective configuration
func (pr *ProgressiveRaytracer) Config() ProgressiveConfig {
	return pr.config
}

// RenderProgressive renders with channel-based communication.
// One PassResult is sent per merged pass; the error channel carries ctx.Err() on
// cancellation and is closed without a value once the pass budget is reached.
// A ProgressiveRaytracer renders a single session; call this once.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	pool := NewWorkerPool(pr.scene.World, pr.scene.Camera, pr.integrator, pr.shared,
		pr.config.NumWorkers, pr.config.TotalPasses)

	pr.statsMu.Lock()
	pr.stats = NewRenderStats(pr.width, pr.height, pr.config.TotalPasses, pool.GetNumWorkers())
	pr.statsMu.Unlock()

	go func() {
		defer close(passChan)
		defer close(errChan)

		pr.logger.Printf("Starting progressive rendering of %q: %dx%d, %d passes on %d workers...\n",
			pr.scene.Name, pr.width, pr.height, pr.config.TotalPasses, pool.GetNumWorkers())

		startTime := time.Now()
		pool.Start(ctx)
		defer pool.Stop()

		for task := 0; task < pr.config.TotalPasses; task++ {
			pool.SubmitTask(PassTask{TaskID: task})
		}

		for received := 0; received < pr.config.TotalPasses; received++ {
			result, ok := pool.GetResult()
			if !ok {
				errChan <- fmt.Errorf("worker pool closed unexpectedly")
				return
			}
			if result.Error != nil {
				pr.logger.Printf("Rendering cancelled after %d passes\n", pr.shared.Samples())
				errChan <- result.Error
				return
			}

			pr.statsMu.Lock()
			pr.stats.AddPass(result.WorkerID, result.Samples, time.Since(startTime))
			stats := pr.stats.Clone()
			pr.statsMu.Unlock()

			isLast := received == pr.config.TotalPasses-1
			if isLast || received%pool.GetNumWorkers() == 0 {
				pr.logger.Printf("Pass %d/%d merged by worker %d in %v\n",
					result.Samples, pr.config.TotalPasses, result.WorkerID, result.Duration.Round(time.Millisecond))
			}

			passResult := PassResult{
				PassNumber: received + 1,
				Image:      pr.shared.Snapshot().Image(),
				Stats:      stats,
				IsLast:     isLast,
			}

			select {
			case passChan <- passResult:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}

		pr.logger.Printf("Render complete: %d passes in %v\n",
			pr.config.TotalPasses, time.Since(startTime).Round(time.Millisecond))
	}()

	return passChan, errChan
}
