package renderer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// testLogger implements core.Logger for testing by discarding all output
type testLogger struct{}

// Ensure testLogger implements core.Logger
var _ core.Logger = (*testLogger)(nil)

func (tl *testLogger) Printf(format string, args ...interface{}) {
	// Discard log output during tests
}

func TestProgressiveConfig(t *testing.T) {
	config := DefaultProgressiveConfig()

	if config.TotalPasses != 100 {
		t.Errorf("Expected default total passes 100, got %d", config.TotalPasses)
	}
	if config.NumWorkers != 0 {
		t.Errorf("Expected auto-detected workers (0), got %d", config.NumWorkers)
	}
	if config.MaxDepth != integrator.DefaultMaxDepth {
		t.Errorf("Expected default max depth %d, got %d", integrator.DefaultMaxDepth, config.MaxDepth)
	}

	pr := NewProgressiveRaytracer(scene.NewDefaultScene(), 4, 2, ProgressiveConfig{}, &testLogger{})
	if pr.Config().TotalPasses != 100 {
		t.Errorf("Expected zero pass budget to fall back to default, got %d", pr.Config().TotalPasses)
	}
}

func smallDefaultScene(width, height int) *scene.Scene {
	s := scene.NewDefaultScene()
	s.SetImageSize(width, height)
	return s
}

func TestRenderProgressive_PassBudget(t *testing.T) {
	width, height := 16, 8
	config := ProgressiveConfig{TotalPasses: 6, NumWorkers: 3, MaxDepth: 10}
	pr := NewProgressiveRaytracer(smallDefaultScene(width, height), width, height, config, &testLogger{})

	passChan, errChan := pr.RenderProgressive(context.Background())

	var results []PassResult
	for result := range passChan {
		results = append(results, result)
	}
	if err := <-errChan; err != nil {
		t.Fatalf("Unexpected render error: %v", err)
	}

	if len(results) != config.TotalPasses {
		t.Fatalf("Expected %d pass results, got %d", config.TotalPasses, len(results))
	}
	for i, result := range results {
		if result.PassNumber != i+1 {
			t.Errorf("Result %d: expected pass number %d, got %d", i, i+1, result.PassNumber)
		}
		if result.IsLast != (i == len(results)-1) {
			t.Errorf("Result %d: IsLast = %v", i, result.IsLast)
		}
		if result.Image == nil || result.Image.Bounds().Dx() != width || result.Image.Bounds().Dy() != height {
			t.Errorf("Result %d: bad image", i)
		}
	}

	if pr.Shared().Samples() != config.TotalPasses {
		t.Errorf("Expected %d merged passes, got %d", config.TotalPasses, pr.Shared().Samples())
	}

	stats := pr.Stats()
	if stats.Passes != config.TotalPasses || stats.TotalSamples != config.TotalPasses*width*height {
		t.Errorf("Unexpected stats %+v", stats)
	}
	total := 0
	for _, n := range stats.WorkerPasses {
		total += n
	}
	if len(stats.WorkerPasses) != 3 || total != config.TotalPasses {
		t.Errorf("Per-worker passes %v do not add up to %d", stats.WorkerPasses, config.TotalPasses)
	}

	// Every pixel of the final buffer is a finite, displayable average
	snapshot := pr.Shared().Snapshot()
	for i := range snapshot.Data {
		v := snapshot.Value(i)
		for _, c := range []float32{v.X, v.Y, v.Z} {
			if c != c || c < 0 || c > 1.0001 {
				t.Fatalf("Pixel %d has invalid value %v", i, v)
			}
		}
	}
}

func TestRenderProgressive_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr := NewProgressiveRaytracer(smallDefaultScene(8, 4), 8, 4,
		ProgressiveConfig{TotalPasses: 50, NumWorkers: 2}, &testLogger{})
	passChan, errChan := pr.RenderProgressive(ctx)

	for range passChan {
		t.Error("Expected no pass results after cancellation")
	}

	select {
	case err := <-errChan:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for cancellation")
	}

	if pr.Shared().Samples() != 0 {
		t.Errorf("Expected no merged passes, got %d", pr.Shared().Samples())
	}
}
