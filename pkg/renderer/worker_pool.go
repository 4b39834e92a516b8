package renderer

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

// PassTask asks a worker to render one full-frame pass
type PassTask struct {
	TaskID int // 0-based index of the pass in the session budget
}

// PassTaskResult is sent back once a pass has been merged into the shared buffer
type PassTaskResult struct {
	TaskID   int
	WorkerID int
	Samples  int           // Shared sample count right after the merge
	Duration time.Duration // Render plus merge time
	Error    error
}

// WorkerPool renders full passes in parallel into a shared accumulation buffer
type WorkerPool struct {
	taskQueue   chan PassTask
	resultQueue chan PassTaskResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker owns a private buffer and random source; nothing it touches while rendering is shared
type Worker struct {
	ID          int
	private     *Buffer
	sampler     core.Sampler
	world       geometry.Hittable
	camera      *geometry.Camera
	integrator  integrator.Integrator
	shared      *SharedBuffer
	taskQueue   chan PassTask
	resultQueue chan PassTaskResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// maxTasks bounds the queue sizes so submitting a whole session never blocks.
func NewWorkerPool(world geometry.Hittable, camera *geometry.Camera, integratorInst integrator.Integrator,
	shared *SharedBuffer, numWorkers, maxTasks int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	maxTasks = max(maxTasks, 1)

	wp := &WorkerPool{
		taskQueue:   make(chan PassTask, maxTasks),
		resultQueue: make(chan PassTaskResult, maxTasks),
		numWorkers:  numWorkers,
	}

	width, height := shared.Size()
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			private:     NewBuffer(width, height),
			sampler:     core.NewUnseededSampler(),
			world:       world,
			camera:      camera,
			integrator:  integratorInst,
			shared:      shared,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers. Tasks taken after ctx is done are reported with ctx.Err().
func (wp *WorkerPool) Start(ctx context.Context) {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(ctx, &wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a pass to the worker pool
func (wp *WorkerPool) SubmitTask(task PassTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed pass result
func (wp *WorkerPool) GetResult() (PassTaskResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		if err := ctx.Err(); err != nil {
			w.resultQueue <- PassTaskResult{TaskID: task.TaskID, WorkerID: w.ID, Error: err}
			continue
		}

		start := time.Now()

		// Render outside the lock, merge under it, then start clean
		w.private.RenderOnePass(w.world, w.camera, w.integrator, w.sampler)
		samples := w.shared.Merge(w.private)
		w.private.Reset()

		w.resultQueue <- PassTaskResult{
			TaskID:   task.TaskID,
			WorkerID: w.ID,
			Samples:  samples,
			Duration: time.Since(start),
		}
	}
}
