package renderer

import "time"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels      int           // Pixels per pass
	Passes           int           // Full-frame passes merged so far
	TotalPasses      int           // Pass budget for the session
	TotalSamples     int           // Passes * pixels
	Elapsed          time.Duration // Wall time since the session started
	SamplesPerSecond float64       // Pixel samples per second of wall time
	WorkerPasses     []int         // Passes merged by each worker
}

// NewRenderStats creates empty statistics for a session
func NewRenderStats(width, height, totalPasses, numWorkers int) RenderStats {
	return RenderStats{
		TotalPixels:  width * height,
		TotalPasses:  totalPasses,
		WorkerPasses: make([]int, numWorkers),
	}
}

// AddPass records a pass merged by the given worker
func (rs *RenderStats) AddPass(workerID, samples int, elapsed time.Duration) {
	if workerID >= 0 && workerID < len(rs.WorkerPasses) {
		rs.WorkerPasses[workerID]++
	}
	// Results can arrive out of merge order
	rs.Passes = max(rs.Passes, samples)
	rs.TotalSamples = rs.Passes * rs.TotalPixels
	rs.Elapsed = elapsed
	if seconds := elapsed.Seconds(); seconds > 0 {
		rs.SamplesPerSecond = float64(rs.TotalSamples) / seconds
	}
}

// Progress returns the completed fraction of the pass budget in [0,1]
func (rs RenderStats) Progress() float64 {
	if rs.TotalPasses <= 0 {
		return 0
	}
	return min(float64(rs.Passes)/float64(rs.TotalPasses), 1)
}

// Clone copies the statistics so they can be handed to another goroutine
func (rs RenderStats) Clone() RenderStats {
	rs.WorkerPasses = append([]int(nil), rs.WorkerPasses...)
	return rs
}
