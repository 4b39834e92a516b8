package renderer

import (
	"image"
	"image/color"
	"sync"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

// Buffer accumulates raw radiance per pixel across full-frame passes.
// Data[j*Width+i] holds the sum of Samples contributions; row 0 is the bottom of the image.
// A Buffer is not safe for concurrent use; see SharedBuffer.
type Buffer struct {
	Width   int
	Height  int
	Data    []core.Vec3
	Samples int
}

// NewBuffer creates a zeroed buffer with no samples
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Data:   make([]core.Vec3, width*height),
	}
}

// RenderOnePass adds one jittered sample per pixel into the buffer and counts the pass
func (b *Buffer) RenderOnePass(world geometry.Hittable, camera *geometry.Camera, integratorInst integrator.Integrator, sampler core.Sampler) {
	width := float32(b.Width)
	height := float32(b.Height)

	for j := 0; j < b.Height; j++ {
		for i := 0; i < b.Width; i++ {
			u := (float32(i) + sampler.Float32()) / width
			v := (float32(j) + sampler.Float32()) / height

			ray := camera.GetRay(u, v, sampler)
			idx := j*b.Width + i
			b.Data[idx] = b.Data[idx].Add(integratorInst.RayColor(ray, world, sampler))
		}
	}
	b.Samples++
}

// Render runs the given number of passes on the calling goroutine
func (b *Buffer) Render(world geometry.Hittable, camera *geometry.Camera, integratorInst integrator.Integrator, sampler core.Sampler, passes int) {
	for pass := 0; pass < passes; pass++ {
		b.RenderOnePass(world, camera, integratorInst, sampler)
	}
}

// Add accumulates other into b. Both buffers must have the same size.
func (b *Buffer) Add(other *Buffer) {
	for i, c := range other.Data {
		b.Data[i] = b.Data[i].Add(c)
	}
	b.Samples += other.Samples
}

// Reset zeroes all pixels and the sample count
func (b *Buffer) Reset() {
	clear(b.Data)
	b.Samples = 0
}

// Clone returns a deep copy of the buffer
func (b *Buffer) Clone() *Buffer {
	clone := &Buffer{
		Width:   b.Width,
		Height:  b.Height,
		Data:    make([]core.Vec3, len(b.Data)),
		Samples: b.Samples,
	}
	copy(clone.Data, b.Data)
	return clone
}

// Value returns the displayable color of pixel index i: sqrt(sum / samples).
// A buffer without samples reads as black.
func (b *Buffer) Value(i int) core.Vec3 {
	return b.Data[i].Divide(float32(max(b.Samples, 1))).Sqrt()
}

// SnapshotRGB8 returns 8-bit RGB triples in row-major order, top row first
func (b *Buffer) SnapshotRGB8() []byte {
	pixels := make([]byte, 0, b.Width*b.Height*3)
	for row := 0; row < b.Height; row++ {
		j := b.Height - 1 - row
		for i := 0; i < b.Width; i++ {
			c := b.Value(j*b.Width + i)
			pixels = append(pixels, toByte(c.X), toByte(c.Y), toByte(c.Z))
		}
	}
	return pixels
}

// Image converts the buffer to an RGBA image for encoding
func (b *Buffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	rgb := b.SnapshotRGB8()
	for p := 0; p < b.Width*b.Height; p++ {
		img.SetRGBA(p%b.Width, p/b.Width, color.RGBA{
			R: rgb[3*p],
			G: rgb[3*p+1],
			B: rgb[3*p+2],
			A: 255,
		})
	}
	return img
}

// toByte clamps to [0,1) and scales to 8 bits. NaN maps to 0.
func toByte(v float32) byte {
	if !(v > 0) {
		return 0
	}
	if v > 0.999 {
		v = 0.999
	}
	return byte(256 * v)
}

// SharedBuffer is the accumulation buffer shared by all workers of a session.
// One mutex guards every access; it is held for whole-frame merges and copies only.
type SharedBuffer struct {
	mu  sync.Mutex
	buf *Buffer
}

// NewSharedBuffer creates a zeroed shared buffer
func NewSharedBuffer(width, height int) *SharedBuffer {
	return &SharedBuffer{buf: NewBuffer(width, height)}
}

// Merge adds a worker's private buffer and its pass count, returning the new total
func (sb *SharedBuffer) Merge(private *Buffer) int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buf.Add(private)
	return sb.buf.Samples
}

// Snapshot copies pixel data and sample count under a single lock acquisition
func (sb *SharedBuffer) Snapshot() *Buffer {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.Clone()
}

// SnapshotRGB8 returns a consistent 8-bit view of the current image
func (sb *SharedBuffer) SnapshotRGB8() (pixels []byte, samples int) {
	snapshot := sb.Snapshot()
	return snapshot.SnapshotRGB8(), snapshot.Samples
}

// Samples returns the number of merged passes
func (sb *SharedBuffer) Samples() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.Samples
}

// Size returns the image dimensions
func (sb *SharedBuffer) Size() (width, height int) {
	return sb.buf.Width, sb.buf.Height
}
