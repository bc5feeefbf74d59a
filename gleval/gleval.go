// Package gleval evaluates procedural 2D kernels over buffers of positions, either on
// the CPU or on the GPU through compute programs generated with package glbuild.
package gleval

import (
	"errors"
	"fmt"
	"slices"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// Kernel evaluates a procedural function of 2D position in vectorized form
// suitable for running on GPU.
type Kernel interface {
	// Evaluate evaluates the kernel over pos positions. Each position produces
	// Components() consecutive values in dst, so len(dst) must equal len(pos)*Components().
	//
	// userData facilitates getting data to the evaluators for use in processing.
	Evaluate(pos []ms2.Vec, dst []float32, userData any) error
	// Components returns the amount of float values the kernel produces per position.
	Components() int
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and result buffer length mismatch")
	errZeroInvoc            = errors.New("zero or negative invocation size")
)

func checkBuffers(pos []ms2.Vec, dst []float32, components int) error {
	if len(pos) == 0 {
		return errEmptyBuffers
	} else if len(dst) != len(pos)*components {
		return fmt.Errorf("%w: %d positions need %d values for %d components, got %d", errMismatchBufferLength, len(pos), len(pos)*components, components, len(dst))
	}
	return nil
}

// CPUKernel evaluates a kernel function on the CPU one position at a time.
type CPUKernel struct {
	name        string
	components  int
	fn          func(p ms2.Vec, dst []float32)
	evaluations uint64
}

// NewCPUKernel returns a kernel that calls fn for every position. fn must store exactly components values in dst.
func NewCPUKernel(name string, components int, fn func(p ms2.Vec, dst []float32)) (*CPUKernel, error) {
	if fn == nil {
		return nil, errors.New("nil kernel function")
	} else if components < 1 || components > 4 {
		return nil, fmt.Errorf("kernel %q components must be in 1..4, got %d", name, components)
	}
	return &CPUKernel{name: name, components: components, fn: fn}, nil
}

// Name returns the kernel's name.
func (k *CPUKernel) Name() string { return k.name }

// Components implements [Kernel].
func (k *CPUKernel) Components() int { return k.components }

// Evaluations returns total positions evaluated during the kernel's lifetime.
func (k *CPUKernel) Evaluations() uint64 { return k.evaluations }

// Evaluate implements [Kernel].
func (k *CPUKernel) Evaluate(pos []ms2.Vec, dst []float32, userData any) error {
	if err := checkBuffers(pos, dst, k.components); err != nil {
		return err
	}
	n := k.components
	for i, p := range pos {
		k.fn(p, dst[i*n:i*n+n:i*n+n])
	}
	k.evaluations += uint64(len(pos))
	return nil
}

// CachedKernel wraps a Kernel and caches results by exact position so repeated
// positions are evaluated once. Useful when the wrapped kernel is expensive to dispatch, such as GPU kernels.
type CachedKernel struct {
	kernel Kernel
	m      map[[2]uint32]int // Position bits to offset in vals.
	vals   []float32
	posbuf []ms2.Vec
	dstbuf []float32
	idxbuf []int
	hits   uint64
	evals  uint64
}

// NewCachedKernel returns a caching wrapper around k.
func NewCachedKernel(k Kernel) (*CachedKernel, error) {
	if k == nil {
		return nil, errors.New("nil kernel")
	}
	return &CachedKernel{kernel: k, m: make(map[[2]uint32]int)}, nil
}

// Components implements [Kernel].
func (c *CachedKernel) Components() int { return c.kernel.Components() }

// CacheHits returns total amount of cached evaluations done throughout the kernel's lifetime.
func (c *CachedKernel) CacheHits() uint64 { return c.hits }

// Evaluations returns total evaluations performed successfully during the kernel's lifetime, including cached.
func (c *CachedKernel) Evaluations() uint64 { return c.evals }

// Reset clears the cache and statistics, keeping allocated buffers for reuse.
func (c *CachedKernel) Reset() {
	clear(c.m)
	c.vals = c.vals[:0]
	c.hits = 0
	c.evals = 0
}

// Evaluate implements [Kernel] with cached evaluation.
func (c *CachedKernel) Evaluate(pos []ms2.Vec, dst []float32, userData any) error {
	n := c.kernel.Components()
	if err := checkBuffers(pos, dst, n); err != nil {
		return err
	}
	seekPos := c.posbuf[:0]
	idx := c.idxbuf[:0]
	for i, p := range pos {
		off, cached := c.m[posKey(p)]
		if cached {
			copy(dst[i*n:i*n+n], c.vals[off:off+n])
		} else {
			seekPos = append(seekPos, p)
			idx = append(idx, i)
		}
	}
	if len(idx) > 0 {
		// Renew buffers in case they were grown.
		c.idxbuf = idx
		c.posbuf = seekPos
		c.dstbuf = slices.Grow(c.dstbuf[:0], len(seekPos)*n)
		seekDst := c.dstbuf[:len(seekPos)*n]
		err := c.kernel.Evaluate(seekPos, seekDst, userData)
		if err != nil {
			return err
		}
		for i, p := range seekPos {
			result := seekDst[i*n : i*n+n]
			k := posKey(p)
			if _, dup := c.m[k]; !dup {
				// Add new entry to cache.
				c.m[k] = len(c.vals)
				c.vals = append(c.vals, result...)
			}
			copy(dst[idx[i]*n:idx[i]*n+n], result)
		}
	}
	c.evals += uint64(len(pos))
	c.hits += uint64(len(pos) - len(seekPos))
	return nil
}

func posKey(p ms2.Vec) [2]uint32 {
	return [2]uint32{math32.Float32bits(p.X), math32.Float32bits(p.Y)}
}

// AppendGrid appends an nx by ny grid of positions spanning the rectangle from min to max,
// both inclusive, in row-major order starting at min.
func AppendGrid(dst []ms2.Vec, min, max ms2.Vec, nx, ny int) []ms2.Vec {
	if nx < 1 || ny < 1 {
		panic("grid dimensions must be positive")
	}
	step := ms2.Sub(max, min)
	if nx > 1 {
		step.X /= float32(nx - 1)
	}
	if ny > 1 {
		step.Y /= float32(ny - 1)
	}
	dst = slices.Grow(dst, nx*ny)
	for j := 0; j < ny; j++ {
		y := min.Y + float32(j)*step.Y
		for i := 0; i < nx; i++ {
			dst = append(dst, ms2.Vec{X: min.X + float32(i)*step.X, Y: y})
		}
	}
	return dst
}

func elemSize[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}
