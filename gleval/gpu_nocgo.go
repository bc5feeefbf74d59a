//go:build tinygo || !cgo

package gleval

import (
	"errors"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glproc/glbuild"
)

var errNoCGO = errors.New("GPU evaluation requires CGo and is not supported on TinyGo")

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
func Init1x1GLFW() (terminate func(), err error) {
	return nil, errNoCGO
}

// NewComputeGPUKernel compiles prog into a GPU kernel. Requires CGo.
func NewComputeGPUKernel(programmer *glbuild.Programmer, prog glbuild.Program) (*GPUKernel, error) {
	return nil, errNoCGO
}

// GPUKernel evaluates a kernel program on the GPU through a compute shader.
type GPUKernel struct {
	components int
}

// Components implements [Kernel].
func (k *GPUKernel) Components() int { return k.components }

// Evaluations returns total positions evaluated during the kernel's lifetime.
func (k *GPUKernel) Evaluations() uint64 { return 0 }

// Delete releases the kernel's GPU program.
func (k *GPUKernel) Delete() {}

// Evaluate implements [Kernel].
func (k *GPUKernel) Evaluate(pos []ms2.Vec, dst []float32, userData any) error {
	return errNoCGO
}
