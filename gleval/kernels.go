package gleval

import (
	"fmt"
	"slices"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glproc/glbuild"
	"github.com/soypat/glproc/glbuild/glsllib"
	"github.com/soypat/glproc/noise"
)

// KernelSpec describes a noise kernel implemented both on the CPU, by package noise,
// and in GLSL, by package glsllib.
type KernelSpec struct {
	// Name is the kernel's GLSL function name.
	Name string
	// Components is the amount of values returned per position.
	Components int
	eval       func(p ms2.Vec, dst []float32)
}

var kernelSpecs = []KernelSpec{
	{Name: "cellular", Components: 2, eval: func(p ms2.Vec, dst []float32) {
		v := noise.Cellular(p)
		dst[0], dst[1] = v.X, v.Y
	}},
	{Name: "perlin", Components: 1, eval: func(p ms2.Vec, dst []float32) {
		dst[0] = noise.Perlin(p)
	}},
	{Name: "gradient", Components: 3, eval: func(p ms2.Vec, dst []float32) {
		v := noise.Gradient(p)
		dst[0], dst[1], dst[2] = v.X, v.Y, v.Z
	}},
	{Name: "simplex", Components: 1, eval: func(p ms2.Vec, dst []float32) {
		dst[0] = noise.Simplex(p)
	}},
	{Name: "white", Components: 3, eval: func(p ms2.Vec, dst []float32) {
		v := noise.White(p)
		dst[0], dst[1], dst[2] = v.X, v.Y, v.Z
	}},
}

// Kernels returns the available noise kernels in a stable order.
func Kernels() []KernelSpec { return slices.Clone(kernelSpecs) }

// KernelByName returns the noise kernel with the given name.
func KernelByName(name string) (KernelSpec, error) {
	for _, ks := range kernelSpecs {
		if ks.Name == name {
			return ks, nil
		}
	}
	return KernelSpec{}, fmt.Errorf("unknown kernel %q", name)
}

// CPU returns a CPU evaluator of the kernel.
func (ks KernelSpec) CPU() *CPUKernel {
	k, err := NewCPUKernel(ks.Name, ks.Components, ks.eval)
	if err != nil {
		panic(err)
	}
	return k
}

// Program returns the GLSL program whose main is the kernel function, ready for [glbuild.Programmer.WriteCompute].
func (ks KernelSpec) Program() (glbuild.Program, error) {
	return glsllib.KernelProgram(ks.Name)
}
