//go:build !tinygo && cgo

package gleval

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/glproc/glbuild"
)

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
// It returns a termination function that should be called when user is done running loads on GPU.
func Init1x1GLFW() (terminate func(), err error) {
	_, terminate, err = glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "compute",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	return terminate, err
}

// GPUKernel evaluates a kernel program on the GPU through a compute shader.
// GPU kernels must be used from the thread owning the GL context.
type GPUKernel struct {
	prog        glgl.Program
	components  int
	invocX      int
	evaluations uint64
}

// NewComputeGPUKernel writes prog as a compute program with programmer (see [glbuild.Programmer.WriteCompute])
// and compiles it. prog's main must be a kernel function definition of the form T name(vec2 p).
func NewComputeGPUKernel(programmer *glbuild.Programmer, prog glbuild.Program) (*GPUKernel, error) {
	var buf bytes.Buffer
	n, components, err := programmer.WriteCompute(&buf, prog)
	if err != nil {
		return nil, err
	} else if n != buf.Len() {
		return nil, errors.New("written length mismatch")
	}
	combinedSource, err := glgl.ParseCombined(&buf)
	if err != nil {
		return nil, err
	}
	glprog, err := glgl.CompileProgram(combinedSource)
	if err != nil {
		return nil, errors.New(string(combinedSource.Compute) + "\n" + err.Error())
	}
	invocX, _, _ := programmer.ComputeInvocations()
	return &GPUKernel{prog: glprog, components: components, invocX: invocX}, nil
}

// Components implements [Kernel].
func (k *GPUKernel) Components() int { return k.components }

// Evaluations returns total positions evaluated during the kernel's lifetime.
func (k *GPUKernel) Evaluations() uint64 { return k.evaluations }

// Delete releases the kernel's GPU program.
func (k *GPUKernel) Delete() { k.prog.Delete() }

// Evaluate implements [Kernel].
func (k *GPUKernel) Evaluate(pos []ms2.Vec, dst []float32, userData any) error {
	if err := checkBuffers(pos, dst, k.components); err != nil {
		return err
	} else if k.prog.ID() == 0 {
		return errors.New("bad program compile or GPUKernel not initialized before first use")
	}
	k.prog.Bind()
	defer k.prog.Unbind()
	err := computeEvaluate(pos, dst, k.invocX)
	if err != nil {
		return err
	}
	k.evaluations += uint64(len(pos))
	return nil
}

func computeEvaluate(pos []ms2.Vec, dst []float32, invocX int) (err error) {
	if len(pos) == 0 || len(dst) == 0 {
		return errEmptyBuffers
	} else if invocX < 1 {
		return errZeroInvoc
	}
	var p runtime.Pinner
	var posSSBO, dstSSBO uint32
	p.Pin(&posSSBO)
	p.Pin(&dstSSBO)
	defer p.Unpin()

	posSSBO = loadSSBO(pos, 0, gl.STATIC_DRAW)
	if posSSBO == 0 {
		return glErrOrMessage("zero SSBO id set by GL during compute loading")
	}
	defer gl.DeleteBuffers(1, &posSSBO)

	dstSSBO = createSSBO(elemSize[float32]()*len(dst), 1, gl.DYNAMIC_READ)
	if dstSSBO == 0 {
		return glErrOrMessage("zero id SSBO creating result buffer")
	}
	defer gl.DeleteBuffers(1, &dstSSBO)
	nWorkX := (len(pos) + invocX - 1) / invocX
	gl.DispatchCompute(uint32(nWorkX), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
	err = copySSBO(dst, dstSSBO)
	if err != nil {
		return err
	}
	return glgl.Err()
}

func loadSSBO[T any](slice []T, base, usage uint32) (ssbo uint32) {
	var p runtime.Pinner
	p.Pin(&ssbo)
	gl.GenBuffers(1, &ssbo)
	p.Unpin()
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	size := len(slice) * elemSize[T]()
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, unsafe.Pointer(&slice[0]), usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, base, ssbo)
	return ssbo
}

func createSSBO(size int, base, usage uint32) (ssbo uint32) {
	gl.GenBuffers(1, &ssbo)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, base, ssbo)
	return ssbo
}

func copySSBO[T any](dst []T, ssbo uint32) error {
	singleSize := elemSize[T]()
	bufSize := singleSize * len(dst)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	ptr := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, bufSize, gl.MAP_READ_BIT)
	if ptr == nil {
		return glErrOrMessage("failed to map SSBO buffer during copy")
	}
	defer gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER)
	gpuBytes := unsafe.Slice((*byte)(ptr), bufSize)
	bufBytes := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), bufSize)
	copy(bufBytes, gpuBytes)
	return nil
}

func glErrOrMessage(defaultMsg string) (err error) {
	err = glgl.Err()
	if err == nil {
		err = errors.New(defaultMsg)
	} else {
		err = fmt.Errorf("%s: %w", defaultMsg, err)
	}
	return err
}
