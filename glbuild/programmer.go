package glbuild

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glproc/glmath"
)

const VersionStr = "#version 430\n"

var defaultComputeHeader = []byte("#shader compute\n" + VersionStr)

// Programmer wraps [Program]s into complete GLSL programs ready for compilation,
// such as compute programs that evaluate a kernel over a buffer of positions.
// A Programmer reuses internal buffers and is not safe for concurrent use.
type Programmer struct {
	scratch       []byte
	computeHeader []byte
	// Invocations size in X (local group size) to give each compute work group.
	invocX int
}

// NewDefaultProgrammer returns a Programmer with reasonable default parameters for use with glgl package on the local machine.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		scratch:       make([]byte, 0, 4096),
		computeHeader: defaultComputeHeader,
		invocX:        32,
	}
}

// SetComputeInvocations sets the work group local-sizes. x*y*z must be less than maximum number of invocations.
func (p *Programmer) SetComputeInvocations(x, y, z int) {
	if y != 1 || z != 1 {
		panic("unsupported")
	} else if x < 1 {
		panic("zero or negative X invocation size")
	}
	p.invocX = x
}

// ComputeInvocations returns the worker group invocation size in x y and z.
func (p *Programmer) ComputeInvocations() (int, int, int) {
	return p.invocX, 1, 1
}

// KernelEntry returns prog's main as a kernel function definition of the form
//
//	<float|vec2|vec3|vec4> name(vec2 p)
//
// and the amount of float components it returns.
func KernelEntry(prog Program) (entry FunctionDef, components int, err error) {
	entry, ok := prog.Main().(FunctionDef)
	if !ok {
		return FunctionDef{}, 0, fmt.Errorf("program main is %T, not a function definition", prog.Main())
	}
	components = typeComponents(entry.ReturnType)
	if components == 0 {
		return FunctionDef{}, 0, fmt.Errorf("kernel %q return type %q not a float or float vector", entry.Name, entry.ReturnType)
	} else if len(entry.Params) != 1 || entry.Params[0].Type != "vec2" {
		return FunctionDef{}, 0, fmt.Errorf("kernel %q must receive a single vec2 parameter", entry.Name)
	}
	return entry, components, nil
}

func typeComponents(typename string) int {
	switch typename {
	case "float":
		return 1
	case "vec2":
		return 2
	case "vec3":
		return 3
	case "vec4":
		return 4
	}
	return 0
}

// WriteCompute writes a compute program in glgl's combined format that evaluates the kernel entry point of prog
// (see [KernelEntry]) over a buffer of vec2 positions at binding 0 and stores the results in a float buffer at binding 1.
// Each result occupies as many consecutive floats as the kernel returns components, which is also returned.
func (p *Programmer) WriteCompute(w io.Writer, prog Program) (n int, components int, err error) {
	entry, components, err := KernelEntry(prog)
	if err != nil {
		return 0, 0, err
	}
	p.scratch = append(p.scratch[:0], p.computeHeader...)
	p.scratch = prog.AppendRender(p.scratch)
	p.scratch = fmt.Appendf(p.scratch, `

layout(local_size_x = %d, local_size_y = 1, local_size_z = 1) in;

// Input: 2D positions at which to evaluate kernel.
layout(std430, binding = 0) buffer PositionsBuffer {
	vec2 vbo_positions[];
};

// Output: Kernel results, %d float(s) per position.
layout(std430, binding = 1) buffer ResultsBuffer {
	float vbo_results[];
};

void main() {
	int idx = int( gl_GlobalInvocationID.x );
	if (idx >= vbo_positions.length()) {
		return;
	}
	%s r = %s(vbo_positions[idx]);
`, p.invocX, components, entry.ReturnType, entry.Name)
	if components == 1 {
		p.scratch = append(p.scratch, "\tvbo_results[idx] = r;\n"...)
	} else {
		for i := 0; i < components; i++ {
			p.scratch = append(p.scratch, "\tvbo_results[idx*"...)
			p.scratch = strconv.AppendInt(p.scratch, int64(components), 10)
			p.scratch = append(p.scratch, '+')
			p.scratch = strconv.AppendInt(p.scratch, int64(i), 10)
			p.scratch = append(p.scratch, "] = r."...)
			p.scratch = append(p.scratch, "xyzw"[i])
			p.scratch = append(p.scratch, ";\n"...)
		}
	}
	p.scratch = append(p.scratch, "}\n"...)
	n, err = w.Write(p.scratch)
	return n, components, err
}

// Global is a program-scope variable declaration such as a uniform or a shader stage input/output.
type Global struct {
	Qualifier string // i.e: "uniform", "in", "out".
	Type      string
	Name      string
}

// Uniform returns a uniform declaration for name whose GLSL type is inferred from the Go type of v.
func Uniform(name string, v any) (Global, error) {
	typename, err := glTypename(reflect.TypeOf(v))
	if err != nil {
		return Global{}, fmt.Errorf("uniform %q: %w", name, err)
	}
	return Global{Qualifier: "uniform", Type: typename, Name: name}, nil
}

// AppendGlobalDecl appends the declaration of g, i.e: "uniform float uScale;\n".
func AppendGlobalDecl(b []byte, g Global) []byte {
	if g.Qualifier != "" {
		b = append(b, g.Qualifier...)
		b = append(b, ' ')
	}
	b = append(b, g.Type...)
	b = append(b, ' ')
	b = append(b, g.Name...)
	b = append(b, ";\n"...)
	return b
}

// WriteFragment writes a fragment program consisting of the version directive, the global declarations and prog.
// prog's main must be a void main() function definition. Every member of prog's environment block
// must be declared by a global since environment references are emitted unqualified.
func (p *Programmer) WriteFragment(w io.Writer, prog Program, globals ...Global) (int, error) {
	mainDef, ok := prog.Main().(FunctionDef)
	if !ok || mainDef.Name != "main" || mainDef.ReturnType != "void" || len(mainDef.Params) != 0 {
		return 0, errors.New("fragment program main must be a void main() function definition")
	}
	declared := make(map[string]struct{}, len(globals))
	for _, g := range globals {
		if g.Name == "" || g.Type == "" {
			return 0, errors.New("global declaration requires name and type")
		}
		declared[g.Name] = struct{}{}
	}
	for _, member := range prog.EnvMembers() {
		if _, ok := declared[member]; !ok {
			return 0, fmt.Errorf("environment member %q of %q has no global declaration", member, prog.Env())
		}
	}
	p.scratch = append(p.scratch[:0], VersionStr...)
	for _, g := range globals {
		p.scratch = AppendGlobalDecl(p.scratch, g)
	}
	p.scratch = append(p.scratch, '\n')
	p.scratch = prog.AppendRender(p.scratch)
	p.scratch = append(p.scratch, '\n')
	return w.Write(p.scratch)
}

func glTypename(tp reflect.Type) (typename string, err error) {
	switch tp {
	case reflect.TypeOf(float64(0)):
		typename = "double"
	case reflect.TypeOf(float32(0)):
		typename = "float"
	case reflect.TypeOf(glmath.Vec2{}):
		typename = "vec2"
	case reflect.TypeOf(glmath.Vec3{}):
		typename = "vec3"
	case reflect.TypeOf(glmath.Vec4{}), reflect.TypeOf(ms3.Quat{}):
		typename = "vec4"
	case reflect.TypeOf(ms2.Mat2{}):
		typename = "mat2"
	case reflect.TypeOf(ms3.Mat3{}):
		typename = "mat3"
	case reflect.TypeOf(ms3.Mat4{}):
		typename = "mat4"
	case reflect.TypeOf(uint32(0)):
		typename = "uint"
	case reflect.TypeOf(int32(0)):
		typename = "int"
	case reflect.TypeOf(true):
		typename = "bool"
	case reflect.TypeOf([2]uint32{}):
		typename = "uvec2"
	case reflect.TypeOf([2]int32{}):
		typename = "ivec2"
	case reflect.TypeOf([3]uint32{}):
		typename = "uvec3"
	case reflect.TypeOf([3]int32{}):
		typename = "ivec3"
	case nil:
		err = errors.New("nil element type")
	default:
		err = fmt.Errorf("equivalent type not implemented for %s", tp.String())
	}
	return typename, err
}
