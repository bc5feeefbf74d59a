package glrender

import (
	"fmt"

	"github.com/soypat/glproc/glbuild"
	"github.com/soypat/glproc/glbuild/glsllib"
	"github.com/soypat/glproc/gleval"
	"github.com/soypat/glproc/glmath"
)

// Uniforms declared by [PreviewProgram].
const (
	// UniformResolution is the viewport size in pixels (vec2).
	UniformResolution = "uResolution"
	// UniformScale is the kernel domain distance spanned by one pixel (float).
	UniformScale = "uScale"
	// UniformOffset is the kernel domain position at the viewport center (vec2).
	UniformOffset = "uOffset"
)

const previewEnv = "view"

// PreviewProgram returns a fragment program that shades every pixel with the named kernel
// using the same color scheme as [DefaultColorMap], and the global declarations
// required by [glbuild.Programmer.WriteFragment].
func PreviewProgram(kernel string) (glbuild.Program, []glbuild.Global, error) {
	ks, err := gleval.KernelByName(kernel)
	if err != nil {
		return glbuild.Program{}, nil, err
	}
	var typename string
	var shade glbuild.Node
	v := glbuild.Ident("v")
	zero, one := glbuild.Float(0), glbuild.Float(1)
	switch ks.Components {
	case 1:
		typename = "float"
		gray := glbuild.NewCall("clamp", glbuild.Mul(glbuild.Add(v, one), glbuild.Float(0.5)), zero, one)
		shade = glbuild.Vec4(glbuild.Vec3(gray), one)
	case 2:
		typename = "vec2"
		gray := glbuild.NewCall("clamp", glbuild.MustSwizzle(v, 2, "x"), zero, one)
		shade = glbuild.Vec4(glbuild.Vec3(gray), one)
	case 3:
		typename = "vec3"
		shade = glbuild.Vec4(glbuild.NewCall("clamp", v, zero, one), one)
	case 4:
		typename = "vec4"
		shade = glbuild.NewCall("clamp", v, zero, one)
	default:
		return glbuild.Program{}, nil, fmt.Errorf("kernel %q returns unsupported amount of components %d", kernel, ks.Components)
	}
	fragCoord := glbuild.MustSwizzle(glbuild.Ident("gl_FragCoord"), 4, "xy")
	center := glbuild.Mul(glbuild.Env(previewEnv, UniformResolution), glbuild.Float(0.5))
	pos := glbuild.Add(
		glbuild.Mul(glbuild.Sub(fragCoord, center), glbuild.Env(previewEnv, UniformScale)),
		glbuild.Env(previewEnv, UniformOffset),
	)
	main := glbuild.Func("void", "main", nil, glbuild.NewBlock(previewEnv,
		glbuild.Decl("vec2", "p", pos),
		glbuild.Decl(typename, "v", glbuild.NewCall(ks.Name, glbuild.Ident("p"))),
		glbuild.Assign(glbuild.Ident("fragColor"), shade),
	))
	prog, err := glbuild.NewProgram(main, glsllib.Referenced(main)...)
	if err != nil {
		return glbuild.Program{}, nil, err
	}
	globals := []glbuild.Global{
		mustUniform(UniformResolution, glmath.Vec2{}),
		mustUniform(UniformScale, float32(0)),
		mustUniform(UniformOffset, glmath.Vec2{}),
		{Qualifier: "out", Type: "vec4", Name: "fragColor"},
	}
	return prog, globals, nil
}

func mustUniform(name string, v any) glbuild.Global {
	g, err := glbuild.Uniform(name, v)
	if err != nil {
		panic(err)
	}
	return g
}
