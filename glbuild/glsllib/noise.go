package glsllib

import (
	"fmt"
	"slices"

	"github.com/soypat/glproc/glbuild"
)

// Helper definitions shared by the noise kernels. Each helper carries a unique
// name since the definitions are deduplicated by name, not by GLSL overload.

func mod289(typ, name string) glbuild.FunctionDef { return modN(typ, name, 289) }

func modN(typ, name string, n float32) glbuild.FunctionDef {
	x := ident("x")
	return glbuild.Func(typ, name, params(typ, "x"),
		glbuild.Ret(glbuild.Sub(x, glbuild.Mul(call("floor", glbuild.Div(x, fl(n))), fl(n)))),
	)
}

func permute(typ, name, mod string) glbuild.FunctionDef {
	x := ident("x")
	return glbuild.Func(typ, name, params(typ, "x"),
		glbuild.Ret(call(mod, glbuild.Mul(glbuild.Add(glbuild.Mul(x, fl(34)), fl(10)), x))),
	)
}

func taylorInvSqrt(typ, name string) glbuild.FunctionDef {
	return glbuild.Func(typ, name, params(typ, "r"),
		glbuild.Ret(glbuild.Sub(fl(1.79284291400159), glbuild.Mul(ident("r"), fl(0.85373472095314)))),
	)
}

// Mod289v2 reduces components to [0, 289):
//
//	vec2 mod289v2(vec2 x)
func Mod289v2() glbuild.FunctionDef { return mod289("vec2", "mod289v2") }

// Mod289v3 reduces components to [0, 289):
//
//	vec3 mod289v3(vec3 x)
func Mod289v3() glbuild.FunctionDef { return mod289("vec3", "mod289v3") }

// Mod289v4 reduces components to [0, 289):
//
//	vec4 mod289v4(vec4 x)
func Mod289v4() glbuild.FunctionDef { return mod289("vec4", "mod289v4") }

// Mod7v3 reduces components to [0, 7):
//
//	vec3 mod7v3(vec3 x)
func Mod7v3() glbuild.FunctionDef { return modN("vec3", "mod7v3", 7) }

// Permutev3 is the polynomial hash mod289((34x+10)x). Depends on [Mod289v3].
//
//	vec3 permutev3(vec3 x)
func Permutev3() glbuild.FunctionDef { return permute("vec3", "permutev3", "mod289v3") }

// Permutev4 is the polynomial hash mod289((34x+10)x). Depends on [Mod289v4].
//
//	vec4 permutev4(vec4 x)
func Permutev4() glbuild.FunctionDef { return permute("vec4", "permutev4", "mod289v4") }

// TaylorInvSqrtv3 approximates 1/sqrt(r) around r=0.7:
//
//	vec3 taylorInvSqrtv3(vec3 r)
func TaylorInvSqrtv3() glbuild.FunctionDef { return taylorInvSqrt("vec3", "taylorInvSqrtv3") }

// TaylorInvSqrtv4 approximates 1/sqrt(r) around r=0.7:
//
//	vec4 taylorInvSqrtv4(vec4 r)
func TaylorInvSqrtv4() glbuild.FunctionDef { return taylorInvSqrt("vec4", "taylorInvSqrtv4") }

// Fadev2 is the quintic interpolant t³(t(6t-15)+10):
//
//	vec2 fadev2(vec2 t)
func Fadev2() glbuild.FunctionDef {
	t := ident("t")
	t3 := glbuild.Mul(glbuild.Mul(t, t), t)
	return glbuild.Func("vec2", "fadev2", params("vec2", "t"),
		glbuild.Ret(glbuild.Mul(t3, glbuild.Add(glbuild.Mul(t, glbuild.Sub(glbuild.Mul(t, fl(6)), fl(15))), fl(10)))),
	)
}

// CellularColumn returns squared distances to the jittered feature points of a column of three cells:
//
//	vec3 cellularColumn(float hx, vec2 Pf, float xoff)
func CellularColumn() glbuild.FunctionDef {
	const K, Ko, jitter = 0.142857142857, 0.428571428571, 1.0
	p, ox, oy, dx, dy := ident("p"), ident("ox"), ident("oy"), ident("dx"), ident("dy")
	Pf := ident("Pf")
	return glbuild.Func("vec3", "cellularColumn", []glbuild.Param{glbuild.P("float", "hx"), glbuild.P("vec2", "Pf"), glbuild.P("float", "xoff")},
		glbuild.Decl("vec3", "p", call("permutev3", glbuild.Add(glbuild.Vec3(fl(-1), fl(0), fl(1)), ident("hx")))),
		glbuild.Decl("vec3", "ox", glbuild.Sub(call("fract", glbuild.Mul(p, fl(K))), fl(Ko))),
		glbuild.Decl("vec3", "oy", glbuild.Sub(glbuild.Mul(call("mod7v3", call("floor", glbuild.Mul(p, fl(K)))), fl(K)), fl(Ko))),
		glbuild.Decl("vec3", "dx", glbuild.Add(glbuild.Mul(ox, fl(jitter)), glbuild.Add(sw(Pf, 2, "x"), ident("xoff")))),
		glbuild.Decl("vec3", "dy", glbuild.Add(glbuild.Sub(sw(Pf, 2, "y"), glbuild.Vec3(fl(-0.5), fl(0.5), fl(1.5))), glbuild.Mul(oy, fl(jitter)))),
		glbuild.Ret(glbuild.Add(glbuild.Mul(dx, dx), glbuild.Mul(dy, dy))),
	)
}

// GradHash maps a lattice point to a pseudo-random gradient in [-1, 1]²:
//
//	vec2 gradHash(vec2 x)
func GradHash() glbuild.FunctionDef {
	x, k := ident("x"), ident("k")
	xx, xy := sw(x, 2, "x"), sw(x, 2, "y")
	s := call("fract", glbuild.Mul(glbuild.Mul(xx, xy), glbuild.Add(xx, xy)))
	return glbuild.Func("vec2", "gradHash", params("vec2", "x"),
		glbuild.Decl("vec2", "k", glbuild.Vec2(fl(0.3183099), fl(0.3678794))),
		glbuild.Assign(x, glbuild.Add(glbuild.Mul(x, k), sw(k, 2, "yx"))),
		glbuild.Ret(glbuild.Sub(glbuild.Mul(call("fract", glbuild.Mul(glbuild.Mul(k, fl(16)), s)), fl(2)), fl(1))),
	)
}

// Cellular returns the definitions of cellular (Worley) noise, helpers first. The kernel returns
// the distances to the closest and second closest feature points (F1, F2):
//
//	vec2 cellular(vec2 P)
func Cellular() []glbuild.FunctionDef {
	P, Pi, Pf, px := ident("P"), ident("Pi"), ident("Pf"), ident("px")
	d1, d2, d3, d1a := ident("d1"), ident("d2"), ident("d3"), ident("d1a")
	column := func(c string, xoff float32) glbuild.Node {
		return call("cellularColumn", glbuild.Add(sw(px, 3, c), sw(Pi, 2, "y")), Pf, fl(xoff))
	}
	swapIfNotLess := func(a, b string) glbuild.Node {
		return glbuild.Assign(sw(d1, 3, a+b), glbuild.Cond(
			glbuild.Binary(sw(d1, 3, a), "<", sw(d1, 3, b)),
			sw(d1, 3, a+b),
			sw(d1, 3, b+a),
		))
	}
	kernel := glbuild.Func("vec2", "cellular", params("vec2", "P"),
		glbuild.Decl("vec2", "Pi", call("mod289v2", call("floor", P))),
		glbuild.Decl("vec2", "Pf", call("fract", P)),
		glbuild.Decl("vec3", "px", call("permutev3", glbuild.Add(glbuild.Vec3(fl(-1), fl(0), fl(1)), sw(Pi, 2, "x")))),
		glbuild.Decl("vec3", "d1", column("x", 0.5)),
		glbuild.Decl("vec3", "d2", column("y", -0.5)),
		glbuild.Decl("vec3", "d3", column("z", -1.5)),
		// Sort out the two smallest distances (F1, F2).
		glbuild.Decl("vec3", "d1a", call("min", d1, d2)),
		glbuild.Assign(d2, call("max", d1, d2)),
		glbuild.Assign(d2, call("min", d2, d3)),
		glbuild.Assign(d1, call("min", d1a, d2)),
		glbuild.Assign(d2, call("max", d1a, d2)),
		swapIfNotLess("x", "y"),
		swapIfNotLess("x", "z"), // F1 is in d1.x.
		glbuild.Assign(sw(d1, 3, "yz"), call("min", sw(d1, 3, "yz"), sw(d2, 3, "yz"))),
		glbuild.Assign(sw(d1, 3, "y"), call("min", sw(d1, 3, "y"), sw(d1, 3, "z"))),
		glbuild.Assign(sw(d1, 3, "y"), call("min", sw(d1, 3, "y"), sw(d2, 3, "x"))), // F2 is in d1.y.
		glbuild.Ret(call("sqrt", sw(d1, 3, "xy"))),
	)
	return []glbuild.FunctionDef{Mod289v2(), Mod289v3(), Mod7v3(), Permutev3(), CellularColumn(), kernel}
}

// Perlin returns the definitions of classic Perlin noise, helpers first:
//
//	float perlin(vec2 P)
func Perlin() []glbuild.FunctionDef {
	P, Pi, Pf, i := ident("P"), ident("Pi"), ident("Pf"), ident("i")
	gx, gy := ident("gx"), ident("gy")
	fx, fy := ident("fx"), ident("fy")
	norm, nx, fadeXY := ident("norm"), ident("n_x"), ident("fade_xy")
	corner := glbuild.Vec4(fl(0), fl(0), fl(1), fl(1))
	gradDecl := func(name, c string) glbuild.Node {
		return glbuild.Decl("vec2", name, glbuild.Vec2(sw(gx, 4, c), sw(gy, 4, c)))
	}
	normalize := func(name, c string) glbuild.Node {
		return glbuild.Assign(ident(name), glbuild.Mul(ident(name), sw(norm, 4, c)))
	}
	cornerDot := func(name, g, c string) glbuild.Node {
		return glbuild.Decl("float", name, call("dot", ident(g), glbuild.Vec2(sw(fx, 4, c), sw(fy, 4, c))))
	}
	selfDot := func(g string) glbuild.Node { return call("dot", ident(g), ident(g)) }
	kernel := glbuild.Func("float", "perlin", params("vec2", "P"),
		glbuild.Decl("vec4", "Pi", glbuild.Add(call("floor", sw(P, 2, "xyxy")), corner)),
		glbuild.Decl("vec4", "Pf", glbuild.Sub(call("fract", sw(P, 2, "xyxy")), corner)),
		glbuild.Assign(Pi, call("mod289v4", Pi)), // To avoid truncation effects in permutation.
		glbuild.Decl("vec4", "ix", sw(Pi, 4, "xzxz")),
		glbuild.Decl("vec4", "iy", sw(Pi, 4, "yyww")),
		glbuild.Decl("vec4", "fx", sw(Pf, 4, "xzxz")),
		glbuild.Decl("vec4", "fy", sw(Pf, 4, "yyww")),
		glbuild.Decl("vec4", "i", call("permutev4", glbuild.Add(call("permutev4", ident("ix")), ident("iy")))),
		glbuild.Decl("vec4", "gx", glbuild.Sub(glbuild.Mul(call("fract", glbuild.Mul(i, fl(1.0/41.0))), fl(2)), fl(1))),
		glbuild.Decl("vec4", "gy", glbuild.Sub(call("abs", gx), fl(0.5))),
		glbuild.Decl("vec4", "tx", call("floor", glbuild.Add(gx, fl(0.5)))),
		glbuild.Assign(gx, glbuild.Sub(gx, ident("tx"))),
		gradDecl("g00", "x"),
		gradDecl("g10", "y"),
		gradDecl("g01", "z"),
		gradDecl("g11", "w"),
		glbuild.Decl("vec4", "norm", call("taylorInvSqrtv4", glbuild.Vec4(selfDot("g00"), selfDot("g01"), selfDot("g10"), selfDot("g11")))),
		normalize("g00", "x"),
		normalize("g01", "y"),
		normalize("g10", "z"),
		normalize("g11", "w"),
		cornerDot("n00", "g00", "x"),
		cornerDot("n10", "g10", "y"),
		cornerDot("n01", "g01", "z"),
		cornerDot("n11", "g11", "w"),
		glbuild.Decl("vec2", "fade_xy", call("fadev2", sw(Pf, 4, "xy"))),
		glbuild.Decl("vec2", "n_x", call("mix",
			glbuild.Vec2(ident("n00"), ident("n01")),
			glbuild.Vec2(ident("n10"), ident("n11")),
			sw(fadeXY, 2, "x"),
		)),
		glbuild.Decl("float", "n_xy", call("mix", sw(nx, 2, "x"), sw(nx, 2, "y"), sw(fadeXY, 2, "y"))),
		glbuild.Ret(glbuild.Mul(fl(2.3), ident("n_xy"))),
	)
	return []glbuild.FunctionDef{Mod289v4(), Permutev4(), TaylorInvSqrtv4(), Fadev2(), kernel}
}

// Gradient returns the definitions of gradient noise with analytic derivatives, helpers first.
// The kernel returns (value, d/dx, d/dy):
//
//	vec3 gradient(vec2 p)
func Gradient() []glbuild.FunctionDef {
	p, i, f, u, du := ident("p"), ident("i"), ident("f"), ident("u"), ident("du")
	ga, gb, gc, gd := ident("ga"), ident("gb"), ident("gc"), ident("gd")
	va, vb, vc, vd, k := ident("va"), ident("vb"), ident("vc"), ident("vd"), ident("k")
	ux, uy := sw(u, 2, "x"), sw(u, 2, "y")
	offset := func(x, y float32) glbuild.Node { return glbuild.Vec2(fl(x), fl(y)) }

	deriv := glbuild.Add(ga, glbuild.Mul(glbuild.Sub(gb, ga), ux))
	deriv = glbuild.Add(deriv, glbuild.Mul(glbuild.Sub(gc, ga), uy))
	deriv = glbuild.Add(deriv, glbuild.Mul(glbuild.Add(glbuild.Sub(glbuild.Sub(ga, gb), gc), gd), glbuild.Mul(ux, uy)))
	blend := glbuild.Sub(glbuild.Add(glbuild.Mul(sw(u, 2, "yx"), k), glbuild.Vec2(vb, vc)), va)
	deriv = glbuild.Add(deriv, glbuild.Mul(du, blend))

	value := glbuild.Add(va, glbuild.Mul(ux, glbuild.Sub(vb, va)))
	value = glbuild.Add(value, glbuild.Mul(uy, glbuild.Sub(vc, va)))
	value = glbuild.Add(value, glbuild.Mul(glbuild.Mul(ux, uy), k))

	kernel := glbuild.Func("vec3", "gradient", params("vec2", "p"),
		glbuild.Decl("vec2", "i", call("floor", p)),
		glbuild.Decl("vec2", "f", call("fract", p)),
		glbuild.Decl("vec2", "u", glbuild.Mul(glbuild.Mul(f, f), glbuild.Sub(fl(3), glbuild.Mul(f, fl(2))))),
		glbuild.Decl("vec2", "du", glbuild.Mul(glbuild.Mul(f, fl(6)), glbuild.Sub(fl(1), f))),
		glbuild.Decl("vec2", "ga", call("gradHash", i)),
		glbuild.Decl("vec2", "gb", call("gradHash", glbuild.Add(i, offset(1, 0)))),
		glbuild.Decl("vec2", "gc", call("gradHash", glbuild.Add(i, offset(0, 1)))),
		glbuild.Decl("vec2", "gd", call("gradHash", glbuild.Add(i, offset(1, 1)))),
		glbuild.Decl("float", "va", call("dot", ga, f)),
		glbuild.Decl("float", "vb", call("dot", gb, glbuild.Sub(f, offset(1, 0)))),
		glbuild.Decl("float", "vc", call("dot", gc, glbuild.Sub(f, offset(0, 1)))),
		glbuild.Decl("float", "vd", call("dot", gd, glbuild.Sub(f, offset(1, 1)))),
		glbuild.Decl("float", "k", glbuild.Add(glbuild.Sub(glbuild.Sub(va, vb), vc), vd)),
		glbuild.Ret(glbuild.Vec3(value, deriv)),
	)
	return []glbuild.FunctionDef{GradHash(), kernel}
}

// Simplex returns the definitions of 2D simplex noise, helpers first:
//
//	float simplex(vec2 v)
func Simplex() []glbuild.FunctionDef {
	v, C, i, x0, i1, x12 := ident("v"), ident("C"), ident("i"), ident("x0"), ident("i1"), ident("x12")
	p, m, x, h, ox, a0, g := ident("p"), ident("m"), ident("x"), ident("h"), ident("ox"), ident("a0"), ident("g")
	x12xy, x12zw := sw(x12, 4, "xy"), sw(x12, 4, "zw")
	kernel := glbuild.Func("float", "simplex", params("vec2", "v"),
		glbuild.Decl("vec4", "C", glbuild.Vec4(fl(0.211324865405187), fl(0.366025403784439), fl(-0.577350269189626), fl(0.024390243902439))),
		// First corner.
		glbuild.Decl("vec2", "i", call("floor", glbuild.Add(v, call("dot", v, sw(C, 4, "yy"))))),
		glbuild.Decl("vec2", "x0", glbuild.Add(glbuild.Sub(v, i), call("dot", i, sw(C, 4, "xx")))),
		// Other corners.
		glbuild.Decl("vec2", "i1", glbuild.Cond(
			glbuild.Binary(sw(x0, 2, "x"), ">", sw(x0, 2, "y")),
			glbuild.Vec2(fl(1), fl(0)),
			glbuild.Vec2(fl(0), fl(1)),
		)),
		glbuild.Decl("vec4", "x12", glbuild.Add(sw(x0, 2, "xyxy"), sw(C, 4, "xxzz"))),
		glbuild.Assign(x12xy, glbuild.Sub(x12xy, i1)),
		// Permutations.
		glbuild.Assign(i, call("mod289v2", i)),
		glbuild.Decl("vec3", "p", call("permutev3", glbuild.Add(
			glbuild.Add(call("permutev3", glbuild.Add(glbuild.Vec3(fl(0), sw(i1, 2, "y"), fl(1)), sw(i, 2, "y"))), sw(i, 2, "x")),
			glbuild.Vec3(fl(0), sw(i1, 2, "x"), fl(1)),
		))),
		glbuild.Decl("vec3", "m", call("max", glbuild.Sub(fl(0.5), glbuild.Vec3(
			call("dot", x0, x0),
			call("dot", x12xy, x12xy),
			call("dot", x12zw, x12zw),
		)), fl(0))),
		glbuild.Assign(m, glbuild.Mul(m, m)),
		glbuild.Assign(m, glbuild.Mul(m, m)),
		// Gradients: 41 points uniformly over a line, mapped onto a diamond.
		glbuild.Decl("vec3", "x", glbuild.Sub(glbuild.Mul(call("fract", glbuild.Mul(p, sw(C, 4, "www"))), fl(2)), fl(1))),
		glbuild.Decl("vec3", "h", glbuild.Sub(call("abs", x), fl(0.5))),
		glbuild.Decl("vec3", "ox", call("floor", glbuild.Add(x, fl(0.5)))),
		glbuild.Decl("vec3", "a0", glbuild.Sub(x, ox)),
		// Normalize gradients implicitly by scaling m.
		glbuild.Assign(m, glbuild.Mul(m, call("taylorInvSqrtv3", glbuild.Add(glbuild.Mul(a0, a0), glbuild.Mul(h, h))))),
		glbuild.Decl("vec3", "g", nil),
		glbuild.Assign(sw(g, 3, "x"), glbuild.Add(glbuild.Mul(sw(a0, 3, "x"), sw(x0, 2, "x")), glbuild.Mul(sw(h, 3, "x"), sw(x0, 2, "y")))),
		glbuild.Assign(sw(g, 3, "yz"), glbuild.Add(glbuild.Mul(sw(a0, 3, "yz"), sw(x12, 4, "xz")), glbuild.Mul(sw(h, 3, "yz"), sw(x12, 4, "yw")))),
		glbuild.Ret(glbuild.Mul(fl(130), call("dot", m, g))),
	)
	return []glbuild.FunctionDef{Mod289v2(), Mod289v3(), Permutev3(), TaylorInvSqrtv3(), kernel}
}

// White returns the definition of white noise. The kernel returns three uncorrelated values in [0, 1):
//
//	vec3 white(vec2 p)
func White() []glbuild.FunctionDef {
	p, a := ident("p"), ident("a")
	ax, ay, az := sw(a, 3, "x"), sw(a, 3, "y"), sw(a, 3, "z")
	kernel := glbuild.Func("vec3", "white", params("vec2", "p"),
		glbuild.Decl("vec3", "a", call("fract", glbuild.Mul(sw(p, 2, "xyx"), glbuild.Vec3(fl(123.34), fl(234.34), fl(345.65))))),
		glbuild.Assign(a, glbuild.Add(a, call("dot", a, glbuild.Add(a, fl(34.45))))),
		glbuild.Ret(call("fract", glbuild.Vec3(glbuild.Mul(ax, ay), glbuild.Mul(ay, az), glbuild.Mul(az, ax)))),
	)
	return []glbuild.FunctionDef{kernel}
}

// KernelNames lists the noise kernels of the library in a stable order.
func KernelNames() []string {
	return []string{"cellular", "perlin", "gradient", "simplex", "white"}
}

// Library returns every noise definition, deduplicated, with each definition
// declared after the definitions it calls.
func Library() []glbuild.FunctionDef {
	lib, err := glbuild.MergeDefs(Cellular(), Perlin(), Gradient(), Simplex(), White())
	if err != nil {
		panic(err) // Library definitions are consistent by construction.
	}
	return lib
}

// Referenced returns the library definitions transitively called from roots, in library order.
// Use it to select the definitions a program needs:
//
//	prog, err := glbuild.NewProgram(main, glsllib.Referenced(main)...)
func Referenced(roots ...glbuild.Node) []glbuild.FunctionDef {
	return glbuild.Reachable(Library(), roots...)
}

// KernelProgram returns a program whose main is the named noise kernel and whose
// definitions are the helpers it depends on.
func KernelProgram(name string) (glbuild.Program, error) {
	if !slices.Contains(KernelNames(), name) {
		return glbuild.Program{}, fmt.Errorf("unknown noise kernel %q", name)
	}
	lib := Library()
	for _, def := range lib {
		if def.Name == name {
			return glbuild.NewProgram(def, glbuild.Reachable(lib, def)...)
		}
	}
	panic("noise kernel " + name + " missing from library")
}

func ident(name string) glbuild.Identifier { return glbuild.Ident(name) }

func fl(v float32) glbuild.Literal { return glbuild.Float(v) }

func call(name string, args ...glbuild.Node) glbuild.Call { return glbuild.NewCall(name, args...) }

func sw(x glbuild.Node, arity int, pattern string) glbuild.Swizzle {
	return glbuild.MustSwizzle(x, arity, pattern)
}

func params(typ, name string) []glbuild.Param { return []glbuild.Param{glbuild.P(typ, name)} }
