// Package noise implements procedural noise kernels on the CPU using only the
// GLSL-like primitives of package glmath. Each kernel mirrors, step by step and
// constant by constant, the GLSL definition of the same name in package glsllib,
// so CPU and GPU evaluations agree up to platform rounding.
//
// All kernels are pure functions of their input and are safe for concurrent use.
package noise

import (
	"github.com/soypat/glproc/glmath"
)

type (
	Vec2 = glmath.Vec2
	Vec3 = glmath.Vec3
	Vec4 = glmath.Vec4
)

// Swizzle patterns used by the kernels.
var (
	swXYXY = glmath.MustSwizzle(2, "xyxy")
	swXYX  = glmath.MustSwizzle(2, "xyx")
	swYX   = glmath.MustSwizzle(2, "yx")
	swXZXZ = glmath.MustSwizzle(4, "xzxz")
	swYYWW = glmath.MustSwizzle(4, "yyww")
	swXY4  = glmath.MustSwizzle(4, "xy")
	swZW4  = glmath.MustSwizzle(4, "zw")
	swYZ   = glmath.MustSwizzle(3, "yz")
)

// mod289 reduces each component of x to [0, 289) as x-floor(x/289)*289.
func mod289[V glmath.Vector](x V) V {
	return glmath.Sub(x, glmath.MulScalar(glmath.Floor(glmath.DivScalar(x, 289)), 289))
}

// mod7 reduces each component of x to [0, 7) as x-floor(x/7)*7.
func mod7[V glmath.Vector](x V) V {
	return glmath.Sub(x, glmath.MulScalar(glmath.Floor(glmath.DivScalar(x, 7)), 7))
}

// permute is the polynomial hash mod289((34x+10)x).
func permute[V glmath.Vector](x V) V {
	return mod289(glmath.Mul(glmath.AddScalar(glmath.MulScalar(x, 34), 10), x))
}

// taylorInvSqrt is a first order approximation of 1/sqrt(r) around r=0.7.
func taylorInvSqrt[V glmath.Vector](r V) V {
	return glmath.ScalarSub(1.79284291400159, glmath.MulScalar(r, 0.85373472095314))
}

// fade is the quintic interpolant t³(t(6t-15)+10).
func fade(t Vec2) Vec2 {
	t3 := glmath.Mul(glmath.Mul(t, t), t)
	return glmath.Mul(t3, glmath.AddScalar(glmath.Mul(t, glmath.SubScalar(glmath.MulScalar(t, 6), 15)), 10))
}
