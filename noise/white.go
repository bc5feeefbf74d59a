package noise

import "github.com/soypat/glproc/glmath"

var whiteFreq = Vec3{X: 123.34, Y: 234.34, Z: 345.65}

// White returns three uncorrelated pseudo-random values in [0, 1) for p.
// Unlike the other kernels white noise has no spatial coherence.
func White(p Vec2) Vec3 {
	a := glmath.Fract(glmath.Mul(glmath.Swizzle3(p, swXYX), whiteFreq))
	a = glmath.AddScalar(a, glmath.Dot(a, glmath.AddScalar(a, 34.45)))
	return glmath.Fract(Vec3{X: a.X * a.Y, Y: a.Y * a.Z, Z: a.Z * a.X})
}
