package noise

import "github.com/soypat/glproc/glmath"

// simplexC holds (3-sqrt(3))/6, (sqrt(3)-1)/2, -1+2*C.x and 1/41.
var simplexC = Vec4{X: 0.211324865405187, Y: 0.366025403784439, Z: -0.577350269189626, W: 0.024390243902439}

// Simplex returns 2D simplex noise at v. The result lies approximately in [-1, 1].
func Simplex(v Vec2) float32 {
	C := simplexC
	// First corner.
	i := glmath.Floor(glmath.AddScalar(v, glmath.Dot(v, Vec2{X: C.Y, Y: C.Y})))
	x0 := glmath.AddScalar(glmath.Sub(v, i), glmath.Dot(i, Vec2{X: C.X, Y: C.X}))

	// Other corners.
	i1 := Vec2{X: 0, Y: 1}
	if x0.X > x0.Y {
		i1 = Vec2{X: 1, Y: 0}
	}
	x12 := glmath.Add(glmath.Swizzle4(x0, swXYXY), Vec4{X: C.X, Y: C.X, Z: C.Z, W: C.Z})
	x12.X -= i1.X
	x12.Y -= i1.Y

	// Permutations.
	i = mod289(i)
	p := permute(glmath.AddScalar(Vec3{X: 0, Y: i1.Y, Z: 1}, i.Y))
	p = permute(glmath.Add(glmath.AddScalar(p, i.X), Vec3{X: 0, Y: i1.X, Z: 1}))

	x12xy := glmath.Swizzle2(x12, swXY4)
	x12zw := glmath.Swizzle2(x12, swZW4)
	m := glmath.MaxScalar(glmath.ScalarSub(0.5, Vec3{
		X: glmath.Dot(x0, x0),
		Y: glmath.Dot(x12xy, x12xy),
		Z: glmath.Dot(x12zw, x12zw),
	}), 0)
	m = glmath.Mul(m, m)
	m = glmath.Mul(m, m)

	// Gradients: 41 points uniformly over a line, mapped onto a diamond.
	x := glmath.SubScalar(glmath.MulScalar(glmath.Fract(glmath.MulScalar(p, C.W)), 2), 1)
	h := glmath.SubScalar(glmath.Abs(x), 0.5)
	ox := glmath.Floor(glmath.AddScalar(x, 0.5))
	a0 := glmath.Sub(x, ox)

	// Normalize gradients implicitly by scaling m.
	m = glmath.Mul(m, taylorInvSqrt(glmath.Add(glmath.Mul(a0, a0), glmath.Mul(h, h))))

	var g Vec3
	g.X = a0.X*x0.X + h.X*x0.Y
	gyz := glmath.Add(
		glmath.Mul(glmath.Swizzle2(a0, swYZ), Vec2{X: x12.X, Y: x12.Z}),
		glmath.Mul(glmath.Swizzle2(h, swYZ), Vec2{X: x12.Y, Y: x12.W}),
	)
	g.Y, g.Z = gyz.X, gyz.Y
	return 130 * glmath.Dot(m, g)
}
