package noise

import "github.com/soypat/glproc/glmath"

var gradientK = Vec2{X: 0.3183099, Y: 0.3678794}

// Gradient returns gradient noise at p and its analytic derivatives as (value, d/dx, d/dy).
func Gradient(p Vec2) Vec3 {
	i := glmath.Floor(p)
	f := glmath.Fract(p)
	u := glmath.Mul(glmath.Mul(f, f), glmath.ScalarSub(3, glmath.MulScalar(f, 2)))
	du := glmath.Mul(glmath.MulScalar(f, 6), glmath.ScalarSub(1, f))

	ga := gradientHash(i)
	gb := gradientHash(glmath.Add(i, Vec2{X: 1, Y: 0}))
	gc := gradientHash(glmath.Add(i, Vec2{X: 0, Y: 1}))
	gd := gradientHash(glmath.Add(i, Vec2{X: 1, Y: 1}))

	va := glmath.Dot(ga, f)
	vb := glmath.Dot(gb, glmath.Sub(f, Vec2{X: 1, Y: 0}))
	vc := glmath.Dot(gc, glmath.Sub(f, Vec2{X: 0, Y: 1}))
	vd := glmath.Dot(gd, glmath.Sub(f, Vec2{X: 1, Y: 1}))

	k := va - vb - vc + vd
	value := va + u.X*(vb-va) + u.Y*(vc-va) + u.X*u.Y*k

	deriv := glmath.Add(ga, glmath.MulScalar(glmath.Sub(gb, ga), u.X))
	deriv = glmath.Add(deriv, glmath.MulScalar(glmath.Sub(gc, ga), u.Y))
	deriv = glmath.Add(deriv, glmath.MulScalar(glmath.Add(glmath.Sub(glmath.Sub(ga, gb), gc), gd), u.X*u.Y))
	blend := glmath.SubScalar(glmath.Add(glmath.MulScalar(glmath.Swizzle2(u, swYX), k), Vec2{X: vb, Y: vc}), va)
	deriv = glmath.Add(deriv, glmath.Mul(du, blend))
	return Vec3{X: value, Y: deriv.X, Z: deriv.Y}
}

// gradientHash maps a lattice point to a pseudo-random gradient in [-1, 1]².
func gradientHash(x Vec2) Vec2 {
	k := gradientK
	x = glmath.Add(glmath.Mul(x, k), glmath.Swizzle2(k, swYX))
	s := glmath.Fractf(x.X * x.Y * (x.X + x.Y))
	return glmath.AddScalar(glmath.MulScalar(glmath.Fract(glmath.MulScalar(glmath.MulScalar(k, 16), s)), 2), -1)
}
