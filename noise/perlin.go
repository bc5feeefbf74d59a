package noise

import "github.com/soypat/glproc/glmath"

var perlinCorner = Vec4{X: 0, Y: 0, Z: 1, W: 1}

// Perlin returns classic Perlin gradient noise at P. The result lies approximately in [-1, 1].
func Perlin(P Vec2) float32 {
	Pxyxy := glmath.Swizzle4(P, swXYXY)
	Pi := glmath.Add(glmath.Floor(Pxyxy), perlinCorner)
	Pf := glmath.Sub(glmath.Fract(Pxyxy), perlinCorner)
	Pi = mod289(Pi) // To avoid truncation effects in permutation.
	ix := glmath.Swizzle4(Pi, swXZXZ)
	iy := glmath.Swizzle4(Pi, swYYWW)
	fx := glmath.Swizzle4(Pf, swXZXZ)
	fy := glmath.Swizzle4(Pf, swYYWW)

	i := permute(glmath.Add(permute(ix), iy))
	gx := glmath.SubScalar(glmath.MulScalar(glmath.Fract(glmath.MulScalar(i, 1.0/41.0)), 2), 1)
	gy := glmath.SubScalar(glmath.Abs(gx), 0.5)
	tx := glmath.Floor(glmath.AddScalar(gx, 0.5))
	gx = glmath.Sub(gx, tx)

	g00 := Vec2{X: gx.X, Y: gy.X}
	g10 := Vec2{X: gx.Y, Y: gy.Y}
	g01 := Vec2{X: gx.Z, Y: gy.Z}
	g11 := Vec2{X: gx.W, Y: gy.W}
	norm := taylorInvSqrt(Vec4{
		X: glmath.Dot(g00, g00),
		Y: glmath.Dot(g01, g01),
		Z: glmath.Dot(g10, g10),
		W: glmath.Dot(g11, g11),
	})
	g00 = glmath.MulScalar(g00, norm.X)
	g01 = glmath.MulScalar(g01, norm.Y)
	g10 = glmath.MulScalar(g10, norm.Z)
	g11 = glmath.MulScalar(g11, norm.W)

	n00 := glmath.Dot(g00, Vec2{X: fx.X, Y: fy.X})
	n10 := glmath.Dot(g10, Vec2{X: fx.Y, Y: fy.Y})
	n01 := glmath.Dot(g01, Vec2{X: fx.Z, Y: fy.Z})
	n11 := glmath.Dot(g11, Vec2{X: fx.W, Y: fy.W})

	fadeXY := fade(glmath.Swizzle2(Pf, swXY4))
	nx := glmath.MixScalar(Vec2{X: n00, Y: n01}, Vec2{X: n10, Y: n11}, fadeXY.X)
	nxy := glmath.Mixf(nx.X, nx.Y, fadeXY.Y)
	return 2.3 * nxy
}
