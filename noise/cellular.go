package noise

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glproc/glmath"
)

const (
	cellularK      = 0.142857142857 // 1/7
	cellularKo     = 0.428571428571 // 1/2-K/2
	cellularJitter = 1.0
)

var (
	cellularOi = Vec3{X: -1, Y: 0, Z: 1}
	cellularOf = Vec3{X: -0.5, Y: 0.5, Z: 1.5}
)

// Cellular returns the distances to the closest and second closest feature points
// of a jittered 3x3 cell neighborhood around P (Worley noise, F1 and F2).
// The result satisfies X <= Y.
func Cellular(P Vec2) Vec2 {
	Pi := mod289(glmath.Floor(P))
	Pf := glmath.Fract(P)
	px := permute(glmath.AddScalar(cellularOi, Pi.X))
	d1 := cellularColumn(px.X+Pi.Y, Pf, 0.5)
	d2 := cellularColumn(px.Y+Pi.Y, Pf, -0.5)
	d3 := cellularColumn(px.Z+Pi.Y, Pf, -1.5)

	// Sort out the two smallest distances (F1, F2).
	d1a := glmath.Min(d1, d2)
	d2 = glmath.Max(d1, d2) // Swap to keep candidates for F2.
	d2 = glmath.Min(d2, d3) // Neither F1 nor F2 are now in d3.
	d1 = glmath.Min(d1a, d2)
	d2 = glmath.Max(d1a, d2)
	if !(d1.X < d1.Y) {
		d1.X, d1.Y = d1.Y, d1.X
	}
	if !(d1.X < d1.Z) {
		d1.X, d1.Z = d1.Z, d1.X // F1 is in d1.X.
	}
	d1yz := glmath.Min(glmath.Swizzle2(d1, swYZ), glmath.Swizzle2(d2, swYZ))
	d1.Y = math32.Min(d1yz.X, d1yz.Y)
	d1.Y = math32.Min(d1.Y, d2.X) // F2 is in d1.Y.
	return glmath.Sqrt(Vec2{X: d1.X, Y: d1.Y})
}

// cellularColumn returns the squared distances to the feature points of the three
// cells of a column. xoff is the horizontal offset from P to the column's cell centers.
func cellularColumn(hx float32, Pf Vec2, xoff float32) Vec3 {
	p := permute(glmath.AddScalar(cellularOi, hx))
	ox := glmath.SubScalar(glmath.Fract(glmath.MulScalar(p, cellularK)), cellularKo)
	oy := glmath.SubScalar(glmath.MulScalar(mod7(glmath.Floor(glmath.MulScalar(p, cellularK))), cellularK), cellularKo)
	dx := glmath.AddScalar(glmath.MulScalar(ox, cellularJitter), Pf.X+xoff)
	dy := glmath.Add(glmath.ScalarSub(Pf.Y, cellularOf), glmath.MulScalar(oy, cellularJitter))
	return glmath.Add(glmath.Mul(dx, dx), glmath.Mul(dy, dy))
}
