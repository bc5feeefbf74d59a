// Package glmath implements the float32 vector primitives of GLSL so that shader
// algorithms can be written once in Go and mirrored verbatim in generated shader code.
//
// All functions are pure and component-wise unless noted otherwise. Vec2 and Vec3
// are the geometry module's vectors so results interoperate with the rest of the stack.
package glmath

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

type (
	Vec2 = ms2.Vec
	Vec3 = ms3.Vec
)

// Vec4 is a 4 component float32 vector, equivalent to GLSL's vec4.
type Vec4 struct {
	X, Y, Z, W float32
}

// Vector is the constraint satisfied by the fixed-arity float vectors.
type Vector interface {
	Vec2 | Vec3 | Vec4
}

// Arity returns the amount of components of V.
func Arity[V Vector]() int {
	var z V
	switch any(z).(type) {
	case Vec2:
		return 2
	case Vec3:
		return 3
	}
	return 4
}

// Array returns the components of v. Unused trailing components are zero.
func Array[V Vector](v V) (arr [4]float32) {
	switch c := any(v).(type) {
	case Vec2:
		arr[0], arr[1] = c.X, c.Y
	case Vec3:
		arr[0], arr[1], arr[2] = c.X, c.Y, c.Z
	case Vec4:
		arr = [4]float32{c.X, c.Y, c.Z, c.W}
	}
	return arr
}

// FromArray builds a V from the first components of arr.
func FromArray[V Vector](arr [4]float32) V {
	var v V
	switch p := any(&v).(type) {
	case *Vec2:
		*p = Vec2{X: arr[0], Y: arr[1]}
	case *Vec3:
		*p = Vec3{X: arr[0], Y: arr[1], Z: arr[2]}
	case *Vec4:
		*p = Vec4{X: arr[0], Y: arr[1], Z: arr[2], W: arr[3]}
	}
	return v
}

// Splat returns a V with all components set to f, as in GLSL's vec3(f).
func Splat[V Vector](f float32) V {
	return FromArray[V]([4]float32{f, f, f, f})
}

func mapElem[V Vector](v V, fn func(float32) float32) V {
	arr := Array(v)
	for i, n := 0, Arity[V](); i < n; i++ {
		arr[i] = fn(arr[i])
	}
	return FromArray[V](arr)
}

func zipElem[V Vector](a, b V, fn func(x, y float32) float32) V {
	arra, arrb := Array(a), Array(b)
	for i, n := 0, Arity[V](); i < n; i++ {
		arra[i] = fn(arra[i], arrb[i])
	}
	return FromArray[V](arra)
}

// Add returns a+b.
func Add[V Vector](a, b V) V {
	switch va := any(a).(type) {
	case Vec2:
		return any(ms2.Add(va, any(b).(Vec2))).(V)
	case Vec3:
		return any(ms3.Add(va, any(b).(Vec3))).(V)
	}
	return zipElem(a, b, func(x, y float32) float32 { return x + y })
}

// Sub returns a-b.
func Sub[V Vector](a, b V) V {
	switch va := any(a).(type) {
	case Vec2:
		return any(ms2.Sub(va, any(b).(Vec2))).(V)
	case Vec3:
		return any(ms3.Sub(va, any(b).(Vec3))).(V)
	}
	return zipElem(a, b, func(x, y float32) float32 { return x - y })
}

// Mul returns the component-wise product of a and b (GLSL's a*b for vectors).
func Mul[V Vector](a, b V) V {
	switch va := any(a).(type) {
	case Vec2:
		return any(ms2.MulElem(va, any(b).(Vec2))).(V)
	case Vec3:
		return any(ms3.MulElem(va, any(b).(Vec3))).(V)
	}
	return zipElem(a, b, func(x, y float32) float32 { return x * y })
}

// Div returns the component-wise quotient a/b.
func Div[V Vector](a, b V) V {
	switch va := any(a).(type) {
	case Vec2:
		return any(ms2.DivElem(va, any(b).(Vec2))).(V)
	case Vec3:
		return any(ms3.DivElem(va, any(b).(Vec3))).(V)
	}
	return zipElem(a, b, func(x, y float32) float32 { return x / y })
}

// AddScalar returns v+f with f broadcast to every component.
func AddScalar[V Vector](v V, f float32) V {
	switch vv := any(v).(type) {
	case Vec2:
		return any(ms2.AddScalar(f, vv)).(V)
	case Vec3:
		return any(ms3.AddScalar(f, vv)).(V)
	}
	return mapElem(v, func(x float32) float32 { return x + f })
}

// SubScalar returns v-f with f broadcast to every component.
func SubScalar[V Vector](v V, f float32) V {
	return mapElem(v, func(x float32) float32 { return x - f })
}

// ScalarSub returns f-v with f broadcast to every component.
func ScalarSub[V Vector](f float32, v V) V {
	return mapElem(v, func(x float32) float32 { return f - x })
}

// MulScalar returns v scaled by f.
func MulScalar[V Vector](v V, f float32) V {
	switch vv := any(v).(type) {
	case Vec2:
		return any(ms2.Scale(f, vv)).(V)
	case Vec3:
		return any(ms3.Scale(f, vv)).(V)
	}
	return mapElem(v, func(x float32) float32 { return x * f })
}

// DivScalar returns v/f.
func DivScalar[V Vector](v V, f float32) V {
	return mapElem(v, func(x float32) float32 { return x / f })
}

// Dot returns the sum of the component products of a and b.
func Dot[V Vector](a, b V) float32 {
	switch va := any(a).(type) {
	case Vec2:
		return ms2.Dot(va, any(b).(Vec2))
	case Vec3:
		return ms3.Dot(va, any(b).(Vec3))
	}
	arra, arrb := Array(a), Array(b)
	return arra[0]*arrb[0] + arra[1]*arrb[1] + arra[2]*arrb[2] + arra[3]*arrb[3]
}

// Length returns the euclidean norm of v.
func Length[V Vector](v V) float32 {
	return math32.Sqrt(Dot(v, v))
}

// Floor returns the largest integers less than or equal to each component of v.
func Floor[V Vector](v V) V { return mapElem(v, math32.Floor) }

// Fract returns v-floor(v).
func Fract[V Vector](v V) V { return mapElem(v, Fractf) }

// Sqrt returns the square root of each component of v.
func Sqrt[V Vector](v V) V { return mapElem(v, math32.Sqrt) }

// Abs returns the absolute value of each component of v.
func Abs[V Vector](v V) V {
	switch vv := any(v).(type) {
	case Vec2:
		return any(ms2.AbsElem(vv)).(V)
	case Vec3:
		return any(ms3.AbsElem(vv)).(V)
	}
	return mapElem(v, math32.Abs)
}

// Min returns the component-wise minimum of a and b.
func Min[V Vector](a, b V) V {
	switch va := any(a).(type) {
	case Vec2:
		return any(ms2.MinElem(va, any(b).(Vec2))).(V)
	case Vec3:
		return any(ms3.MinElem(va, any(b).(Vec3))).(V)
	}
	return zipElem(a, b, minf)
}

// Max returns the component-wise maximum of a and b.
func Max[V Vector](a, b V) V {
	switch va := any(a).(type) {
	case Vec2:
		return any(ms2.MaxElem(va, any(b).(Vec2))).(V)
	case Vec3:
		return any(ms3.MaxElem(va, any(b).(Vec3))).(V)
	}
	return zipElem(a, b, maxf)
}

// MinScalar returns min(v, f) with f broadcast to every component.
func MinScalar[V Vector](v V, f float32) V {
	return mapElem(v, func(x float32) float32 { return minf(x, f) })
}

// MaxScalar returns max(v, f) with f broadcast to every component.
func MaxScalar[V Vector](v V, f float32) V {
	return mapElem(v, func(x float32) float32 { return maxf(x, f) })
}

// Mix linearly interpolates between x and y component-wise using a as weight: x*(1-a)+y*a.
func Mix[V Vector](x, y, a V) V {
	arrx, arry, arra := Array(x), Array(y), Array(a)
	for i, n := 0, Arity[V](); i < n; i++ {
		arrx[i] = Mixf(arrx[i], arry[i], arra[i])
	}
	return FromArray[V](arrx)
}

// MixScalar is [Mix] with a single interpolation weight for all components.
func MixScalar[V Vector](x, y V, a float32) V {
	return zipElem(x, y, func(x, y float32) float32 { return Mixf(x, y, a) })
}

// Step returns 0 for components of x less than edge and 1 otherwise.
func Step[V Vector](edge, x V) V {
	return zipElem(edge, x, func(e, x float32) float32 {
		if x < e {
			return 0
		}
		return 1
	})
}

// Mod returns v-m*floor(v/m) for every component, as GLSL's mod(v, m) with scalar m.
func Mod[V Vector](v V, m float32) V {
	return mapElem(v, func(x float32) float32 { return Modf(x, m) })
}

// Fractf returns x-floor(x).
func Fractf(x float32) float32 {
	return x - math32.Floor(x)
}

// Mixf returns x*(1-a)+y*a.
func Mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}

// Modf returns x-m*floor(x/m).
func Modf(x, m float32) float32 {
	return x - m*math32.Floor(x/m)
}

// minf and maxf follow the GLSL definitions min(x,y)=y<x?y:x and max(x,y)=x<y?y:x.
func minf(a, b float32) float32 {
	if b < a {
		return b
	}
	return a
}

func maxf(a, b float32) float32 {
	if a < b {
		return b
	}
	return a
}
