package noise_test

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glproc/noise"
)

const tol = 1e-4

// White noise multiplies values near 1e4 before taking the fractional part, so
// a single rounding step is already on the order of 1e-3.
const whiteTol = 2e-3

var goldenPoints = []noise.Vec2{
	{X: 0, Y: 0},
	{X: 0.5, Y: 0.5},
	{X: 3.1, Y: -2.7},
	{X: -7.25, Y: 12.5},
	{X: 100.3, Y: -41.9},
}

func TestCellularGolden(t *testing.T) {
	want := []noise.Vec2{
		{X: 0.416496664, Y: 0.70710659},
		{X: 0.58901459, Y: 0.589014947},
		{X: 0.0638878793, Y: 0.325764716},
		{X: 0.485765755, Y: 0.678571939},
		{X: 0.409082741, Y: 0.632452428},
	}
	for i, p := range goldenPoints {
		got := noise.Cellular(p)
		if !closeTo(got.X, want[i].X, tol) || !closeTo(got.Y, want[i].Y, tol) {
			t.Errorf("cellular(%v): want %v, got %v", p, want[i], got)
		}
	}
}

func TestPerlinGolden(t *testing.T) {
	want := []float32{0, 0.391085684, 0.579234362, 0.74782896, 0.115332432}
	for i, p := range goldenPoints {
		got := noise.Perlin(p)
		if !closeTo(got, want[i], tol) {
			t.Errorf("perlin(%v): want %v, got %v", p, want[i], got)
		}
	}
}

func TestGradientGolden(t *testing.T) {
	want := []noise.Vec3{
		{X: 0, Y: -0.18153578, Z: -0.0540787578},
		{X: -0.062348485, Y: -0.107368529, Z: -0.204298601},
		{X: -0.134005889, Y: -0.538132846, Z: -0.460616678},
		{X: -0.0389095768, Y: -0.729055047, Z: 0.461638749},
		{X: -0.338447928, Y: -0.862895429, Z: -0.312902629},
	}
	for i, p := range goldenPoints {
		got := noise.Gradient(p)
		if !closeTo(got.X, want[i].X, tol) || !closeTo(got.Y, want[i].Y, tol) || !closeTo(got.Z, want[i].Z, tol) {
			t.Errorf("gradient(%v): want %v, got %v", p, want[i], got)
		}
	}
}

func TestSimplexGolden(t *testing.T) {
	want := []float32{0, 0.151514113, 0.581713736, -0.0283454135, 0.134983435}
	for i, p := range goldenPoints {
		got := noise.Simplex(p)
		if !closeTo(got, want[i], tol) {
			t.Errorf("simplex(%v): want %v, got %v", p, want[i], got)
		}
	}
}

func TestWhiteGolden(t *testing.T) {
	want := []noise.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.558349609, Y: 0.654785156, Z: 0.325927734},
		{X: 0.958129883, Y: 0.458984375, Z: 0.384155273},
		{X: 0.341796875, Y: 0.0270996094, Z: 0.181762695},
		{X: 0.244567871, Y: 0.0196533203, Z: 0.40222168},
	}
	for i, p := range goldenPoints {
		got := noise.White(p)
		if !closeTo(got.X, want[i].X, whiteTol) || !closeTo(got.Y, want[i].Y, whiteTol) || !closeTo(got.Z, want[i].Z, whiteTol) {
			t.Errorf("white(%v): want %v, got %v", p, want[i], got)
		}
	}
}

func TestGradientAtLatticePoint(t *testing.T) {
	// At integer points the value is zero and the derivative is the corner gradient.
	for _, p := range []noise.Vec2{{X: 0, Y: 0}, {X: 3, Y: -5}, {X: -11, Y: 7}} {
		got := noise.Gradient(p)
		if got.X != 0 {
			t.Errorf("gradient(%v) value: want 0, got %v", p, got.X)
		}
		if got.Y < -1 || got.Y > 1 || got.Z < -1 || got.Z > 1 {
			t.Errorf("gradient(%v) derivative outside [-1,1]²: %v", p, got)
		}
	}
}

func TestKernelProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		p := noise.Vec2{X: (rng.Float32() - 0.5) * 200, Y: (rng.Float32() - 0.5) * 200}

		cell := noise.Cellular(p)
		if !(cell.X <= cell.Y) || cell.X < 0 || math32.IsNaN(cell.Y) {
			t.Fatalf("cellular(%v) = %v: want 0 <= F1 <= F2", p, cell)
		}
		white := noise.White(p)
		for _, c := range []float32{white.X, white.Y, white.Z} {
			if c < 0 || c >= 1 {
				t.Fatalf("white(%v) = %v: components must lie in [0,1)", p, white)
			}
		}
		for name, v := range map[string]float32{"perlin": noise.Perlin(p), "simplex": noise.Simplex(p)} {
			if math32.IsNaN(v) || math32.Abs(v) > 1.5 {
				t.Fatalf("%s(%v) = %v out of expected range", name, p, v)
			}
		}
		if noise.Simplex(p) != noise.Simplex(p) || noise.Cellular(p) != noise.Cellular(p) {
			t.Fatal("kernels not deterministic")
		}
	}
}

func closeTo(got, want, tol float32) bool {
	return math32.Abs(got-want) <= tol
}
