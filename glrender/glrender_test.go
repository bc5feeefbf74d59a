package glrender_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glproc/glbuild"
	"github.com/soypat/glproc/gleval"
	"github.com/soypat/glproc/glrender"
)

func TestImageRendererOrientation(t *testing.T) {
	// Kernel value is positive on the right half and top half.
	k, err := gleval.NewCPUKernel("quadrant", 2, func(p ms2.Vec, dst []float32) {
		dst[0], dst[1] = p.X, p.Y
	})
	if err != nil {
		t.Fatal(err)
	}
	ir, err := glrender.NewImageRenderer(128, glrender.RGBColorMap(-1, 1))
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	err = ir.Render(k, ms2.Box{Min: ms2.Vec{X: -1, Y: -1}, Max: ms2.Vec{X: 1, Y: 1}}, img, nil)
	if err != nil {
		t.Fatal(err)
	}
	topRight := img.RGBAAt(15, 0)
	bottomLeft := img.RGBAAt(0, 7)
	if topRight.R < 200 || topRight.G < 200 {
		t.Errorf("top right pixel should be bright, got %v", topRight)
	}
	if bottomLeft.R > 55 || bottomLeft.G > 55 {
		t.Errorf("bottom left pixel should be dark, got %v", bottomLeft)
	}
	if k.Evaluations() != 16*8 {
		t.Errorf("want one evaluation per pixel, got %d", k.Evaluations())
	}
}

func TestImageRendererErrors(t *testing.T) {
	if _, err := glrender.NewImageRenderer(10, nil); err == nil {
		t.Error("expected small buffer error")
	}
	ir, err := glrender.NewImageRenderer(100, nil)
	if err != nil {
		t.Fatal(err)
	}
	ks, _ := gleval.KernelByName("perlin")
	domain := ms2.Box{Max: ms2.Vec{X: 1, Y: 1}}
	err = ir.Render(ks.CPU(), domain, image.NewGray(image.Rect(0, 0, 200, 4)), nil)
	if err == nil {
		t.Error("expected image wider than buffer error")
	}
	err = ir.Render(ks.CPU(), ms2.Box{}, image.NewGray(image.Rect(0, 0, 4, 4)), nil)
	if err == nil {
		t.Error("expected empty domain error")
	}
	// Nil color map picks default for each kernel.
	err = ir.Render(ks.CPU(), domain, image.NewGray(image.Rect(0, 0, 4, 4)), nil)
	if err != nil {
		t.Error(err)
	}
}

func TestColorMaps(t *testing.T) {
	gray := glrender.GrayColorMap(-1, 1)
	for _, test := range []struct {
		v    float32
		want color.Color
	}{
		{v: -1, want: color.Gray{Y: 0}},
		{v: -5, want: color.Gray{Y: 0}},
		{v: 1, want: color.Gray{Y: 255}},
		{v: 0, want: color.Gray{Y: 128}},
		{v: math32.NaN(), want: color.RGBA{R: 255, A: 255}},
	} {
		got := gray([]float32{test.v})
		if got != test.want {
			t.Errorf("gray(%v): want %v, got %v", test.v, test.want, got)
		}
	}
	rgb := glrender.RGBColorMap(0, 1)
	got := rgb([]float32{1, 0.5, 0, 1})
	want := color.RGBA{R: 255, G: 128, B: 0, A: 255}
	if got != want {
		t.Errorf("rgb: want %v, got %v", want, got)
	}
	got = rgb([]float32{1})
	if got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("rgb single component: got %v", got)
	}

	grad := glrender.GradientColorMap(0, 1, color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255})
	if c := grad([]float32{0}); c != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("gradient start: got %v", c)
	}
	if c := grad([]float32{2}); c != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("gradient end: got %v", c)
	}
	// Red to blue takes the short path through magenta.
	mid := grad([]float32{0.5}).(color.RGBA)
	if mid.G != 0 || mid.R < 200 || mid.B < 200 {
		t.Errorf("gradient midpoint: got %v", mid)
	}
}

func TestCaptioner(t *testing.T) {
	c, err := glrender.NewCaptioner(glrender.CaptionConfig{Size: 14, Foreground: color.White, Background: color.Black})
	if err != nil {
		t.Fatal(err)
	}
	w, h := c.Measure("perlin")
	if w <= 0 || h <= 0 {
		t.Fatalf("bad caption size %dx%d", w, h)
	}
	wlong, _ := c.Measure("perlin noise")
	if wlong <= w {
		t.Errorf("longer text should measure wider: %d <= %d", wlong, w)
	}
	img := image.NewRGBA(image.Rect(0, 0, 128, 64))
	c.Draw(img, "perlin")
	var lit int
	for y := 0; y < 64; y++ {
		for x := 0; x < 128; x++ {
			if img.RGBAAt(x, y).R > 128 {
				if y < 64-h-8 {
					t.Fatalf("caption pixel outside bottom strip at (%d,%d)", x, y)
				}
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("caption drew no pixels")
	}
	if _, err := glrender.NewCaptioner(glrender.CaptionConfig{TTF: []byte("not a font")}); err == nil {
		t.Error("expected font parse error")
	}
}

func TestPreviewProgram(t *testing.T) {
	prog, globals, err := glrender.PreviewProgram("perlin")
	if err != nil {
		t.Fatal(err)
	}
	const wantMain = `void main() {
	vec2 p = (gl_FragCoord.xy - uResolution * 0.5) * uScale + uOffset;
	float v = perlin(p);
	fragColor = vec4(vec3(clamp((v + 1.0) * 0.5, 0.0, 1.0)), 1.0);
}`
	src := prog.Render()
	if !strings.HasSuffix(src, wantMain) {
		t.Errorf("unexpected preview main:\n%s", src)
	}
	var names []string
	for _, def := range prog.Defs() {
		names = append(names, def.Name)
	}
	if got := strings.Join(names, ","); got != "mod289v4,permutev4,taylorInvSqrtv4,fadev2,perlin" {
		t.Errorf("unexpected preview definitions %s", got)
	}
	if got := strings.Join(prog.EnvMembers(), ","); got != "uResolution,uScale,uOffset" {
		t.Errorf("unexpected uniforms %s", got)
	}
	var globalNames []string
	for _, g := range globals {
		globalNames = append(globalNames, g.Name)
	}
	if err := glbuild.Validate(prog, globalNames...); err != nil {
		t.Error(err)
	}
	var buf bytes.Buffer
	_, err = glbuild.NewDefaultProgrammer().WriteFragment(&buf, prog, globals...)
	if err != nil {
		t.Fatal(err)
	}
	const wantHeader = "#version 430\nuniform vec2 uResolution;\nuniform float uScale;\nuniform vec2 uOffset;\nout vec4 fragColor;\n\n"
	if !strings.HasPrefix(buf.String(), wantHeader) {
		t.Errorf("unexpected fragment header:\n%s", buf.String())
	}

	for _, ks := range gleval.Kernels() {
		prog, globals, err := glrender.PreviewProgram(ks.Name)
		if err != nil {
			t.Fatalf("%s: %v", ks.Name, err)
		}
		globalNames = globalNames[:0]
		for _, g := range globals {
			globalNames = append(globalNames, g.Name)
		}
		if err := glbuild.Validate(prog, globalNames...); err != nil {
			t.Errorf("%s: %v", ks.Name, err)
		}
	}
	if _, _, err := glrender.PreviewProgram("worley"); err == nil {
		t.Error("expected unknown kernel error")
	}
}

func TestWritePNG(t *testing.T) {
	ks, err := gleval.KernelByName("white")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	cfg := glrender.PNGConfig{
		Width:   96,
		Height:  48,
		Domain:  ms2.Box{Min: ms2.Vec{X: -4, Y: -2}, Max: ms2.Vec{X: 4, Y: 2}},
		Caption: "white",
	}
	err = glrender.WritePNG(&buf, ks.CPU(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 96, 48) {
		t.Errorf("unexpected image bounds %v", img.Bounds())
	}
	// Caption strip is drawn over the bottom left corner.
	r, g, b, _ := img.At(1, 47).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("expected caption background at bottom left corner, got %v", img.At(1, 47))
	}
	cfg.Width = 0
	if err := glrender.WritePNG(&buf, ks.CPU(), cfg, nil); err == nil {
		t.Error("expected invalid dimensions error")
	}
}
