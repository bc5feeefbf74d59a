// Command glnoise prints GLSL noise kernels and renders them to images or a live GPU preview.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glproc/glbuild"
	"github.com/soypat/glproc/glbuild/glsllib"
	"github.com/soypat/glproc/gleval"
	"github.com/soypat/glproc/glrender"
)

func init() {
	runtime.LockOSThread()
}

type config struct {
	kernel    string
	glsl      bool
	compute   bool
	png       string
	size      int
	scale     float64
	window    bool
	useGPU    bool
	invocX    int
	noCaption bool
	colors    string
}

func main() {
	cfg := config{
		kernel: "perlin",
		size:   512,
		scale:  8,
		invocX: 32,
		colors: "default",
	}
	flag.StringVar(&cfg.kernel, "kernel", cfg.kernel, "Noise kernel: "+strings.Join(glsllib.KernelNames(), ", "))
	flag.BoolVar(&cfg.glsl, "glsl", cfg.glsl, "Print kernel program GLSL source")
	flag.BoolVar(&cfg.compute, "compute", cfg.compute, "Print kernel compute shader in glgl combined format")
	flag.StringVar(&cfg.png, "png", cfg.png, "Render kernel to PNG file")
	flag.IntVar(&cfg.size, "size", cfg.size, "Image or window size in pixels")
	flag.Float64Var(&cfg.scale, "scale", cfg.scale, "Kernel domain width spanned by the image")
	flag.BoolVar(&cfg.window, "window", cfg.window, "Open live GPU preview window (requires cgo)")
	flag.BoolVar(&cfg.useGPU, "gpu", cfg.useGPU, "Evaluate PNG render on the GPU (requires cgo)")
	flag.IntVar(&cfg.invocX, "invoc", cfg.invocX, "Compute shader local work group size")
	flag.BoolVar(&cfg.noCaption, "nocaption", cfg.noCaption, "Omit caption on rendered PNG")
	flag.StringVar(&cfg.colors, "colors", cfg.colors, "PNG color scheme: default, gray, rgb, heat")
	flag.Parse()
	err := run(cfg)
	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) error {
	ks, err := gleval.KernelByName(cfg.kernel)
	if err != nil {
		return err
	}
	if cfg.size <= 0 || cfg.scale <= 0 {
		return errors.New("size and scale must be positive")
	} else if cfg.invocX < 1 {
		return errors.New("compute invocation size must be positive")
	}
	if !cfg.glsl && !cfg.compute && cfg.png == "" && !cfg.window {
		cfg.glsl = true
	}
	prog, err := ks.Program()
	if err != nil {
		return err
	}
	programmer := glbuild.NewDefaultProgrammer()
	programmer.SetComputeInvocations(cfg.invocX, 1, 1)
	if cfg.glsl {
		fmt.Println(prog.Render())
	}
	if cfg.compute {
		var buf bytes.Buffer
		_, _, err = programmer.WriteCompute(&buf, prog)
		if err != nil {
			return err
		}
		fmt.Print(buf.String())
	}
	if cfg.png != "" {
		err = renderPNG(cfg, ks, programmer)
		if err != nil {
			return err
		}
	}
	if cfg.window {
		return ui(ks, cfg)
	}
	return nil
}

func renderPNG(cfg config, ks gleval.KernelSpec, programmer *glbuild.Programmer) error {
	colors, err := colorMap(cfg.colors, ks.Components)
	if err != nil {
		return err
	}
	var k gleval.Kernel = ks.CPU()
	if cfg.useGPU {
		term, err := gleval.Init1x1GLFW()
		if err != nil {
			return err
		}
		defer term()
		prog, err := ks.Program()
		if err != nil {
			return err
		}
		gpu, err := gleval.NewComputeGPUKernel(programmer, prog)
		if err != nil {
			return err
		}
		defer gpu.Delete()
		k = gpu
	} else {
		fmt.Println("GPU usage not enabled (-gpu flag). Enable for faster rendering")
	}
	half := float32(cfg.scale) / 2
	pngCfg := glrender.PNGConfig{
		Colors: colors,
		Width:  cfg.size,
		Height: cfg.size,
		Domain: ms2.Box{Min: ms2.Vec{X: -half, Y: -half}, Max: ms2.Vec{X: half, Y: half}},
	}
	if !cfg.noCaption {
		pngCfg.Caption = fmt.Sprintf("%s  scale=%g", ks.Name, cfg.scale)
	}
	fp, err := os.Create(cfg.png)
	if err != nil {
		return err
	}
	defer fp.Close()
	start := time.Now()
	err = glrender.WritePNG(fp, k, pngCfg, nil)
	if err != nil {
		return err
	}
	fmt.Println("PNG file rendered to", cfg.png, "in", time.Since(start))
	return fp.Close()
}

// colorMap returns the named color scheme for a kernel returning components values.
// Single component kernels span [-1, 1], the rest [0, 1]. The default scheme is nil.
func colorMap(name string, components int) (glrender.ColorMap, error) {
	lo, hi := float32(0), float32(1)
	if components == 1 {
		lo = -1
	}
	switch name {
	case "default":
		return nil, nil
	case "gray":
		return glrender.GrayColorMap(lo, hi), nil
	case "rgb":
		return glrender.RGBColorMap(lo, hi), nil
	case "heat":
		return glrender.GradientColorMap(lo, hi, color.RGBA{B: 255, A: 255}, color.RGBA{R: 255, A: 255}), nil
	}
	return nil, fmt.Errorf("unknown color scheme %q", name)
}
