package glbuild_test

import (
	"math"
	"strings"
	"testing"

	"github.com/soypat/glproc/glbuild"
)

var (
	a = glbuild.Ident("a")
	b = glbuild.Ident("b")
	c = glbuild.Ident("c")
)

func TestRenderNode(t *testing.T) {
	f := glbuild.Float
	for _, test := range []struct {
		node glbuild.Node
		want string
	}{
		{node: f(1), want: "1.0"},
		{node: f(0.5), want: "0.5"},
		{node: f(-2), want: "-2.0"},
		{node: f(1e6), want: "1000000.0"},
		{node: glbuild.Int(3), want: "3"},
		{node: glbuild.Bool(true), want: "true"},
		{node: glbuild.Literal{Value: uint32(7)}, want: "7u"},
		{node: glbuild.Raw("gl_FragCoord"), want: "gl_FragCoord"},
		{node: glbuild.NewCall("dot", a, b), want: "dot(a, b)"},
		{node: glbuild.NewCall("f"), want: "f()"},
		{node: glbuild.Add(a, glbuild.Mul(b, c)), want: "a + b * c"},
		{node: glbuild.Mul(glbuild.Add(a, b), c), want: "(a + b) * c"},
		{node: glbuild.Sub(glbuild.Sub(a, b), c), want: "a - b - c"},
		{node: glbuild.Sub(a, glbuild.Sub(b, c)), want: "a - (b - c)"},
		{node: glbuild.Div(a, glbuild.Mul(b, c)), want: "a / (b * c)"},
		{node: glbuild.Mul(a, f(-1)), want: "a * -1.0"},
		{node: glbuild.Neg(a), want: "-a"},
		{node: glbuild.Neg(glbuild.Neg(a)), want: "-(-a)"},
		{node: glbuild.Neg(f(-1)), want: "-(-1.0)"},
		{node: glbuild.Neg(glbuild.Add(a, b)), want: "-(a + b)"},
		{node: glbuild.Binary(glbuild.Binary(a, "<", b), "&&", glbuild.Binary(b, "<", c)), want: "a < b && b < c"},
		{node: glbuild.Cond(glbuild.Binary(a, "<", b), a, b), want: "a < b ? a : b"},
		{node: glbuild.MustSwizzle(a, 3, "xy"), want: "a.xy"},
		{node: glbuild.MustSwizzle(glbuild.Add(a, b), 2, "yx"), want: "(a + b).yx"},
		{node: glbuild.MustSwizzle(glbuild.MustSwizzle(a, 4, "zw"), 2, "x"), want: "a.zw.x"},
		{node: glbuild.Field(a, "length"), want: "a.length"},
		{node: glbuild.At(a, glbuild.Int(2)), want: "a[2]"},
		{node: glbuild.Vec3(a, f(0), f(1)), want: "vec3(a, 0.0, 1.0)"},
		{node: glbuild.Assign(a, f(1)), want: "a = 1.0;"},
		{node: glbuild.Assign(glbuild.MustSwizzle(a, 3, "xy"), b), want: "a.xy = b;"},
		{node: glbuild.Decl("vec2", "p", nil), want: "vec2 p;"},
		{node: glbuild.Decl("float", "d", glbuild.NewCall("length", a)), want: "float d = length(a);"},
		{node: glbuild.Ret(nil), want: "return;"},
		{node: glbuild.Ret(a), want: "return a;"},
		{node: glbuild.NewBlock("", glbuild.Assign(a, f(1)), glbuild.Assign(b, f(2))), want: "a = 1.0;\nb = 2.0;"},
		{
			node: glbuild.Func("float", "sdf", []glbuild.Param{glbuild.P("vec2", "p"), glbuild.P("float", "r")},
				glbuild.Ret(glbuild.Sub(glbuild.NewCall("length", glbuild.Ident("p")), glbuild.Ident("r"))),
			),
			want: "float sdf(vec2 p, float r) {\n\treturn length(p) - r;\n}",
		},
	} {
		got := glbuild.RenderNode(test.node)
		if got != test.want {
			t.Errorf("%T: want %q, got %q", test.node, test.want, got)
		}
	}
}

func TestAppendFloat(t *testing.T) {
	for _, test := range []struct {
		v    float32
		want string
	}{
		{v: 0, want: "0.0"},
		{v: 3, want: "3.0"},
		{v: 0.1, want: "0.1"},
		{v: -0.25, want: "-0.25"},
		{v: 0.142857142857, want: "0.14285715"},
		{v: float32(math.NaN()), want: "(0.0/0.0)"},
		{v: float32(math.Inf(1)), want: "(1.0/0.0)"},
		{v: float32(math.Inf(-1)), want: "(-1.0/0.0)"},
	} {
		got := string(glbuild.AppendFloat(nil, test.v))
		if got != test.want {
			t.Errorf("AppendFloat(%v): want %q, got %q", test.v, test.want, got)
		}
	}
	got := string(glbuild.AppendFloats([]byte("vec3("), ',', 1, 2.5, -3))
	if got != "vec3(1.0,2.5,-3.0" {
		t.Errorf("AppendFloats: got %q", got)
	}
}

func TestSwizzleValidation(t *testing.T) {
	for _, test := range []struct {
		arity   int
		pattern string
		ok      bool
	}{
		{arity: 2, pattern: "xyxy", ok: true},
		{arity: 4, pattern: "wzyx", ok: true},
		{arity: 3, pattern: "rgb", ok: true},
		{arity: 2, pattern: "st", ok: true},
		{arity: 2, pattern: "xyz"},   // z out of range for vec2.
		{arity: 3, pattern: "xyzxy"}, // too long.
		{arity: 3, pattern: ""},
		{arity: 4, pattern: "xg"}, // mixed sets.
		{arity: 3, pattern: "xq"},
		{arity: 1, pattern: "x"},
	} {
		_, err := glbuild.NewSwizzle(a, test.arity, test.pattern)
		if (err == nil) != test.ok {
			t.Errorf("NewSwizzle(%d, %q): want ok=%v, got err=%v", test.arity, test.pattern, test.ok, err)
		}
	}
	_, err := glbuild.NewSwizzle(nil, 2, "x")
	if err == nil {
		t.Error("expected error for nil swizzle operand")
	}
}

func TestBuilderPanics(t *testing.T) {
	for name, fn := range map[string]func(){
		"binary op": func() { glbuild.Binary(a, "**", b) },
		"unary op":  func() { glbuild.NewUnary("*", a) },
		"nil arg":   func() { glbuild.NewCall("f", a, nil) },
		"nil stmt":  func() { glbuild.NewBlock("", nil) },
		"empty id":  func() { glbuild.Ident("") },
		"swizzle":   func() { glbuild.MustSwizzle(a, 2, "xyz") },
		// Swizzles not built through NewSwizzle never reach the output.
		"zero swizzle render": func() { glbuild.RenderNode(glbuild.Swizzle{X: a}) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected panic", name)
				}
			}()
			fn()
		}()
	}
}

func TestBuilderCopiesSlices(t *testing.T) {
	args := []glbuild.Node{a, b}
	call := glbuild.NewCall("f", args...)
	args[0] = c
	if got := glbuild.RenderNode(call); got != "f(a, b)" {
		t.Errorf("call modified through caller's slice: %q", got)
	}
}

func TestWalk(t *testing.T) {
	fn := glbuild.Func("float", "f", []glbuild.Param{glbuild.P("float", "x")},
		glbuild.Decl("float", "y", glbuild.Mul(glbuild.Ident("x"), glbuild.Float(2))),
		glbuild.Ret(glbuild.NewCall("abs", glbuild.Ident("y"))),
	)
	var visited []string
	glbuild.Walk(fn, func(n glbuild.Node) bool {
		switch n := n.(type) {
		case glbuild.Identifier:
			visited = append(visited, n.Name)
		case glbuild.Call:
			visited = append(visited, n.Name+"()")
		}
		return true
	})
	want := "x abs() y"
	if got := strings.Join(visited, " "); got != want {
		t.Errorf("walk order: want %q, got %q", want, got)
	}
	var count int
	completed := glbuild.Walk(fn, func(n glbuild.Node) bool {
		count++
		_, isIdent := n.(glbuild.Identifier)
		return !isIdent
	})
	if completed {
		t.Error("expected walk to report early stop")
	}
	// FunctionDef, Declare, BinaryOp, Identifier x.
	if count != 4 {
		t.Errorf("expected walk to stop after 4 nodes, visited %d", count)
	}
}
