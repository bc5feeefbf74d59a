package glbuild_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/soypat/glproc/glbuild"
	"github.com/soypat/glproc/glmath"
)

func retFloatFunc(name string, value glbuild.Node) glbuild.FunctionDef {
	return glbuild.Func("float", name, []glbuild.Param{glbuild.P("vec2", "p")}, glbuild.Ret(value))
}

func p() glbuild.Identifier { return glbuild.Ident("p") }

func TestProgramRender(t *testing.T) {
	sq := retFloatFunc("sq", glbuild.NewCall("dot", p(), p()))
	circle := retFloatFunc("circle", glbuild.Sub(glbuild.NewCall("sqrt", glbuild.NewCall("sq", p())), glbuild.Float(1)))
	main := retFloatFunc("scene", glbuild.NewCall("circle", p()))
	prog, err := glbuild.NewProgram(main, sq, circle)
	if err != nil {
		t.Fatal(err)
	}
	const want = `float sq(vec2 p) {
	return dot(p, p);
}
float circle(vec2 p) {
	return sqrt(sq(p)) - 1.0;
}
float scene(vec2 p) {
	return circle(p);
}`
	got := prog.Render()
	if got != want {
		t.Fatalf("want\n%s\ngot\n%s", want, got)
	}
	if again := prog.Render(); again != got {
		t.Error("render not deterministic")
	}
	if strings.TrimSpace(got) != got {
		t.Error("render not trimmed")
	}
	// AppendRender must leave existing content untouched.
	dst := prog.AppendRender([]byte("// header\n"))
	if string(dst) != "// header\n"+want {
		t.Errorf("append render mismatch:\n%s", dst)
	}
}

func TestProgramRenderTrims(t *testing.T) {
	prog := glbuild.MustProgram(glbuild.Raw("\n\n\tfoo();\n  "))
	if got := prog.Render(); got != "foo();" {
		t.Errorf("expected trimmed render, got %q", got)
	}
	if got := glbuild.MustProgram(glbuild.Raw(prog.Render())).Render(); got != "foo();" {
		t.Errorf("trim not idempotent, got %q", got)
	}
}

func TestProgramEnvironment(t *testing.T) {
	const env = "env"
	brightness := glbuild.Func("float", "brightness", nil,
		glbuild.Ret(glbuild.Mul(glbuild.Env(env, "gain"), glbuild.Float(2))),
	)
	main := glbuild.Func("void", "main", nil,
		glbuild.NewBlock(env,
			glbuild.Decl("float", "envelope", glbuild.NewCall("brightness")),
			glbuild.Assign(glbuild.Ident("fragColor"), glbuild.Vec4(
				glbuild.Env(env, "tint"), glbuild.Ident("envelope"), glbuild.Float(0), glbuild.Float(1),
			)),
			glbuild.Assign(glbuild.Ident("uv"), glbuild.MustSwizzle(glbuild.Ident(env), 2, "xy")),
			glbuild.NewCall("use", glbuild.Ident(env)),
		),
	)
	prog := glbuild.MustProgram(main, brightness)
	if prog.Env() != env {
		t.Fatalf("want env %q, got %q", env, prog.Env())
	}
	const want = `float brightness() {
	return gain * 2.0;
}
void main() {
	float envelope = brightness();
	fragColor = vec4(tint, envelope, 0.0, 1.0);
	uv = xy;
	use();
}`
	got := prog.Render()
	if got != want {
		t.Fatalf("want\n%s\ngot\n%s", want, got)
	}
	if strings.Contains(got, "env.") {
		t.Error("environment qualifier not flattened")
	}
	members := prog.EnvMembers()
	if strings.Join(members, ",") != "gain,tint,xy" {
		t.Errorf("unexpected env members %q", members)
	}

	noEnv := glbuild.MustProgram(glbuild.Field(glbuild.Ident("s"), "m"))
	if noEnv.Env() != "" || noEnv.Render() != "s.m" {
		t.Errorf("unexpected member flattening without environment: %q", noEnv.Render())
	}
	if noEnv.EnvMembers() != nil {
		t.Error("expected no env members")
	}
}

func TestProgramFirstEnvironmentWins(t *testing.T) {
	main := glbuild.NewBlock("",
		glbuild.NewBlock("first", glbuild.Assign(glbuild.Env("first", "a"), glbuild.Float(1))),
		glbuild.NewBlock("second", glbuild.Assign(glbuild.Env("second", "b"), glbuild.Float(2))),
	)
	prog := glbuild.MustProgram(main)
	if prog.Env() != "first" {
		t.Fatalf("want first env, got %q", prog.Env())
	}
	if got := prog.Render(); got != "a = 1.0;\nsecond.b = 2.0;" {
		t.Errorf("unexpected render %q", got)
	}
}

func TestNewProgramErrors(t *testing.T) {
	f := retFloatFunc("f", p())
	if _, err := glbuild.NewProgram(nil); err == nil {
		t.Error("expected error for nil main")
	}
	if _, err := glbuild.NewProgram(p(), f, f); err == nil {
		t.Error("expected error for duplicate definitions")
	}
	if _, err := glbuild.NewProgram(f, f); err == nil {
		t.Error("expected error for definition named as main")
	}
	if _, err := glbuild.NewProgram(p(), glbuild.FunctionDef{}); err == nil {
		t.Error("expected error for unnamed definition")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected MustProgram panic")
		}
	}()
	glbuild.MustProgram(nil)
}

func TestProgramFindExists(t *testing.T) {
	first := retFloatFunc("first", glbuild.NewCall("floor", glbuild.Float(1)))
	second := retFloatFunc("second", glbuild.NewCall("floor", glbuild.Float(2)))
	main := retFloatFunc("main2", glbuild.NewCall("floor", glbuild.Float(3)))
	prog := glbuild.MustProgram(main, first, second)

	isFloor := func(n glbuild.Node) bool {
		call, ok := n.(glbuild.Call)
		return ok && call.Name == "floor"
	}
	found, ok := prog.Find(isFloor)
	if !ok {
		t.Fatal("floor call not found")
	}
	arg := found.(glbuild.Call).Args[0].(glbuild.Literal)
	if arg.Value != float32(1) {
		t.Errorf("expected first definition's call to be found first, got argument %v", arg.Value)
	}
	if !prog.Exists(isFloor) {
		t.Error("exists returned false")
	}
	if prog.Exists(func(n glbuild.Node) bool { _, ok := n.(glbuild.Ternary); return ok }) {
		t.Error("exists found absent node")
	}
	var visits int
	prog.Exists(func(n glbuild.Node) bool {
		visits++
		return true
	})
	if visits != 1 {
		t.Errorf("exists must stop at first match, visited %d nodes", visits)
	}
	if _, ok := prog.Def("main2"); !ok {
		t.Error("main definition not found by Def")
	}
	if _, ok := prog.Def("third"); ok {
		t.Error("found nonexistent def")
	}
}

func TestProgramOwnsDefinitions(t *testing.T) {
	helperBody := []glbuild.Node{glbuild.Ret(glbuild.Float(1))}
	mainBody := []glbuild.Node{glbuild.Ret(glbuild.NewCall("helper", glbuild.Float(2)))}
	helper := glbuild.FunctionDef{Name: "helper", ReturnType: "float", Body: helperBody}
	main := glbuild.FunctionDef{Name: "scene", ReturnType: "float", Body: mainBody}
	prog := glbuild.MustProgram(main, helper)
	const want = `float helper() {
	return 1.0;
}
float scene() {
	return helper(2.0);
}`
	check := func(step string) {
		t.Helper()
		if got := prog.Render(); got != want {
			t.Fatalf("program modified through %s:\n%s", step, got)
		}
	}
	check("construction")
	helperBody[0] = glbuild.Ret(glbuild.Float(9))
	mainBody[0] = glbuild.Ret(glbuild.Float(9))
	check("constructor arguments")

	prog.Defs()[0].Body[0] = glbuild.Ret(glbuild.Float(42))
	check("Defs")
	prog.Main().(glbuild.FunctionDef).Body[0] = glbuild.Ret(glbuild.Float(7))
	check("Main")
	def, ok := prog.Def("helper")
	if !ok {
		t.Fatal("helper not found")
	}
	def.Body[0] = glbuild.Ret(glbuild.Float(3))
	check("Def")
	found, ok := prog.Find(func(n glbuild.Node) bool {
		call, ok := n.(glbuild.Call)
		return ok && call.Name == "helper"
	})
	if !ok {
		t.Fatal("helper call not found")
	}
	found.(glbuild.Call).Args[0] = glbuild.Float(5)
	check("Find")

	pruned := prog.Prune()
	pruned.Defs()[0].Body[0] = glbuild.Ret(glbuild.Float(6))
	check("Prune")
	included, err := prog.Include(retFloatFunc("extra", glbuild.Float(0)))
	if err != nil {
		t.Fatal(err)
	}
	included.Main().(glbuild.FunctionDef).Body[0] = glbuild.Ret(glbuild.Float(8))
	check("Include")
}

func TestProgramPrune(t *testing.T) {
	c := retFloatFunc("c", p())
	unused := retFloatFunc("unused", glbuild.NewCall("c", p()))
	b := retFloatFunc("b", glbuild.NewCall("c", p()))
	main := retFloatFunc("main2", glbuild.NewCall("b", p()))
	prog := glbuild.MustProgram(main, c, unused, b)
	pruned := prog.Prune()
	var names []string
	for _, def := range pruned.Defs() {
		names = append(names, def.Name)
	}
	if strings.Join(names, ",") != "c,b" {
		t.Errorf("want pruned defs c,b got %v", names)
	}
	if len(prog.Defs()) != 3 {
		t.Error("prune modified original program")
	}
	if !strings.Contains(prog.Render(), "unused") {
		t.Error("render must emit unused definitions")
	}
}

func TestProgramInclude(t *testing.T) {
	helper := retFloatFunc("helper", glbuild.NewCall("length", p()))
	main := retFloatFunc("main2", glbuild.NewCall("helper", p()))
	prog := glbuild.MustProgram(main, helper)

	same, err := prog.Include(retFloatFunc("helper", glbuild.NewCall("length", p())))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(same.Render(), "float helper(vec2 p)"); n != 1 {
		t.Errorf("want one helper declaration, got %d", n)
	}
	_, err = prog.Include(retFloatFunc("helper", glbuild.NewCall("abs", glbuild.MustSwizzle(p(), 2, "x"))))
	if err == nil {
		t.Error("expected conflicting definition error")
	}

	extra := retFloatFunc("extra", p())
	included, err := prog.Include(extra)
	if err != nil {
		t.Fatal(err)
	}
	defs := included.Defs()
	if len(defs) != 2 || defs[0].Name != "extra" {
		t.Errorf("included definitions must come first, got %v", defs)
	}
}

func TestMergeDefs(t *testing.T) {
	x := retFloatFunc("x", p())
	y := retFloatFunc("y", p())
	merged, err := glbuild.MergeDefs([]glbuild.FunctionDef{x, y}, []glbuild.FunctionDef{y, x})
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 2 {
		t.Errorf("want 2 merged defs, got %d", len(merged))
	}
	_, err = glbuild.MergeDefs([]glbuild.FunctionDef{{ReturnType: "float"}})
	if err == nil {
		t.Error("expected unnamed definition error")
	}
}

func TestWriteCompute(t *testing.T) {
	kernel := glbuild.Func("vec3", "kern", []glbuild.Param{glbuild.P("vec2", "p")},
		glbuild.Ret(glbuild.Vec3(glbuild.MustSwizzle(p(), 2, "x"), glbuild.MustSwizzle(p(), 2, "y"), glbuild.Float(0))),
	)
	prog := glbuild.MustProgram(kernel)
	programmer := glbuild.NewDefaultProgrammer()
	programmer.SetComputeInvocations(64, 1, 1)
	var buf bytes.Buffer
	n, components, err := programmer.WriteCompute(&buf, prog)
	if err != nil {
		t.Fatal(err)
	} else if n != buf.Len() {
		t.Fatal("written length mismatch")
	} else if components != 3 {
		t.Fatalf("want 3 components, got %d", components)
	}
	src := buf.String()
	for _, want := range []string{
		"#shader compute\n#version 430\n",
		"vec3 kern(vec2 p) {\n\treturn vec3(p.x, p.y, 0.0);\n}",
		"layout(local_size_x = 64, local_size_y = 1, local_size_z = 1) in;",
		"vec3 r = kern(vbo_positions[idx]);",
		"vbo_results[idx*3+0] = r.x;",
		"vbo_results[idx*3+2] = r.z;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("compute source missing %q:\n%s", want, src)
		}
	}
	if x, y, z := programmer.ComputeInvocations(); x != 64 || y != 1 || z != 1 {
		t.Error("unexpected invocations", x, y, z)
	}

	for _, bad := range []glbuild.Node{
		p(),
		glbuild.Func("int", "k", []glbuild.Param{glbuild.P("vec2", "p")}, glbuild.Ret(glbuild.Int(1))),
		glbuild.Func("float", "k", []glbuild.Param{glbuild.P("vec3", "p")}, glbuild.Ret(glbuild.Float(1))),
	} {
		_, _, err = programmer.WriteCompute(&buf, glbuild.MustProgram(bad))
		if err == nil {
			t.Errorf("expected error for kernel %s", glbuild.RenderNode(bad))
		}
	}
}

func TestWriteFragment(t *testing.T) {
	main := glbuild.Func("void", "main", nil,
		glbuild.NewBlock("u",
			glbuild.Assign(glbuild.Ident("fragColor"), glbuild.Vec4(glbuild.Env("u", "scale"), glbuild.Float(0), glbuild.Float(0), glbuild.Float(1))),
		),
	)
	prog := glbuild.MustProgram(main)
	scale, err := glbuild.Uniform("scale", float32(1))
	if err != nil {
		t.Fatal(err)
	}
	out := glbuild.Global{Qualifier: "out", Type: "vec4", Name: "fragColor"}
	var buf bytes.Buffer
	programmer := glbuild.NewDefaultProgrammer()
	_, err = programmer.WriteFragment(&buf, prog, scale, out)
	if err != nil {
		t.Fatal(err)
	}
	const want = "#version 430\nuniform float scale;\nout vec4 fragColor;\n\nvoid main() {\n\tfragColor = vec4(scale, 0.0, 0.0, 1.0);\n}\n"
	if buf.String() != want {
		t.Errorf("want\n%s\ngot\n%s", want, buf.String())
	}
	_, err = programmer.WriteFragment(&buf, prog, out)
	if err == nil {
		t.Error("expected error for undeclared environment member")
	}
	_, err = programmer.WriteFragment(&buf, glbuild.MustProgram(retFloatFunc("main", p())))
	if err == nil {
		t.Error("expected error for non-void main")
	}
}

func TestUniformTypes(t *testing.T) {
	for _, test := range []struct {
		v    any
		want string
	}{
		{v: float32(0), want: "float"},
		{v: glmath.Vec2{}, want: "vec2"},
		{v: glmath.Vec3{}, want: "vec3"},
		{v: glmath.Vec4{}, want: "vec4"},
		{v: int32(0), want: "int"},
		{v: uint32(0), want: "uint"},
		{v: true, want: "bool"},
		{v: [2]int32{}, want: "ivec2"},
	} {
		g, err := glbuild.Uniform("u", test.v)
		if err != nil {
			t.Error(err)
			continue
		}
		if g.Type != test.want || g.Qualifier != "uniform" {
			t.Errorf("%T: want uniform %s, got %s %s", test.v, test.want, g.Qualifier, g.Type)
		}
	}
	if _, err := glbuild.Uniform("u", "string"); err == nil {
		t.Error("expected error for unsupported uniform type")
	}
}

func TestValidate(t *testing.T) {
	valid := glbuild.MustProgram(
		retFloatFunc("main2", glbuild.NewCall("helper", p())),
		retFloatFunc("helper", glbuild.NewCall("length", p())),
	)
	if err := glbuild.Validate(valid); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
	for name, test := range map[string]struct {
		prog    glbuild.Program
		globals []string
		wantErr string
	}{
		"undefined call": {
			prog:    glbuild.MustProgram(retFloatFunc("f", glbuild.NewCall("missing", p()))),
			wantErr: `"missing"`,
		},
		"use before definition": {
			prog: glbuild.MustProgram(p(),
				retFloatFunc("a", glbuild.NewCall("b", p())),
				retFloatFunc("b", p()),
			),
			wantErr: `call to undefined function "b"`,
		},
		"reserved def": {
			prog:    glbuild.MustProgram(retFloatFunc("sample", p())),
			wantErr: "reserved",
		},
		"builtin shadow": {
			prog:    glbuild.MustProgram(retFloatFunc("length", p())),
			wantErr: "shadows",
		},
		"undeclared": {
			prog:    glbuild.MustProgram(retFloatFunc("f", glbuild.Ident("q"))),
			wantErr: `undeclared identifier "q"`,
		},
		"declared after use": {
			prog: glbuild.MustProgram(glbuild.Func("float", "f", nil,
				glbuild.Assign(glbuild.Ident("x"), glbuild.Float(1)),
				glbuild.Decl("float", "x", nil),
				glbuild.Ret(glbuild.Ident("x")),
			)),
			wantErr: `undeclared identifier "x"`,
		},
		"redeclaration": {
			prog: glbuild.MustProgram(glbuild.Func("float", "f", nil,
				glbuild.Decl("float", "x", nil),
				glbuild.Decl("float", "x", nil),
				glbuild.Ret(glbuild.Ident("x")),
			)),
			wantErr: "redeclaration",
		},
		"missing global": {
			prog:    glbuild.MustProgram(retFloatFunc("f", glbuild.Mul(p(), glbuild.Ident("uScale")))),
			globals: []string{"uOther"},
			wantErr: "uScale",
		},
	} {
		err := glbuild.Validate(test.prog, test.globals...)
		if err == nil {
			t.Errorf("%s: expected error", name)
		} else if !strings.Contains(err.Error(), test.wantErr) {
			t.Errorf("%s: want error containing %q, got %v", name, test.wantErr, err)
		}
	}

	withGlobal := glbuild.MustProgram(retFloatFunc("f", glbuild.Mul(glbuild.NewCall("length", p()), glbuild.Ident("uScale"))))
	if err := glbuild.Validate(withGlobal, "uScale"); err != nil {
		t.Error(err)
	}
	env := glbuild.MustProgram(glbuild.Func("void", "main", nil,
		glbuild.NewBlock("env", glbuild.Assign(glbuild.Env("env", "out0"), glbuild.Env("env", "in0"))),
	))
	if err := glbuild.Validate(env); err != nil {
		t.Errorf("environment members must validate: %v", err)
	}
	var joined interface{ Unwrap() []error }
	err := glbuild.Validate(glbuild.MustProgram(retFloatFunc("f", glbuild.Add(glbuild.Ident("q1"), glbuild.Ident("q2")))))
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 2 {
		t.Errorf("expected two joined errors, got %v", err)
	}
}
