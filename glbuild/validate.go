package glbuild

import (
	"errors"
	"fmt"
	"strings"
)

// Validate is an optional semantic pass over prog. Rendering never validates; Validate
// catches defects the GLSL compiler would otherwise report much later:
//   - calls to functions that are neither GLSL built-ins, constructors nor defined before use.
//   - definitions, parameters or locals named after GLSL reserved words or built-in functions.
//   - identifiers used before declaration within a function.
//
// globals names the program-scope variables (uniforms, shader inputs) the program may reference.
// Members of the program's environment block are assumed to be declared externally.
// All defects found are returned joined by [errors.Join].
func Validate(prog Program, globals ...string) error {
	v := validator{
		env:     prog.Env(),
		defined: make(map[string]struct{}),
		globals: make(map[string]struct{}, len(globals)),
	}
	for _, g := range globals {
		v.checkName("global", g)
		v.globals[g] = struct{}{}
	}
	for _, def := range prog.defs {
		v.checkFunction(def)
	}
	if def, ok := prog.main.(FunctionDef); ok {
		v.checkFunction(def)
	} else {
		v.checkStatements("main", []Node{prog.main}, v.newScope(nil))
	}
	return errors.Join(v.errs...)
}

type validator struct {
	env     string
	defined map[string]struct{}
	globals map[string]struct{}
	errs    []error
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) newScope(params []Param) map[string]struct{} {
	scope := make(map[string]struct{}, len(v.globals)+len(params))
	for g := range v.globals {
		scope[g] = struct{}{}
	}
	for _, p := range params {
		scope[p.Name] = struct{}{}
	}
	return scope
}

func (v *validator) checkName(kind, name string) {
	if isReserved(name) {
		v.errorf("%s %q is a GLSL reserved word", kind, name)
	} else if _, ok := glslBuiltinFuncs[name]; ok {
		v.errorf("%s %q shadows a GLSL built-in function", kind, name)
	}
}

func (v *validator) checkFunction(def FunctionDef) {
	if def.Name != "main" {
		v.checkName("function", def.Name)
	}
	for _, p := range def.Params {
		v.checkName("parameter of "+def.Name, p.Name)
	}
	v.defined[def.Name] = struct{}{}
	v.checkStatements(def.Name, def.Body, v.newScope(def.Params))
}

func (v *validator) checkStatements(fn string, stmts []Node, scope map[string]struct{}) {
	for _, stmt := range stmts {
		switch stmt := stmt.(type) {
		case Block:
			v.checkStatements(fn, stmt.Statements, scope)
		case FunctionDef:
			v.checkFunction(stmt)
		case Declare:
			v.checkExpr(fn, stmt.Value, scope)
			v.checkName("variable in "+fn, stmt.Name)
			if _, dup := scope[stmt.Name]; dup {
				v.errorf("%s: redeclaration of %q", fn, stmt.Name)
			}
			scope[stmt.Name] = struct{}{}
		default:
			v.checkExpr(fn, stmt, scope)
		}
	}
}

func (v *validator) checkExpr(fn string, n Node, scope map[string]struct{}) {
	Walk(n, func(n Node) bool {
		switch n := n.(type) {
		case Identifier:
			if n.Name == v.env {
				break // Environment members are declared outside the program.
			}
			_, declared := scope[n.Name]
			if !declared && !strings.HasPrefix(n.Name, "gl_") {
				v.errorf("%s: undeclared identifier %q", fn, n.Name)
			}
		case Call:
			_, builtin := glslBuiltinFuncs[n.Name]
			_, defined := v.defined[n.Name]
			if !builtin && !defined && !isTypename(n.Name) {
				v.errorf("%s: call to undefined function %q", fn, n.Name)
			}
		}
		return true
	})
}

func isReserved(name string) bool {
	_, ok := glslReserved[name]
	return ok || isTypename(name) || strings.HasPrefix(name, "gl_")
}

// isTypename reports whether name is a scalar, vector or matrix type usable as constructor.
func isTypename(name string) bool {
	_, ok := glslTypes[name]
	return ok
}

var glslTypes = map[string]struct{}{
	"void": {}, "bool": {}, "int": {}, "uint": {}, "float": {}, "double": {},
	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},
	"dvec2": {}, "dvec3": {}, "dvec4": {},
	"mat2": {}, "mat3": {}, "mat4": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},
	"dmat2": {}, "dmat3": {}, "dmat4": {},
}

var glslReserved = map[string]struct{}{
	// Keywords.
	"attribute": {}, "const": {}, "uniform": {}, "varying": {},
	"buffer": {}, "shared": {}, "coherent": {}, "volatile": {}, "restrict": {}, "readonly": {}, "writeonly": {},
	"layout": {}, "centroid": {}, "flat": {}, "smooth": {}, "noperspective": {},
	"patch": {}, "sample": {},
	"break": {}, "continue": {}, "do": {}, "for": {}, "while": {}, "switch": {}, "case": {}, "default": {},
	"if": {}, "else": {}, "subroutine": {},
	"in": {}, "out": {}, "inout": {},
	"true": {}, "false": {},
	"invariant": {}, "precise": {},
	"discard": {}, "return": {}, "struct": {},
	"lowp": {}, "mediump": {}, "highp": {}, "precision": {},
	"sampler2D": {}, "sampler3D": {}, "samplerCube": {}, "image2D": {}, "atomic_uint": {},
	// Reserved for future use.
	"common": {}, "partition": {}, "active": {},
	"asm": {}, "class": {}, "union": {}, "enum": {}, "typedef": {}, "template": {}, "this": {},
	"resource": {}, "goto": {},
	"inline": {}, "noinline": {}, "public": {}, "static": {}, "extern": {}, "external": {}, "interface": {},
	"long": {}, "short": {}, "half": {}, "fixed": {}, "unsigned": {}, "superp": {},
	"input": {}, "output": {},
	"hvec2": {}, "hvec3": {}, "hvec4": {}, "fvec2": {}, "fvec3": {}, "fvec4": {},
	"filter": {}, "sizeof": {}, "cast": {}, "namespace": {}, "using": {},
}

var glslBuiltinFuncs = map[string]struct{}{
	"radians": {}, "degrees": {}, "sin": {}, "cos": {}, "tan": {},
	"asin": {}, "acos": {}, "atan": {}, "sinh": {}, "cosh": {}, "tanh": {},
	"asinh": {}, "acosh": {}, "atanh": {},
	"pow": {}, "exp": {}, "log": {}, "exp2": {}, "log2": {}, "sqrt": {}, "inversesqrt": {},
	"abs": {}, "sign": {}, "floor": {}, "trunc": {}, "round": {}, "roundEven": {}, "ceil": {}, "fract": {},
	"mod": {}, "modf": {}, "min": {}, "max": {}, "clamp": {}, "mix": {}, "step": {}, "smoothstep": {},
	"isnan": {}, "isinf": {}, "fma": {}, "frexp": {}, "ldexp": {},
	"floatBitsToInt": {}, "floatBitsToUint": {}, "intBitsToFloat": {}, "uintBitsToFloat": {},
	"packUnorm2x16": {}, "packSnorm2x16": {}, "packUnorm4x8": {}, "packSnorm4x8": {},
	"unpackUnorm2x16": {}, "unpackSnorm2x16": {}, "unpackUnorm4x8": {}, "unpackSnorm4x8": {},
	"packHalf2x16": {}, "unpackHalf2x16": {},
	"length": {}, "distance": {}, "dot": {}, "cross": {}, "normalize": {}, "faceforward": {}, "reflect": {}, "refract": {},
	"matrixCompMult": {}, "outerProduct": {}, "transpose": {}, "determinant": {}, "inverse": {},
	"lessThan": {}, "lessThanEqual": {}, "greaterThan": {}, "greaterThanEqual": {}, "equal": {}, "notEqual": {},
	"any": {}, "all": {}, "not": {},
	"bitfieldExtract": {}, "bitfieldInsert": {}, "bitfieldReverse": {}, "bitCount": {}, "findLSB": {}, "findMSB": {},
	"texture": {}, "textureSize": {}, "textureLod": {}, "textureOffset": {}, "texelFetch": {}, "textureGrad": {},
	"dFdx": {}, "dFdy": {}, "fwidth": {},
	"barrier": {}, "memoryBarrier": {}, "memoryBarrierBuffer": {}, "memoryBarrierShared": {}, "groupMemoryBarrier": {},
	"imageLoad": {}, "imageStore": {}, "imageSize": {},
	"atomicAdd": {}, "atomicMin": {}, "atomicMax": {}, "atomicAnd": {}, "atomicOr": {}, "atomicXor": {},
	"atomicExchange": {}, "atomicCompSwap": {},
}
