package glbuild

import (
	"fmt"
	"slices"

	"github.com/soypat/glproc/glmath"
)

// Float returns a float literal. Rendered floats always carry a decimal point.
func Float(v float32) Literal { return Literal{Value: v} }

// Int returns an integer literal.
func Int(v int) Literal { return Literal{Value: v} }

// Bool returns a boolean literal.
func Bool(v bool) Literal { return Literal{Value: v} }

// Raw returns a literal whose text is emitted verbatim.
func Raw(text string) Literal { return Literal{Value: text} }

// Ident returns an identifier reference.
func Ident(name string) Identifier {
	if name == "" {
		panic("empty identifier name")
	}
	return Identifier{Name: name}
}

// NewCall returns a call to name with args. The args slice is copied.
func NewCall(name string, args ...Node) Call {
	if name == "" {
		panic("empty call name")
	}
	mustNonNil("call argument", args)
	return Call{Name: name, Args: slices.Clone(args)}
}

// Binary returns the binary operation lhs op rhs. Panics if op is not a GLSL binary operator.
func Binary(lhs Node, op string, rhs Node) BinaryOp {
	if _, ok := binaryPrecedence[op]; !ok {
		panic(fmt.Sprintf("invalid binary operator %q", op))
	} else if lhs == nil || rhs == nil {
		panic("nil binary operand")
	}
	return BinaryOp{Op: op, LHS: lhs, RHS: rhs}
}

// Add returns lhs + rhs.
func Add(lhs, rhs Node) BinaryOp { return Binary(lhs, "+", rhs) }

// Sub returns lhs - rhs.
func Sub(lhs, rhs Node) BinaryOp { return Binary(lhs, "-", rhs) }

// Mul returns lhs * rhs.
func Mul(lhs, rhs Node) BinaryOp { return Binary(lhs, "*", rhs) }

// Div returns lhs / rhs.
func Div(lhs, rhs Node) BinaryOp { return Binary(lhs, "/", rhs) }

// Neg returns -x.
func Neg(x Node) Unary { return NewUnary("-", x) }

// NewUnary returns the prefix operation op x. Panics if op is not a GLSL prefix operator.
func NewUnary(op string, x Node) Unary {
	switch op {
	case "-", "+", "!", "~":
	default:
		panic(fmt.Sprintf("invalid unary operator %q", op))
	}
	if x == nil {
		panic("nil unary operand")
	}
	return Unary{Op: op, X: x}
}

// Cond returns the ternary expression cond ? then : els.
func Cond(cond, then, els Node) Ternary {
	if cond == nil || then == nil || els == nil {
		panic("nil ternary operand")
	}
	return Ternary{Cond: cond, Then: then, Else: els}
}

// NewSwizzle returns the swizzle x.pattern where x is an expression of a vector with arity components.
// An error is returned if the pattern is not valid for the arity.
func NewSwizzle(x Node, arity int, pattern string) (Swizzle, error) {
	if x == nil {
		return Swizzle{}, fmt.Errorf("nil swizzle operand for pattern %q", pattern)
	}
	sw, err := glmath.NewSwizzle(arity, pattern)
	if err != nil {
		return Swizzle{}, err
	}
	return Swizzle{X: x, Pattern: sw}, nil
}

// MustSwizzle is like [NewSwizzle] but panics on error. Used for patterns known at compile time.
func MustSwizzle(x Node, arity int, pattern string) Swizzle {
	sw, err := NewSwizzle(x, arity, pattern)
	if err != nil {
		panic(err)
	}
	return sw
}

// Field returns the member access x.field.
func Field(x Node, field string) Member {
	if x == nil {
		panic("nil member operand")
	} else if field == "" {
		panic("empty member name")
	}
	return Member{X: x, Field: field}
}

// Env returns a reference to member of the environment block named env, i.e: env.member.
func Env(env, member string) Member {
	return Field(Ident(env), member)
}

// At returns the element access x[i].
func At(x, i Node) Index {
	if x == nil || i == nil {
		panic("nil index operand")
	}
	return Index{X: x, I: i}
}

// Assign returns the statement target = value;.
func Assign(target, value Node) Assignment {
	if target == nil || value == nil {
		panic("nil assignment operand")
	}
	return Assignment{Target: target, Value: value}
}

// Decl returns the declaration statement typ name = value;. value may be nil.
func Decl(typ, name string, value Node) Declare {
	if typ == "" || name == "" {
		panic("declaration requires type and name")
	}
	return Declare{Type: typ, Name: name, Value: value}
}

// Ret returns the statement return value;. value may be nil.
func Ret(value Node) Return { return Return{Value: value} }

// P returns a function parameter.
func P(typ, name string) Param { return Param{Type: typ, Name: name} }

// Func returns a function definition. The params and body slices are copied.
func Func(returnType, name string, params []Param, body ...Node) FunctionDef {
	if returnType == "" || name == "" {
		panic("function definition requires return type and name")
	}
	mustNonNil("function statement", body)
	return FunctionDef{
		Name:       name,
		ReturnType: returnType,
		Params:     slices.Clone(params),
		Body:       slices.Clone(body),
	}
}

// NewBlock returns a block of statements. A non-empty name makes it an environment block.
func NewBlock(name string, statements ...Node) Block {
	mustNonNil("block statement", statements)
	return Block{Name: name, Statements: slices.Clone(statements)}
}

// Vec2 returns the constructor call vec2(args...).
func Vec2(args ...Node) Call { return NewCall("vec2", args...) }

// Vec3 returns the constructor call vec3(args...).
func Vec3(args ...Node) Call { return NewCall("vec3", args...) }

// Vec4 returns the constructor call vec4(args...).
func Vec4(args ...Node) Call { return NewCall("vec4", args...) }

func mustNonNil(what string, nodes []Node) {
	for i, n := range nodes {
		if n == nil {
			panic(fmt.Sprintf("nil %s at position %d", what, i))
		}
	}
}
