package glbuild

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
)

// Operator precedence levels, lowest binds loosest.
const (
	precAssign = iota
	precTernary
	precOr
	precXor
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

var binaryPrecedence = map[string]int{
	"||": precOr,
	"^^": precXor,
	"&&": precAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEquality,
	"!=": precEquality,
	"<":  precRelational,
	">":  precRelational,
	"<=": precRelational,
	">=": precRelational,
	"<<": precShift,
	">>": precShift,
	"+":  precAdditive,
	"-":  precAdditive,
	"*":  precMultiplicative,
	"/":  precMultiplicative,
	"%":  precMultiplicative,
}

// AppendNode appends the GLSL source of n to dst and returns the result.
// Statements (assignments, declarations, returns, blocks and function definitions)
// are rendered as statements, any other node is rendered as an expression.
func AppendNode(dst []byte, n Node) []byte {
	return renderer{}.appendTop(dst, n)
}

// RenderNode returns the GLSL source of n. See [AppendNode].
func RenderNode(n Node) string {
	return string(AppendNode(nil, n))
}

// renderer converts nodes to GLSL. env is the environment block being flattened, if any.
type renderer struct {
	env string
}

func (r renderer) isEnv(n Node) bool {
	id, ok := n.(Identifier)
	return ok && r.env != "" && id.Name == r.env
}

func (r renderer) appendTop(b []byte, n Node) []byte {
	switch n.(type) {
	case Assignment, Declare, Return, FunctionDef, Block:
		return r.appendStmt(b, n, 0)
	}
	return r.appendExpr(b, n)
}

func (r renderer) appendStmt(b []byte, n Node, depth int) []byte {
	switch n := n.(type) {
	case Block:
		for i, stmt := range n.Statements {
			if i > 0 {
				b = append(b, '\n')
			}
			b = r.appendStmt(b, stmt, depth)
		}
		return b
	case FunctionDef:
		b = appendIndent(b, depth)
		b = append(b, n.ReturnType...)
		b = append(b, ' ')
		b = append(b, n.Name...)
		b = append(b, '(')
		for i, param := range n.Params {
			if i > 0 {
				b = append(b, ", "...)
			}
			b = append(b, param.Type...)
			b = append(b, ' ')
			b = append(b, param.Name...)
		}
		b = append(b, ") {\n"...)
		for _, stmt := range n.Body {
			b = r.appendStmt(b, stmt, depth+1)
			b = append(b, '\n')
		}
		b = appendIndent(b, depth)
		return append(b, '}')
	}
	b = appendIndent(b, depth)
	switch n := n.(type) {
	case Assignment:
		b = r.appendExpr(b, n.Target)
		b = append(b, " = "...)
		b = r.appendExpr(b, n.Value)
	case Declare:
		b = append(b, n.Type...)
		b = append(b, ' ')
		b = append(b, n.Name...)
		if n.Value != nil {
			b = append(b, " = "...)
			b = r.appendExpr(b, n.Value)
		}
	case Return:
		b = append(b, "return"...)
		if n.Value != nil {
			b = append(b, ' ')
			b = r.appendExpr(b, n.Value)
		}
	default:
		b = r.appendExpr(b, n)
	}
	return append(b, ';')
}

func (r renderer) appendExpr(b []byte, n Node) []byte {
	switch n := n.(type) {
	case Literal:
		return appendLiteral(b, n)
	case Identifier:
		if r.isEnv(n) {
			return b // Bare environment references vanish along with the qualifier.
		}
		return append(b, n.Name...)
	case Call:
		b = append(b, n.Name...)
		b = append(b, '(')
		for i, arg := range n.Args {
			if i > 0 {
				b = append(b, ", "...)
			}
			b = r.appendExpr(b, arg)
		}
		return append(b, ')')
	case BinaryOp:
		prec := binaryPrecedence[n.Op]
		b = r.appendOperand(b, n.LHS, prec, false)
		b = append(b, ' ')
		b = append(b, n.Op...)
		b = append(b, ' ')
		return r.appendOperand(b, n.RHS, prec, true)
	case Unary:
		b = append(b, n.Op...)
		// Parenthesize nested prefix operators so "-(-x)" is never emitted as the decrement "--x".
		if p := precedence(n.X); p <= precUnary {
			return r.appendParens(b, n.X)
		}
		return r.appendExpr(b, n.X)
	case Ternary:
		b = r.appendOperand(b, n.Cond, precTernary, true)
		b = append(b, " ? "...)
		b = r.appendOperand(b, n.Then, precTernary, true)
		b = append(b, " : "...)
		return r.appendOperand(b, n.Else, precTernary, true)
	case Swizzle:
		if n.Pattern.Arity() == 0 {
			panic("glbuild: render of unvalidated Swizzle, build with NewSwizzle")
		} else if r.isEnv(n.X) {
			return append(b, n.Pattern.String()...)
		}
		b = r.appendOperand(b, n.X, precPostfix, false)
		b = append(b, '.')
		return append(b, n.Pattern.String()...)
	case Member:
		if r.isEnv(n.X) {
			return append(b, n.Field...)
		}
		b = r.appendOperand(b, n.X, precPostfix, false)
		b = append(b, '.')
		return append(b, n.Field...)
	case Index:
		b = r.appendOperand(b, n.X, precPostfix, false)
		b = append(b, '[')
		b = r.appendExpr(b, n.I)
		return append(b, ']')
	case Assignment:
		b = r.appendOperand(b, n.Target, precAssign, true)
		b = append(b, " = "...)
		return r.appendExpr(b, n.Value)
	case Declare, Return, FunctionDef, Block:
		return r.appendStmt(b, n, 0)
	}
	panic(fmt.Sprintf("glbuild: unknown node type %T", n))
}

// appendOperand appends n as an operand of an operator with precedence parentPrec.
// right is set for operands whose grouping would change if the operator is applied left to right.
func (r renderer) appendOperand(b []byte, n Node, parentPrec int, right bool) []byte {
	p := precedence(n)
	if p < parentPrec || (right && p == parentPrec) {
		return r.appendParens(b, n)
	}
	return r.appendExpr(b, n)
}

func (r renderer) appendParens(b []byte, n Node) []byte {
	b = append(b, '(')
	b = r.appendExpr(b, n)
	return append(b, ')')
}

func precedence(n Node) int {
	switch n := n.(type) {
	case BinaryOp:
		return binaryPrecedence[n.Op]
	case Unary:
		return precUnary
	case Ternary:
		return precTernary
	case Assignment:
		return precAssign
	case Swizzle, Member, Index:
		return precPostfix
	case Literal:
		if isNegativeLiteral(n) {
			return precUnary
		}
	}
	return precPrimary
}

func isNegativeLiteral(lit Literal) bool {
	switch v := lit.Value.(type) {
	case float32:
		return math32.Signbit(v) && !math32.IsNaN(v)
	case float64:
		return v < 0
	case int:
		return v < 0
	}
	return false
}

func appendLiteral(b []byte, lit Literal) []byte {
	switch v := lit.Value.(type) {
	case float32:
		return AppendFloat(b, v)
	case float64:
		return AppendFloat(b, float32(v))
	case int:
		return strconv.AppendInt(b, int64(v), 10)
	case uint32:
		b = strconv.AppendUint(b, uint64(v), 10)
		return append(b, 'u')
	case bool:
		return strconv.AppendBool(b, v)
	case string:
		return append(b, v...)
	}
	panic(fmt.Sprintf("glbuild: unsupported literal value type %T", lit.Value))
}

func appendIndent(b []byte, depth int) []byte {
	for i := 0; i < depth; i++ {
		b = append(b, '\t')
	}
	return b
}

// AppendFloat appends the shortest decimal representation of v that reads back as
// the same float32 and is a valid GLSL float literal, i.e: 1 is appended as "1.0".
// Non-finite values are appended as constant divisions since GLSL has no literal for them.
func AppendFloat(b []byte, v float32) []byte {
	switch {
	case math32.IsNaN(v):
		return append(b, "(0.0/0.0)"...)
	case math32.IsInf(v, 1):
		return append(b, "(1.0/0.0)"...)
	case math32.IsInf(v, -1):
		return append(b, "(-1.0/0.0)"...)
	}
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', -1, 32)
	if bytes.IndexByte(b[start:], '.') < 0 {
		b = append(b, ".0"...)
	}
	return b
}

// AppendFloats appends the floats in s separated by sep. No separator is appended if sep is zero.
func AppendFloats(b []byte, sep byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}
