package glbuild

import (
	"fmt"
	"slices"

	"github.com/soypat/glproc/glmath"
)

// Node is a node of a GLSL program's syntax tree. The set of nodes is closed:
// only types declared in this package implement Node, and every function that
// inspects a tree switches exhaustively over them.
//
// Nodes are values and must not be modified after construction. Slices held by
// nodes are copied by the constructors in this package so that trees built with
// them own their children exclusively.
type Node interface {
	node()
}

// Literal is a numeric, boolean or raw textual constant.
// Value is one of float32, int or bool. Strings are emitted verbatim.
type Literal struct {
	Value any
}

// Identifier is a bare reference to a variable, parameter or global.
type Identifier struct {
	Name string
}

// Call is a function, intrinsic or constructor invocation: Name(Args...).
type Call struct {
	Name string
	Args []Node
}

// BinaryOp is an infix operator application LHS Op RHS.
type BinaryOp struct {
	Op  string
	LHS Node
	RHS Node
}

// Unary is a prefix operator application such as -X or !X.
type Unary struct {
	Op string
	X  Node
}

// Ternary is the conditional expression Cond ? Then : Else.
type Ternary struct {
	Cond Node
	Then Node
	Else Node
}

// Swizzle is a validated component selection X.Pattern. Build with [NewSwizzle].
type Swizzle struct {
	X       Node
	Pattern glmath.Swizzle
}

// Member is a field access X.Field. When X is the Identifier of an environment block
// the access is rendered as a bare Field reference, see [Program.Render].
type Member struct {
	X     Node
	Field string
}

// Index is an array or vector element access X[I].
type Index struct {
	X Node
	I Node
}

// Assignment is the statement Target = Value;.
type Assignment struct {
	Target Node
	Value  Node
}

// Declare is a local variable declaration statement Type Name = Value;.
// Value may be nil for declarations without initializer.
type Declare struct {
	Type  string
	Name  string
	Value Node
}

// Return is a return statement. Value is nil for a bare return.
type Return struct {
	Value Node
}

// Param is a typed function parameter.
type Param struct {
	Type string
	Name string
}

// FunctionDef is a function definition ReturnType Name(Params) { Body }.
type FunctionDef struct {
	Name       string
	ReturnType string
	Params     []Param
	Body       []Node
}

// Block is an ordered list of statements. A Block with a non-empty Name is an
// environment block: members of the environment are referenced elsewhere in the
// tree through [Member] nodes qualified by Identifier{Name}.
type Block struct {
	Name       string
	Statements []Node
}

func (Literal) node()     {}
func (Identifier) node()  {}
func (Call) node()        {}
func (BinaryOp) node()    {}
func (Unary) node()       {}
func (Ternary) node()     {}
func (Swizzle) node()     {}
func (Member) node()      {}
func (Index) node()       {}
func (Assignment) node()  {}
func (Declare) node()     {}
func (Return) node()      {}
func (FunctionDef) node() {}
func (Block) node()       {}

// Walk traverses the tree rooted at n depth first, visiting nodes in declaration order
// (parents before children, children left to right). Traversal stops as soon as fn returns false.
// Walk returns false if traversal was stopped.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	switch n := n.(type) {
	case Literal, Identifier:
		return true
	case Call:
		return walkList(n.Args, fn)
	case BinaryOp:
		return Walk(n.LHS, fn) && Walk(n.RHS, fn)
	case Unary:
		return Walk(n.X, fn)
	case Ternary:
		return Walk(n.Cond, fn) && Walk(n.Then, fn) && Walk(n.Else, fn)
	case Swizzle:
		return Walk(n.X, fn)
	case Member:
		return Walk(n.X, fn)
	case Index:
		return Walk(n.X, fn) && Walk(n.I, fn)
	case Assignment:
		return Walk(n.Target, fn) && Walk(n.Value, fn)
	case Declare:
		return Walk(n.Value, fn)
	case Return:
		return Walk(n.Value, fn)
	case FunctionDef:
		return walkList(n.Body, fn)
	case Block:
		return walkList(n.Statements, fn)
	}
	panic(fmt.Sprintf("glbuild: unknown node type %T", n))
}

func walkList(nodes []Node, fn func(Node) bool) bool {
	for _, n := range nodes {
		if !Walk(n, fn) {
			return false
		}
	}
	return true
}

// cloneNode returns a deep copy of n that shares no slices with it.
func cloneNode(n Node) Node {
	switch n := n.(type) {
	case nil:
		return nil
	case Literal, Identifier:
		return n
	case Call:
		n.Args = cloneList(n.Args)
		return n
	case BinaryOp:
		n.LHS, n.RHS = cloneNode(n.LHS), cloneNode(n.RHS)
		return n
	case Unary:
		n.X = cloneNode(n.X)
		return n
	case Ternary:
		n.Cond, n.Then, n.Else = cloneNode(n.Cond), cloneNode(n.Then), cloneNode(n.Else)
		return n
	case Swizzle:
		n.X = cloneNode(n.X)
		return n
	case Member:
		n.X = cloneNode(n.X)
		return n
	case Index:
		n.X, n.I = cloneNode(n.X), cloneNode(n.I)
		return n
	case Assignment:
		n.Target, n.Value = cloneNode(n.Target), cloneNode(n.Value)
		return n
	case Declare:
		n.Value = cloneNode(n.Value)
		return n
	case Return:
		n.Value = cloneNode(n.Value)
		return n
	case FunctionDef:
		return cloneDef(n)
	case Block:
		n.Statements = cloneList(n.Statements)
		return n
	}
	panic(fmt.Sprintf("glbuild: unknown node type %T", n))
}

func cloneDef(def FunctionDef) FunctionDef {
	def.Params = slices.Clone(def.Params)
	def.Body = cloneList(def.Body)
	return def
}

func cloneDefs(defs []FunctionDef) []FunctionDef {
	if defs == nil {
		return nil
	}
	cloned := make([]FunctionDef, len(defs))
	for i, def := range defs {
		cloned[i] = cloneDef(def)
	}
	return cloned
}

func cloneList(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	cloned := make([]Node, len(nodes))
	for i, n := range nodes {
		cloned[i] = cloneNode(n)
	}
	return cloned
}
