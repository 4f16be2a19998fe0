package tree

import (
	. "github.com/garciat/kinfer/common"
)

type Node interface {
	_Node()
	Pos() Span
}

type NodeBase struct {
	Span Span
}

func (*NodeBase) _Node() {}

func (n *NodeBase) Pos() Span {
	return n.Span
}

// ========================
// Type syntax, resolved into Type by the symbol table.

type TypeExpr interface {
	Node
	_TypeExpr()
}

type TypeExprBase struct {
	NodeBase
}

func (*TypeExprBase) _TypeExpr() {}

type TypeName struct {
	TypeExprBase
	Name     Identifier
	Args     []TypeExpr
	Nullable bool
}

type FunctionTypeExpr struct {
	TypeExprBase
	Receiver TypeExpr
	Params   []TypeExpr
	Return   TypeExpr
	Nullable bool
}

// ========================

type Expr interface {
	Node
	_Expr()
}

type ExprBase struct {
	NodeBase
}

func (*ExprBase) _Expr() {}

type NameExpr struct {
	ExprBase
	Name Identifier
}

type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralLong
	LiteralDouble
	LiteralString
	LiteralChar
	LiteralBool
	LiteralNull
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralInt:
		return "int"
	case LiteralLong:
		return "long"
	case LiteralDouble:
		return "double"
	case LiteralString:
		return "string"
	case LiteralChar:
		return "char"
	case LiteralBool:
		return "bool"
	case LiteralNull:
		return "null"
	default:
		panic("unreachable")
	}
}

type LiteralExpr struct {
	ExprBase
	Kind  LiteralKind
	Value string
}

type ThisExpr struct {
	ExprBase
}

type DotKind int

const (
	DotNone DotKind = iota
	DotPlain
	DotSafe
)

// CallExpr is `name(args)` or `receiver.name(args)`. A trailing lambda is
// appended to Args.
type CallExpr struct {
	ExprBase
	Receiver Expr
	Dot      DotKind
	DotSpan  Span
	Name     Identifier
	NameSpan Span
	TypeArgs []TypeExpr
	Args     []*Argument
}

type Argument struct {
	Name  Identifier
	Value Expr
}

// MemberExpr is a property access `receiver.name`.
type MemberExpr struct {
	ExprBase
	Receiver Expr
	Dot      DotKind
	DotSpan  Span
	Name     Identifier
	NameSpan Span
}

// NotNullExpr is the `expr!!` assertion.
type NotNullExpr struct {
	ExprBase
	Expr Expr
}

type LambdaParam struct {
	NodeBase
	Name Identifier
	Type TypeExpr
}

// LambdaExpr is a function literal. HasParamList is false for `{ it.length }`
// style literals that rely on the implicit single parameter.
type LambdaExpr struct {
	ExprBase
	HasParamList bool
	Params       []*LambdaParam
	ReturnType   TypeExpr
	Body         []Stmt
}

// ForExpr is `for (v in iterable) body`; it has type Unit.
type ForExpr struct {
	ExprBase
	Var      Identifier
	VarSpan  Span
	Iterable Expr
	Body     []Stmt
}

type ParenExpr struct {
	ExprBase
	Expr Expr
}

// ========================

type Stmt interface {
	Node
	_Stmt()
}

type StmtBase struct {
	NodeBase
}

func (*StmtBase) _Stmt() {}

type ExprStmt struct {
	StmtBase
	Expr Expr
}

type ValStmt struct {
	StmtBase
	Name    Identifier
	Mutable bool
	Type    TypeExpr
	Init    Expr
}

type ReturnStmt struct {
	StmtBase
	Value Expr
}
