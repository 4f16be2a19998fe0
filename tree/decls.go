package tree

import (
	. "github.com/garciat/kinfer/common"
)

// Decl is a tagged variant over the declaration kinds; each variant carries
// only the fields it needs.
type Decl interface {
	Node
	_Decl()
	DeclName() Identifier
}

type DeclBase struct {
	NodeBase
	Name     Identifier
	NameSpan Span
}

func (*DeclBase) _Decl() {}

func (d *DeclBase) DeclName() Identifier {
	return d.Name
}

type ImportDecl struct {
	NodeBase
	Path  FqName
	All   bool
	Alias Identifier
}

func (d *ImportDecl) LocalName() Identifier {
	if d.Alias.Value != "" {
		return d.Alias
	}
	return d.Path.ShortName()
}

type TypeParamDecl struct {
	NodeBase
	Name  Identifier
	Bound TypeExpr
}

type ParamDecl struct {
	NodeBase
	Name    Identifier
	Type    TypeExpr
	Default Expr
}

type FunDecl struct {
	DeclBase
	TypeParams []*TypeParamDecl
	Receiver   TypeExpr
	Params     []*ParamDecl
	Return     TypeExpr
	// Exactly one of ExprBody and Body is used; HasBlock tells which.
	ExprBody Expr
	Body     []Stmt
	HasBlock bool
	BodyEnd  Span
}

func (d *FunDecl) HasBody() bool {
	return d.HasBlock || d.ExprBody != nil
}

type PropertyDecl struct {
	DeclBase
	Mutable    bool
	TypeParams []*TypeParamDecl
	Receiver   TypeExpr
	Type       TypeExpr
	Init       Expr
}

type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindTrait
)

func (k ClassKind) String() string {
	switch k {
	case ClassKindClass:
		return "class"
	case ClassKindTrait:
		return "trait"
	default:
		panic("unreachable")
	}
}

type ClassDecl struct {
	DeclBase
	Kind       ClassKind
	TypeParams []*TypeParamDecl
	// CtorParams is nil for traits and for classes without a primary
	// constructor header.
	CtorParams []*ParamDecl
	HasCtor    bool
	Supertypes []TypeExpr
	Members    []Decl
}
