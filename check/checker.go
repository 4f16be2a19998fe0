package check

import (
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/symbols"
	"github.com/garciat/kinfer/tree"
)

// Checker checks the bodies of one file against a frozen symbol table. It is
// not safe for concurrent use; each file gets its own.
type Checker struct {
	Fresh *int

	Table    *symbols.Table
	Scope    *symbols.Scope
	Env      *symbols.TypeParamEnv
	VarCtx   *VarContext
	Reporter *diag.Reporter

	// This is the implicit receiver inside members and extensions.
	This  tree.Type
	CurFn *FunctionContext

	// Outer is the session of the call whose lambda argument is being
	// checked. Calls inside the lambda body fork it.
	Outer *Session

	// Infer completes a symbol whose type is inferred from its body. It is
	// only set during the declaration pass.
	Infer func(sym *symbols.Symbol) bool
}

type FunctionContext struct {
	Symbol *symbols.Symbol
	Return tree.Type
}

func NewChecker(table *symbols.Table, scope *symbols.Scope, reporter *diag.Reporter) *Checker {
	return &Checker{
		Fresh:    Ptr(0),
		Table:    table,
		Scope:    scope,
		VarCtx:   NewVarContext(),
		Reporter: reporter,
	}
}

func (c *Checker) Copy() *Checker {
	return &Checker{
		Fresh:    c.Fresh,
		Table:    c.Table,
		Scope:    c.Scope,
		Env:      c.Env,
		VarCtx:   c.VarCtx,
		Reporter: c.Reporter,
		This:     c.This,
		CurFn:    c.CurFn,
		Outer:    c.Outer,
		Infer:    c.Infer,
	}
}

func (c *Checker) _BeginScope(kind ScopeKind) *Checker {
	copy := c.Copy()
	copy.VarCtx = c.VarCtx.Fork(kind)
	return copy
}

// BeginFunctionScope enters the body of a function or property symbol.
func (c *Checker) BeginFunctionScope(sym *symbols.Symbol) *Checker {
	copy := c._BeginScope(ScopeKindFunction)
	copy.Env = symbols.NewTypeParamEnv(nil, sym.TypeParams)
	copy.This = sym.Receiver
	copy.CurFn = &FunctionContext{Symbol: sym, Return: sym.Return}
	return copy
}

func (c *Checker) BeginLambdaScope() *Checker {
	return c._BeginScope(ScopeKindLambda)
}

func (c *Checker) BeginBlockScope() *Checker {
	return c._BeginScope(ScopeKindBlock)
}

func (c *Checker) NewSession() *Session {
	if c.Outer != nil {
		return c.Outer.Fork()
	}
	return NewSession(c.Fresh, c.Table)
}

func (c *Checker) ResolveType(expr tree.TypeExpr) tree.Type {
	ty, diags := c.Table.ResolveType(c.Scope, c.Env, expr)
	c.Reporter.ReportAll(diags)
	return ty
}

func (c *Checker) DefLocal(name Identifier, span Span, ty tree.Type) {
	if !c.VarCtx.Def(name, ty) {
		c.Reporter.Emit(diag.DuplicateSymbol, span, "conflicting declarations: "+name.Value)
	}
}
