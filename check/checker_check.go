package check

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/source"
	"github.com/garciat/kinfer/symbols"
	"github.com/garciat/kinfer/tree"
)

// CheckFile checks every body in file. Declarations that failed to register
// are skipped; their diagnostic was already reported.
func (c *Checker) CheckFile(file *source.FileDef, defs *Definitions) {
	CheckerPrintf("=== Checking File (%v) ===\n", file.Path)
	for _, decl := range file.Decls {
		c.CheckDecl(decl, defs)
	}
}

func (c *Checker) CheckDecl(decl tree.Decl, defs *Definitions) {
	sym, ok := defs.Symbols[decl]
	if !ok {
		return
	}

	switch decl := decl.(type) {
	case *tree.FunDecl:
		c.checkFunDecl(decl, sym, defs.Inferred[decl])
	case *tree.PropertyDecl:
		if decl.Init != nil && !defs.Inferred[decl] {
			fc := c.BeginFunctionScope(sym)
			fc.CheckExpr(decl.Init, sym.Return)
		}
	case *tree.ClassDecl:
		if ctor, ok := defs.Constructors[decl]; ok {
			c.checkDefaults(decl.CtorParams, ctor.TypeParams, ctor.Params)
		}
		for _, member := range decl.Members {
			c.CheckDecl(member, defs)
		}
	default:
		panic(fmt.Sprintf("unreachable: %v", spew.Sdump(decl)))
	}
}

// checkFunDecl checks a function body against its signature. An inferred
// expression body was already checked when its type was computed.
func (c *Checker) checkFunDecl(decl *tree.FunDecl, sym *symbols.Symbol, inferred bool) {
	fc := c.BeginFunctionScope(sym)
	for i, p := range decl.Params {
		fc.DefLocal(p.Name, p.Pos(), sym.Params[i].Type)
	}
	c.checkDefaults(decl.Params, sym.TypeParams, sym.Params)

	switch {
	case decl.HasBlock:
		fc.CheckStmts(decl.Body)
		if !tree.IsUnit(sym.Return) && !tree.IsError(sym.Return) && !endsWithReturn(decl.Body) {
			c.Reporter.Emit(diag.NoReturnInBlockBody, decl.BodyEnd,
				"a 'return' expression required in a function with a block body")
		}
	case decl.ExprBody != nil && !inferred:
		fc.CheckExpr(decl.ExprBody, sym.Return)
	}
}

// checkDefaults checks default parameter values against their declared
// types. Defaults cannot see the other parameters.
func (c *Checker) checkDefaults(decls []*tree.ParamDecl, typeParams []*tree.TypeParam, params []symbols.Param) {
	dc := c.BeginBlockScope()
	dc.Env = symbols.NewTypeParamEnv(nil, typeParams)
	for i, p := range decls {
		if p.Default == nil {
			continue
		}
		dc.CheckExpr(p.Default, params[i].Type)
	}
}

func endsWithReturn(body []tree.Stmt) bool {
	last, ok := Last(body)
	if !ok {
		return false
	}
	_, ok = last.(*tree.ReturnStmt)
	return ok
}

// ========================

// CheckStmts checks a block and returns the type of its last statement when
// that is an expression, Unit otherwise.
func (c *Checker) CheckStmts(stmts []tree.Stmt) tree.Type {
	result := tree.Type(tree.TypeUnit)
	for _, stmt := range stmts {
		result = c.CheckStmt(stmt)
	}
	return result
}

func (c *Checker) CheckStmt(stmt tree.Stmt) tree.Type {
	switch stmt := stmt.(type) {
	case *tree.ExprStmt:
		return c.Synth(stmt.Expr, nil)
	case *tree.ValStmt:
		var declared tree.Type
		if stmt.Type != nil {
			declared = c.ResolveType(stmt.Type)
		}
		ty := declared
		if stmt.Init != nil {
			initTy := c.CheckExpr(stmt.Init, declared)
			if ty == nil {
				ty = initTy
			}
		}
		if ty == nil {
			ty = tree.TheErrorType
		}
		c.DefLocal(stmt.Name, stmt.Pos(), ty)
		return tree.TypeUnit
	case *tree.ReturnStmt:
		var expected tree.Type
		if c.CurFn != nil {
			expected = c.CurFn.Return
		}
		if stmt.Value == nil {
			if expected != nil && !tree.IsUnit(expected) && !tree.IsError(expected) {
				c.Reporter.Report(diag.Mismatch(stmt.Pos(), expected, tree.TypeUnit))
			}
			return tree.TypeNothing
		}
		c.CheckExpr(stmt.Value, expected)
		return tree.TypeNothing
	default:
		panic(fmt.Sprintf("unreachable: %v", spew.Sdump(stmt)))
	}
}

// CheckExpr synthesizes expr and reports a mismatch when it does not conform
// to expected. Function literals report their own mismatches.
func (c *Checker) CheckExpr(expr tree.Expr, expected tree.Type) tree.Type {
	ty := c.Synth(expr, expected)
	if expected == nil {
		return ty
	}
	if _, ok := unparen(expr).(*tree.LambdaExpr); ok {
		return ty
	}
	if _, err := c.NewSession().Subtype(ty, expected); err != nil {
		c.reportMismatch(expr.Pos(), expected, ty, err)
	}
	return ty
}
