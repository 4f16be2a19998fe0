package check

import (
	"errors"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/tree"
)

// CompleteLambda types a function literal against the expected type, solving
// in session s, and returns the literal's function type.
//
// The return type comes from the last expression of the body, except in two
// cases where the body value is discarded and the literal returns Unit:
// a literal without a parameter list whose expected type takes at most one
// parameter and returns Unit (`{ it.length }`), and a literal that declares
// `: Unit` itself. A literal with a parameter list gets no such coercion, so
// `{ a -> a.length }` against `(String) -> Unit` is a mismatch.
func (c *Checker) CompleteLambda(lam *tree.LambdaExpr, expected tree.Type, s *Session) tree.Type {
	var expectedFn *tree.FunctionType
	var expectedVar *tree.TypeVar
	if expected != nil {
		switch ty := tree.NonNull(s.Apply(expected)).(type) {
		case *tree.FunctionType:
			expectedFn = ty
		case *tree.TypeVar:
			expectedVar = ty
		}
	}

	body := c.BeginLambdaScope()
	body.Outer = s
	params := c.lambdaParams(body, lam, expectedFn, s)

	var declared tree.Type
	if lam.ReturnType != nil {
		declared = c.ResolveType(lam.ReturnType)
	}

	var hint tree.Type
	if expectedFn != nil {
		if _, ok := s.Apply(expectedFn.Return).(*tree.TypeVar); !ok {
			hint = s.Apply(expectedFn.Return)
		}
	}

	inferred := body.checkLambdaBody(lam, hint)

	samPath := !lam.HasParamList && expectedFn != nil && len(expectedFn.Params) <= 1 &&
		tree.IsUnit(s.Apply(expectedFn.Return))

	switch {
	case samPath:
		inferred = tree.TypeUnit
	case declared != nil && tree.IsUnit(declared):
		inferred = tree.TypeUnit
	case declared != nil:
		if err := c.constrain(s, RelationSubtype{Sub: inferred, Super: declared}); err != nil {
			c.reportMismatch(lastExprSpan(lam), declared, inferred, err)
		}
		inferred = declared
	}

	fn := &tree.FunctionType{Params: params, Return: inferred}

	switch {
	case expectedFn != nil && lam.HasParamList && len(params) != len(expectedFn.Params):
		c.Reporter.Report(diag.Mismatch(lam.Pos(), s.Apply(expectedFn), s.Apply(fn)))
	case expectedFn != nil:
		if err := c.constrain(s, RelationSubtype{Sub: inferred, Super: expectedFn.Return}); err != nil {
			expectedShown := s.Apply(expectedFn)
			foundShown := s.Apply(fn)
			c.reportMismatch(lam.Pos(), expectedShown, foundShown, err)
		}
	case expectedVar != nil:
		if err := c.constrain(s, RelationEq{Left: expectedVar, Right: fn}); err != nil {
			c.reportMismatch(lam.Pos(), expectedVar, fn, err)
		}
	}

	return s.Apply(fn)
}

func (c *Checker) constrain(s *Session, rel Relation) error {
	_, err := s.Constrain(rel)
	return err
}

func (c *Checker) reportMismatch(span Span, expected, found tree.Type, err error) {
	var infinite *InfiniteTypeError
	if errors.As(err, &infinite) {
		c.Reporter.Emit(diag.InfiniteType, span, infinite.Error(), infinite.Var, infinite.Type)
		return
	}
	c.Reporter.Report(diag.Mismatch(span, expected, found))
}

// lambdaParams defines the literal's parameters in body and returns their
// types. Declared types must accept what the expected type supplies.
func (c *Checker) lambdaParams(body *Checker, lam *tree.LambdaExpr, expectedFn *tree.FunctionType, s *Session) []tree.Type {
	if !lam.HasParamList {
		if expectedFn != nil && len(expectedFn.Params) == 1 {
			ty := s.Apply(expectedFn.Params[0])
			body.VarCtx.Def(ItIdent, ty)
			return []tree.Type{ty}
		}
		return nil
	}

	params := make([]tree.Type, len(lam.Params))
	for i, p := range lam.Params {
		var supplied tree.Type
		if expectedFn != nil && i < len(expectedFn.Params) {
			supplied = s.Apply(expectedFn.Params[i])
		}

		var ty tree.Type
		switch {
		case p.Type != nil:
			ty = c.ResolveType(p.Type)
			if supplied != nil {
				if err := c.constrain(s, RelationSubtype{Sub: supplied, Super: ty}); err != nil {
					c.reportMismatch(p.Pos(), ty, supplied, err)
				}
			}
		case supplied != nil:
			ty = supplied
		default:
			c.Reporter.Emit(diag.TypeInferenceFailed, p.Pos(),
				"cannot infer a type for this parameter, please specify it explicitly")
			ty = tree.TheErrorType
		}

		params[i] = ty
		body.DefLocal(p.Name, p.Pos(), ty)
	}
	return params
}

// checkLambdaBody checks the statements of a literal and returns the type
// of the last one when it is an expression, Unit otherwise.
func (c *Checker) checkLambdaBody(lam *tree.LambdaExpr, hint tree.Type) tree.Type {
	if len(lam.Body) == 0 {
		return tree.TypeUnit
	}
	for _, stmt := range lam.Body[:len(lam.Body)-1] {
		c.CheckStmt(stmt)
	}
	last := lam.Body[len(lam.Body)-1]
	if stmt, ok := last.(*tree.ExprStmt); ok {
		return c.Synth(stmt.Expr, hint)
	}
	c.CheckStmt(last)
	return tree.TypeUnit
}

func lastExprSpan(lam *tree.LambdaExpr) Span {
	if last, ok := Last(lam.Body); ok {
		return last.Pos()
	}
	return lam.Pos()
}
