package check

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/tree"
)

// Synth computes the type of expr. expected only guides function literals;
// callers compare the result with CheckExpr.
func (c *Checker) Synth(expr tree.Expr, expected tree.Type) tree.Type {
	ty := c.synth(expr, expected)
	CheckerPrintf("synth %v: %v\n", expr.Pos(), ty)
	return ty
}

func (c *Checker) synth(expr tree.Expr, expected tree.Type) tree.Type {
	switch expr := expr.(type) {
	case *tree.LiteralExpr:
		return literalType(expr)
	case *tree.NameExpr:
		return c.synthName(expr)
	case *tree.ThisExpr:
		if c.This == nil {
			c.Reporter.Emit(diag.UnresolvedReference, expr.Pos(), "'this' is not defined in this context")
			return tree.TheErrorType
		}
		return c.This
	case *tree.ParenExpr:
		return c.Synth(expr.Expr, expected)
	case *tree.NotNullExpr:
		return tree.NonNull(c.Synth(expr.Expr, nil))
	case *tree.CallExpr:
		return c.synthCall(expr)
	case *tree.MemberExpr:
		return c.synthMember(expr)
	case *tree.LambdaExpr:
		return c.CompleteLambda(expr, expected, c.NewSession())
	case *tree.ForExpr:
		return c.synthFor(expr)
	default:
		panic(fmt.Sprintf("unreachable: %v", spew.Sdump(expr)))
	}
}

func literalType(expr *tree.LiteralExpr) tree.Type {
	switch expr.Kind {
	case tree.LiteralInt:
		return tree.TypeInt
	case tree.LiteralLong:
		return tree.TypeLong
	case tree.LiteralDouble:
		return tree.TypeDouble
	case tree.LiteralString:
		return tree.TypeString
	case tree.LiteralChar:
		return tree.TypeChar
	case tree.LiteralBool:
		return tree.TypeBoolean
	case tree.LiteralNull:
		return tree.TypeNull
	default:
		panic("unreachable")
	}
}

func (c *Checker) synthName(expr *tree.NameExpr) tree.Type {
	if ty, ok := c.VarCtx.Lookup(expr.Name); ok {
		return ty
	}
	site := &CallSite{
		Kind:     CallProperty,
		Name:     expr.Name,
		Span:     expr.Pos(),
		NameSpan: expr.Pos(),
	}
	return c.resolveAndComplete(site, nil, nil)
}

func (c *Checker) synthMember(expr *tree.MemberExpr) tree.Type {
	receiver := c.Synth(expr.Receiver, nil)
	if tree.IsError(receiver) {
		return tree.TheErrorType
	}
	site := &CallSite{
		Kind:     CallProperty,
		Name:     expr.Name,
		Span:     expr.Pos(),
		NameSpan: expr.NameSpan,
		Dot:      expr.Dot,
		DotSpan:  expr.DotSpan,
	}
	return c.resolveAndComplete(site, receiver, nil)
}

func (c *Checker) synthCall(expr *tree.CallExpr) tree.Type {
	var receiver tree.Type
	if expr.Receiver != nil {
		receiver = c.Synth(expr.Receiver, nil)
	}

	args := make([]*Argument, len(expr.Args))
	for i, arg := range expr.Args {
		args[i] = &Argument{Name: arg.Name, Expr: arg.Value}
		if lam, ok := unparen(arg.Value).(*tree.LambdaExpr); ok {
			args[i].Lambda = lam
			continue
		}
		args[i].Type = c.Synth(arg.Value, nil)
	}

	if receiver != nil && tree.IsError(receiver) {
		return tree.TheErrorType
	}

	site := &CallSite{
		Kind:     CallFunction,
		Name:     expr.Name,
		Span:     expr.Pos(),
		NameSpan: expr.NameSpan,
		Dot:      expr.Dot,
		DotSpan:  expr.DotSpan,
		TypeArgs: MapSlice(expr.TypeArgs, c.ResolveType),
	}
	return c.resolveAndComplete(site, receiver, args)
}

func unparen(expr tree.Expr) tree.Expr {
	for {
		paren, ok := expr.(*tree.ParenExpr)
		if !ok {
			return expr
		}
		expr = paren.Expr
	}
}

// resolveAndComplete resolves a call, completes its lambda arguments and
// returns its result type. Failures yield ErrorType.
func (c *Checker) resolveAndComplete(site *CallSite, receiver tree.Type, args []*Argument) tree.Type {
	cand, diags := c.ResolveCall(site, receiver, args)
	c.Reporter.ReportAll(diags)
	if cand == nil {
		return tree.TheErrorType
	}

	ret := c.CompleteCall(site, cand, args)
	if site.Dot == tree.DotSafe && receiver != nil && tree.IsNullable(receiver) {
		ret = tree.WithNullable(ret, true)
	}
	return ret
}

// CompleteCall finishes inference for the selected candidate: lambda
// arguments are checked against the now known parameter types, remaining
// variables must be solved and within their bounds.
func (c *Checker) CompleteCall(site *CallSite, cand *CallCandidate, args []*Argument) tree.Type {
	if cand.recursive {
		c.Reporter.Emit(diag.TypeInferenceFailed, site.NameSpan,
			fmt.Sprintf("type checking has run into a recursive problem: the type of %v depends on itself", site.Name))
		return tree.TheErrorType
	}

	s := cand.Session
	for i, arg := range args {
		if arg.Lambda != nil {
			c.CompleteLambda(arg.Lambda, cand.Params[cand.ArgParams[i]], s)
		}
	}

	if unresolved := s.Unresolved(cand.TypeVars); len(unresolved) > 0 {
		names := MapSlice(unresolved, func(v *tree.TypeVar) string { return v.Hint.Value })
		DebugDump(unresolved)
		c.Reporter.Emit(diag.TypeInferenceFailed, site.NameSpan,
			fmt.Sprintf("not enough information to infer type variable %v", names[0]))
		return tree.TheErrorType
	}

	if err := s.CheckBounds(cand.TypeVars); err != nil {
		bound := err.(*BoundViolationError)
		c.Reporter.Emit(diag.UpperBoundViolated, site.NameSpan, err.Error(), bound.Bound, bound.Type)
	}

	solution := s.Commit()
	ResolvePrintf("completed %v with %v\n", cand, solution)
	return solution.Apply(cand.Return)
}

// synthFor types `for (v in e)` through e.iterator(), next() and hasNext().
func (c *Checker) synthFor(expr *tree.ForExpr) tree.Type {
	iterable := c.Synth(expr.Iterable, nil)

	element := tree.Type(tree.TheErrorType)
	if !tree.IsError(iterable) {
		span := expr.Iterable.Pos()
		iterator := c.resolveAndComplete(&CallSite{
			Kind:     CallFunction,
			Name:     NewIdentifier("iterator"),
			Span:     span,
			NameSpan: span,
			Dot:      tree.DotPlain,
			DotSpan:  span,
		}, iterable, nil)
		if !tree.IsError(iterator) {
			element = c.resolveAndComplete(&CallSite{
				Kind:     CallFunction,
				Name:     NewIdentifier("next"),
				Span:     span,
				NameSpan: span,
				Dot:      tree.DotPlain,
				DotSpan:  span,
			}, iterator, nil)
			c.resolveAndComplete(&CallSite{
				Kind:     CallFunction,
				Name:     NewIdentifier("hasNext"),
				Span:     span,
				NameSpan: span,
				Dot:      tree.DotPlain,
				DotSpan:  span,
			}, iterator, nil)
		}
	}

	body := c.BeginBlockScope()
	body.DefLocal(expr.Var, expr.VarSpan, element)
	body.CheckStmts(expr.Body)
	return tree.TypeUnit
}
