package symbols

import (
	"fmt"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/tree"
)

// TypeParamEnv binds type parameter names in nested declarations, e.g. a
// member function sees its own parameters and those of its class.
type TypeParamEnv struct {
	Parent *TypeParamEnv
	Params map[Identifier]*tree.TypeParam
}

func NewTypeParamEnv(parent *TypeParamEnv, params []*tree.TypeParam) *TypeParamEnv {
	env := &TypeParamEnv{Parent: parent, Params: map[Identifier]*tree.TypeParam{}}
	for _, p := range params {
		env.Params[p.Name] = p
	}
	return env
}

func (e *TypeParamEnv) Lookup(name Identifier) (*tree.TypeParam, bool) {
	for env := e; env != nil; env = env.Parent {
		if p, ok := env.Params[name]; ok {
			return p, true
		}
	}
	return nil, false
}

// ResolveType turns written type syntax into a Type. Failures produce
// diagnostics and an ErrorType in place of the offending part.
func (t *Table) ResolveType(scope *Scope, env *TypeParamEnv, expr tree.TypeExpr) (tree.Type, []diag.Diagnostic) {
	r := &typeResolver{table: t, scope: scope, env: env}
	ty := r.resolve(expr)
	return ty, r.diagnostics
}

type typeResolver struct {
	table       *Table
	scope       *Scope
	env         *TypeParamEnv
	diagnostics []diag.Diagnostic
}

func (r *typeResolver) resolve(expr tree.TypeExpr) tree.Type {
	switch expr := expr.(type) {
	case *tree.TypeName:
		return r.resolveName(expr)
	case *tree.FunctionTypeExpr:
		var params []tree.Type
		if expr.Receiver != nil {
			params = append(params, r.resolve(expr.Receiver))
		}
		for _, p := range expr.Params {
			params = append(params, r.resolve(p))
		}
		return &tree.FunctionType{
			Params:   params,
			Return:   r.resolve(expr.Return),
			Nullable: expr.Nullable,
		}
	default:
		panic(fmt.Sprintf("unreachable: %T", expr))
	}
}

func (r *typeResolver) resolveName(expr *tree.TypeName) tree.Type {
	if p, ok := r.env.Lookup(expr.Name); ok && len(expr.Args) == 0 {
		return tree.WithNullable(p, expr.Nullable)
	}

	cls, ok := r.table.LookupClassifier(expr.Name, r.scope)
	if !ok {
		r.diagnostics = append(r.diagnostics,
			diag.Newf(diag.UnresolvedReference, expr.Pos(), "unresolved type %v", expr.Name))
		return tree.TheErrorType
	}

	if len(expr.Args) != len(cls.TypeParams) {
		r.diagnostics = append(r.diagnostics,
			diag.Newf(diag.WrongNumberOfTypeArguments, expr.Pos(),
				"%d type arguments expected for %v, found %d", len(cls.TypeParams), cls.Name, len(expr.Args)))
		return tree.TheErrorType
	}

	args := make([]tree.Type, len(expr.Args))
	for i, arg := range expr.Args {
		args[i] = r.resolve(arg)
	}
	return &tree.NominalType{Name: cls.Name, Args: args, Nullable: expr.Nullable}
}
