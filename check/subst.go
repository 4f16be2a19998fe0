package check

import (
	"fmt"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/garciat/kinfer/tree"
)

// Subst maps type variables to their solutions. Bindings may refer to other
// variables; Apply follows them to the end.
type Subst map[tree.VarID]tree.Type

func (s Subst) String() string {
	ids := make([]tree.VarID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	parts := make([]string, 0, len(s))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("#%d -> %v", id, s[id]))
	}
	return fmt.Sprintf("{{ %v }}", strings.Join(parts, " ; "))
}

func (s Subst) Copy() Subst {
	out := make(Subst, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Apply replaces every bound variable in ty. Applying twice gives the same
// result as applying once.
func (s Subst) Apply(ty tree.Type) tree.Type {
	if len(s) == 0 {
		return ty
	}
	switch ty := ty.(type) {
	case *tree.TypeVar:
		bound, ok := s[ty.ID]
		if !ok {
			return ty
		}
		out := s.Apply(bound)
		if ty.Nullable {
			return tree.WithNullable(out, true)
		}
		return out
	case *tree.NominalType:
		if len(ty.Args) == 0 {
			return ty
		}
		args := make([]tree.Type, len(ty.Args))
		for i, arg := range ty.Args {
			args[i] = s.Apply(arg)
		}
		return &tree.NominalType{Name: ty.Name, Args: args, Nullable: ty.Nullable}
	case *tree.FunctionType:
		params := make([]tree.Type, len(ty.Params))
		for i, param := range ty.Params {
			params[i] = s.Apply(param)
		}
		return &tree.FunctionType{Params: params, Return: s.Apply(ty.Return), Nullable: ty.Nullable}
	case *tree.TypeParam, *tree.ErrorType:
		return ty
	default:
		panic(fmt.Sprintf("unreachable: %v", spew.Sdump(ty)))
	}
}

// Simplify resolves chains so that no binding mentions a bound variable.
func (s Subst) Simplify() Subst {
	next := make(Subst, len(s))
	for k, v := range s {
		next[k] = s.Apply(v)
	}
	return next
}

func occurs(id tree.VarID, ty tree.Type) bool {
	found := false
	tree.Walk(ty, func(t tree.Type) {
		if v, ok := t.(*tree.TypeVar); ok && v.ID == id {
			found = true
		}
	})
	return found
}
