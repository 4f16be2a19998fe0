package check

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/garciat/kinfer/tree"
)

type unifier struct {
	hier  Hierarchy
	subst Subst
}

func mismatch(expected, found tree.Type) error {
	return &TypeMismatchError{Expected: expected, Found: found}
}

func (u *unifier) bind(v *tree.TypeVar, ty tree.Type) error {
	if other, ok := ty.(*tree.TypeVar); ok && other.ID == v.ID {
		if other.Nullable == v.Nullable {
			return nil
		}
		return mismatch(v, ty)
	}
	if occurs(v.ID, ty) {
		return &InfiniteTypeError{Var: v, Type: ty}
	}
	UnifyPrintf("bind %v := %v\n", v, ty)
	u.subst[v.ID] = ty
	return nil
}

// eq solves left = right structurally.
func (u *unifier) eq(left, right tree.Type) error {
	left = u.subst.Apply(left)
	right = u.subst.Apply(right)

	UnifyPrintf("? %v = %v %v\n", left, right, u.subst)

	if tree.IsError(left) || tree.IsError(right) {
		return nil
	}
	if tree.Identical(left, right) {
		return nil
	}

	if v, ok := left.(*tree.TypeVar); ok {
		return u.bindEq(v, right)
	}
	if v, ok := right.(*tree.TypeVar); ok {
		return u.bindEq(v, left)
	}

	switch l := left.(type) {
	case *tree.NominalType:
		r, ok := right.(*tree.NominalType)
		if !ok || l.Name != r.Name || l.Nullable != r.Nullable || len(l.Args) != len(r.Args) {
			return mismatch(left, right)
		}
		for i := range l.Args {
			if err := u.eq(l.Args[i], r.Args[i]); err != nil {
				return wrapMismatch(err, left, right)
			}
		}
		return nil
	case *tree.FunctionType:
		r, ok := right.(*tree.FunctionType)
		if !ok || l.Nullable != r.Nullable || len(l.Params) != len(r.Params) {
			return mismatch(left, right)
		}
		for i := range l.Params {
			if err := u.eq(l.Params[i], r.Params[i]); err != nil {
				return wrapMismatch(err, left, right)
			}
		}
		if err := u.eq(l.Return, r.Return); err != nil {
			return wrapMismatch(err, left, right)
		}
		return nil
	case *tree.TypeParam:
		return mismatch(left, right)
	default:
		panic(fmt.Sprintf("unreachable: %v", spew.Sdump(left)))
	}
}

// bindEq binds v so that v = ty. A nullable variable `T?` only matches a
// nullable type, and T gets the non-null part.
func (u *unifier) bindEq(v *tree.TypeVar, ty tree.Type) error {
	if !v.Nullable {
		return u.bind(v, ty)
	}
	if !tree.IsNullable(ty) {
		return mismatch(v, ty)
	}
	return u.bind(nonNullVar(v), tree.NonNull(ty))
}

func nonNullVar(v *tree.TypeVar) *tree.TypeVar {
	return tree.NonNull(v).(*tree.TypeVar)
}

// sub solves sub <: super, the relation used for argument passing.
func (u *unifier) sub(sub, super tree.Type) error {
	sub = u.subst.Apply(sub)
	super = u.subst.Apply(super)

	UnifyPrintf("? %v <: %v %v\n", sub, super, u.subst)

	if tree.IsError(sub) || tree.IsError(super) {
		return nil
	}
	if tree.Identical(sub, super) {
		return nil
	}

	if v, ok := super.(*tree.TypeVar); ok {
		if v.Nullable {
			return u.bind(nonNullVar(v), tree.NonNull(sub))
		}
		return u.bind(v, sub)
	}
	if v, ok := sub.(*tree.TypeVar); ok {
		if !v.Nullable {
			return u.bind(v, super)
		}
		if !tree.IsNullable(super) {
			return mismatch(super, sub)
		}
		return u.bind(nonNullVar(v), tree.NonNull(super))
	}

	if tree.IsNothing(sub) {
		if tree.IsNullable(sub) && !tree.IsNullable(super) {
			return mismatch(super, sub)
		}
		return nil
	}
	if n, ok := super.(*tree.NominalType); ok && n.Name == tree.NameAny && n.Nullable {
		return nil
	}
	if tree.IsNullable(sub) && !tree.IsNullable(super) {
		return mismatch(super, sub)
	}

	if p, ok := sub.(*tree.TypeParam); ok {
		// A type parameter is a subtype of whatever its bound is.
		if q, ok := super.(*tree.TypeParam); ok {
			if q.Decl() == p.Decl() && (q.Nullable || !p.Nullable) {
				return nil
			}
			return mismatch(super, sub)
		}
		bound := p.Bound
		if bound == nil {
			bound = tree.TypeNullableAny
		}
		if err := u.sub(tree.WithNullable(bound, p.Nullable || tree.IsNullable(bound)), super); err != nil {
			return wrapMismatch(err, super, sub)
		}
		return nil
	}

	switch s := super.(type) {
	case *tree.NominalType:
		if s.Name == tree.NameAny {
			return nil
		}
		n, ok := sub.(*tree.NominalType)
		if !ok {
			return mismatch(super, sub)
		}
		up, ok := u.hier.Supertype(tree.NonNull(n).(*tree.NominalType), s.Name)
		if !ok || len(up.Args) != len(s.Args) {
			return mismatch(super, sub)
		}
		for i := range s.Args {
			if err := u.eq(s.Args[i], up.Args[i]); err != nil {
				return wrapMismatch(err, super, sub)
			}
		}
		return nil
	case *tree.FunctionType:
		f, ok := sub.(*tree.FunctionType)
		if !ok || len(f.Params) != len(s.Params) {
			return mismatch(super, sub)
		}
		for i := range s.Params {
			if err := u.sub(s.Params[i], f.Params[i]); err != nil {
				return wrapMismatch(err, super, sub)
			}
		}
		if err := u.sub(f.Return, s.Return); err != nil {
			return wrapMismatch(err, super, sub)
		}
		return nil
	case *tree.TypeParam:
		return mismatch(super, sub)
	default:
		panic(fmt.Sprintf("unreachable: %v", spew.Sdump(super)))
	}
}

// wrapMismatch reports a nested mismatch in terms of the outer types.
// Occurs-check failures are kept as they are.
func wrapMismatch(err error, expected, found tree.Type) error {
	var infinite *InfiniteTypeError
	if errors.As(err, &infinite) {
		return err
	}
	return mismatch(expected, found)
}
