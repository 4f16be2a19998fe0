package check

import (
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/tree"
)

// Hierarchy answers subtyping questions between classifiers. The frozen
// symbol table implements it.
type Hierarchy interface {
	Supertype(ty *tree.NominalType, target Identifier) (*tree.NominalType, bool)
}

// Session is one inference problem, typically one call site. It owns the
// type variables it creates and the solution found so far.
type Session struct {
	fresh *int
	hier  Hierarchy
	subst Subst
}

func NewSession(fresh *int, hier Hierarchy) *Session {
	if fresh == nil {
		fresh = Ptr(0)
	}
	return &Session{fresh: fresh, hier: hier, subst: Subst{}}
}

func (s *Session) Fresh(hint Identifier, bound tree.Type) *tree.TypeVar {
	*s.fresh++
	return &tree.TypeVar{ID: tree.VarID(*s.fresh), Hint: hint, Bound: bound}
}

// Instantiate replaces declared type parameters with fresh variables. Bounds
// may mention sibling parameters, so they are rewritten after all variables
// exist.
func (s *Session) Instantiate(params []*tree.TypeParam) (map[*tree.TypeParam]tree.Type, []*tree.TypeVar) {
	m := make(map[*tree.TypeParam]tree.Type, len(params))
	vars := make([]*tree.TypeVar, len(params))
	for i, p := range params {
		vars[i] = s.Fresh(p.Name, nil)
		m[p.Decl()] = vars[i]
	}
	for i, p := range params {
		if p.Bound != nil {
			vars[i].Bound = tree.ReplaceParams(p.Bound, m)
		}
	}
	return m, vars
}

// Unify solves expected = actual. On failure the session is unchanged.
func (s *Session) Unify(expected, actual tree.Type) (Subst, error) {
	return s.Constrain(RelationEq{Left: expected, Right: actual})
}

// Subtype solves sub <: super. On failure the session is unchanged.
func (s *Session) Subtype(sub, super tree.Type) (Subst, error) {
	return s.Constrain(RelationSubtype{Sub: sub, Super: super})
}

// Constrain solves all relations at once and returns the newly learned
// bindings.
func (s *Session) Constrain(rels ...Relation) (Subst, error) {
	u := &unifier{hier: s.hier, subst: s.subst.Copy()}
	for _, rel := range rels {
		var err error
		switch rel := rel.(type) {
		case RelationEq:
			err = u.eq(rel.Left, rel.Right)
		case RelationSubtype:
			err = u.sub(rel.Sub, rel.Super)
		default:
			panic("unreachable")
		}
		if err != nil {
			UnifyPrintf("failed %v: %v\n", rel, err)
			return nil, err
		}
	}

	learned := Subst{}
	for k, v := range u.subst {
		if _, ok := s.subst[k]; !ok {
			learned[k] = v
		}
	}
	s.subst = u.subst
	UnifyPrintf("learned: %v\n", learned)
	return learned, nil
}

func (s *Session) Apply(ty tree.Type) tree.Type {
	return s.subst.Apply(ty)
}

// Fork starts a session that sees the solution found so far and shares the
// variable counter. Bindings made in the fork stay in the fork.
func (s *Session) Fork() *Session {
	return &Session{
		fresh: s.fresh,
		hier:  s.hier,
		subst: s.subst.Copy(),
	}
}

// Commit returns the current solution. Later changes to the session do not
// affect it.
func (s *Session) Commit() Subst {
	return s.subst.Simplify()
}

// Unresolved lists the variables among vars that still have no solution.
func (s *Session) Unresolved(vars []*tree.TypeVar) []*tree.TypeVar {
	var out []*tree.TypeVar
	for _, v := range vars {
		if _, ok := s.Apply(v).(*tree.TypeVar); ok {
			out = append(out, v)
		}
	}
	return out
}

// CheckBounds verifies the solved variables against their declared upper
// bounds.
func (s *Session) CheckBounds(vars []*tree.TypeVar) error {
	for _, v := range vars {
		if v.Bound == nil {
			continue
		}
		actual := s.Apply(v)
		if _, ok := actual.(*tree.TypeVar); ok {
			continue
		}
		bound := s.Apply(v.Bound)
		if _, err := s.Subtype(actual, bound); err != nil {
			return &BoundViolationError{Var: v, Type: actual, Bound: bound}
		}
	}
	return nil
}
