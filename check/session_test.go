package check

import (
	"testing"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHierarchy maps a class to its direct supertype. Supertypes take the
// same type arguments as their subclass.
type testHierarchy map[string]string

func (h testHierarchy) Supertype(ty *tree.NominalType, target Identifier) (*tree.NominalType, bool) {
	name := ty.Name.Value
	for {
		if name == target.Value {
			return &tree.NominalType{Name: NewIdentifier(name), Args: ty.Args}, true
		}
		next, ok := h[name]
		if !ok {
			return nil, false
		}
		name = next
	}
}

var hierarchy = testHierarchy{
	"ArrayList":  "List",
	"List":       "Collection",
	"String":     "CharSequence",
	"Collection": "Any",
}

func newTestSession() *Session {
	return NewSession(nil, hierarchy)
}

func TestUnifyNominal(t *testing.T) {
	s := newTestSession()
	v := s.Fresh(NewIdentifier("T"), nil)

	learned, err := s.Unify(tree.Named("List", v), tree.Named("List", tree.TypeString))
	require.NoError(t, err)
	assert.Len(t, learned, 1)
	assert.Equal(t, "String", learned[v.ID].String())
	assert.Equal(t, "Map<String, String>", s.Apply(tree.Named("Map", v, v)).String())
}

func TestUnifyMismatch(t *testing.T) {
	s := newTestSession()

	_, err := s.Unify(tree.Named("List", tree.TypeString), tree.Named("List", tree.TypeInt))
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "List<String>", mismatch.Expected.String())
	assert.Equal(t, "List<Int>", mismatch.Found.String())
}

func TestOccursCheck(t *testing.T) {
	s := newTestSession()
	v := s.Fresh(NewIdentifier("T"), nil)

	_, err := s.Unify(tree.Named("Box", v), tree.Named("Box", tree.Named("List", v)))
	var infinite *InfiniteTypeError
	require.ErrorAs(t, err, &infinite)
	assert.Equal(t, v.ID, infinite.Var.ID)
}

func TestConstrainIsAtomic(t *testing.T) {
	s := newTestSession()
	v := s.Fresh(NewIdentifier("T"), nil)

	_, err := s.Constrain(
		RelationEq{Left: v, Right: tree.TypeString},
		RelationEq{Left: v, Right: tree.TypeInt},
	)
	require.Error(t, err)
	assert.Equal(t, []*tree.TypeVar{v}, s.Unresolved([]*tree.TypeVar{v}))

	_, err = s.Unify(v, tree.TypeInt)
	require.NoError(t, err)
	assert.Empty(t, s.Unresolved([]*tree.TypeVar{v}))
}

func TestApplyIsIdempotent(t *testing.T) {
	s := newTestSession()
	a := s.Fresh(NewIdentifier("A"), nil)
	b := s.Fresh(NewIdentifier("B"), nil)

	_, err := s.Unify(a, tree.Named("List", b))
	require.NoError(t, err)
	_, err = s.Unify(b, tree.TypeString)
	require.NoError(t, err)

	ty := tree.Func(a, b)
	once := s.Apply(ty)
	assert.Equal(t, "(String) -> List<String>", once.String())
	assert.True(t, tree.Identical(once, s.Apply(once)))

	committed := s.Commit()
	assert.Equal(t, "List<String>", committed[a.ID].String())
}

func TestSubtypeThroughHierarchy(t *testing.T) {
	s := newTestSession()
	v := s.Fresh(NewIdentifier("E"), nil)

	_, err := s.Subtype(tree.Named("ArrayList", tree.TypeString), tree.Named("Collection", v))
	require.NoError(t, err)
	assert.Equal(t, "String", s.Apply(v).String())

	_, err = s.Subtype(tree.Named("List", tree.TypeString), tree.Named("ArrayList", tree.TypeString))
	assert.Error(t, err)
}

func TestSubtypeNullability(t *testing.T) {
	tests := []struct {
		name  string
		sub   tree.Type
		super tree.Type
		ok    bool
	}{
		{"non-null into nullable", tree.TypeString, tree.NullableNamed("String"), true},
		{"nullable into non-null", tree.NullableNamed("String"), tree.TypeString, false},
		{"null into nullable", tree.TypeNull, tree.NullableNamed("CharSequence"), true},
		{"null into non-null", tree.TypeNull, tree.TypeString, false},
		{"nothing into anything", tree.TypeNothing, tree.TypeString, true},
		{"anything into nullable any", tree.NullableNamed("List", tree.TypeInt), tree.TypeNullableAny, true},
		{"nullable into any", tree.NullableNamed("String"), tree.TypeAny, false},
		{"nullable function", tree.Func(tree.TypeUnit), &tree.FunctionType{Return: tree.TypeUnit, Nullable: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestSession().Subtype(tt.sub, tt.super)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNullableVariableTakesNonNullPart(t *testing.T) {
	s := newTestSession()
	v := s.Fresh(NewIdentifier("T"), nil)
	nullable := tree.WithNullable(v, true)

	_, err := s.Subtype(tree.NullableNamed("String"), nullable)
	require.NoError(t, err)
	assert.Equal(t, "String", s.Apply(v).String())
	assert.Equal(t, "String?", s.Apply(nullable).String())
}

func TestFunctionSubtypingIsContravariantInParams(t *testing.T) {
	s := newTestSession()

	_, err := s.Subtype(tree.Func(tree.TypeString, tree.TypeAny), tree.Func(tree.TypeAny, tree.TypeString))
	assert.NoError(t, err)

	_, err = s.Subtype(tree.Func(tree.TypeString, tree.TypeString), tree.Func(tree.TypeString, tree.TypeAny))
	assert.Error(t, err)
}

func TestCheckBounds(t *testing.T) {
	s := newTestSession()
	ok := s.Fresh(NewIdentifier("T"), tree.Named("CharSequence"))
	bad := s.Fresh(NewIdentifier("U"), tree.Named("CharSequence"))
	open := s.Fresh(NewIdentifier("V"), tree.Named("CharSequence"))

	_, err := s.Subtype(tree.TypeString, ok)
	require.NoError(t, err)
	require.NoError(t, s.CheckBounds([]*tree.TypeVar{ok, open}))

	_, err = s.Subtype(tree.TypeInt, bad)
	require.NoError(t, err)
	var violation *BoundViolationError
	require.ErrorAs(t, s.CheckBounds([]*tree.TypeVar{ok, bad}), &violation)
	assert.Equal(t, "Int", violation.Type.String())
}

func TestForkSeesOuterSolution(t *testing.T) {
	s := newTestSession()
	v := s.Fresh(NewIdentifier("T"), nil)

	_, err := s.Unify(v, tree.TypeInt)
	require.NoError(t, err)

	fork := s.Fork()
	w := fork.Fresh(NewIdentifier("R"), nil)
	assert.Equal(t, tree.VarID(2), w.ID)
	assert.Equal(t, "List<Int>", fork.Apply(tree.Named("List", v)).String())

	_, err = fork.Unify(w, tree.TypeString)
	require.NoError(t, err)
	assert.Equal(t, "String", fork.Apply(w).String())
	assert.Equal(t, "R#2", s.Apply(w).String())

	next := s.Fresh(NewIdentifier("U"), nil)
	assert.Equal(t, tree.VarID(3), next.ID)
}
