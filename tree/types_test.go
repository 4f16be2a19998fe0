package tree

import (
	"testing"

	. "github.com/garciat/kinfer/common"
	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	k := &TypeParam{Name: NewIdentifier("K")}
	v := &TypeParam{Name: NewIdentifier("V"), Index: 1}

	tests := []struct {
		ty   Type
		want string
	}{
		{TypeString, "String"},
		{NullableNamed("A", TypeInt), "A<Int>?"},
		{NullableNamed("Map", k, v), "Map<K, V>?"},
		{Func(TypeUnit, TypeString), "(String) -> Unit"},
		{&FunctionType{Params: []Type{TypeInt}, Return: TypeUnit, Nullable: true}, "((Int) -> Unit)?"},
		{&TypeVar{ID: 3, Hint: NewIdentifier("T")}, "T#3"},
		{WithNullable(k, true), "K?"},
		{TheErrorType, "<error>"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ty.String())
		})
	}
}

func TestIdentical(t *testing.T) {
	tp := &TypeParam{Name: NewIdentifier("T")}
	other := &TypeParam{Name: NewIdentifier("T")}

	assert.True(t, Identical(Named("List", TypeString), Named("List", TypeString)))
	assert.False(t, Identical(Named("List", TypeString), NullableNamed("List", TypeString)))
	assert.False(t, Identical(Named("List", TypeString), Named("List", TypeInt)))
	assert.True(t, Identical(Func(TypeUnit, tp), Func(TypeUnit, tp)))
	assert.False(t, Identical(tp, other))
	assert.True(t, Identical(WithNullable(tp, true), WithNullable(tp, true)))
	assert.False(t, Identical(tp, WithNullable(tp, true)))
}

func TestWithNullable(t *testing.T) {
	ty := Named("List", TypeString)
	n := WithNullable(ty, true)

	assert.True(t, IsNullable(n))
	assert.False(t, IsNullable(ty), "original must not change")
	assert.Same(t, ty, WithNullable(ty, false))
	assert.Equal(t, "List<String>", NonNull(n).String())
}

func TestReplaceParams(t *testing.T) {
	tp := &TypeParam{Name: NewIdentifier("T")}
	arrayOfT := Named("Array", tp)
	fn := Func(TypeUnit, WithNullable(tp, true))

	m := ParamMap([]*TypeParam{tp}, []Type{TypeString})

	assert.Equal(t, "Array<String>", ReplaceParams(arrayOfT, m).String())
	assert.Equal(t, "(String?) -> Unit", ReplaceParams(fn, m).String())
	assert.Equal(t, "Array<T>", arrayOfT.String(), "replacement is pure")
}

func TestContainsError(t *testing.T) {
	assert.True(t, ContainsError(Named("List", TheErrorType)))
	assert.False(t, ContainsError(Func(TypeUnit, TypeInt)))
}
