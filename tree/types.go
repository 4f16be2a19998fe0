package tree

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	. "github.com/garciat/kinfer/common"
)

// Type is a resolved type. Values are immutable; operations return copies.
type Type interface {
	_Type()
	String() string
}

type TypeBase struct{}

func (*TypeBase) _Type() {}

// ========================

// NominalType is a class or trait type applied to arguments, e.g. `Map<K, V>?`.
type NominalType struct {
	TypeBase
	Name     Identifier
	Args     []Type
	Nullable bool
}

func (t *NominalType) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name.Value)
	if len(t.Args) > 0 {
		sb.WriteString("<")
		sb.WriteString(joinTypes(t.Args))
		sb.WriteString(">")
	}
	if t.Nullable {
		sb.WriteString("?")
	}
	return sb.String()
}

type VarID int

// TypeVar is an inference placeholder owned by one solver session.
type TypeVar struct {
	TypeBase
	ID       VarID
	Hint     Identifier
	Bound    Type
	Nullable bool
}

func (t *TypeVar) String() string {
	if t.Nullable {
		return fmt.Sprintf("%s#%d?", t.Hint.Value, t.ID)
	}
	return fmt.Sprintf("%s#%d", t.Hint.Value, t.ID)
}

// TypeParam is a declared type parameter. Inside its declaring function it
// is rigid; at call sites it is instantiated with a fresh TypeVar.
type TypeParam struct {
	TypeBase
	Name     Identifier
	Index    int
	Bound    Type
	Nullable bool
	// Origin points at the unique declaration; nullable copies share it.
	Origin *TypeParam
}

func (t *TypeParam) Decl() *TypeParam {
	if t.Origin != nil {
		return t.Origin
	}
	return t
}

func (t *TypeParam) String() string {
	if t.Nullable {
		return t.Name.Value + "?"
	}
	return t.Name.Value
}

type FunctionType struct {
	TypeBase
	Params   []Type
	Return   Type
	Nullable bool
}

func (t *FunctionType) String() string {
	s := fmt.Sprintf("(%s) -> %v", joinTypes(t.Params), t.Return)
	if t.Nullable {
		return "(" + s + ")?"
	}
	return s
}

// ErrorType stands in for the result of a call that failed to resolve, so
// that enclosing expressions keep checking without cascading diagnostics.
type ErrorType struct {
	TypeBase
}

func (*ErrorType) String() string {
	return "<error>"
}

var TheErrorType = &ErrorType{}

func joinTypes(types []Type) string {
	parts := make([]string, len(types))
	for i, ty := range types {
		parts[i] = ty.String()
	}
	return strings.Join(parts, ", ")
}

// ========================

var (
	NameAny     = NewIdentifier("Any")
	NameNothing = NewIdentifier("Nothing")
	NameUnit    = NewIdentifier("Unit")
	NameInt     = NewIdentifier("Int")
	NameLong    = NewIdentifier("Long")
	NameDouble  = NewIdentifier("Double")
	NameBoolean = NewIdentifier("Boolean")
	NameChar    = NewIdentifier("Char")
	NameString  = NewIdentifier("String")
)

func Named(name string, args ...Type) *NominalType {
	return &NominalType{Name: NewIdentifier(name), Args: args}
}

func NullableNamed(name string, args ...Type) *NominalType {
	return &NominalType{Name: NewIdentifier(name), Args: args, Nullable: true}
}

func Func(ret Type, params ...Type) *FunctionType {
	return &FunctionType{Params: params, Return: ret}
}

var (
	TypeAny         = Named("Any")
	TypeNullableAny = NullableNamed("Any")
	TypeNothing     = Named("Nothing")
	TypeNull        = NullableNamed("Nothing")
	TypeUnit        = Named("Unit")
	TypeInt         = Named("Int")
	TypeLong        = Named("Long")
	TypeDouble      = Named("Double")
	TypeBoolean     = Named("Boolean")
	TypeChar        = Named("Char")
	TypeString      = Named("String")
)

// ========================

func IsNullable(ty Type) bool {
	switch ty := ty.(type) {
	case *NominalType:
		return ty.Nullable
	case *FunctionType:
		return ty.Nullable
	case *TypeVar:
		return ty.Nullable
	case *TypeParam:
		return ty.Nullable
	default:
		return false
	}
}

// WithNullable returns ty with its top-level nullability set to nullable.
func WithNullable(ty Type, nullable bool) Type {
	if IsNullable(ty) == nullable {
		return ty
	}
	switch ty := ty.(type) {
	case *NominalType:
		return &NominalType{Name: ty.Name, Args: ty.Args, Nullable: nullable}
	case *FunctionType:
		return &FunctionType{Params: ty.Params, Return: ty.Return, Nullable: nullable}
	case *TypeVar:
		return &TypeVar{ID: ty.ID, Hint: ty.Hint, Bound: ty.Bound, Nullable: nullable}
	case *TypeParam:
		return &TypeParam{Name: ty.Name, Index: ty.Index, Bound: ty.Bound, Nullable: nullable, Origin: ty.Decl()}
	case *ErrorType:
		return ty
	default:
		panic(fmt.Sprintf("unreachable: %v", spew.Sdump(ty)))
	}
}

func NonNull(ty Type) Type {
	return WithNullable(ty, false)
}

func IsUnit(ty Type) bool {
	n, ok := ty.(*NominalType)
	return ok && !n.Nullable && n.Name == NameUnit
}

func IsNothing(ty Type) bool {
	n, ok := ty.(*NominalType)
	return ok && n.Name == NameNothing
}

func IsError(ty Type) bool {
	_, ok := ty.(*ErrorType)
	return ok
}

// Identical reports structural equality. Type parameters are equal when they
// come from the same declaration; type variables when their ids match.
func Identical(a, b Type) bool {
	switch a := a.(type) {
	case *NominalType:
		b, ok := b.(*NominalType)
		if !ok || a.Name != b.Name || a.Nullable != b.Nullable || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Identical(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *FunctionType:
		b, ok := b.(*FunctionType)
		if !ok || a.Nullable != b.Nullable || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Identical(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Identical(a.Return, b.Return)
	case *TypeVar:
		b, ok := b.(*TypeVar)
		return ok && a.ID == b.ID && a.Nullable == b.Nullable
	case *TypeParam:
		b, ok := b.(*TypeParam)
		return ok && a.Decl() == b.Decl() && a.Nullable == b.Nullable
	case *ErrorType:
		_, ok := b.(*ErrorType)
		return ok
	default:
		panic(fmt.Sprintf("unreachable: %v", spew.Sdump(a)))
	}
}

// ContainsError reports whether an ErrorType occurs anywhere in ty.
func ContainsError(ty Type) bool {
	found := false
	Walk(ty, func(t Type) {
		if IsError(t) {
			found = true
		}
	})
	return found
}

// Walk visits ty and all of its component types, outermost first.
func Walk(ty Type, visit func(Type)) {
	visit(ty)
	switch ty := ty.(type) {
	case *NominalType:
		for _, arg := range ty.Args {
			Walk(arg, visit)
		}
	case *FunctionType:
		for _, param := range ty.Params {
			Walk(param, visit)
		}
		Walk(ty.Return, visit)
	}
}
