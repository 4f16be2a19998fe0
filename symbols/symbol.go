package symbols

import (
	"fmt"
	"strings"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/tree"
)

type SymbolID int

type SymbolKind int

const (
	KindFunction SymbolKind = iota
	KindProperty
	KindClass
	KindTrait
	KindConstructor
)

func (k SymbolKind) String() string {
	switch k {
	case KindFunction:
		return "fun"
	case KindProperty:
		return "val"
	case KindClass:
		return "class"
	case KindTrait:
		return "trait"
	case KindConstructor:
		return "constructor"
	default:
		panic("unreachable")
	}
}

func (k SymbolKind) IsClassifier() bool {
	return k == KindClass || k == KindTrait
}

func (k SymbolKind) IsCallable() bool {
	return k == KindFunction || k == KindConstructor
}

type Param struct {
	Name       Identifier
	Type       tree.Type
	HasDefault bool
}

// Symbol is a resolved declaration. Symbols are created once by Register and
// never mutated afterwards.
type Symbol struct {
	ID      SymbolID
	Name    Identifier
	Kind    SymbolKind
	Package FqName
	// Owner is the scope the symbol was registered in. Scopes own their
	// symbols through the table, so this is a back reference only.
	Owner *Scope

	TypeParams []*tree.TypeParam
	Receiver   tree.Type
	IsMember   bool
	Params     []Param
	// Return is the result type of a function or the type of a property.
	Return tree.Type

	// Classifiers only.
	ClassType  *tree.NominalType
	Supertypes []*tree.NominalType
	Ancestors  map[Identifier]*tree.NominalType
	// AncestorOrder lists ancestors nearest first, starting with the class.
	AncestorOrder []Identifier
	Members       *Scope

	Decl tree.Decl
	Span Span
}

func (s *Symbol) IsExtension() bool {
	return s.Receiver != nil && !s.IsMember
}

func (s *Symbol) Arity() int {
	return len(s.Params)
}

// RequiredArity is the number of parameters without a default value.
func (s *Symbol) RequiredArity() int {
	n := 0
	for _, p := range s.Params {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

func (s *Symbol) ParamTypes() []tree.Type {
	return MapSlice(s.Params, func(p Param) tree.Type { return p.Type })
}

// Signature is the callable shape of the symbol, without the receiver.
func (s *Symbol) Signature() tree.Type {
	switch s.Kind {
	case KindFunction, KindConstructor:
		return &tree.FunctionType{Params: s.ParamTypes(), Return: s.Return}
	case KindProperty:
		return s.Return
	default:
		return s.ClassType
	}
}

func (s *Symbol) String() string {
	var sb strings.Builder
	sb.WriteString(s.Kind.String())
	sb.WriteString(" ")
	if len(s.TypeParams) > 0 && s.Kind != KindConstructor && !s.Kind.IsClassifier() {
		names := MapSlice(s.TypeParams, func(p *tree.TypeParam) string { return p.Name.Value })
		sb.WriteString("<" + strings.Join(names, ", ") + "> ")
	}
	if s.Receiver != nil {
		recv := s.Receiver.String()
		if _, ok := s.Receiver.(*tree.FunctionType); ok {
			recv = "(" + recv + ")"
		}
		sb.WriteString(recv + ".")
	}
	sb.WriteString(s.Name.Value)
	switch s.Kind {
	case KindFunction, KindConstructor:
		params := MapSlice(s.Params, func(p Param) string {
			return fmt.Sprintf("%s: %v", p.Name, p.Type)
		})
		fmt.Fprintf(&sb, "(%s): %v", strings.Join(params, ", "), s.Return)
	case KindProperty:
		fmt.Fprintf(&sb, ": %v", s.Return)
	default:
		if len(s.ClassType.Args) > 0 {
			sb.Reset()
			fmt.Fprintf(&sb, "%s %v", s.Kind, s.ClassType)
		}
	}
	return sb.String()
}
