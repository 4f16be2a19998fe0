package symbols

import (
	. "github.com/garciat/kinfer/common"
)

type ScopeKind int

const (
	ScopeKindDefaultImports ScopeKind = iota
	ScopeKindPackage
	ScopeKindFile
	ScopeKindClass
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeKindDefaultImports:
		return "ScopeKindDefaultImports"
	case ScopeKindPackage:
		return "ScopeKindPackage"
	case ScopeKindFile:
		return "ScopeKindFile"
	case ScopeKindClass:
		return "ScopeKindClass"
	default:
		panic("unreachable")
	}
}

// Scope maps names to symbols. A symbol is owned by the scope it was
// registered in but may be visible in other scopes through imports.
type Scope struct {
	Kind    ScopeKind
	Name    string
	Package FqName
	Parent  *Scope
	// Class is the classifier whose members live here (class scopes only).
	Class *Symbol

	table *Table
	names map[Identifier][]SymbolID
	order []SymbolID
}

func (s *Scope) add(sym *Symbol) {
	for _, id := range s.names[sym.Name] {
		if id == sym.ID {
			return
		}
	}
	s.names[sym.Name] = append(s.names[sym.Name], sym.ID)
	s.order = append(s.order, sym.ID)
}

// Local returns the symbols named name in this scope only.
func (s *Scope) Local(name Identifier) []*Symbol {
	ids := s.names[name]
	out := make([]*Symbol, len(ids))
	for i, id := range ids {
		out[i] = s.table.Symbol(id)
	}
	return out
}

// All returns every symbol of this scope in registration order.
func (s *Scope) All() []*Symbol {
	out := make([]*Symbol, len(s.order))
	for i, id := range s.order {
		out[i] = s.table.Symbol(id)
	}
	return out
}

func (s *Scope) String() string {
	if s.Name == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + "(" + s.Name + ")"
}
