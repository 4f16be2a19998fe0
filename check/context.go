package check

import (
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/tree"
)

type ScopeKind int

const (
	ScopeKindFile ScopeKind = iota
	ScopeKindFunction
	ScopeKindLambda
	ScopeKindBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeKindFile:
		return "ScopeKindFile"
	case ScopeKindFunction:
		return "ScopeKindFunction"
	case ScopeKindLambda:
		return "ScopeKindLambda"
	case ScopeKindBlock:
		return "ScopeKindBlock"
	default:
		panic("unreachable")
	}
}

// VarContext holds local variables and parameters. Declarations live in the
// symbol table instead.
type VarContext struct {
	ScopeKind ScopeKind
	Parent    *VarContext
	Types     map[Identifier]tree.Type
}

func NewVarContext() *VarContext {
	return &VarContext{
		ScopeKind: ScopeKindFile,
		Types:     map[Identifier]tree.Type{},
	}
}

func (c *VarContext) Fork(kind ScopeKind) *VarContext {
	return &VarContext{
		ScopeKind: kind,
		Parent:    c,
		Types:     map[Identifier]tree.Type{},
	}
}

func (c *VarContext) Lookup(name Identifier) (tree.Type, bool) {
	ty, ok := c.Types[name]
	if ok {
		return ty, true
	}
	if c.Parent != nil {
		return c.Parent.Lookup(name)
	}
	return nil, false
}

// Def defines name in this context. It reports false when name is already
// defined here; outer definitions are shadowed silently.
func (c *VarContext) Def(name Identifier, ty tree.Type) bool {
	if name == IgnoreIdent {
		return true
	}
	if _, ok := c.Types[name]; ok {
		return false
	}
	c.Types[name] = ty
	return true
}

func (c *VarContext) Iter(f func(Identifier, tree.Type)) {
	if c.Parent != nil {
		c.Parent.Iter(f)
	}
	for name, ty := range c.Types {
		f(name, ty)
	}
}
