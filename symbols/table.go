package symbols

import (
	"fmt"

	"github.com/garciat/kinfer/algos"
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/tree"
)

// Table owns every symbol of a session in an arena indexed by SymbolID.
// It is written during the declaration pass only; Freeze makes it read-only
// so that files can be checked in parallel without locking.
type Table struct {
	symbols  []*Symbol
	classes  map[Identifier]SymbolID
	packages map[FqName]*Scope
	defaults *Scope
	frozen   bool
}

func NewTable() *Table {
	t := &Table{}
	t.Reset()
	return t
}

// Reset drops every symbol and scope, returning the table to its initial
// writable state.
func (t *Table) Reset() {
	t.symbols = nil
	t.classes = map[Identifier]SymbolID{}
	t.packages = map[FqName]*Scope{}
	t.defaults = t.newScope(ScopeKindDefaultImports, "", RootFqName, nil)
	t.frozen = false
}

func (t *Table) Freeze() {
	t.frozen = true
}

func (t *Table) Frozen() bool {
	return t.frozen
}

func (t *Table) Len() int {
	return len(t.symbols)
}

func (t *Table) Symbol(id SymbolID) *Symbol {
	return t.symbols[id]
}

func (t *Table) newScope(kind ScopeKind, name string, pkg FqName, parent *Scope) *Scope {
	return &Scope{
		Kind:    kind,
		Name:    name,
		Package: pkg,
		Parent:  parent,
		table:   t,
		names:   map[Identifier][]SymbolID{},
	}
}

// DefaultImports is the scope that every package scope falls back to.
func (t *Table) DefaultImports() *Scope {
	return t.defaults
}

// PackageScope returns the scope of a package, creating it if needed.
func (t *Table) PackageScope(name FqName) (*Scope, error) {
	if scope, ok := t.packages[name]; ok {
		return scope, nil
	}
	if t.frozen {
		return nil, ErrFrozen
	}
	scope := t.newScope(ScopeKindPackage, string(name), name, t.defaults)
	t.packages[name] = scope
	return scope, nil
}

func (t *Table) HasPackage(name FqName) bool {
	_, ok := t.packages[name]
	return ok
}

func (t *Table) NewFileScope(path string, pkg *Scope) (*Scope, error) {
	if t.frozen {
		return nil, ErrFrozen
	}
	return t.newScope(ScopeKindFile, path, pkg.Package, pkg), nil
}

// Register adds sym to scope. Classifiers get their member scope and an
// ancestor set from the supertypes known so far; SetSupertypes completes
// classes whose supertypes are resolved after registration.
func (t *Table) Register(scope *Scope, sym *Symbol) (*Symbol, error) {
	if t.frozen {
		return nil, ErrFrozen
	}

	for _, existing := range scope.Local(sym.Name) {
		if conflicts(sym, existing) {
			return nil, &DuplicateSymbolError{Symbol: sym, Existing: existing}
		}
	}
	if sym.Kind.IsClassifier() {
		if id, ok := t.classes[sym.Name]; ok {
			return nil, &DuplicateSymbolError{Symbol: sym, Existing: t.symbols[id]}
		}
	}

	sym.ID = SymbolID(len(t.symbols))
	sym.Owner = scope
	sym.Package = scope.Package

	if sym.Kind.IsClassifier() {
		t.computeAncestors(sym)
		sym.Members = t.newScope(ScopeKindClass, sym.Name.Value, scope.Package, scope)
		sym.Members.Class = sym
		t.classes[sym.Name] = sym.ID
	}

	t.symbols = append(t.symbols, sym)
	scope.add(sym)

	if scope.Kind == ScopeKindPackage && t.isDefaultPackage(scope.Package) {
		t.defaults.add(sym)
	}

	return sym, nil
}

// DefaultPackages are imported into every file.
var DefaultPackages = []FqName{"kotlin", "kotlin.collections", "java.lang"}

func (t *Table) isDefaultPackage(name FqName) bool {
	for _, p := range DefaultPackages {
		if p == name {
			return true
		}
	}
	return false
}

// Import makes symbols of another package visible in a file scope.
func (t *Table) Import(file *Scope, path FqName, all bool, alias Identifier) error {
	if t.frozen {
		return ErrFrozen
	}
	if all {
		pkg, ok := t.packages[path]
		if !ok {
			return &UnresolvedImportError{Path: path}
		}
		for _, sym := range pkg.All() {
			file.add(sym)
		}
		return nil
	}

	pkg, ok := t.packages[path.Parent()]
	if !ok {
		return &UnresolvedImportError{Path: path}
	}
	found := pkg.Local(path.ShortName())
	if len(found) == 0 {
		return &UnresolvedImportError{Path: path}
	}
	for _, sym := range found {
		if alias.Value != "" && alias != sym.Name {
			file.names[alias] = append(file.names[alias], sym.ID)
			file.order = append(file.order, sym.ID)
			continue
		}
		file.add(sym)
	}
	return nil
}

// SetSupertypes replaces the supertypes of a registered classifier and
// recomputes its ancestors. The ancestors of the supertypes must already be
// complete.
func (t *Table) SetSupertypes(sym *Symbol, supertypes []*tree.NominalType) error {
	if t.frozen {
		return ErrFrozen
	}
	if !sym.Kind.IsClassifier() {
		return fmt.Errorf("%v is not a class or trait", sym.Name)
	}
	sym.Supertypes = supertypes
	t.computeAncestors(sym)
	return nil
}

func (t *Table) computeAncestors(sym *Symbol) {
	ancestors := map[Identifier]*tree.NominalType{sym.Name: sym.ClassType}
	order := []Identifier{sym.Name}

	add := func(name Identifier, ty *tree.NominalType) {
		if _, ok := ancestors[name]; ok {
			return
		}
		ancestors[name] = ty
		order = append(order, name)
	}

	for _, st := range sym.Supertypes {
		add(st.Name, st)
	}
	for _, st := range sym.Supertypes {
		stSym, ok := t.Classifier(st.Name)
		if !ok {
			continue
		}
		m := tree.ParamMap(stSym.TypeParams, st.Args)
		for _, name := range stSym.AncestorOrder {
			add(name, tree.ReplaceParams(stSym.Ancestors[name], m).(*tree.NominalType))
		}
	}
	if sym.Name != tree.NameAny {
		add(tree.NameAny, tree.TypeAny)
	}

	sym.Ancestors = ancestors
	sym.AncestorOrder = order
}

// ========================

func (t *Table) Classifier(name Identifier) (*Symbol, bool) {
	id, ok := t.classes[name]
	if !ok {
		return nil, false
	}
	return t.symbols[id], true
}

// LookupClassifier finds a class or trait visible from scope.
func (t *Table) LookupClassifier(name Identifier, scope *Scope) (*Symbol, bool) {
	for s := scope; s != nil; s = s.Parent {
		for _, sym := range s.Local(name) {
			if sym.Kind.IsClassifier() {
				return sym, true
			}
		}
	}
	return nil, false
}

// Lookup returns all symbols named name visible from scope, innermost first.
// An inner symbol hides an outer one only when both have the same shape
// (kind, receiver presence and arity); otherwise both stay visible as
// overloads.
func (t *Table) Lookup(name Identifier, scope *Scope) []*Symbol {
	var out []*Symbol
	for s := scope; s != nil; s = s.Parent {
		var level []*Symbol
		for _, sym := range s.Local(name) {
			if !shadowed(sym, out) {
				level = append(level, sym)
			}
		}
		out = append(out, level...)
	}
	return algos.UniqBy(out, func(sym *Symbol) SymbolID { return sym.ID })
}

// Extensions returns the extension functions or properties named name
// visible from scope.
func (t *Table) Extensions(name Identifier, scope *Scope, kind SymbolKind) []*Symbol {
	return Filter(t.Lookup(name, scope), func(s *Symbol) bool {
		return s.IsExtension() && s.Kind == kind
	})
}

// Members returns the members named name of the class of ty and of its
// ancestors. A member hides an ancestor member of the same shape.
func (t *Table) Members(ty *tree.NominalType, name Identifier, kind SymbolKind) []*Symbol {
	cls, ok := t.Classifier(ty.Name)
	if !ok {
		return nil
	}
	var out []*Symbol
	for _, ancName := range cls.AncestorOrder {
		anc, ok := t.Classifier(ancName)
		if !ok {
			continue
		}
		for _, member := range anc.Members.Local(name) {
			if member.Kind == kind && !shadowed(member, out) {
				out = append(out, member)
			}
		}
	}
	return out
}

// IsA is a set-membership test against the precomputed ancestor set.
func (t *Table) IsA(sub, super Identifier) bool {
	if super == tree.NameAny || sub == super {
		return true
	}
	cls, ok := t.Classifier(sub)
	if !ok {
		return false
	}
	_, ok = cls.Ancestors[super]
	return ok
}

// Supertype views ty as an instance of the ancestor named target, e.g.
// ArrayList<String> as List<String>. Nullability is carried over.
func (t *Table) Supertype(ty *tree.NominalType, target Identifier) (*tree.NominalType, bool) {
	if ty.Name == target {
		return ty, true
	}
	if target == tree.NameAny {
		return tree.WithNullable(tree.TypeAny, ty.Nullable).(*tree.NominalType), true
	}
	cls, ok := t.Classifier(ty.Name)
	if !ok {
		return nil, false
	}
	anc, ok := cls.Ancestors[target]
	if !ok {
		return nil, false
	}
	m := tree.ParamMap(cls.TypeParams, ty.Args)
	out := tree.ReplaceParams(anc, m).(*tree.NominalType)
	return tree.WithNullable(out, ty.Nullable).(*tree.NominalType), true
}

// ClassArity is the number of type parameters declared by a classifier.
func (t *Table) ClassArity(name Identifier) (int, bool) {
	cls, ok := t.Classifier(name)
	if !ok {
		return 0, false
	}
	return len(cls.TypeParams), true
}

func (t *Table) String() string {
	return fmt.Sprintf("Table{%d symbols, %d classes, frozen=%v}", len(t.symbols), len(t.classes), t.frozen)
}

// ========================

type category int

const (
	categoryCallable category = iota
	categoryProperty
	categoryClassifier
)

func categoryOf(sym *Symbol) category {
	switch {
	case sym.Kind.IsCallable():
		return categoryCallable
	case sym.Kind == KindProperty:
		return categoryProperty
	default:
		return categoryClassifier
	}
}

func sameShape(a, b *Symbol) bool {
	return categoryOf(a) == categoryOf(b) &&
		(a.Receiver == nil) == (b.Receiver == nil) &&
		a.Arity() == b.Arity()
}

func shadowed(sym *Symbol, inner []*Symbol) bool {
	for _, other := range inner {
		if other == sym {
			return true
		}
		if other.Name == sym.Name && sameShape(other, sym) {
			return true
		}
	}
	return false
}

// conflicts reports whether two declarations in the same scope have the
// same signature. Type parameters are compared by position.
func conflicts(a, b *Symbol) bool {
	ca, cb := categoryOf(a), categoryOf(b)
	if ca != cb {
		// A class and its constructor share a name.
		return false
	}
	if ca == categoryClassifier {
		return true
	}
	if (a.Receiver == nil) != (b.Receiver == nil) {
		return false
	}
	if a.Receiver != nil && !samePositional(a.Receiver, b.Receiver) {
		return false
	}
	if ca == categoryProperty {
		return true
	}
	if a.Arity() != b.Arity() {
		return false
	}
	for i := range a.Params {
		if !samePositional(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	return true
}

func samePositional(a, b tree.Type) bool {
	switch a := a.(type) {
	case *tree.TypeParam:
		b, ok := b.(*tree.TypeParam)
		return ok && a.Index == b.Index && a.Nullable == b.Nullable
	case *tree.NominalType:
		b, ok := b.(*tree.NominalType)
		if !ok || a.Name != b.Name || a.Nullable != b.Nullable || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !samePositional(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *tree.FunctionType:
		b, ok := b.(*tree.FunctionType)
		if !ok || a.Nullable != b.Nullable || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !samePositional(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return samePositional(a.Return, b.Return)
	default:
		return tree.Identical(a, b)
	}
}
