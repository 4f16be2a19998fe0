package check

import (
	"errors"
	"fmt"

	"github.com/garciat/kinfer/algos"
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/source"
	"github.com/garciat/kinfer/symbols"
	"github.com/garciat/kinfer/tree"
)

// Definitions is the outcome of the declaration pass.
type Definitions struct {
	Table      *symbols.Table
	FileScopes map[*source.FileDef]*symbols.Scope
	Symbols    map[tree.Decl]*symbols.Symbol
	// Constructors are keyed by their class; Symbols holds the class itself.
	Constructors map[*tree.ClassDecl]*symbols.Symbol
	// Inferred marks declarations whose body was already checked while
	// inferring their type.
	Inferred    map[tree.Decl]bool
	Diagnostics map[*source.FileDef][]diag.Diagnostic
}

// Definer registers declarations into a writable table. It runs on a single
// goroutine before the table is frozen.
type Definer struct {
	table   *symbols.Table
	defs    *Definitions
	fresh   *int
	pending map[*symbols.Symbol]*deferredDecl
}

func NewDefiner(table *symbols.Table) *Definer {
	return &Definer{
		table: table,
		defs: &Definitions{
			Table:        table,
			FileScopes:   map[*source.FileDef]*symbols.Scope{},
			Symbols:      map[tree.Decl]*symbols.Symbol{},
			Constructors: map[*tree.ClassDecl]*symbols.Symbol{},
			Inferred:     map[tree.Decl]bool{},
			Diagnostics:  map[*source.FileDef][]diag.Diagnostic{},
		},
		fresh:   Ptr(0),
		pending: map[*symbols.Symbol]*deferredDecl{},
	}
}

type classEntry struct {
	file   *source.FileDef
	decl   *tree.ClassDecl
	supers map[string]struct{}
}

type deferredDecl struct {
	file      *source.FileDef
	sym       *symbols.Symbol
	inferring bool
}

// DefineFiles registers all top-level declarations of files, in order:
// classifiers, their supertypes (supertypes first), constructors, members
// and functions, imports, and finally the types of declarations whose type
// is inferred from their body.
func (d *Definer) DefineFiles(files []*source.FileDef) (*Definitions, error) {
	for _, file := range files {
		pkg, err := d.table.PackageScope(file.Package)
		if err != nil {
			return nil, err
		}
		scope, err := d.table.NewFileScope(file.Path, pkg)
		if err != nil {
			return nil, err
		}
		d.defs.FileScopes[file] = scope
	}

	classes := d.orderClasses(d.collectClasses(files))
	for _, entry := range classes {
		d.declareClass(entry)
	}

	for _, file := range files {
		d.importInto(file, false)
	}

	for _, entry := range classes {
		d.defineSupertypes(entry)
	}

	var deferred []*symbols.Symbol
	for _, file := range files {
		scope := d.defs.FileScopes[file]
		for _, decl := range file.Decls {
			switch decl := decl.(type) {
			case *tree.ClassDecl:
				cls, ok := d.defs.Symbols[decl]
				if !ok {
					continue
				}
				d.defineConstructor(file, scope, cls, decl)
				for _, member := range decl.Members {
					d.defineOrDefer(file, cls.Members, cls, member, &deferred)
				}
			default:
				d.defineOrDefer(file, scope.Parent, nil, decl, &deferred)
			}
		}
	}

	for _, file := range files {
		d.importInto(file, false)
	}

	for _, sym := range deferred {
		d.infer(sym)
	}

	for _, file := range files {
		d.importInto(file, true)
	}

	return d.defs, nil
}

// defineOrDefer registers decl. A declaration without an explicit type is
// registered right away and gets its type once all names are known.
func (d *Definer) defineOrDefer(file *source.FileDef, scope *symbols.Scope, owner *symbols.Symbol, decl tree.Decl, deferred *[]*symbols.Symbol) {
	sym := d.newCallable(file, owner, decl)
	if sym == nil {
		return
	}
	if !d.defineCallable(file, scope, sym) || sym.Return != nil {
		return
	}
	d.pending[sym] = &deferredDecl{file: file, sym: sym}
	d.defs.Inferred[decl] = true
	*deferred = append(*deferred, sym)
}

func (d *Definer) report(file *source.FileDef, diags ...diag.Diagnostic) {
	d.defs.Diagnostics[file] = append(d.defs.Diagnostics[file], diags...)
}

func (d *Definer) resolveType(file *source.FileDef, scope *symbols.Scope, env *symbols.TypeParamEnv, expr tree.TypeExpr) tree.Type {
	ty, diags := d.table.ResolveType(scope, env, expr)
	d.report(file, diags...)
	return ty
}

// importInto applies the imports of file with whatever is registered so far.
// Only the final round reports unresolved imports.
func (d *Definer) importInto(file *source.FileDef, final bool) {
	scope := d.defs.FileScopes[file]
	for _, imp := range file.Imports {
		err := d.table.Import(scope, imp.Path, imp.All, imp.Alias)
		var unresolved *symbols.UnresolvedImportError
		switch {
		case err == nil:
		case errors.As(err, &unresolved):
			if final {
				d.report(file, diag.Newf(diag.UnresolvedReference, imp.Pos(), "unresolved reference: %v", imp.Path))
			}
		default:
			panic(err)
		}
	}
}

// ========================

func (d *Definer) collectClasses(files []*source.FileDef) map[string]*classEntry {
	classes := map[string]*classEntry{}
	for _, file := range files {
		for _, decl := range file.Decls {
			decl, ok := decl.(*tree.ClassDecl)
			if !ok {
				continue
			}
			if _, ok := classes[decl.Name.Value]; ok {
				// Reported by Register as a duplicate.
				classes[decl.Name.Value+"#"+fmt.Sprint(len(classes))] = newClassEntry(file, decl)
				continue
			}
			classes[decl.Name.Value] = newClassEntry(file, decl)
		}
	}
	return classes
}

func newClassEntry(file *source.FileDef, decl *tree.ClassDecl) *classEntry {
	supers := map[string]struct{}{}
	for _, st := range decl.Supertypes {
		if name, ok := st.(*tree.TypeName); ok {
			supers[name.Name.Value] = struct{}{}
		}
	}
	return &classEntry{file: file, decl: decl, supers: supers}
}

// orderClasses puts supertypes before subtypes and breaks inheritance
// cycles, reporting each class on a cycle once.
func (d *Definer) orderClasses(classes map[string]*classEntry) []*classEntry {
	edges := func(e *classEntry) map[string]struct{} { return e.supers }

	reported := NewSet[string]()
	for {
		cycle := algos.FindCycle(classes, edges)
		if cycle == nil {
			break
		}
		names := MapSlice(cycle, NewIdentifier)
		err := &symbols.CyclicInheritanceError{Cycle: names}
		for i, name := range cycle[:len(cycle)-1] {
			entry := classes[name]
			if !reported.Contains(name) {
				reported.Add(name)
				d.report(entry.file, diag.New(diag.CyclicInheritance, entry.decl.NameSpan, err.Error()))
			}
			delete(entry.supers, cycle[i+1])
		}
	}

	return algos.TopologicalSort(classes, edges)
}

func (d *Definer) declareTypeParams(file *source.FileDef, scope *symbols.Scope, parent *symbols.TypeParamEnv, decls []*tree.TypeParamDecl, offset int) ([]*tree.TypeParam, *symbols.TypeParamEnv) {
	params := make([]*tree.TypeParam, len(decls))
	for i, decl := range decls {
		params[i] = &tree.TypeParam{Name: decl.Name, Index: offset + i}
	}
	env := symbols.NewTypeParamEnv(parent, params)
	d.resolveBounds(file, scope, env, params, decls)
	return params, env
}

func (d *Definer) resolveBounds(file *source.FileDef, scope *symbols.Scope, env *symbols.TypeParamEnv, params []*tree.TypeParam, decls []*tree.TypeParamDecl) {
	for i, decl := range decls {
		if decl.Bound != nil {
			params[i].Bound = d.resolveType(file, scope, env, decl.Bound)
		}
	}
}

// declareClass registers a classifier by name and type parameters only, so
// that supertypes and bounds may mention any class of the session,
// including the one being declared (`class Char : Comparable<Char>`).
func (d *Definer) declareClass(entry *classEntry) {
	file, decl := entry.file, entry.decl
	scope := d.defs.FileScopes[file]

	params := make([]*tree.TypeParam, len(decl.TypeParams))
	for i, p := range decl.TypeParams {
		params[i] = &tree.TypeParam{Name: p.Name, Index: i}
	}

	kind := symbols.KindClass
	if decl.Kind == tree.ClassKindTrait {
		kind = symbols.KindTrait
	}

	sym, err := d.table.Register(scope.Parent, &symbols.Symbol{
		Name:       decl.Name,
		Kind:       kind,
		TypeParams: params,
		ClassType:  &tree.NominalType{Name: decl.Name, Args: tree.ParamTypes(params)},
		Decl:       decl,
		Span:       decl.NameSpan,
	})
	if !d.checkRegister(file, decl.NameSpan, err) {
		return
	}
	d.defs.Symbols[decl] = sym
}

// defineSupertypes resolves the bounds and supertypes of a declared class.
// Classes are visited supertypes first, so ancestor sets can be built from
// the complete sets of the direct supertypes.
func (d *Definer) defineSupertypes(entry *classEntry) {
	file, decl := entry.file, entry.decl
	sym, ok := d.defs.Symbols[decl]
	if !ok {
		return
	}
	scope := d.defs.FileScopes[file]

	env := symbols.NewTypeParamEnv(nil, sym.TypeParams)
	d.resolveBounds(file, scope, env, sym.TypeParams, decl.TypeParams)

	var supertypes []*tree.NominalType
	for _, expr := range decl.Supertypes {
		if name, ok := expr.(*tree.TypeName); ok {
			if _, ok := entry.supers[name.Name.Value]; !ok {
				// Dropped as part of an inheritance cycle.
				continue
			}
		}
		st, ok := d.resolveType(file, scope, env, expr).(*tree.NominalType)
		if ok {
			supertypes = append(supertypes, tree.NonNull(st).(*tree.NominalType))
		}
	}

	if err := d.table.SetSupertypes(sym, supertypes); err != nil {
		panic(err)
	}
	CheckerPrintf("defined %v\n", sym)
}

func (d *Definer) checkRegister(file *source.FileDef, span Span, err error) bool {
	var dup *symbols.DuplicateSymbolError
	switch {
	case err == nil:
		return true
	case errors.As(err, &dup):
		d.report(file, diag.New(diag.DuplicateSymbol, span, dup.Error()))
		return false
	default:
		panic(err)
	}
}

func (d *Definer) defineParams(file *source.FileDef, scope *symbols.Scope, env *symbols.TypeParamEnv, decls []*tree.ParamDecl) []symbols.Param {
	return MapSlice(decls, func(p *tree.ParamDecl) symbols.Param {
		return symbols.Param{
			Name:       p.Name,
			Type:       d.resolveType(file, scope, env, p.Type),
			HasDefault: p.Default != nil,
		}
	})
}

func (d *Definer) defineConstructor(file *source.FileDef, scope *symbols.Scope, cls *symbols.Symbol, decl *tree.ClassDecl) {
	if cls.Kind != symbols.KindClass {
		return
	}
	env := symbols.NewTypeParamEnv(nil, cls.TypeParams)
	sym, err := d.table.Register(scope.Parent, &symbols.Symbol{
		Name:       cls.Name,
		Kind:       symbols.KindConstructor,
		TypeParams: cls.TypeParams,
		Params:     d.defineParams(file, scope, env, decl.CtorParams),
		Return:     cls.ClassType,
		Decl:       decl,
		Span:       decl.NameSpan,
	})
	if d.checkRegister(file, decl.NameSpan, err) {
		CheckerPrintf("defined %v\n", sym)
		d.defs.Constructors[decl] = sym
	}
}

// newCallable builds the symbol of a function or property. Members get the
// class type as receiver and the class type parameters in front of their
// own. Return stays nil when it has to be inferred from the body.
func (d *Definer) newCallable(file *source.FileDef, owner *symbols.Symbol, decl tree.Decl) *symbols.Symbol {
	lookup := d.defs.FileScopes[file]

	var classParams []*tree.TypeParam
	var parentEnv *symbols.TypeParamEnv
	if owner != nil {
		classParams = owner.TypeParams
		parentEnv = symbols.NewTypeParamEnv(nil, classParams)
	}

	sym := &symbols.Symbol{
		Name:     decl.DeclName(),
		IsMember: owner != nil,
		Decl:     decl,
	}

	var typeParamDecls []*tree.TypeParamDecl
	var receiver tree.TypeExpr
	switch decl := decl.(type) {
	case *tree.FunDecl:
		sym.Kind = symbols.KindFunction
		sym.Span = decl.NameSpan
		typeParamDecls, receiver = decl.TypeParams, decl.Receiver
	case *tree.PropertyDecl:
		sym.Kind = symbols.KindProperty
		sym.Span = decl.NameSpan
		typeParamDecls, receiver = decl.TypeParams, decl.Receiver
	case *tree.ClassDecl:
		d.report(file, diag.Newf(diag.UnresolvedReference, decl.NameSpan, "nested classes are not supported: %v", decl.Name))
		return nil
	default:
		panic(fmt.Sprintf("unreachable: %T", decl))
	}

	own, env := d.declareTypeParams(file, lookup, parentEnv, typeParamDecls, len(classParams))
	sym.TypeParams = append(append([]*tree.TypeParam(nil), classParams...), own...)

	switch {
	case owner != nil:
		sym.Receiver = owner.ClassType
	case receiver != nil:
		sym.Receiver = d.resolveType(file, lookup, env, receiver)
	}

	switch decl := decl.(type) {
	case *tree.FunDecl:
		sym.Params = d.defineParams(file, lookup, env, decl.Params)
		switch {
		case decl.Return != nil:
			sym.Return = d.resolveType(file, lookup, env, decl.Return)
		case decl.HasBlock:
			sym.Return = tree.TypeUnit
		case decl.ExprBody == nil:
			sym.Return = tree.TypeUnit
		}
	case *tree.PropertyDecl:
		switch {
		case decl.Type != nil:
			sym.Return = d.resolveType(file, lookup, env, decl.Type)
		case decl.Init == nil:
			sym.Return = tree.TheErrorType
		}
	}

	return sym
}

func (d *Definer) defineCallable(file *source.FileDef, scope *symbols.Scope, sym *symbols.Symbol) bool {
	registered, err := d.table.Register(scope, sym)
	if !d.checkRegister(file, sym.Span, err) {
		return false
	}
	CheckerPrintf("defined %v\n", registered)
	d.defs.Symbols[sym.Decl] = registered
	return true
}

// infer completes the type of a deferred declaration. It reports false when
// sym is already being inferred, i.e. its type depends on itself.
func (d *Definer) infer(sym *symbols.Symbol) bool {
	item, ok := d.pending[sym]
	if !ok {
		return sym.Return != nil
	}
	if item.inferring {
		return false
	}
	item.inferring = true
	sym.Return = d.inferReturn(item)
	delete(d.pending, sym)
	CheckerPrintf("inferred %v\n", sym)
	return true
}

// inferReturn types the expression body of a deferred declaration. Its
// diagnostics belong to the declaration pass; the body pass skips it.
func (d *Definer) inferReturn(item *deferredDecl) tree.Type {
	reporter := diag.NewReporter()
	c := NewChecker(d.table, d.defs.FileScopes[item.file], reporter)
	c.Fresh = d.fresh
	c.Infer = d.infer
	c = c.BeginFunctionScope(item.sym)
	for _, p := range item.sym.Params {
		c.VarCtx.Def(p.Name, p.Type)
	}

	var ty tree.Type
	switch decl := item.sym.Decl.(type) {
	case *tree.FunDecl:
		ty = c.Synth(decl.ExprBody, nil)
	case *tree.PropertyDecl:
		ty = c.Synth(decl.Init, nil)
	default:
		panic("unreachable")
	}
	d.report(item.file, reporter.Drain()...)
	return ty
}
