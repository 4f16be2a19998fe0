package check

import (
	"fmt"
	"strings"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/symbols"
	"github.com/garciat/kinfer/tree"
)

type CallKind int

const (
	CallFunction CallKind = iota
	CallProperty
)

func (k CallKind) symbolKind() symbols.SymbolKind {
	switch k {
	case CallFunction:
		return symbols.KindFunction
	case CallProperty:
		return symbols.KindProperty
	default:
		panic("unreachable")
	}
}

type ResolutionState int

const (
	StateGathering ResolutionState = iota
	StateFiltering
	StateResolved
	StateAmbiguous
	StateUnresolved
)

func (s ResolutionState) String() string {
	switch s {
	case StateGathering:
		return "GATHERING"
	case StateFiltering:
		return "FILTERING"
	case StateResolved:
		return "RESOLVED"
	case StateAmbiguous:
		return "AMBIGUOUS"
	case StateUnresolved:
		return "UNRESOLVED"
	default:
		panic("unreachable")
	}
}

// CallSite describes what is being called, independent of the argument
// values.
type CallSite struct {
	Kind     CallKind
	Name     Identifier
	Span     Span
	NameSpan Span
	Dot      tree.DotKind
	DotSpan  Span
	TypeArgs []tree.Type
}

// Argument is a value passed to a call. Lambdas are not typed up front; they
// only contribute their shape until a candidate is selected.
type Argument struct {
	Name   Identifier
	Expr   tree.Expr
	Type   tree.Type
	Lambda *tree.LambdaExpr
}

// CallCandidate is one symbol considered for a call, instantiated in its own
// session.
type CallCandidate struct {
	// Symbol is nil when a local of function type is invoked.
	Symbol   *symbols.Symbol
	Local    Identifier
	Session  *Session
	TypeVars []*tree.TypeVar

	Receiver tree.Type
	Params   []tree.Type
	Return   tree.Type
	// ArgParams maps each argument to the index of its parameter.
	ArgParams []int

	declReceiver tree.Type
	declParams   []tree.Type
	defaults     []bool
	paramNames   []Identifier
	err          error
	// recursive is set when the symbol's type is still being inferred.
	recursive bool
}

func (cand *CallCandidate) String() string {
	if cand.Symbol != nil {
		return cand.Symbol.String()
	}
	return fmt.Sprintf("%v: %v", cand.Local, &tree.FunctionType{Params: cand.Params, Return: cand.Return})
}

type candidateSource struct {
	symbol *symbols.Symbol
	local  Identifier
	fnType *tree.FunctionType
}

// ResolveCall selects the symbol a call refers to. Members are preferred
// over extensions; within a group the most specific applicable candidate
// wins. A nil candidate means resolution failed and the returned
// diagnostics say why.
//
// A nullable receiver without `?.` is first matched as it is, so that
// declarations on nullable receivers apply. Only when nothing applies is it
// retried as non-null, and a successful retry is reported as UNSAFE_CALL.
func (c *Checker) ResolveCall(site *CallSite, receiver tree.Type, args []*Argument) (*CallCandidate, []diag.Diagnostic) {
	ResolvePrintf("%v %v receiver=%v\n", StateGathering, site.Name, receiver)
	levels := c.gather(site, receiver)

	if receiver != nil && tree.IsNullable(receiver) && site.Dot == tree.DotSafe {
		receiver = tree.NonNull(receiver)
	}

	cand, state, others := c.filter(levels, site, receiver, args)
	if state == StateUnresolved && receiver != nil && tree.IsNullable(receiver) {
		cand, state, others = c.filter(levels, site, tree.NonNull(receiver), args)
		if state == StateResolved {
			return cand, []diag.Diagnostic{diag.Newf(diag.UnsafeCall, site.DotSpan,
				"only safe (?.) or non-null asserted (!!.) calls are allowed on a nullable receiver of type %v", receiver)}
		}
	}

	switch state {
	case StateResolved:
		return cand, nil
	case StateAmbiguous:
		d := diag.Newf(diag.AmbiguousCall, site.NameSpan, "overload resolution ambiguity: %v", site.Name)
		for _, cand := range others {
			d = d.WithNote(cand.String())
		}
		return nil, []diag.Diagnostic{d}
	default:
		d := diag.Newf(diag.UnresolvedReference, site.NameSpan, "unresolved reference: %v", site.Name)
		for _, cand := range others {
			d = d.WithNote(fmt.Sprintf("%v: %v", cand, cand.err))
		}
		return nil, []diag.Diagnostic{d}
	}
}

// filter checks applicability level by level. Besides the state it returns
// the equally specific candidates when ambiguous, or the rejected ones when
// unresolved.
func (c *Checker) filter(levels [][]candidateSource, site *CallSite, receiver tree.Type, args []*Argument) (*CallCandidate, ResolutionState, []*CallCandidate) {
	var rejected []*CallCandidate
	for _, level := range levels {
		var applicable []*CallCandidate
		for _, src := range level {
			cand := c.instantiate(src, site)
			if err := c.checkApplicable(cand, receiver, args); err != nil {
				ResolvePrintf("%v inapplicable %v: %v\n", StateFiltering, cand, err)
				cand.err = err
				rejected = append(rejected, cand)
				continue
			}
			applicable = append(applicable, cand)
		}
		if len(applicable) == 0 {
			continue
		}

		best := c.mostSpecific(applicable)
		if len(best) == 1 {
			ResolvePrintf("%v %v\n", StateResolved, best[0])
			return best[0], StateResolved, nil
		}
		ResolvePrintf("%v %v\n", StateAmbiguous, site.Name)
		return nil, StateAmbiguous, best
	}

	ResolvePrintf("%v %v receiver=%v\n", StateUnresolved, site.Name, receiver)
	return nil, StateUnresolved, rejected
}

func (c *Checker) gather(site *CallSite, receiver tree.Type) [][]candidateSource {
	kind := site.Kind.symbolKind()
	fromSymbols := func(syms []*symbols.Symbol) []candidateSource {
		return MapSlice(syms, func(s *symbols.Symbol) candidateSource { return candidateSource{symbol: s} })
	}

	if receiver != nil {
		return [][]candidateSource{
			fromSymbols(c.members(receiver, site.Name, kind)),
			fromSymbols(c.Table.Extensions(site.Name, c.Scope, kind)),
		}
	}

	var levels [][]candidateSource
	if site.Kind == CallFunction {
		if ty, ok := c.VarCtx.Lookup(site.Name); ok {
			if fn, ok := tree.NonNull(ty).(*tree.FunctionType); ok {
				levels = append(levels, []candidateSource{{local: site.Name, fnType: fn}})
			}
		}
	}
	if c.This != nil {
		levels = append(levels, fromSymbols(c.members(c.This, site.Name, kind)))
	}
	levels = append(levels, fromSymbols(Filter(c.Table.Lookup(site.Name, c.Scope), func(s *symbols.Symbol) bool {
		if s.Receiver != nil {
			return false
		}
		if site.Kind == CallFunction {
			return s.Kind.IsCallable()
		}
		return s.Kind == symbols.KindProperty
	})))
	if c.This != nil {
		levels = append(levels, fromSymbols(c.Table.Extensions(site.Name, c.Scope, kind)))
	}
	return levels
}

// members finds member symbols through the receiver's class, or through the
// bound of a type parameter.
func (c *Checker) members(receiver tree.Type, name Identifier, kind symbols.SymbolKind) []*symbols.Symbol {
	switch ty := tree.NonNull(receiver).(type) {
	case *tree.NominalType:
		return c.Table.Members(ty, name, kind)
	case *tree.TypeParam:
		if ty.Bound != nil {
			return c.members(ty.Bound, name, kind)
		}
		return c.Table.Members(tree.TypeAny, name, kind)
	default:
		return nil
	}
}

func (c *Checker) instantiate(src candidateSource, site *CallSite) *CallCandidate {
	session := c.NewSession()

	if src.symbol == nil {
		return &CallCandidate{
			Local:      src.local,
			Session:    session,
			Params:     src.fnType.Params,
			Return:     src.fnType.Return,
			declParams: src.fnType.Params,
			defaults:   make([]bool, len(src.fnType.Params)),
			paramNames: make([]Identifier, len(src.fnType.Params)),
		}
	}

	sym := src.symbol
	recursive := sym.Return == nil && (c.Infer == nil || !c.Infer(sym))

	m, vars := session.Instantiate(sym.TypeParams)
	cand := &CallCandidate{
		Symbol:       sym,
		Session:      session,
		TypeVars:     vars,
		Receiver:     tree.ReplaceParams(sym.Receiver, m),
		Return:       tree.TheErrorType,
		declReceiver: sym.Receiver,
		declParams:   sym.ParamTypes(),
		recursive:    recursive,
	}
	if !recursive {
		cand.Return = tree.ReplaceParams(sym.Return, m)
	}
	for _, p := range sym.Params {
		cand.Params = append(cand.Params, tree.ReplaceParams(p.Type, m))
		cand.defaults = append(cand.defaults, p.HasDefault)
		cand.paramNames = append(cand.paramNames, p.Name)
	}

	if len(site.TypeArgs) > 0 {
		own := vars[len(vars)-c.ownTypeParamCount(sym):]
		if len(own) != len(site.TypeArgs) {
			cand.err = fmt.Errorf("%d type arguments expected, found %d", len(own), len(site.TypeArgs))
			return cand
		}
		for i, arg := range site.TypeArgs {
			if _, err := session.Unify(own[i], arg); err != nil {
				cand.err = err
				return cand
			}
		}
	}
	return cand
}

func (c *Checker) ownTypeParamCount(sym *symbols.Symbol) int {
	if !sym.IsMember {
		return len(sym.TypeParams)
	}
	cls, ok := c.Table.Classifier(sym.Receiver.(*tree.NominalType).Name)
	if !ok {
		return len(sym.TypeParams)
	}
	return len(sym.TypeParams) - len(cls.TypeParams)
}

func (c *Checker) checkApplicable(cand *CallCandidate, receiver tree.Type, args []*Argument) error {
	if cand.err != nil {
		return cand.err
	}
	s := cand.Session

	if cand.Receiver != nil {
		actual := receiver
		if actual == nil {
			actual = c.This
		}
		if actual == nil {
			return fmt.Errorf("no receiver for %v", cand.Receiver)
		}
		if _, err := s.Subtype(actual, cand.Receiver); err != nil {
			return err
		}
	}

	mapping, err := mapArguments(cand, args)
	if err != nil {
		return err
	}
	cand.ArgParams = mapping

	var rels []Relation
	for i, arg := range args {
		param := cand.Params[mapping[i]]
		if arg.Lambda == nil {
			rels = append(rels, RelationSubtype{Sub: arg.Type, Super: param})
			continue
		}
		if err := lambdaFits(arg.Lambda, s.Apply(param)); err != nil {
			return err
		}
	}
	_, err = s.Constrain(rels...)
	return err
}

func mapArguments(cand *CallCandidate, args []*Argument) ([]int, error) {
	mapping := make([]int, len(args))
	used := make([]bool, len(cand.Params))
	positional := 0
	for i, arg := range args {
		idx := -1
		if arg.Name.Value != "" {
			for j, name := range cand.paramNames {
				if name == arg.Name {
					idx = j
				}
			}
			if idx == -1 {
				return nil, fmt.Errorf("no parameter named %v", arg.Name)
			}
		} else {
			if positional >= len(cand.Params) {
				return nil, fmt.Errorf("too many arguments: %d expected, found %d", len(cand.Params), len(args))
			}
			idx = positional
			positional++
		}
		if used[idx] {
			return nil, fmt.Errorf("argument already passed for parameter %v", cand.paramNames[idx])
		}
		used[idx] = true
		mapping[i] = idx
	}
	var missing []string
	for j := range cand.Params {
		if !used[j] && !cand.defaults[j] {
			missing = append(missing, cand.paramNames[j].Value)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no value passed for parameter %s", strings.Join(missing, ", "))
	}
	return mapping, nil
}

// lambdaFits compares only the number of parameters; the body is checked
// after a candidate is selected.
func lambdaFits(lam *tree.LambdaExpr, param tree.Type) error {
	switch ty := tree.NonNull(param).(type) {
	case *tree.FunctionType:
		if lam.HasParamList && len(lam.Params) != len(ty.Params) {
			return fmt.Errorf("expected %d lambda parameters, found %d", len(ty.Params), len(lam.Params))
		}
		if !lam.HasParamList && len(ty.Params) > 1 {
			return fmt.Errorf("expected %d lambda parameters, found none", len(ty.Params))
		}
		return nil
	case *tree.TypeVar, *tree.ErrorType:
		return nil
	case *tree.NominalType:
		if ty.Name == tree.NameAny {
			return nil
		}
		return mismatch(param, &tree.FunctionType{Return: tree.TypeUnit})
	default:
		return mismatch(param, &tree.FunctionType{Return: tree.TypeUnit})
	}
}

// mostSpecific keeps the candidates that are strictly more specific than
// every other one. Several survivors, or none, mean ambiguity.
func (c *Checker) mostSpecific(cands []*CallCandidate) []*CallCandidate {
	if len(cands) == 1 {
		return cands
	}
	var best []*CallCandidate
	for _, a := range cands {
		ok := true
		for _, b := range cands {
			if a == b {
				continue
			}
			if !c.moreSpecific(a, b) || c.moreSpecific(b, a) {
				ok = false
				break
			}
		}
		if ok {
			best = append(best, a)
		}
	}
	if len(best) == 1 {
		return best
	}
	return cands
}

// moreSpecific reports whether a could be passed wherever b is expected:
// a's declared parameter types, with its type parameters kept rigid, must be
// subtypes of b's freshly instantiated ones.
func (c *Checker) moreSpecific(a, b *CallCandidate) bool {
	s := c.NewSession()
	var bReceiver tree.Type
	bParams := b.declParams
	if b.Symbol != nil {
		m, _ := s.Instantiate(b.Symbol.TypeParams)
		bReceiver = tree.ReplaceParams(b.declReceiver, m)
		bParams = MapSlice(b.declParams, func(t tree.Type) tree.Type { return tree.ReplaceParams(t, m) })
	}

	var rels []Relation
	if a.declReceiver != nil && bReceiver != nil {
		rels = append(rels, RelationSubtype{Sub: a.declReceiver, Super: bReceiver})
	}
	for i := range a.ArgParams {
		rels = append(rels, RelationSubtype{Sub: a.declParams[a.ArgParams[i]], Super: bParams[b.ArgParams[i]]})
	}
	_, err := s.Constrain(rels...)
	return err == nil
}
