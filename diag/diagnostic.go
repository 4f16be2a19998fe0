package diag

import (
	"fmt"
	"strings"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/tree"
)

// Kind is the stable identifier of a diagnostic, as written in expected
// annotations (`<!UNSAFE_CALL!>`).
type Kind string

const (
	TypeMismatch               Kind = "TYPE_MISMATCH"
	UnsafeCall                 Kind = "UNSAFE_CALL"
	UnresolvedReference        Kind = "UNRESOLVED_REFERENCE"
	AmbiguousCall              Kind = "AMBIGUOUS_CALL"
	InfiniteType               Kind = "INFINITE_TYPE"
	DuplicateSymbol            Kind = "DUPLICATE_SYMBOL"
	TypeInferenceFailed        Kind = "TYPE_INFERENCE_FAILED"
	UpperBoundViolated         Kind = "UPPER_BOUND_VIOLATED"
	WrongNumberOfTypeArguments Kind = "WRONG_NUMBER_OF_TYPE_ARGUMENTS"
	CyclicInheritance          Kind = "CYCLIC_INHERITANCE"
	NoReturnInBlockBody        Kind = "NO_RETURN_IN_FUNCTION_WITH_BLOCK_BODY"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// SeverityOf tells advisory kinds apart from fatal ones. Advisory
// diagnostics never block resolution of the expression they are attached to.
func SeverityOf(kind Kind) Severity {
	switch kind {
	case UnsafeCall:
		return SeverityWarning
	default:
		return SeverityError
	}
}

func KnownKinds() []Kind {
	return []Kind{
		TypeMismatch, UnsafeCall, UnresolvedReference, AmbiguousCall, InfiniteType,
		DuplicateSymbol, TypeInferenceFailed, UpperBoundViolated,
		WrongNumberOfTypeArguments, CyclicInheritance, NoReturnInBlockBody,
	}
}

// Diagnostic is immutable once emitted.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Span     Span
	Message  string
	Types    []tree.Type
	Notes    []string
}

func (d Diagnostic) IsFatal() bool {
	return d.Severity == SeverityError
}

func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(append([]string(nil), d.Notes...), note)
	return d
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%v: %s: %s: %s", d.Span, d.Severity, d.Kind, d.Message)
}

func New(kind Kind, span Span, message string, types ...tree.Type) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Severity: SeverityOf(kind),
		Span:     span,
		Message:  message,
		Types:    types,
	}
}

func Newf(kind Kind, span Span, format string, args ...any) Diagnostic {
	return New(kind, span, fmt.Sprintf(format, args...))
}

// Mismatch builds the canonical TYPE_MISMATCH message.
func Mismatch(span Span, expected, found tree.Type) Diagnostic {
	return New(TypeMismatch, span, fmt.Sprintf("expected %v, found %v", expected, found), expected, found)
}

// ========================

// Reporter collects the diagnostics of one compilation unit in emission
// order. It performs no deduplication.
type Reporter struct {
	diagnostics []Diagnostic
}

func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) Emit(kind Kind, span Span, detail string, types ...tree.Type) {
	r.Report(New(kind, span, detail, types...))
}

func (r *Reporter) Report(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

func (r *Reporter) ReportAll(ds []Diagnostic) {
	r.diagnostics = append(r.diagnostics, ds...)
}

func (r *Reporter) Len() int {
	return len(r.diagnostics)
}

// Drain returns the collected diagnostics and clears the reporter.
func (r *Reporter) Drain() []Diagnostic {
	out := r.diagnostics
	r.diagnostics = nil
	return out
}

func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.IsFatal() {
			return true
		}
	}
	return false
}

func Summary(ds []Diagnostic) string {
	errors, warnings := 0, 0
	for _, d := range ds {
		if d.IsFatal() {
			errors++
		} else {
			warnings++
		}
	}
	parts := []string{}
	if errors > 0 {
		parts = append(parts, plural(errors, "error"))
	}
	if warnings > 0 {
		parts = append(parts, plural(warnings, "warning"))
	}
	if len(parts) == 0 {
		return "no diagnostics"
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
