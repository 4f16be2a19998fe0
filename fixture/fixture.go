// Package fixture reads and writes expected-diagnostic annotations of the
// form `<!KIND!>text<!>`, where text is the span the diagnostic points at.
package fixture

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
)

const (
	openPrefix = "<!"
	openSuffix = "!>"
	closeTag   = "<!>"
)

// Annotation is an expected diagnostic: its kind and the byte range it
// covers in the source with the markers removed.
type Annotation struct {
	Kind  diag.Kind
	Start int
	End   int
}

func (a Annotation) String() string {
	return fmt.Sprintf("%s@%d..%d", a.Kind, a.Start, a.End)
}

var knownKinds = NewSet(diag.KnownKinds()...)

type openMarker struct {
	kinds []diag.Kind
	start int
}

// Parse strips the markers from text and returns the clean source with the
// annotations it carried. Markers may nest, and one marker may list several
// kinds separated by commas.
func Parse(text string) (string, []Annotation, error) {
	var out strings.Builder
	var stack []openMarker
	var annotations []Annotation

	for i := 0; i < len(text); {
		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, closeTag):
			if len(stack) == 0 {
				return "", nil, fmt.Errorf("offset %d: closing marker without an opening one", i)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, kind := range open.kinds {
				annotations = append(annotations, Annotation{Kind: kind, Start: open.start, End: out.Len()})
			}
			i += len(closeTag)
		case strings.HasPrefix(rest, openPrefix):
			end := strings.Index(rest, openSuffix)
			if end == -1 {
				return "", nil, fmt.Errorf("offset %d: unterminated marker", i)
			}
			kinds, err := parseKinds(rest[len(openPrefix):end])
			if err != nil {
				return "", nil, fmt.Errorf("offset %d: %w", i, err)
			}
			stack = append(stack, openMarker{kinds: kinds, start: out.Len()})
			i += end + len(openSuffix)
		default:
			out.WriteByte(text[i])
			i++
		}
	}

	if len(stack) > 0 {
		return "", nil, fmt.Errorf("unclosed marker for %v", stack[len(stack)-1].kinds)
	}
	Sort(annotations)
	return out.String(), annotations, nil
}

func parseKinds(s string) ([]diag.Kind, error) {
	var kinds []diag.Kind
	for _, part := range strings.Split(s, ",") {
		kind := diag.Kind(strings.TrimSpace(part))
		if !knownKinds.Contains(kind) {
			return nil, fmt.Errorf("unknown diagnostic kind %q", kind)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// FromDiagnostics turns reported diagnostics into annotations.
func FromDiagnostics(ds []diag.Diagnostic) []Annotation {
	out := MapSlice(ds, func(d diag.Diagnostic) Annotation {
		return Annotation{Kind: d.Kind, Start: d.Span.Start, End: d.Span.End}
	})
	Sort(out)
	return out
}

func Sort(annotations []Annotation) {
	slices.SortStableFunc(annotations, func(a, b Annotation) int {
		return cmp.Or(
			cmp.Compare(a.Start, b.Start),
			cmp.Compare(b.End, a.End),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
}

// Diff compares sorted annotations and returns a human-readable diff, or ""
// when they are equal.
func Diff(expected, actual []Annotation) string {
	return gocmp.Diff(expected, actual, cmpopts.EquateEmpty())
}

// Render writes the annotations back into text as markers.
func Render(text string, annotations []Annotation) string {
	sorted := slices.Clone(annotations)
	Sort(sorted)

	type event struct {
		offset int
		open   bool
		kind   diag.Kind
		width  int
	}
	var events []event
	for _, a := range sorted {
		events = append(events,
			event{offset: a.Start, open: true, kind: a.Kind, width: a.End - a.Start},
			event{offset: a.End, open: false, width: a.End - a.Start})
	}
	// Closings before openings at the same offset; wider spans open first
	// and close last.
	slices.SortStableFunc(events, func(a, b event) int {
		if c := cmp.Compare(a.offset, b.offset); c != 0 {
			return c
		}
		if a.open != b.open {
			if a.open {
				return 1
			}
			return -1
		}
		if a.open {
			return cmp.Compare(b.width, a.width)
		}
		return cmp.Compare(a.width, b.width)
	})

	var sb strings.Builder
	pos := 0
	for _, e := range events {
		sb.WriteString(text[pos:e.offset])
		pos = e.offset
		if e.open {
			sb.WriteString(openPrefix + string(e.kind) + openSuffix)
		} else {
			sb.WriteString(closeTag)
		}
	}
	sb.WriteString(text[pos:])
	return sb.String()
}
