package diag

import (
	"bytes"
	"testing"

	. "github.com/garciat/kinfer/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(line, column, start, end int) Span {
	return Span{File: "a.kt", Line: line, Column: column, Start: start, End: end}
}

func TestDrainKeepsIdenticalDiagnostics(t *testing.T) {
	r := NewReporter()
	r.Emit(UnresolvedReference, span(1, 5, 4, 9), "unresolved reference: nope")
	r.Emit(UnresolvedReference, span(2, 5, 14, 19), "unresolved reference: nope")
	require.Equal(t, 2, r.Len())

	got := r.Drain()
	require.Len(t, got, 2)

	kinds := []Kind{got[0].Kind, got[1].Kind}
	if diff := cmp.Diff([]Kind{UnresolvedReference, UnresolvedReference}, kinds); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, got[0].Span.Line)
	assert.Equal(t, 2, got[1].Span.Line)
	assert.Equal(t, got[0].Message, got[1].Message)

	assert.Empty(t, r.Drain())
	assert.Equal(t, 0, r.Len())
}

func TestSeverityAndSummary(t *testing.T) {
	ds := []Diagnostic{
		New(UnsafeCall, span(1, 1, 0, 1), "unsafe call"),
		New(TypeMismatch, span(2, 1, 2, 3), "expected Int, found String"),
		New(TypeMismatch, span(3, 1, 4, 5), "expected Int, found String"),
	}
	assert.Equal(t, SeverityWarning, ds[0].Severity)
	assert.False(t, ds[0].IsFatal())
	assert.True(t, ds[1].IsFatal())

	assert.True(t, HasErrors(ds))
	assert.False(t, HasErrors(ds[:1]))
	assert.Equal(t, "2 errors, 1 warning", Summary(ds))
	assert.Equal(t, "no diagnostics", Summary(nil))
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := New(TypeMismatch, span(1, 1, 0, 1), "m").WithNote("first")
	a := base.WithNote("a")
	b := base.WithNote("b")
	assert.Equal(t, []string{"first"}, base.Notes)
	assert.Equal(t, []string{"first", "a"}, a.Notes)
	assert.Equal(t, []string{"first", "b"}, b.Notes)
}

func TestFormatterCaret(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, ColorNever)
	f.AddSource("a.kt", "val x = nope\n")
	f.Format(New(UnresolvedReference, span(1, 9, 8, 12), "unresolved reference: nope"))

	want := "a.kt:1:9: error: UNRESOLVED_REFERENCE: unresolved reference: nope\n" +
		"    val x = nope\n" +
		"            ^^^^\n"
	assert.Equal(t, want, buf.String())
}
