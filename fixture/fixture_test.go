package fixture

import (
	"testing"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	text, annotations, err := Parse("a<!UNSAFE_CALL!>.<!>foo() {<!NO_RETURN_IN_FUNCTION_WITH_BLOCK_BODY!>}<!>")
	require.NoError(t, err)
	assert.Equal(t, "a.foo() {}", text)
	assert.Equal(t, []Annotation{
		{Kind: diag.UnsafeCall, Start: 1, End: 2},
		{Kind: diag.NoReturnInBlockBody, Start: 9, End: 10},
	}, annotations)
}

func TestParseNestedAndMultiple(t *testing.T) {
	text, annotations, err := Parse("<!TYPE_MISMATCH!>{ <!UNRESOLVED_REFERENCE, TYPE_INFERENCE_FAILED!>x<!> }<!>")
	require.NoError(t, err)
	assert.Equal(t, "{ x }", text)
	assert.Equal(t, []Annotation{
		{Kind: diag.TypeMismatch, Start: 0, End: 5},
		{Kind: diag.TypeInferenceFailed, Start: 2, End: 3},
		{Kind: diag.UnresolvedReference, Start: 2, End: 3},
	}, annotations)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"stray close":  "a<!>",
		"unclosed":     "<!TYPE_MISMATCH!>a",
		"unterminated": "<!TYPE_MISMATCH a",
		"unknown kind": "<!NOT_A_KIND!>a<!>",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse(text)
			assert.Error(t, err)
		})
	}
}

func TestDiff(t *testing.T) {
	_, expected, err := Parse("a<!UNSAFE_CALL!>.<!>foo()")
	require.NoError(t, err)

	actual := FromDiagnostics([]diag.Diagnostic{
		diag.New(diag.UnsafeCall, Span{Start: 1, End: 2, Line: 1, Column: 2}, "unsafe"),
	})
	assert.Empty(t, Diff(expected, actual))

	actual = FromDiagnostics([]diag.Diagnostic{
		diag.New(diag.TypeMismatch, Span{Start: 1, End: 2, Line: 1, Column: 2}, "mismatch"),
	})
	assert.NotEmpty(t, Diff(expected, actual))

	_, none, err := Parse("a.foo()")
	require.NoError(t, err)
	assert.Empty(t, Diff(none, FromDiagnostics(nil)))
}

func TestRenderRoundTrip(t *testing.T) {
	source := "<!TYPE_MISMATCH!>{ <!UNRESOLVED_REFERENCE!>x<!> }<!>\na<!UNSAFE_CALL!>.<!>b()"
	text, annotations, err := Parse(source)
	require.NoError(t, err)
	assert.Equal(t, source, Render(text, annotations))
}
