package check_test

import (
	"testing"

	"github.com/garciat/kinfer/check"
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/parse"
	"github.com/garciat/kinfer/prelude"
	"github.com/garciat/kinfer/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkSource(t *testing.T, text string) []diag.Diagnostic {
	t.Helper()

	table, err := prelude.NewTable()
	require.NoError(t, err)
	file, err := parse.ParseSource("test.kt", text)
	require.NoError(t, err)

	defs, err := check.NewDefiner(table).DefineFiles([]*source.FileDef{file})
	require.NoError(t, err)
	table.Freeze()

	reporter := diag.NewReporter()
	reporter.ReportAll(defs.Diagnostics[file])
	check.NewChecker(table, defs.FileScopes[file], reporter).CheckFile(file, defs)
	return reporter.Drain()
}

func kinds(diags []diag.Diagnostic) []diag.Kind {
	return MapSlice(diags, func(d diag.Diagnostic) diag.Kind { return d.Kind })
}

func TestGenericInference(t *testing.T) {
	diags := checkSource(t, `package p

fun main() {
    val xs: List<String> = listOf("a")
    val n: Int = listOf("a").first().length
    val lengths: List<Int> = xs.map { it.length }
}
`)
	assert.Empty(t, diags)
}

func TestInferredTypeMismatch(t *testing.T) {
	diags := checkSource(t, `package p

fun main() {
    val s: String = listOf(1).first()
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.TypeMismatch, diags[0].Kind)
	assert.Equal(t, "expected String, found Int", diags[0].Message)
}

func TestMostSpecificOverload(t *testing.T) {
	diags := checkSource(t, `package p

fun pick(x: Any): Int = 1
fun pick(x: String): String = x

fun main() {
    val s: String = pick("a")
    val i: Int = pick(1)
}
`)
	assert.Empty(t, diags)
}

func TestMemberBeatsExtension(t *testing.T) {
	diags := checkSource(t, `package p

class Counter(start: Int) {
    fun value(): Int = 1
}

fun Counter.value(): String = "one"

fun main() {
    val n: Int = Counter(0).value()
}
`)
	assert.Empty(t, diags)
}

func TestUnresolvedAndUnsafe(t *testing.T) {
	diags := checkSource(t, `package p

fun main(s: String?) {
    s.length
    "x".nothingHere()
    s.nothingHere()
}
`)
	assert.Equal(t, []diag.Kind{diag.UnsafeCall, diag.UnresolvedReference, diag.UnresolvedReference}, kinds(diags))
	assert.False(t, diags[0].IsFatal())
	assert.True(t, diag.HasErrors(diags))
}

func TestUnsafeCallFollowsSelectedCandidate(t *testing.T) {
	diags := checkSource(t, `package p

fun String?.pad(width: Int): String = "x"
fun String.pad(): String = this

fun main(s: String?) {
    s.pad(1)
    s.pad()
}
`)
	require.Equal(t, []diag.Kind{diag.UnsafeCall}, kinds(diags))
	assert.Equal(t, 8, diags[0].Span.Line)
}

func TestSupertypesMentioningDeclaredClasses(t *testing.T) {
	diags := checkSource(t, `package p

class Node(value: Int) : Comparable<Node> {
    fun compareTo(other: Node): Int = 0
}

class Leaf : Tree<Leaf>
trait Tree<T> {
    fun children(): List<T>
}

class Registry : Map<String, Any?>

fun <T : Comparable<T>> larger(a: T, b: T): T = a

fun main(registry: Registry) {
    val n: Node = larger(Node(1), Node(2))
    val kids: List<Leaf> = Leaf().children()
    val size: Int = registry.size
    val value: Any? = registry.get("key")
}
`)
	assert.Empty(t, diags)
}

func TestForwardInferredReturn(t *testing.T) {
	diags := checkSource(t, `package p

fun a() = b()
fun b() = 1

fun main() {
    val x: Int = a()
}
`)
	assert.Empty(t, diags)
}

func TestRecursiveInferredReturn(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"mutual", "package p\n\nfun f() = g()\nfun g() = f()\n", 4},
		{"self", "package p\n\nfun h() = h()\n", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := checkSource(t, tt.text)
			require.Equal(t, []diag.Kind{diag.TypeInferenceFailed}, kinds(diags))
			assert.Contains(t, diags[0].Message, "recursive problem")
			assert.Equal(t, tt.line, diags[0].Span.Line)
		})
	}
}

func TestNestedLambdaCalls(t *testing.T) {
	diags := checkSource(t, `package p

fun main() {
    val xs: List<Int> = listOf("a").map { s -> listOf(s).map { it.length }.first() }
}
`)
	assert.Empty(t, diags)
}

func TestSetDebug(t *testing.T) {
	require.NoError(t, check.SetDebug("", " unify"))
	assert.True(t, check.DebugUnify)
	check.DebugUnify = false

	assert.Error(t, check.SetDebug("verbose"))
}
