package parse

import (
	"testing"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeString(t *testing.T, expr tree.TypeExpr) string {
	t.Helper()
	switch expr := expr.(type) {
	case *tree.TypeName:
		s := expr.Name.Value
		if len(expr.Args) > 0 {
			s += "<"
			for i, arg := range expr.Args {
				if i > 0 {
					s += ", "
				}
				s += typeString(t, arg)
			}
			s += ">"
		}
		if expr.Nullable {
			s += "?"
		}
		return s
	case *tree.FunctionTypeExpr:
		s := "("
		for i, param := range expr.Params {
			if i > 0 {
				s += ", "
			}
			s += typeString(t, param)
		}
		s += ") -> " + typeString(t, expr.Return)
		if expr.Nullable {
			s = "(" + s + ")?"
		}
		return s
	default:
		t.Fatalf("unexpected type expr %T", expr)
		return ""
	}
}

func TestLex(t *testing.T) {
	tokens, err := Lex("a.kt", "a?.b!! // comment\n{ x -> 'c' \"s\\n\" 12L 1.5 }")
	require.NoError(t, err)

	var texts []string
	for _, tok := range tokens {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"a", "?.", "b", "!!", "{", "x", "->", "c", "s\n", "12L", "1.5", "}", ""}, texts)
	assert.True(t, tokens[4].NewlineBefore)
	assert.Equal(t, Span{File: "a.kt", Start: 1, End: 3, Line: 1, Column: 2}, tokens[1].Span)
	assert.Equal(t, TokenLong, tokens[9].Kind)
	assert.Equal(t, TokenDouble, tokens[10].Kind)
}

func TestLexErrors(t *testing.T) {
	for _, text := range []string{"\"open", "/* open", "#", "'ab'"} {
		_, err := Lex("a.kt", text)
		var syntaxErr *SyntaxError
		assert.ErrorAs(t, err, &syntaxErr, text)
	}
}

func TestParseType(t *testing.T) {
	cases := []string{
		"String",
		"Map<K, V>?",
		"(T) -> Unit",
		"((Int) -> Unit)?",
		"Iterator<Map.Entry<K, V>>",
		"(String, Int) -> List<String?>",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			ty, err := ParseType(text)
			require.NoError(t, err)
			assert.Equal(t, text, typeString(t, ty))
		})
	}

	_, err := ParseType("Map<K")
	assert.Error(t, err)
}

func TestParseFunHeaders(t *testing.T) {
	cases := []struct {
		text     string
		receiver string
		name     string
	}{
		{"fun foo() {}", "", "foo"},
		{"fun String.foo() {}", "String", "foo"},
		{"fun <T> Array<T>.forEach(operation: (T) -> Unit) {}", "Array<T>", "forEach"},
		{"fun <K, V> Map.Entry<K, V>?.key(): K = null", "Map.Entry<K, V>?", "key"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			decl, err := ParseDecl("a.kt", tc.text)
			require.NoError(t, err)
			fun := decl.(*tree.FunDecl)
			assert.Equal(t, tc.name, fun.Name.Value)
			if tc.receiver == "" {
				assert.Nil(t, fun.Receiver)
			} else {
				assert.Equal(t, tc.receiver, typeString(t, fun.Receiver))
			}
		})
	}
}

func TestParseProperty(t *testing.T) {
	decl, err := ParseDecl("a.kt", "val <T> List<T>.lastIndex: Int")
	require.NoError(t, err)
	prop := decl.(*tree.PropertyDecl)
	assert.Equal(t, "lastIndex", prop.Name.Value)
	assert.Equal(t, "List<T>", typeString(t, prop.Receiver))
	assert.Equal(t, "Int", typeString(t, prop.Type))
	require.Len(t, prop.TypeParams, 1)
}

func TestParseClass(t *testing.T) {
	decl, err := ParseDecl("a.kt", `library("Error")
native open public class Exception(message: String? = null): Throwable() {
    fun describe(): String
    val cause: Throwable?
}`)
	require.NoError(t, err)
	cls := decl.(*tree.ClassDecl)
	assert.Equal(t, "Exception", cls.Name.Value)
	assert.Equal(t, tree.ClassKindClass, cls.Kind)
	assert.True(t, cls.HasCtor)
	require.Len(t, cls.CtorParams, 1)
	assert.NotNil(t, cls.CtorParams[0].Default)
	require.Len(t, cls.Supertypes, 1)
	assert.Equal(t, "Throwable", typeString(t, cls.Supertypes[0]))
	require.Len(t, cls.Members, 2)

	decl, err = ParseDecl("a.kt", "public trait Comparable<T> { public fun compareTo(that: T): Int }")
	require.NoError(t, err)
	assert.Equal(t, tree.ClassKindTrait, decl.(*tree.ClassDecl).Kind)
}

func TestParseLambdas(t *testing.T) {
	file, err := ParseSource("a.kt", `package a

fun main(args: Array<String>) {
    args.forEach { (a : String) : Unit -> a.length }
    args.forEach { (a) -> a.length }
    args.forEach { a -> a.length }
    args.forEach { it.length }
    run { -> 1 }
}`)
	require.NoError(t, err)
	assert.Equal(t, FqName("a"), file.Package)

	fun := file.Decls[0].(*tree.FunDecl)
	require.Len(t, fun.Body, 5)

	lambda := func(i int) *tree.LambdaExpr {
		call := fun.Body[i].(*tree.ExprStmt).Expr.(*tree.CallExpr)
		last, ok := Last(call.Args)
		require.True(t, ok)
		return last.Value.(*tree.LambdaExpr)
	}

	first := lambda(0)
	assert.True(t, first.HasParamList)
	require.Len(t, first.Params, 1)
	assert.Equal(t, "String", typeString(t, first.Params[0].Type))
	assert.Equal(t, "Unit", typeString(t, first.ReturnType))

	second := lambda(1)
	assert.True(t, second.HasParamList)
	assert.Nil(t, second.Params[0].Type)
	assert.Nil(t, second.ReturnType)

	assert.True(t, lambda(2).HasParamList)

	implicit := lambda(3)
	assert.False(t, implicit.HasParamList)
	require.Len(t, implicit.Body, 1)
	member := implicit.Body[0].(*tree.ExprStmt).Expr.(*tree.MemberExpr)
	assert.Equal(t, "length", member.Name.Value)

	empty := lambda(4)
	assert.True(t, empty.HasParamList)
	assert.Empty(t, empty.Params)
}

func TestParseCallsAndSpans(t *testing.T) {
	text := "fun test(a: A<Int>?) {\n    a.foo()\n    a?.bar!!.baz<String>(x = 1) { }\n}"
	file, err := ParseSource("b.kt", text)
	require.NoError(t, err)

	fun := file.Decls[0].(*tree.FunDecl)
	call := fun.Body[0].(*tree.ExprStmt).Expr.(*tree.CallExpr)
	assert.Equal(t, tree.DotPlain, call.Dot)
	assert.Equal(t, ".", text[call.DotSpan.Start:call.DotSpan.End])
	assert.Equal(t, 2, call.DotSpan.Line)
	assert.Equal(t, 6, call.DotSpan.Column)
	assert.Equal(t, "a.foo()", text[call.Span.Start:call.Span.End])

	chained := fun.Body[1].(*tree.ExprStmt).Expr.(*tree.CallExpr)
	assert.Equal(t, "baz", chained.Name.Value)
	require.Len(t, chained.TypeArgs, 1)
	require.Len(t, chained.Args, 2)
	assert.Equal(t, "x", chained.Args[0].Name.Value)
	notNull := chained.Receiver.(*tree.NotNullExpr)
	member := notNull.Expr.(*tree.MemberExpr)
	assert.Equal(t, tree.DotSafe, member.Dot)
	assert.Equal(t, "?.", text[member.DotSpan.Start:member.DotSpan.End])

	assert.True(t, fun.HasBlock)
	assert.Equal(t, "}", text[fun.BodyEnd.Start:fun.BodyEnd.End])
}

func TestParseImportsAndFor(t *testing.T) {
	file, err := ParseSource("c.kt", `package c
import java.util.List
import kotlin.*
import a.b as c

fun <T> Array<T>.forEach(operation: (T) -> Unit) : Unit = for (element in this) operation(element)
`)
	require.NoError(t, err)
	require.Len(t, file.Imports, 3)
	assert.Equal(t, FqName("java.util.List"), file.Imports[0].Path)
	assert.True(t, file.Imports[1].All)
	assert.Equal(t, "c", file.Imports[2].LocalName().Value)

	fun := file.Decls[0].(*tree.FunDecl)
	loop := fun.ExprBody.(*tree.ForExpr)
	assert.Equal(t, "element", loop.Var.Value)
	assert.IsType(t, &tree.ThisExpr{}, loop.Iterable)
	require.Len(t, loop.Body, 1)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := ParseSource("d.kt", "fun main( {")
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 1, syntaxErr.Span.Line)
}

func TestDecodeStubs(t *testing.T) {
	data := []byte(`
packages:
  - package: kotlin
    declarations:
      - class Any
      - "class Array<T> { fun iterator(): Iterator<T> }"
  - package: java.lang
    imports: [kotlin.*]
    declarations:
      - 'trait Runnable { fun run(): Unit }'
`)
	files, err := DecodeStubs("prelude.yaml", data)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, FqName("kotlin"), files[0].Package)
	assert.Len(t, files[0].Decls, 2)
	assert.Len(t, files[1].Imports, 1)

	_, err = DecodeStubs("bad.yaml", []byte("packages:\n  - package: kotlin\n    declarations:\n      - fun (\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml:4")
}
