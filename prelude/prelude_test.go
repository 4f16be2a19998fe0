package prelude

import (
	"testing"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/parse"
	"github.com/garciat/kinfer/symbols"
	"github.com/garciat/kinfer/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesDecodedOnce(t *testing.T) {
	first, err := Files()
	require.NoError(t, err)
	second, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Same(t, first[0], second[0])
}

func TestNewTable(t *testing.T) {
	table, err := NewTable()
	require.NoError(t, err)
	assert.False(t, table.Frozen())

	for _, name := range []string{"Any", "String", "Array", "Iterator", "List", "Map.Entry", "Runnable"} {
		_, ok := table.LookupClassifier(NewIdentifier(name), table.DefaultImports())
		assert.True(t, ok, name)
	}
}

func TestHierarchy(t *testing.T) {
	table, err := NewTable()
	require.NoError(t, err)

	assert.True(t, table.IsA(NewIdentifier("IllegalArgumentException"), NewIdentifier("Throwable")))
	assert.True(t, table.IsA(NewIdentifier("String"), NewIdentifier("CharSequence")))
	assert.False(t, table.IsA(NewIdentifier("Int"), NewIdentifier("CharSequence")))

	up, ok := table.Supertype(tree.Named("ArrayList", tree.TypeString), NewIdentifier("Iterable"))
	require.True(t, ok)
	assert.Equal(t, "Iterable<String>", up.String())

	length := table.Members(tree.TypeString, NewIdentifier("length"), symbols.KindProperty)
	require.Len(t, length, 1)
	assert.Equal(t, "Int", length[0].Return.String())

	toString := table.Members(tree.Named("Runnable"), NewIdentifier("toString"), symbols.KindFunction)
	assert.Len(t, toString, 1)
}

func TestExtensionsVisibleByDefault(t *testing.T) {
	table, err := NewTable()
	require.NoError(t, err)

	forEach := table.Extensions(NewIdentifier("forEach"), table.DefaultImports(), symbols.KindFunction)
	require.Len(t, forEach, 1)
	assert.Equal(t, FqName("kotlin.collections"), forEach[0].Package)
	assert.Equal(t, "Iterable<T>", forEach[0].Receiver.String())
}

func TestTablesAreIndependent(t *testing.T) {
	a, err := NewTable()
	require.NoError(t, err)
	b, err := NewTable()
	require.NoError(t, err)

	a.Freeze()
	assert.False(t, b.Frozen())
	assert.Equal(t, a.Len(), b.Len())
}

func TestExtraStubs(t *testing.T) {
	extra, err := parse.DecodeStubs("extra.yaml", []byte(`
packages:
  - package: js
    declarations:
      - 'fun js(code: String): Any?'
      - 'class Json : Map<String, Any?>'
`))
	require.NoError(t, err)

	table, err := NewTable(extra...)
	require.NoError(t, err)
	assert.True(t, table.HasPackage(FqName("js")))
	assert.True(t, table.IsA(NewIdentifier("Json"), NewIdentifier("Map")))
}

func TestInvalidExtraStubs(t *testing.T) {
	extra, err := parse.DecodeStubs("extra.yaml", []byte(`
packages:
  - package: js
    declarations:
      - 'fun broken(a: Missing): Unit'
`))
	require.NoError(t, err)

	_, err = NewTable(extra...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved type Missing")
}
